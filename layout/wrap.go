package layout

import (
	"strings"
)

// Measurer reports the rendered width of a string at a font size, in the
// same unit as Geometry. The renderer that draws the document must use the
// same metric so that wrapped lines fit once drawn.
type Measurer interface {
	StringWidth(text string, fontSize float64) float64
}

// Wrap splits text into lines no wider than width at fontSize.
//
// Paragraphs are separated by '\n' and wrapped independently; blank
// paragraphs produce empty lines. Lines break between words, and a word
// wider than width is split between runes. Every returned line measures at
// most width unless a single rune is itself wider.
func Wrap(m Measurer, text string, fontSize, width float64) []string {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(m, para, fontSize, width)...)
	}
	return lines
}

func wrapParagraph(m Measurer, para string, fontSize, width float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.StringWidth(candidate, fontSize) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.StringWidth(word, fontSize) <= width {
			current = word
			continue
		}
		pieces := splitWord(m, word, fontSize, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWord breaks a word that does not fit on one line into rune runs.
func splitWord(m Measurer, word string, fontSize, width float64) []string {
	var pieces []string
	var piece []rune
	for _, r := range word {
		next := append(piece, r)
		if len(piece) > 0 && m.StringWidth(string(next), fontSize) > width {
			pieces = append(pieces, string(piece))
			piece = []rune{r}
			continue
		}
		piece = next
	}
	if len(piece) > 0 {
		pieces = append(pieces, string(piece))
	}
	return pieces
}

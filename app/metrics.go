package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/goplan/metrics"
)

const (
	metricRecords        = "records"
	metricRecordsSaved   = "records_saved_total"
	metricRecordsDeleted = "records_deleted_total"
	metricSaveRejected   = "save_rejected_total"
	metricExports        = "exports_total"
	metricExportPages    = "export_pages"
)

// Reasons a save can be rejected, used as the save_rejected_total label.
const (
	reasonTitle    = "title"
	reasonGoal     = "goal"
	reasonCapacity = "capacity"
	reasonStorage  = "storage"
)

// Metrics are the planner's counters and gauges.
type Metrics struct {
	records  metrics.Gauge
	saved    metrics.Counter
	deleted  metrics.Counter
	rejected metrics.CounterVec
	exports  metrics.Counter
	pages    metrics.Gauge
}

// NewMetrics creates the planner metrics in reg under namespace.
func NewMetrics(reg metrics.Registry, namespace string) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	m.records, err = reg.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      metricRecords,
		Help:      "Number of saved activities",
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricRecords, err)
	}

	m.saved, err = reg.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricRecordsSaved,
		Help:      "Count of activities saved",
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricRecordsSaved, err)
	}

	m.deleted, err = reg.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricRecordsDeleted,
		Help:      "Count of activities deleted",
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricRecordsDeleted, err)
	}

	m.rejected, err = reg.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricSaveRejected,
		Help:      "Count of saves that were refused",
	}, []string{"reason"})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricSaveRejected, err)
	}

	m.exports, err = reg.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricExports,
		Help:      "Count of PDF exports written",
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricExports, err)
	}

	m.pages, err = reg.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      metricExportPages,
		Help:      "Page count of the last PDF export",
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricExportPages, err)
	}

	return &m, nil
}

func nopMetrics() *Metrics {
	// The nop registry never fails.
	m, _ := NewMetrics(metrics.NewNopRegistry(), "")
	return m
}

func (m *Metrics) reject(reason string) {
	m.rejected.With(prometheus.Labels{"reason": reason}).Inc()
}

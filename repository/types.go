package repository

import (
	"time"

	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/sweep"
	"github.com/google/uuid"
)

// StatusSucceeded is the status of a run that produced a result. Failed runs carry their failure kind instead.
const StatusSucceeded = "succeeded"

// StoredRun represents one scenario solve that is persisted to the SQLite database, with its metrics as columns.
type StoredRun struct {
	ID                  uuid.UUID `gorm:"primaryKey"`
	CreatedAt           time.Time
	System              string `gorm:"index"`
	ElectricityScenario string
	GasScenario         string
	CapexScenario       string
	Variant             string
	Status              string `gorm:"index"`
	FailureReason       string
	ElapsedSeconds      float64

	Metrics model.Metrics `gorm:"embedded;embeddedPrefix:metric_"`
}

// StoredMetric is one metric of a successful run under its reporting name.
type StoredMetric struct {
	ID    uint      `gorm:"primaryKey"`
	RunID uuid.UUID `gorm:"index"`
	Name  string
	Value float64
}

// StoredCapacity is the installed size of one asset in a successful run.
type StoredCapacity struct {
	ID       uint      `gorm:"primaryKey"`
	RunID    uuid.UUID `gorm:"index"`
	Asset    string
	Capacity float64
}

func newStoredRun(o sweep.Outcome) StoredRun {
	run := StoredRun{
		ID:                  o.RunID,
		System:              string(o.Key.System),
		ElectricityScenario: o.Key.ElectricityScenario,
		GasScenario:         o.Key.GasScenario,
		CapexScenario:       o.Key.CapexScenario,
		Variant:             o.Variant,
		ElapsedSeconds:      o.Elapsed.Seconds(),
	}
	if o.Failure != nil {
		run.Status = string(o.Failure.Kind)
		run.FailureReason = o.Failure.Reason
		return run
	}
	run.Status = StatusSucceeded
	run.Metrics = o.Result.Metrics
	return run
}

func newStoredMetrics(o sweep.Outcome) []StoredMetric {
	named := o.Result.Metrics.Named()
	metrics := make([]StoredMetric, len(named))
	for i, nv := range named {
		metrics[i] = StoredMetric{RunID: o.RunID, Name: nv.Name, Value: nv.Value}
	}
	return metrics
}

func newStoredCapacities(o sweep.Outcome) []StoredCapacity {
	capacities := make([]StoredCapacity, 0, len(o.Result.Capacity))
	for id, capacity := range o.Result.Capacity {
		capacities = append(capacities, StoredCapacity{RunID: o.RunID, Asset: string(id), Capacity: capacity})
	}
	return capacities
}

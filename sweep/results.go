package sweep

import (
	"fmt"
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/model"
	"github.com/google/uuid"
)

// FailureKind classifies why a job produced no result.
type FailureKind string

const (
	KindInputAlignment FailureKind = "input alignment"
	KindConfiguration  FailureKind = "configuration"
	KindSolver         FailureKind = "solver"
	KindTimeout        FailureKind = "timeout"
	// KindInterrupted is a job whose solve was cancelled before it finished, not a failure of the scenario.
	KindInterrupted    FailureKind = "interrupted"
)

// Failure records a job that produced no result. The rest of the sweep carries on regardless.
type Failure struct {
	Key     Key
	Variant string
	Kind    FailureKind
	Reason  string
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s/%s: %s: %s", f.Key, f.Variant, f.Kind, f.Reason)
}

// Outcome is the result of running one job: exactly one of Result and Failure is set.
type Outcome struct {
	RunID   uuid.UUID
	Key     Key
	Variant string
	Result  *model.Result
	Failure *Failure
	Elapsed time.Duration
}

type VariantResult struct {
	RunID    uuid.UUID
	Metrics  model.Metrics
	Flows    model.FlowTable
	Capacity map[assets.ID]float64
}

// ScenarioResult holds the variants solved for one scenario combination, keyed by variant label.
type ScenarioResult struct {
	Key      Key
	Variants map[string]*VariantResult
	// Order lists the variant labels in the order they were planned.
	Order []string
}

// Results is everything a sweep produced, in plan order.
type Results struct {
	Scenarios []*ScenarioResult
	Failures  []Failure

	index map[Key]*ScenarioResult
}

// Scenario returns the result for the given key, nil when none of its variants succeeded.
func (r *Results) Scenario(key Key) *ScenarioResult {
	return r.index[key]
}

// Succeeded is the number of variants solved.
func (r *Results) Succeeded() int {
	n := 0
	for _, s := range r.Scenarios {
		n += len(s.Variants)
	}
	return n
}

func (r *Results) add(o Outcome) {
	if o.Failure != nil {
		r.Failures = append(r.Failures, *o.Failure)
		return
	}
	if r.index == nil {
		r.index = map[Key]*ScenarioResult{}
	}
	s, ok := r.index[o.Key]
	if !ok {
		s = &ScenarioResult{Key: o.Key, Variants: map[string]*VariantResult{}}
		r.index[o.Key] = s
		r.Scenarios = append(r.Scenarios, s)
	}
	s.Variants[o.Variant] = &VariantResult{
		RunID:    o.RunID,
		Metrics:  o.Result.Metrics,
		Flows:    o.Result.Flows,
		Capacity: o.Result.Capacity,
	}
	s.Order = append(s.Order, o.Variant)
}

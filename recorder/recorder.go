package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cepro/flexsizing/repository"
	"github.com/cepro/flexsizing/sweep"
)

// Recorder handles the persisting of sweep outcomes.
// Put outcomes onto the Outcomes channel as they arrive, they are stored in a SQLite database so that a long sweep
// that is interrupted keeps everything it finished.
type Recorder struct {
	Outcomes chan sweep.Outcome

	repository *repository.Repository

	recorded int
	failed   int
}

func New(repositoryFilename string) (*Recorder, error) {

	repository, err := repository.New(repositoryFilename)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}

	return &Recorder{
		Outcomes:   make(chan sweep.Outcome, 25), // a small buffer to allow SQLite to catch up in case the disk is slow
		repository: repository,
	}, nil
}

// Run loops until the Outcomes channel is closed or the context is done, storing each outcome as it arrives. The
// repository is closed on return.
func (r *Recorder) Run(ctx context.Context) {
	defer func() {
		err := r.repository.Close()
		if err != nil {
			slog.Error("failed to close repository", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case outcome, ok := <-r.Outcomes:
			if !ok {
				return
			}
			r.record(outcome)
		}
	}
}

// drain stores whatever is already buffered.
func (r *Recorder) drain() {
	for {
		select {
		case outcome, ok := <-r.Outcomes:
			if !ok {
				return
			}
			r.record(outcome)
		default:
			return
		}
	}
}

func (r *Recorder) record(outcome sweep.Outcome) {
	err := r.repository.AddOutcome(outcome)
	if err != nil {
		r.failed++
		slog.Error("failed to persist outcome", "run_id", outcome.RunID, "error", err)
		return
	}
	r.recorded++
	slog.Debug("Stored outcome", "run_id", outcome.RunID, "key", outcome.Key.String(), "variant", outcome.Variant)
}

// Counts returns how many outcomes were stored and how many could not be. Only call it once Run has returned.
func (r *Recorder) Counts() (recorded, failed int) {
	return r.recorded, r.failed
}

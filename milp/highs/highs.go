// Package highs solves milp problems with an external HiGHS executable. The problem is written as
// free MPS into a scratch directory, HiGHS is run on it and its raw solution file is read back.
package highs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cepro/flexsizing/milp"
)

// killGrace is how long HiGHS may overrun its own time limit before the process is killed.
const killGrace = 10 * time.Second

// Solver implements milp.Solver by shelling out to HiGHS.
type Solver struct {
	// Binary is the HiGHS executable, looked up on PATH when not absolute.
	Binary string
	// WorkDir is the parent of the per solve scratch directories, os.TempDir when empty.
	WorkDir string
	// Threads is passed through as the HiGHS threads option when positive.
	Threads int
	Logger  *slog.Logger
}

func New(binary string) *Solver {
	if binary == "" {
		binary = "highs"
	}
	return &Solver{
		Binary: binary,
		Logger: slog.Default(),
	}
}

func (s *Solver) Solve(ctx context.Context, problem *milp.Problem, options milp.Options) (milp.Solution, error) {
	if err := problem.Validate(); err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("validate problem: %w", err))
	}

	dir, err := os.MkdirTemp(s.WorkDir, "highs-")
	if err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("create scratch directory: %w", err))
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.mps")
	optionsPath := filepath.Join(dir, "options.txt")
	solutionPath := filepath.Join(dir, "solution.txt")

	if err := writeFile(modelPath, func(w io.Writer) error { return milp.WriteMPS(w, problem) }); err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("write model: %w", err))
	}
	if err := writeFile(optionsPath, func(w io.Writer) error { return s.writeOptions(w, options) }); err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("write options: %w", err))
	}

	runCtx := ctx
	if options.TimeLimit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, options.TimeLimit+killGrace)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, s.Binary,
		"--model_file", modelPath,
		"--options_file", optionsPath,
		"--solution_file", solutionPath,
	)
	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			status := milp.StatusError
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				status = milp.StatusTimeLimit
			}
			return milp.Solution{}, milp.Failure(status, fmt.Errorf("run highs: %w", ctxErr))
		}
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("run highs: %w: %s", runErr, tail(output)))
	}

	f, err := os.Open(solutionPath)
	if err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("open solution file: %w", err))
	}
	defer f.Close()

	parsed, err := parseSolution(f, problem.NumVars())
	if err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("parse solution file: %w", err))
	}

	s.logger().Debug("HiGHS finished",
		"problem", problem.Name,
		"model_status", parsed.modelStatus,
		"elapsed", time.Since(start),
	)

	status := modelStatus(parsed.modelStatus)
	var solution milp.Solution
	if parsed.values != nil {
		solution = milp.Solution{
			Status:    status,
			Objective: problem.Objective(parsed.values),
			Values:    parsed.values,
			BestBound: math.NaN(),
			Gap:       math.NaN(),
		}
	}

	switch status {
	case milp.StatusOptimal:
		if parsed.values == nil {
			return milp.Solution{}, milp.Failure(milp.StatusError, errors.New("optimal status without primal values"))
		}
		return solution, nil
	case milp.StatusInfeasible:
		return milp.Solution{}, milp.Failure(status, milp.ErrInfeasible)
	case milp.StatusUnbounded:
		return milp.Solution{}, milp.Failure(status, milp.ErrUnbounded)
	case milp.StatusTimeLimit:
		failure := milp.Failure(status, milp.ErrTimeLimit)
		if parsed.values != nil {
			failure.Incumbent = &solution
		}
		return milp.Solution{}, failure
	}
	return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("model status %q", parsed.modelStatus))
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Solver) writeOptions(w io.Writer, options milp.Options) error {
	lines := []string{
		fmt.Sprintf("mip_rel_gap = %s", strconv.FormatFloat(options.Gap(), 'g', -1, 64)),
		"write_solution_style = 0",
		"log_to_console = false",
	}
	if options.TimeLimit > 0 {
		lines = append(lines, fmt.Sprintf("time_limit = %s", strconv.FormatFloat(options.TimeLimit.Seconds(), 'f', 3, 64)))
	}
	if s.Threads > 0 {
		lines = append(lines, fmt.Sprintf("threads = %d", s.Threads))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// modelStatus maps the HiGHS model status text onto a milp.Status.
func modelStatus(text string) milp.Status {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "optimal":
		return milp.StatusOptimal
	case "infeasible":
		return milp.StatusInfeasible
	case "unbounded", "primal infeasible or unbounded":
		return milp.StatusUnbounded
	case "time limit reached":
		return milp.StatusTimeLimit
	}
	return milp.StatusError
}

type parsedSolution struct {
	modelStatus string
	objective   float64
	// values is nil when the file carries no primal solution
	values []float64
}

// parseSolution reads a HiGHS raw solution file. Columns are matched by the names WriteMPS gives
// them.
func parseSolution(r io.Reader, numVars int) (parsedSolution, error) {
	var parsed parsedSolution
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	seenStatus := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "Model status":
			if !scanner.Scan() {
				return parsed, errors.New("missing model status")
			}
			parsed.modelStatus = strings.TrimSpace(scanner.Text())
			seenStatus = true

		case strings.HasPrefix(line, "Objective "):
			val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Objective ")), 64)
			if err != nil {
				return parsed, fmt.Errorf("objective: %w", err)
			}
			parsed.objective = val

		case strings.HasPrefix(line, "# Columns "):
			if parsed.values != nil {
				// the dual section repeats the header, only the primal values are read
				continue
			}
			count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns ")))
			if err != nil {
				return parsed, fmt.Errorf("column count: %w", err)
			}
			values := make([]float64, numVars)
			for i := 0; i < count; i++ {
				if !scanner.Scan() {
					return parsed, fmt.Errorf("expected %d columns, got %d", count, i)
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return parsed, fmt.Errorf("malformed column line %q", scanner.Text())
				}
				j, err := strconv.Atoi(strings.TrimPrefix(fields[0], "c"))
				if err != nil || j < 0 || j >= numVars {
					return parsed, fmt.Errorf("unknown column %q", fields[0])
				}
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return parsed, fmt.Errorf("column %q value: %w", fields[0], err)
				}
				values[j] = v
			}
			parsed.values = values

		case line == "# Dual solution values":
			// nothing after this is needed
			if !seenStatus {
				return parsed, errors.New("missing model status")
			}
			return parsed, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return parsed, err
	}
	if !seenStatus {
		return parsed, errors.New("missing model status")
	}
	return parsed, nil
}

// tail returns the last few lines of process output for error messages.
func tail(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}

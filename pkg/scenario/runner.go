package scenario

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/detentlabs/detent/internal/logging"
	"github.com/detentlabs/detent/pkg/fsm"
)

// Dispatcher is the machine surface the runner needs.
type Dispatcher interface {
	FireWithResult(state, event string, ctx map[string]any) fsm.Result[string]
}

// Runner executes scenarios against a dispatcher.
type Runner struct {
	machine Dispatcher
	initial string
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger. Without it the runner is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner. Scenarios without an explicit start state
// begin at initial.
func NewRunner(machine Dispatcher, initial string, opts ...Option) *Runner {
	r := &Runner{
		machine: machine,
		initial: initial,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StepResult records one executed step and whether its expectations held.
type StepResult struct {
	Index   int                `json:"index"`
	Event   string             `json:"event"`
	Result  fsm.Result[string] `json:"result"`
	Failure string             `json:"failure,omitempty"`
}

// Passed reports whether every expectation of the step held.
func (s StepResult) Passed() bool { return s.Failure == "" }

// Report is the outcome of running one scenario.
type Report struct {
	RunID    string       `json:"run_id"`
	Scenario string       `json:"scenario"`
	Final    string       `json:"final"`
	Steps    []StepResult `json:"steps"`
	Passed   bool         `json:"passed"`
}

// Run executes sc from its start state, threading the resulting state of
// each step into the next. Expectation failures do not stop the run; every
// step executes so the report shows the whole trajectory.
func (r *Runner) Run(sc Scenario) Report {
	report := Report{
		RunID:    uuid.New().String(),
		Scenario: sc.Name,
		Passed:   true,
	}

	state := sc.Start
	if state == "" {
		state = r.initial
	}

	ctx := make(map[string]any, len(sc.Context))
	for k, v := range sc.Context {
		ctx[k] = v
	}

	r.logger.Info("scenario started", "run_id", report.RunID, "scenario", sc.Name, "start", state)

	for i, step := range sc.Steps {
		res := r.machine.FireWithResult(state, step.Fire, ctx)
		sr := StepResult{Index: i, Event: step.Fire, Result: res}
		sr.Failure = checkStep(step, res)

		if sr.Failure != "" {
			report.Passed = false
			r.logger.Warn("step failed", "run_id", report.RunID, "step", i, "event", step.Fire, "failure", sr.Failure)
		}

		state = res.State
		report.Steps = append(report.Steps, sr)
	}

	report.Final = state
	r.logger.Info("scenario finished", "run_id", report.RunID, "scenario", sc.Name, "final", state, "passed", report.Passed)
	return report
}

// RunAll executes every scenario in f and reports them in order.
func (r *Runner) RunAll(f *File) []Report {
	reports := make([]Report, 0, len(f.Scenarios))
	for _, sc := range f.Scenarios {
		reports = append(reports, r.Run(sc))
	}
	return reports
}

func checkStep(step Step, res fsm.Result[string]) string {
	if step.ExpectState != "" && res.State != step.ExpectState {
		return fmt.Sprintf("expected state %q, got %q (%s)", step.ExpectState, res.State, res.Reason)
	}
	if step.ExpectOutcome != "" && res.Outcome.String() != step.ExpectOutcome {
		return fmt.Sprintf("expected outcome %q, got %q (%s)", step.ExpectOutcome, res.Outcome, res.Reason)
	}
	if step.ReasonContains != "" && !strings.Contains(res.Reason, step.ReasonContains) {
		return fmt.Sprintf("expected reason containing %q, got %q", step.ReasonContains, res.Reason)
	}
	return ""
}

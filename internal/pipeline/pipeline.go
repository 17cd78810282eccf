package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapetl/pkg/core"
)

// StepFunc executes one stage.
type StepFunc func(ctx context.Context) (*StageResult, error)

// Step is a stage bound to a name.
type Step struct {
	Name string
	Run  StepFunc
}

// Recorder receives run and step lifecycle events. core.Store satisfies it.
type Recorder interface {
	CreateRun(pipeline string) (*core.Run, error)
	CompleteRun(id string, status core.RunStatus, errMsg string) error
	StartStep(runID, step string) (*core.StepRun, error)
	CompleteStep(id string, status core.StepStatus, rowsIn, rowsOut int64, errMsg string) error
}

// StepOutcome is the result of one step within a run.
type StepOutcome struct {
	Name     string
	Status   core.StepStatus
	Result   *StageResult
	Err      error
	Duration time.Duration
}

// Result summarizes a run.
type Result struct {
	// RunID is empty when no recorder is configured or recording failed.
	RunID string
	Steps []StepOutcome
}

// Failed returns the first failed step, if any.
func (r *Result) Failed() (StepOutcome, bool) {
	for _, s := range r.Steps {
		if s.Status == core.StepStatusFailed {
			return s, true
		}
	}
	return StepOutcome{}, false
}

// Pipeline runs an ordered list of steps.
type Pipeline struct {
	steps    []Step
	recorder Recorder
	logger   *slog.Logger
}

// New builds the standard load, transform, persist pipeline from cfg.
// recorder may be nil to disable run history.
func New(cfg Config, logger *slog.Logger, recorder Recorder) *Pipeline {
	logger = discardIfNil(logger)
	loader := NewLoader(cfg, logger)
	transformer := NewTransformer(cfg, logger)
	persister := NewPersister(cfg, logger)

	return NewWithSteps([]Step{
		{Name: StageLoad, Run: loader.Load},
		{Name: StageTransform, Run: transformer.Transform},
		{Name: StagePersist, Run: persister.Persist},
	}, logger, recorder)
}

// NewWithSteps builds a pipeline from an explicit step list.
func NewWithSteps(steps []Step, logger *slog.Logger, recorder Recorder) *Pipeline {
	return &Pipeline{steps: steps, recorder: recorder, logger: discardIfNil(logger)}
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes every step in order and stops at the first failure. Steps
// after a failure are reported as skipped. The context is checked between
// steps only.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	return p.execute(ctx, "run", p.steps)
}

// RunStep executes the single named step.
func (p *Pipeline) RunStep(ctx context.Context, name string) (*Result, error) {
	for _, s := range p.steps {
		if s.Name == name {
			return p.execute(ctx, name, []Step{s})
		}
	}
	return nil, &UnknownStepError{Name: name, Available: p.StepNames()}
}

func (p *Pipeline) execute(ctx context.Context, name string, steps []Step) (*Result, error) {
	rec := recording{recorder: p.recorder, logger: p.logger}
	runID := rec.createRun(name)
	result := &Result{RunID: runID}

	p.logger.Info("starting run", slog.String("pipeline", name), slog.Int("steps", len(steps)))

	var runErr error
	for _, step := range steps {
		if runErr == nil {
			runErr = ctx.Err()
		}
		if runErr != nil {
			rec.skipStep(runID, step.Name)
			result.Steps = append(result.Steps, StepOutcome{Name: step.Name, Status: core.StepStatusSkipped})
			continue
		}

		outcome := p.runStep(ctx, &rec, runID, step)
		result.Steps = append(result.Steps, outcome)
		if outcome.Err != nil {
			runErr = outcome.Err
		}
	}

	if runErr != nil {
		p.logger.Error("run failed", slog.String("pipeline", name), slog.String("error", runErr.Error()))
		rec.completeRun(runID, core.RunStatusFailed, runErr.Error())
		return result, runErr
	}

	p.logger.Info("run completed", slog.String("pipeline", name))
	rec.completeRun(runID, core.RunStatusCompleted, "")
	return result, nil
}

func (p *Pipeline) runStep(ctx context.Context, rec *recording, runID string, step Step) StepOutcome {
	stepID := rec.startStep(runID, step.Name)
	p.logger.Debug("running step", slog.String("step", step.Name))

	start := time.Now()
	res, err := step.Run(ctx)
	outcome := StepOutcome{Name: step.Name, Result: res, Err: err, Duration: time.Since(start)}

	var rowsIn, rowsOut int64
	if res != nil {
		rowsIn, rowsOut = int64(res.RowsIn), int64(res.RowsOut)
	}

	if err != nil {
		outcome.Status = core.StepStatusFailed
		rec.completeStep(stepID, core.StepStatusFailed, rowsIn, rowsOut, err.Error())
		return outcome
	}

	outcome.Status = core.StepStatusSuccess
	rec.completeStep(stepID, core.StepStatusSuccess, rowsIn, rowsOut, "")
	p.logger.Info("step completed",
		slog.String("step", step.Name),
		slog.Int64("rows_in", rowsIn),
		slog.Int64("rows_out", rowsOut),
		slog.Duration("duration", outcome.Duration),
	)
	return outcome
}

// recording forwards events to an optional Recorder. Failures are logged and
// never interrupt the run.
type recording struct {
	recorder Recorder
	logger   *slog.Logger
}

func (r *recording) warn(op string, err error) {
	r.logger.Warn("run history not recorded", slog.String("op", op), slog.String("error", err.Error()))
}

func (r *recording) createRun(name string) string {
	if r.recorder == nil {
		return ""
	}
	run, err := r.recorder.CreateRun(name)
	if err != nil {
		r.warn("create run", err)
		return ""
	}
	return run.ID
}

func (r *recording) completeRun(id string, status core.RunStatus, errMsg string) {
	if r.recorder == nil || id == "" {
		return
	}
	if err := r.recorder.CompleteRun(id, status, errMsg); err != nil {
		r.warn("complete run", err)
	}
}

func (r *recording) startStep(runID, step string) string {
	if r.recorder == nil || runID == "" {
		return ""
	}
	sr, err := r.recorder.StartStep(runID, step)
	if err != nil {
		r.warn(fmt.Sprintf("start step %s", step), err)
		return ""
	}
	return sr.ID
}

func (r *recording) completeStep(id string, status core.StepStatus, rowsIn, rowsOut int64, errMsg string) {
	if r.recorder == nil || id == "" {
		return
	}
	if err := r.recorder.CompleteStep(id, status, rowsIn, rowsOut, errMsg); err != nil {
		r.warn("complete step", err)
	}
}

func (r *recording) skipStep(runID, step string) {
	r.completeStep(r.startStep(runID, step), core.StepStatusSkipped, 0, 0, "")
}

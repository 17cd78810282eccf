package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/internal/pipeline"
)

// stepReport is the rendered form of one step outcome.
type stepReport struct {
	Step       string `json:"step"`
	Status     string `json:"status"`
	Input      string `json:"input,omitempty"`
	Output     string `json:"output,omitempty"`
	Dialect    string `json:"dialect,omitempty"`
	RowsIn     int    `json:"rows_in"`
	RowsOut    int    `json:"rows_out"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// runReport is the rendered form of a pipeline result.
type runReport struct {
	RunID   string       `json:"run_id,omitempty"`
	Command string       `json:"command"`
	Status  string       `json:"status"`
	Steps   []stepReport `json:"steps"`
	Error   string       `json:"error,omitempty"`
}

func newRunReport(command string, result *pipeline.Result, runErr error) runReport {
	rep := runReport{Command: command, Status: "completed"}
	if runErr != nil {
		rep.Status = "failed"
		rep.Error = runErr.Error()
	}
	if result == nil {
		return rep
	}

	rep.RunID = result.RunID
	for _, o := range result.Steps {
		sr := stepReport{
			Step:       o.Name,
			Status:     string(o.Status),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Result != nil {
			sr.Input = o.Result.Input
			sr.Output = o.Result.Output
			sr.RowsIn = o.Result.RowsIn
			sr.RowsOut = o.Result.RowsOut
			if o.Name == pipeline.StageLoad {
				sr.Dialect = o.Result.Dialect.String()
			}
		}
		if o.Err != nil {
			sr.Error = o.Err.Error()
		}
		rep.Steps = append(rep.Steps, sr)
	}
	return rep
}

// renderRunReport writes the report in the renderer's mode.
func renderRunReport(r *output.Renderer, rep runReport) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rep)
	}

	r.Header(2, "leapetl "+rep.Command)
	for _, s := range rep.Steps {
		r.StatusLine(s.Step, s.Status, stepDetail(s))
	}
	if rep.RunID != "" {
		r.Println()
		r.Muted("run " + rep.RunID)
	}
	return nil
}

func stepDetail(s stepReport) string {
	switch {
	case s.Error != "":
		return s.Error
	case s.Status == "skipped":
		return ""
	}
	detail := fmt.Sprintf("%d → %d rows", s.RowsIn, s.RowsOut)
	if s.Output != "" {
		detail += ", " + s.Output
	}
	if s.Dialect != "" {
		detail += " (read as " + s.Dialect + ")"
	}
	return detail + " in " + (time.Duration(s.DurationMS) * time.Millisecond).String()
}

package release

import (
	"context"
	"fmt"
)

// Step is one stage of a packaging run. Steps run strictly in sequence;
// the first failure aborts the run.
type Step struct {
	// Name appears in log output and error messages.
	Name string

	// Skip, when non-nil, is consulted before Run. A true result skips
	// the step successfully with the returned reason logged.
	Skip func() (bool, string)

	// Run performs the step.
	Run func(ctx context.Context) error
}

// Pipeline executes steps sequentially with fail-fast propagation.
type Pipeline struct {
	steps  []Step
	logger Logger
}

// NewPipeline creates a pipeline over the given steps.
func NewPipeline(steps []Step, logger Logger) *Pipeline {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Pipeline{steps: steps, logger: logger}
}

// Run executes every step in order. The first error stops the run and is
// returned wrapped with the failing step's name. Context cancellation is
// checked between steps; in-flight external processes are cancelled
// through the same context.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before %s: %w", step.Name, err)
		}

		if step.Skip != nil {
			if skip, reason := step.Skip(); skip {
				p.logger.Info("step skipped", "step", step.Name, "reason", reason)
				continue
			}
		}

		p.logger.Info("step starting", "step", step.Name)
		if err := step.Run(ctx); err != nil {
			p.logger.Error("step failed", "step", step.Name, "error", err)
			return fmt.Errorf("%s: %w", step.Name, err)
		}
		p.logger.Info("step complete", "step", step.Name)
	}
	return nil
}

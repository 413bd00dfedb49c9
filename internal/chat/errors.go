package chat

import "fmt"

// Step identifies which pipeline stage an answer turn failed in, so
// user-visible errors always name the failing step.
type Step string

const (
	StepEmbedding      Step = "embedding"
	StepRetrieval      Step = "retrieval"
	StepReconstruction Step = "reconstruction"
	StepCompletion     Step = "completion"
)

// StepError wraps a turn failure with the pipeline step it happened in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}

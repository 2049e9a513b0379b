package relay

import "fmt"

// PipelineError tags a failure with the pipeline step it came from. The
// underlying cause is surfaced verbatim via Unwrap.
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("deploy notification failed at %s: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// MalformedShaError reports a commit sha too short to derive a display sha.
type MalformedShaError struct {
	SHA string
}

func (e *MalformedShaError) Error() string {
	return fmt.Sprintf("commit sha %q is shorter than %d characters", e.SHA, shortShaLen)
}

// TimestampParseError reports an authored timestamp that is not valid
// RFC3339. The raw string is kept for logging.
type TimestampParseError struct {
	Raw string
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("could not parse commit authored timestamp %q", e.Raw)
}

package enrich

import "fmt"

// BackendFormatError reports a model response envelope with no extractable
// text. It is fatal to the render call; there is no automatic retry.
type BackendFormatError struct {
	Detail string
}

func (e *BackendFormatError) Error() string {
	return fmt.Sprintf("unexpected model response format: %s", e.Detail)
}

// BackendParseError reports model text that is not valid JSON after fence
// stripping. Raw carries the offending text for diagnostics. Fatal to the
// render call; no automatic retry.
type BackendParseError struct {
	Raw string
	Err error
}

func (e *BackendParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
}

func (e *BackendParseError) Unwrap() error { return e.Err }

package sheet

import "fmt"

// ReadError reports a failure reading part of a workbook.
type ReadError struct {
	Sheet     string
	Component string // "read", "csv", "workbook", "rows"
	Err       error
}

func (e *ReadError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("read error (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("read error in sheet %q (%s): %v", e.Sheet, e.Component, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError creates a new ReadError.
func NewReadError(sheet, component string, err error) *ReadError {
	return &ReadError{
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}

package form

import (
	"fmt"
	"io"
)

const (
	loadingLine   = "Converting..."
	resultHeading = "Suggested Thermomix Steps:"
)

// Render writes the form's visible state as plain text.
func (f *Form) Render(w io.Writer) error {
	return RenderState(w, f.Snapshot())
}

// RenderState writes s the way Render does. The result is written verbatim.
func RenderState(w io.Writer, s State) error {
	if s.Loading {
		if _, err := fmt.Fprintln(w, loadingLine); err != nil {
			return err
		}
	}
	if s.Error != "" {
		if _, err := fmt.Fprintf(w, "Error: %s\n", s.Error); err != nil {
			return err
		}
	}
	if s.Result != "" {
		if _, err := fmt.Fprintf(w, "%s\n%s\n[%s]\n", resultHeading, s.Result, s.CopyLabel); err != nil {
			return err
		}
	}
	return nil
}

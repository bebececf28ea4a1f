package metrics

import (
	"fmt"
	"io"
)

// WriteMVCEReport renders r as an aligned text table.
func WriteMVCEReport(w io.Writer, r *MVCEResult) error {
	width := nameWidth(r.Models)
	if _, err := fmt.Fprintf(w, "severity: %s\n", r.Band); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s %8s %8s\n", width, "model", "mVCE", "RmVCE"); err != nil {
		return err
	}
	for i, m := range r.Models {
		if _, err := fmt.Fprintf(w, "%-*s %8.2f %8.2f\n", width, m, r.MVCE[i], r.RMVCE[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteMCEIReport renders r as an aligned text table.
func WriteMCEIReport(w io.Writer, r *MCEIResult) error {
	width := nameWidth(r.Models)
	if _, err := fmt.Fprintf(w, "severity: %s\n", r.Band); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s %8s\n", width, "model", "mCEI"); err != nil {
		return err
	}
	for i, m := range r.Models {
		if _, err := fmt.Fprintf(w, "%-*s %8.2f\n", width, m, r.MCEI[i]); err != nil {
			return err
		}
	}
	return nil
}

func nameWidth(models []string) int {
	width := len("model")
	for _, m := range models {
		if n := len([]rune(m)); n > width {
			width = n
		}
	}
	return width
}

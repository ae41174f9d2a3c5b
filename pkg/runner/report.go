package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/qaclearn/shorpost/pkg/engine"
)

// WriteReport renders a plain-text verification report: the problem, the
// verdict and one line per outcome examined.
func WriteReport(w io.Writer, report *engine.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Order-finding post-processing report\n")
	fmt.Fprintf(&b, "N=%s  a=%s  phase_bits=%d  shots=%d  distinct=%d\n",
		report.N, report.A, report.PhaseBits, report.Shots, report.Available)

	order := "-"
	if report.Order != nil {
		order = report.Order.String()
	}
	factors := "-"
	if report.Factors != nil {
		factors = report.Factors.String()
	}
	fmt.Fprintf(&b, "status=%s  order=%s  factors=%s  tried=%d/%d  PASS=%t\n\n",
		report.Status, order, factors, report.Tried, report.Available, report.Status == engine.StatusFactored)

	for i, at := range report.Attempts {
		atOrder := "-"
		if at.Order != nil {
			atOrder = at.Order.String()
		}
		result := string(at.Reason)
		if at.Factors != nil {
			result = "factors " + at.Factors.String()
		}
		fmt.Fprintf(&b, "#%d  value=%s  count=%d  phase=%s (%.6f)  order=%s  %s\n",
			i+1, at.Outcome.Value, at.Outcome.Count, at.Phase, at.Phase.Float(), atOrder, result)
	}

	if counts := report.ReasonCounts(); len(counts) > 0 {
		fmt.Fprintf(&b, "\nfailures:")
		for _, reason := range []engine.Reason{
			engine.ReasonNoValidConvergent,
			engine.ReasonBoundExceeded,
			engine.ReasonOddOrder,
			engine.ReasonMinusOne,
			engine.ReasonTrivialGCD,
		} {
			if c := counts[reason]; c > 0 {
				fmt.Fprintf(&b, " %s=%d", reason, c)
			}
		}
		fmt.Fprintf(&b, "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

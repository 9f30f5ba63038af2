package audit

import (
	"fmt"
	"io"
	"strings"
)

// FormatViolation renders one violation in the race report layout:
//
//	==================
//	WARNING: PROTOCOL VIOLATION (fifo)
//	  client 3 at 5@0
//	  dequeued client 3 ahead of client 2 admitted at 2@2
//	==================
func FormatViolation(v *Violation) string {
	var buf strings.Builder

	buf.WriteString("==================\n")
	fmt.Fprintf(&buf, "WARNING: PROTOCOL VIOLATION (%s)\n", v.Kind)

	switch {
	case v.Client != 0 && v.Epoch.Clock != 0:
		fmt.Fprintf(&buf, "  client %d at %s\n", v.Client, v.Epoch)
	case v.Client != 0:
		fmt.Fprintf(&buf, "  client %d at end of run\n", v.Client)
	case v.Epoch.Clock != 0:
		fmt.Fprintf(&buf, "  barber at %s\n", v.Epoch)
	default:
		buf.WriteString("  at end of run\n")
	}

	fmt.Fprintf(&buf, "  %s\n", v.Detail)
	buf.WriteString("==================\n")
	return buf.String()
}

// Report writes every violation for attempted clients followed by a
// one-line summary, and returns the same error as Verify.
func (r *Recorder) Report(w io.Writer, attempted int) error {
	vs := r.Violations(attempted)
	for _, v := range vs {
		_, _ = io.WriteString(w, FormatViolation(v))
	}

	s := r.Summary()
	_, _ = fmt.Fprintf(w, "Audit: %d events, %d admitted, %d served, %d rejected, %d violations\n",
		s.Events, s.Admitted, s.Served, s.Rejections, len(vs))

	return r.Verify(attempted)
}

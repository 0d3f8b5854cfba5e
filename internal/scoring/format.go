package scoring

import "fmt"

// FormattedScore is the report-layer view of one group's result: z to two
// decimals (or "-" where no z is defined), percentile to the nearest integer
// with an optional "< "/"> " prefix when the statistic hit a clamp.
type FormattedScore struct {
	Z string `json:"z"`
	P string `json:"p"`
}

// FormatResults renders the engine output for display and export. Internal
// computation keeps full float precision; rounding happens only here.
func FormatResults(results map[string]Result) map[string]FormattedScore {
	out := make(map[string]FormattedScore, len(results))
	for key, r := range results {
		f := FormattedScore{Z: "-"}
		if r.ZValid {
			f.Z = fmt.Sprintf("%.2f", r.Z)
		}
		switch r.Bound {
		case BoundBelow:
			f.P = fmt.Sprintf("< %.0f", r.Percentile)
		case BoundAbove:
			f.P = fmt.Sprintf("> %.0f", r.Percentile)
		default:
			f.P = fmt.Sprintf("%.0f", r.Percentile)
		}
		out[key] = f
	}
	return out
}

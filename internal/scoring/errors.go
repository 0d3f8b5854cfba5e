package scoring

import "fmt"

// Scoring failures are all-or-nothing: a report with silently missing or
// defaulted percentiles is clinically misleading, so every error here aborts
// the whole run.

// ErrMissingRow reports a group key with no row in the reference table.
type ErrMissingRow struct{ Key string }

func (e *ErrMissingRow) Error() string {
	return fmt.Sprintf("scoring: no reference table row for group %q", e.Key)
}

// ErrEmptyGroup reports a scoring group with zero contributing items,
// i.e. a malformed questionnaire or an incomplete answer set.
type ErrEmptyGroup struct{ Key string }

func (e *ErrEmptyGroup) Error() string {
	return fmt.Sprintf("scoring: group %q has no contributing items", e.Key)
}

// ErrBadScore reports a non-finite or out-of-range raw score.
type ErrBadScore struct {
	Key   string
	Value float64
}

func (e *ErrBadScore) Error() string {
	return fmt.Sprintf("scoring: group %q has invalid raw score %v", e.Key, e.Value)
}

// ErrMissingDemographic reports an absent age, sex or nationality item.
type ErrMissingDemographic struct{ Which string }

func (e *ErrMissingDemographic) Error() string {
	return fmt.Sprintf("scoring: demographic item %q not found in answer set", e.Which)
}

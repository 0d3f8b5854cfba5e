package scoring

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// RegressionRow holds the population regression parameters for one scoring
// group: predicted peer mean = Intercept + AgeCoef*lnAge0 + NatCoef*nat +
// SexCoef*sex + SexNatCoef*sex*nat, with residual SD for the z-score.
type RegressionRow struct {
	Key        string  `json:"dom"` // group key: "Overall", a domain code, or "subN"
	SD         float64 `json:"sd"`
	Intercept  float64 `json:"int"`
	AgeCoef    float64 `json:"s_age"`
	NatCoef    float64 `json:"s_nat"`
	SexCoef    float64 `json:"s_sex"`
	SexNatCoef float64 `json:"s_sexnat"`
}

// Table maps group keys to their regression rows. It is loaded once at
// startup and never mutated afterwards, so concurrent scoring runs may share
// one Table without coordination.
type Table map[string]RegressionRow

//go:embed refdata/reference_table.json
var defaultTableJSON []byte

// tableKeys are the groups the reference table must cover: Overall, the five
// domains, and subdomains 1..18. Subdomain 19 uses a hand-fixed gamma model
// instead of a table row.
var tableKeys = func() []string {
	keys := []string{KeyOverall}
	keys = append(keys, DomainCodes...)
	for i := 1; i <= 18; i++ {
		keys = append(keys, fmt.Sprintf("sub%d", i))
	}
	return keys
}()

// ParseTable decodes a reference table and verifies it has exactly one row
// per expected group key. A missing or duplicated row is a configuration
// error: scoring with defaulted coefficients would produce plausible-looking
// but wrong percentiles.
func ParseTable(data []byte) (Table, error) {
	var rows []RegressionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("reference table: %w", err)
	}
	t := make(Table, len(rows))
	for _, r := range rows {
		if _, dup := t[r.Key]; dup {
			return nil, fmt.Errorf("reference table: duplicate row for group %q", r.Key)
		}
		if r.SD <= 0 {
			return nil, fmt.Errorf("reference table: group %q has non-positive sd %v", r.Key, r.SD)
		}
		t[r.Key] = r
	}
	for _, k := range tableKeys {
		if _, ok := t[k]; !ok {
			return nil, &ErrMissingRow{Key: k}
		}
	}
	if len(t) != len(tableKeys) {
		return nil, fmt.Errorf("reference table: %d rows, want %d", len(t), len(tableKeys))
	}
	return t, nil
}

// LoadTable reads a reference table from path, or the embedded default
// when path is empty.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return ParseTable(defaultTableJSON)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reference table: %w", err)
	}
	return ParseTable(data)
}

// Lookup returns the regression row for key.
func (t Table) Lookup(key string) (RegressionRow, error) {
	r, ok := t[key]
	if !ok {
		return RegressionRow{}, &ErrMissingRow{Key: key}
	}
	return r, nil
}

package quiz

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dravet-care/ddand/internal/scoring"
)

// Answer is one respondent's answer as sent by the quiz UI:
// { "question": ..., "score": ..., "dom": ..., "subdom": ..., <label>: <n>, ... }
// Labelled numeric fields of open-numeric items ride along as extra keys and
// are collected into Fields on decode.
type Answer struct {
	Question string             `json:"question"`
	Response string             `json:"response,omitempty"`
	Score    float64            `json:"score"`
	Dom      string             `json:"dom,omitempty"`
	Subdom   int                `json:"subdom"`
	Fields   map[string]float64 `json:"-"`
}

// fixed keys that are not freeform field labels
var reservedAnswerKeys = map[string]bool{
	"question": true, "response": true, "score": true,
	"dom": true, "subdom": true, "prop": true,
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	type plain Answer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Answer(p)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if reservedAnswerKeys[k] {
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err != nil {
			continue // non-numeric extras are not field values
		}
		if a.Fields == nil {
			a.Fields = map[string]float64{}
		}
		a.Fields[k] = n
	}
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"question": a.Question,
		"score":    a.Score,
		"subdom":   a.Subdom,
	}
	if a.Response != "" {
		m["response"] = a.Response
	}
	if a.Dom != "" {
		m["dom"] = a.Dom
	}
	for k, v := range a.Fields {
		m[k] = v
	}
	return json.Marshal(m)
}

// AnswerSet maps item identifiers to answers, the unit the scoring engine
// consumes.
type AnswerSet map[string]Answer

// Validate rejects answers the engine must never see: non-finite scores,
// subdomains outside 0..19, rating scores outside [0,1], unknown domain
// codes. Range checks against the questionnaire definition belong to the UI
// boundary; these are the engine-protecting invariants only.
func (s AnswerSet) Validate() error {
	valid := map[string]bool{}
	for _, d := range scoring.DomainCodes {
		valid[d] = true
	}
	for id, a := range s {
		if math.IsNaN(a.Score) || math.IsInf(a.Score, 0) {
			return fmt.Errorf("answer %q: non-finite score", id)
		}
		if a.Subdom < 0 || a.Subdom > 19 {
			return fmt.Errorf("answer %q: subdomain %d out of range", id, a.Subdom)
		}
		if a.Subdom >= 1 && a.Subdom <= 17 && (a.Score < 0 || a.Score > 1) {
			return fmt.Errorf("answer %q: rating score %v outside [0,1]", id, a.Score)
		}
		if a.Dom != "" && !valid[a.Dom] {
			return fmt.Errorf("answer %q: unknown domain code %q", id, a.Dom)
		}
		for label, v := range a.Fields {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("answer %q: field %q non-finite", id, label)
			}
		}
	}
	return nil
}

// ValidateAgainst checks one answer against its question definition,
// exhaustively by question type.
func (a Answer) ValidateAgainst(q Question) error {
	switch q.Type {
	case SingleChoice:
		for _, opt := range q.Options {
			if opt.Score == a.Score {
				return nil
			}
		}
		return fmt.Errorf("answer to %q: score %v matches no option", q.ID, a.Score)
	case ClosedNumeric:
		if q.Range != nil && (a.Score < q.Range.Min || a.Score > q.Range.Max) {
			return fmt.Errorf("answer to %q: %v outside [%v,%v]", q.ID, a.Score, q.Range.Min, q.Range.Max)
		}
		return nil
	case OpenNumeric:
		for _, f := range q.Fields {
			v, ok := a.Fields[f.Label]
			if !ok {
				return fmt.Errorf("answer to %q: missing field %q", q.ID, f.Label)
			}
			if v < f.Min || v > f.Max {
				return fmt.Errorf("answer to %q: field %q value %v outside [%v,%v]", q.ID, f.Label, v, f.Min, f.Max)
			}
		}
		return nil
	default:
		return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
	}
}

// ToScoringSet converts the answer set into the engine's input view.
func (s AnswerSet) ToScoringSet() scoring.AnswerSet {
	out := make(scoring.AnswerSet, len(s))
	for id, a := range s {
		out[id] = scoring.Item{
			Question: a.Question,
			Score:    a.Score,
			Dom:      a.Dom,
			Subdom:   a.Subdom,
			Fields:   a.Fields,
		}
	}
	return out
}

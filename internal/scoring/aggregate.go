package scoring

import "fmt"

// grouped holds the per-group raw score lists produced by aggregation.
// Subdomain 19 contributes a single count rather than a list.
type grouped struct {
	overall []float64            // subdomains 1..17 pooled
	domains map[string][]float64 // by domain code
	subs    map[int][]float64    // subdomains 1..18
	sub19   float64
}

// aggregate partitions the answer set by group key. Every table-driven
// group plus sub19 must end up non-empty; a hole means the
// questionnaire definition and the answer set disagree, and downstream
// reduction would otherwise turn it into a silent NaN.
func aggregate(answers AnswerSet) (*grouped, error) {
	g := &grouped{
		domains: make(map[string][]float64, len(DomainCodes)),
		subs:    make(map[int][]float64, 18),
	}
	haveSub19 := false
	for _, it := range answers {
		if it.Subdom == 0 {
			continue // demographic item, never scored
		}
		if it.Subdom < minSubdom || it.Subdom > 19 {
			return nil, fmt.Errorf("scoring: item %q has subdomain %d out of range", it.Question, it.Subdom)
		}
		if !isFinite(it.Score) {
			return nil, &ErrBadScore{Key: fmt.Sprintf("sub%d", it.Subdom), Value: it.Score}
		}
		if it.Subdom == 19 {
			g.sub19 = it.Score
			haveSub19 = true
			continue
		}
		g.subs[it.Subdom] = append(g.subs[it.Subdom], it.Score)
		if it.Subdom <= maxRatingSubdom {
			g.overall = append(g.overall, it.Score)
			if it.Dom != "" {
				g.domains[it.Dom] = append(g.domains[it.Dom], it.Score)
			}
		}
	}

	if len(g.overall) == 0 {
		return nil, &ErrEmptyGroup{Key: KeyOverall}
	}
	for _, code := range DomainCodes {
		if len(g.domains[code]) == 0 {
			return nil, &ErrEmptyGroup{Key: code}
		}
	}
	for i := minSubdom; i <= 18; i++ {
		if len(g.subs[i]) == 0 {
			return nil, &ErrEmptyGroup{Key: fmt.Sprintf("sub%d", i)}
		}
	}
	if !haveSub19 {
		return nil, &ErrEmptyGroup{Key: KeySub19}
	}
	return g, nil
}

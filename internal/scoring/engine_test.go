package scoring

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

/* ---------------- builders ---------------- */

// domForSub maps rating subdomains onto the five domains so every domain
// group is populated.
func domForSub(sub int) string {
	switch {
	case sub <= 4:
		return "Mot"
	case sub <= 8:
		return "Aut"
	case sub <= 11:
		return "Lan"
	case sub <= 14:
		return "Mem"
	default:
		return "Emo"
	}
}

type answerOpts struct {
	ratingScore float64 // score for every subdomain 1..17 item
	sub18Scores []float64
	sub19Count  float64
	ageYears    float64
	ageMonths   float64
	sex         float64
	nat         float64
}

func defaultOpts() answerOpts {
	return answerOpts{
		ratingScore: 0.5,
		sub18Scores: []float64{5, 7},
		sub19Count:  3,
		ageYears:    3,
		ageMonths:   6,
		sex:         0,
		nat:         0,
	}
}

func buildAnswers(o answerOpts) AnswerSet {
	a := AnswerSet{
		"age": {
			Question: AgeQuestion,
			Fields:   map[string]float64{"Anni": o.ageYears, "Mesi": o.ageMonths},
		},
		"sex": {Question: SexQuestion, Score: o.sex},
		"nat": {Question: NatQuestion, Score: o.nat},
	}
	for i := 1; i <= 17; i++ {
		a[fmt.Sprintf("q%d", i)] = Item{
			Question: fmt.Sprintf("item %d", i),
			Score:    o.ratingScore,
			Dom:      domForSub(i),
			Subdom:   i,
		}
	}
	for j, s := range o.sub18Scores {
		a[fmt.Sprintf("q18_%d", j)] = Item{
			Question: fmt.Sprintf("sleep item %d", j),
			Score:    s,
			Subdom:   18,
		}
	}
	a["q19"] = Item{Question: "risvegli settimanali", Score: o.sub19Count, Subdom: 19}
	return a
}

// flatTable returns a table where every group predicts 0 with sd 1, so
// z equals the summary statistic directly.
func flatTable() Table {
	t := make(Table, len(tableKeys))
	for _, k := range tableKeys {
		t[k] = RegressionRow{Key: k, SD: 1}
	}
	return t
}

/* ---------------- reducer ---------------- */

func TestLogit(t *testing.T) {
	cases := []struct {
		m, want float64
	}{
		{0.5, 0},
		{0.25, math.Log(0.25 / 0.75)},
		{0.9, math.Log(0.9 / 0.1)},
		{0, -4.8},
		{1, 4.8},
	}
	for _, c := range cases {
		if got := logit(c.m); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("logit(%v) = %v, want %v", c.m, got, c.want)
		}
	}
}

func TestLogitMeanEmptyGroupErrors(t *testing.T) {
	if _, err := logitMean(nil); err == nil {
		t.Fatal("expected error for empty group, got nil")
	}
}

/* ---------------- boundary clamping ---------------- */

func TestClampBounds(t *testing.T) {
	table := flatTable()

	o := defaultOpts()
	o.ratingScore = 0
	o.sub18Scores = []float64{0, 0}
	res, err := Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, key := range []string{KeyOverall, "Mot", "sub1", KeySub18} {
		r := res[key]
		if r.Z != -4.8 {
			t.Errorf("%s: z = %v, want -4.8", key, r.Z)
		}
		if r.Bound != BoundBelow {
			t.Errorf("%s: bound = %v, want BoundBelow", key, r.Bound)
		}
	}

	o = defaultOpts()
	o.ratingScore = 1
	o.sub18Scores = []float64{12, 12} // sum 24 ⇒ ratio 1
	res, err = Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, key := range []string{KeyOverall, "Emo", "sub17", KeySub18} {
		r := res[key]
		if r.Z != 4.8 {
			t.Errorf("%s: z = %v, want 4.8", key, r.Z)
		}
		if r.Bound != BoundAbove {
			t.Errorf("%s: bound = %v, want BoundAbove", key, r.Bound)
		}
	}
}

/* ---------------- percentile monotonicity ---------------- */

func TestPercentileMonotonic(t *testing.T) {
	table := flatTable()
	prev := -1.0
	for _, score := range []float64{0.2, 0.4, 0.5, 0.6, 0.8} {
		o := defaultOpts()
		o.ratingScore = score
		res, err := Score(buildAnswers(o), table)
		if err != nil {
			t.Fatalf("Score(%v): %v", score, err)
		}
		p := res[KeyOverall].Percentile
		if p <= prev {
			t.Fatalf("percentile not strictly increasing: %v after %v", p, prev)
		}
		prev = p
	}
}

/* ---------------- determinism ---------------- */

func TestDeterminism(t *testing.T) {
	table := flatTable()
	answers := buildAnswers(defaultOpts())
	a, err := Score(answers, table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	b, err := Score(answers, table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different outputs")
	}
}

/* ---------------- gamma group independence ---------------- */

func TestGammaGroupIndependence(t *testing.T) {
	table := flatTable()

	o := defaultOpts()
	base, err := Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	o.ratingScore = 0.8 // perturb every non-sub19 rating item
	bumped, err := Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if base[KeySub19] != bumped[KeySub19] {
		t.Error("sub19 changed when rating items changed")
	}

	o = defaultOpts()
	o.sub19Count = 10
	bumped, err = Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if base[KeyOverall] != bumped[KeyOverall] {
		t.Error("Overall changed when sub19 count changed")
	}
	if base[KeySub19].Percentile >= bumped[KeySub19].Percentile {
		t.Error("gamma CDF not increasing in the observed count")
	}
}

/* ---------------- demographic covariate sensitivity ---------------- */

func TestCovariateSensitivity(t *testing.T) {
	table := flatTable()
	row := table[KeyOverall]
	row.NatCoef = 0.5
	table[KeyOverall] = row

	o := defaultOpts()
	base, err := Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	o.nat = 1
	moved, err := Score(buildAnswers(o), table)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if base[KeyOverall].Z == moved[KeyOverall].Z {
		t.Error("nonzero s_nat: z unchanged when nationality flipped")
	}
	// sub1 has a zero nationality coefficient: z must not move.
	if base["sub1"].Z != moved["sub1"].Z {
		t.Error("zero s_nat: z changed when nationality flipped")
	}
}

/* ---------------- concrete reference scenario ---------------- */

func TestScenarioFortyTwoMonths(t *testing.T) {
	o := defaultOpts()
	o.ageYears = 3
	o.ageMonths = 6 // 42 months
	o.ratingScore = 0.5
	o.sub18Scores = []float64{5, 7} // sum 12 ⇒ ratio 0.5 ⇒ logit 0
	o.sub19Count = 3

	res, err := Score(buildAnswers(o), flatTable())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if z := res[KeyOverall].Z; math.Abs(z) > 1e-12 {
		t.Errorf("Overall z = %v, want 0", z)
	}
	if p := res[KeyOverall].Percentile; math.Abs(p-50) > 1e-9 {
		t.Errorf("Overall percentile = %v, want 50", p)
	}

	s19 := res[KeySub19]
	if s19.ZValid {
		t.Error("sub19 z should not be defined")
	}
	lnAge0 := math.Log(42) - 4.944218314
	peerMean := math.Exp(0.114 + 0.416*lnAge0)
	want := distuv.Gamma{Alpha: 0.521648409, Beta: 0.521648409 / peerMean}.CDF(3) * 100
	if math.Abs(s19.Percentile-want) > 1e-9 {
		t.Errorf("sub19 percentile = %v, want %v", s19.Percentile, want)
	}
	if s19.Percentile <= 0 || s19.Percentile >= 100 {
		t.Errorf("sub19 percentile %v outside (0,100)", s19.Percentile)
	}
}

/* ---------------- input validation ---------------- */

func TestEmptyGroupFails(t *testing.T) {
	answers := buildAnswers(defaultOpts())
	delete(answers, "q5") // sub5's only item

	_, err := Score(answers, flatTable())
	var eg *ErrEmptyGroup
	if !errors.As(err, &eg) {
		t.Fatalf("got %v, want ErrEmptyGroup", err)
	}
	if eg.Key != "sub5" {
		t.Errorf("empty group key = %q, want sub5", eg.Key)
	}
}

func TestMissingRowFails(t *testing.T) {
	table := flatTable()
	delete(table, "Mot")

	_, err := Score(buildAnswers(defaultOpts()), table)
	var mr *ErrMissingRow
	if !errors.As(err, &mr) {
		t.Fatalf("got %v, want ErrMissingRow", err)
	}
}

func TestNonFiniteScoreFails(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		answers := buildAnswers(defaultOpts())
		it := answers["q3"]
		it.Score = bad
		answers["q3"] = it

		_, err := Score(answers, flatTable())
		var bs *ErrBadScore
		if !errors.As(err, &bs) {
			t.Fatalf("score %v: got %v, want ErrBadScore", bad, err)
		}
	}
}

/* ---------------- covariate extraction ---------------- */

func TestExtractCovariates(t *testing.T) {
	answers := buildAnswers(defaultOpts())
	cov, err := ExtractCovariates(answers)
	if err != nil {
		t.Fatalf("ExtractCovariates: %v", err)
	}
	if cov.AgeMonths != 42 {
		t.Errorf("age = %v months, want 42", cov.AgeMonths)
	}

	delete(answers, "sex")
	if _, err := ExtractCovariates(answers); err == nil {
		t.Error("missing GENERE item: expected error")
	}

	answers = buildAnswers(defaultOpts())
	age := answers["age"]
	age.Fields = map[string]float64{"Anni": 0, "Mesi": 0}
	answers["age"] = age
	if _, err := ExtractCovariates(answers); err == nil {
		t.Error("zero age: expected error")
	}
}

/* ---------------- formatting adapter ---------------- */

func TestFormatResults(t *testing.T) {
	in := map[string]Result{
		"Overall": {Key: "Overall", Z: 0.12345, ZValid: true, Percentile: 54.9},
		"sub3":    {Key: "sub3", Z: -4.8, ZValid: true, Percentile: 0.4, Bound: BoundBelow},
		"sub9":    {Key: "sub9", Z: 4.8, ZValid: true, Percentile: 99.6, Bound: BoundAbove},
		"sub19":   {Key: "sub19", ZValid: false, Percentile: 87.2},
	}
	got := FormatResults(in)
	want := map[string]FormattedScore{
		"Overall": {Z: "0.12", P: "55"},
		"sub3":    {Z: "-4.80", P: "< 0"},
		"sub9":    {Z: "4.80", P: "> 100"},
		"sub19":   {Z: "-", P: "87"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatResults = %#v, want %#v", got, want)
	}
}

/* ---------------- full output surface ---------------- */

func TestScoreCoversEveryGroup(t *testing.T) {
	res, err := Score(buildAnswers(defaultOpts()), flatTable())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	wantKeys := append([]string{}, tableKeys...)
	wantKeys = append(wantKeys, KeySub19)
	if len(res) != len(wantKeys) {
		t.Fatalf("result has %d groups, want %d", len(res), len(wantKeys))
	}
	for _, k := range wantKeys {
		if _, ok := res[k]; !ok {
			t.Errorf("missing group %q", k)
		}
	}
}

package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dravet-care/ddand/internal/quiz"
	"github.com/dravet-care/ddand/internal/scoring"
)

func fullAnswers() quiz.AnswerSet {
	a := quiz.AnswerSet{
		"age": {Question: scoring.AgeQuestion, Subdom: 0,
			Fields: map[string]float64{"Anni": 3, "Mesi": 6}},
		"sex": {Question: scoring.SexQuestion, Score: 0, Subdom: 0},
		"nat": {Question: scoring.NatQuestion, Score: 0, Subdom: 0},
	}
	doms := []string{"Mot", "Mot", "Mot", "Mot", "Aut", "Aut", "Aut", "Aut",
		"Lan", "Lan", "Lan", "Mem", "Mem", "Mem", "Emo", "Emo", "Emo"}
	for i := 1; i <= 17; i++ {
		a[fmt.Sprintf("q%d", i)] = quiz.Answer{
			Question: fmt.Sprintf("item %d", i), Score: 0.5, Dom: doms[i-1], Subdom: i,
		}
	}
	a["q18"] = quiz.Answer{Question: "ore di sonno", Score: 12, Subdom: 18}
	a["q19"] = quiz.Answer{Question: "risvegli", Score: 3, Subdom: 19}
	return a
}

func flatTable() scoring.Table {
	keys := []string{"Overall", "Mot", "Aut", "Lan", "Mem", "Emo"}
	for i := 1; i <= 18; i++ {
		keys = append(keys, fmt.Sprintf("sub%d", i))
	}
	t := scoring.Table{}
	for _, k := range keys {
		t[k] = scoring.RegressionRow{Key: k, SD: 1}
	}
	return t
}

func TestRowsFormatting(t *testing.T) {
	rows := Rows(fullAnswers())

	var ageRow, ratingRow, countRow *Row
	for i := range rows {
		switch rows[i].Question {
		case "ETÀ":
			ageRow = &rows[i]
		case "item 1":
			ratingRow = &rows[i]
		case "risvegli":
			countRow = &rows[i]
		}
	}
	if ageRow == nil {
		t.Fatal("no ETÀ row")
	}
	if ageRow.Response != "3 anni e 6 mesi" || ageRow.Score != "42" {
		t.Errorf("age row = %+v", *ageRow)
	}
	if ratingRow == nil || ratingRow.Score != "50" {
		t.Errorf("rating row not percentualized: %+v", ratingRow)
	}
	if countRow == nil || countRow.Score != "3" {
		t.Errorf("count row altered: %+v", countRow)
	}
}

func TestBuildReport(t *testing.T) {
	a := quiz.Attempt{
		ID:          "att-1",
		Status:      quiz.StatusSubmitted,
		SubmittedAt: 1700000000,
		Answers:     fullAnswers(),
	}
	p, err := Build(a, flatTable())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.AttemptID != "att-1" || len(p.Rows) != len(a.Answers) {
		t.Errorf("payload header: %+v", p)
	}
	if got := p.Scores["Overall"]; got.Z != "0.00" || got.P != "50" {
		t.Errorf("Overall = %+v, want z 0.00 p 50", got)
	}
	if got := p.Scores["sub19"]; got.Z != "-" || got.P == "" {
		t.Errorf("sub19 = %+v, want z dash and defined p", got)
	}
}

func TestBuildRequiresSubmission(t *testing.T) {
	a := quiz.Attempt{ID: "att-2", Status: quiz.StatusInProgress, Answers: fullAnswers()}
	if _, err := Build(a, flatTable()); err == nil {
		t.Fatal("expected error for unsubmitted attempt")
	}
}

func TestBuildFailsLoudlyOnScoringError(t *testing.T) {
	a := quiz.Attempt{ID: "att-3", Status: quiz.StatusSubmitted, Answers: fullAnswers()}
	delete(a.Answers, "q12") // empties sub12

	_, err := Build(a, flatTable())
	if err == nil {
		t.Fatal("expected scoring error to propagate")
	}
	if !strings.Contains(err.Error(), "sub12") {
		t.Errorf("error %v does not name the empty group", err)
	}
}

package quiz

// QuestionType discriminates the three item shapes of the questionnaire.
type QuestionType string

const (
	// SingleChoice: one option picked from a scored list; the option's
	// score (normalized to [0,1] for rating items) becomes the raw score.
	SingleChoice QuestionType = "single-choice"
	// ClosedNumeric: one number inside a fixed range (counts, hours).
	ClosedNumeric QuestionType = "closed-numeric"
	// OpenNumeric: several labelled numeric fields forming one composite
	// item, e.g. age as years + months.
	OpenNumeric QuestionType = "open-numeric"
)

type ChoiceOption struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type FieldSpec struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Question is one questionnaire item. Exactly one of Options, Range or
// Fields is populated, according to Type.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Section string       `json:"section"`
	// Dom is one of the five domain codes, empty for items outside the
	// rating subdomains. Subdom 0 marks demographic items.
	Dom    string `json:"dom,omitempty"`
	Subdom int    `json:"subdom"`

	Options []ChoiceOption `json:"options,omitempty"`
	Range   *NumericRange  `json:"range,omitempty"`
	Fields  []FieldSpec    `json:"fields,omitempty"`
}

type Section struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// Questionnaire is the full interview definition served to the quiz UI.
type Questionnaire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Sections  []Section  `json:"sections"`
	Questions []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// QuestionByID returns the question with the given id, if present.
func (q *Questionnaire) QuestionByID(id string) (Question, bool) {
	for _, item := range q.Questions {
		if item.ID == id {
			return item, true
		}
	}
	return Question{}, false
}

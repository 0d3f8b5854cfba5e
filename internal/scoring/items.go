package scoring

// Item is the minimal view of one answered questionnaire item the engine
// needs. The quiz package converts its richer answer records into this shape;
// keeping the view local avoids a dependency on quiz internals.
type Item struct {
	Question string
	// Score is normalized to [0,1] for rating items. Subdomains 18 and 19
	// carry raw counts instead.
	Score  float64
	Dom    string // one of DomainCodes, or "" for non-scored items
	Subdom int    // 0 for demographic items, else 1..19
	// Fields holds labelled numeric sub-answers of composite items,
	// e.g. {"Anni": 3, "Mesi": 4} on the age question.
	Fields map[string]float64
}

// AnswerSet maps item identifiers to answered items. Iteration order is
// irrelevant to the engine.
type AnswerSet map[string]Item

// Group keys of the engine's output map.
const (
	KeyOverall = "Overall"
	KeySub18   = "sub18"
	KeySub19   = "sub19"
)

// DomainCodes are the five coarse clinical groupings: motor, autonomy,
// language, memory, emotional.
var DomainCodes = []string{"Mot", "Aut", "Lan", "Mem", "Emo"}

const (
	// minSubdom..maxRatingSubdom bound the rating-scale subdomains that feed
	// the logit-mean reducer and the Overall group.
	minSubdom       = 1
	maxRatingSubdom = 17
	// sub18Denominator normalizes the sleep subdomain's raw sum; it is a
	// fixed property of the questionnaire, not the group's item count.
	sub18Denominator = 24
)

package schema

// Closed value sets for extracted fields. The same tables drive prompt
// construction, JSON Schema enum constraints, and record validation, so an
// unknown value is rejected at every layer instead of passing through.

// Difficulty is the question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Importance is the question importance level.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// Language is the language a question is written in.
type Language string

// Category is the subject category of a question.
type Category string

var difficulties = []Difficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
}

var importanceLevels = []Importance{
	ImportanceLow,
	ImportanceMedium,
	ImportanceHigh,
	ImportanceCritical,
}

var languages = []Language{
	"English",
	"Hindi",
	"Malayalam",
	"Tamil",
	"Telugu",
	"Bengali",
	"Marathi",
	"Gujarati",
	"Kannada",
	"Odia",
	"Punjabi",
	"Urdu",
	"Assamese",
}

var categories = []Category{
	"History",
	"Current Affairs",
	"Geography",
	"Science",
	"Polity",
	"Economics",
	"General Knowledge",
	"Mathematics",
	"Reasoning",
	"English",
	"Indian Culture",
	"Environment",
	"Technology",
	"Sports",
	"Arts & Literature",
	"Kerala State Affairs",
	"Indian Constitution",
	"International Relations",
}

// Valid reports whether d is a known difficulty level.
func (d Difficulty) Valid() bool {
	for _, v := range difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// Valid reports whether i is a known importance level.
func (i Importance) Valid() bool {
	for _, v := range importanceLevels {
		if i == v {
			return true
		}
	}
	return false
}

// Valid reports whether l is an admissible language.
func (l Language) Valid() bool {
	for _, v := range languages {
		if l == v {
			return true
		}
	}
	return false
}

// Valid reports whether c is an admissible category.
func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

// DifficultyValues returns the admissible difficulty strings in declaration order.
func DifficultyValues() []string { return enumStrings(difficulties) }

// ImportanceValues returns the admissible importance strings in declaration order.
func ImportanceValues() []string { return enumStrings(importanceLevels) }

// LanguageValues returns the admissible language strings in declaration order.
func LanguageValues() []string { return enumStrings(languages) }

// CategoryValues returns the admissible category strings in declaration order.
func CategoryValues() []string { return enumStrings(categories) }

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

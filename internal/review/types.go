// Package review defines the record types flowing through the pipeline and
// the pure normalization transforms applied between extraction and storage.
package review

// Sentinel values substituted for fields the source page does not carry.
// They are stored literally, never as NULL, so downstream consumers can
// rely on the columns always being present.
const (
	NoTitle    = "No title"
	NoName     = "No name"
	NoPosition = "No position"
	NoCompany  = "No company"
	NoDate     = "No date"
	NoTime     = "No time"
	NoAnswer   = "No answer"
)

// Rating category labels as they appear on the review page. Only these
// map into dedicated columns; anything else the page emits is dropped.
const (
	GradeCostBenefit   = "Custo beneficio"
	GradeEaseOfUse     = "Facilidade de uso"
	GradeFunctionality = "Funcionalidades"
	GradeSupport       = "Suporte ao cliente"
)

// Question headings whose answers map into dedicated columns.
const (
	QuestionLikes        = "O que você mais gosta?"
	QuestionImprovements = "O que você não gosta, ou acha que poderia melhorar ainda mais neste produto?"
	QuestionProblems     = "Quais são os problemas que você resolveu com astrea? e quais benefícios você obteve?"
)

// RawReview is one review block as extracted from a page, before any
// normalization. Grades and Answers carry whatever labels the page
// contains; the mapping to fixed columns happens in Normalize.
type RawReview struct {
	Title            string
	ReviewerName     string
	ReviewerPosition string
	ReviewerCompany  string
	PublishedRaw     string
	Grades           map[string]string
	Answers          map[string]string
}

// NormalizedReview is one review as persisted in the items table. The ID
// is assigned by the store on insert and is zero until then.
type NormalizedReview struct {
	ID               int64
	Title            string
	ReviewerName     string
	ReviewerPosition string
	ReviewerCompany  string
	PublishedDate    string
	PublishedTime    string
	CostBenefit      int
	EaseOfUse        int
	Functionality    int
	Support          int
	Likes            string
	Improvements     string
	Problems         string
}

// Normalize maps a raw record into its stored shape: star conversion for
// the four known grade labels, date/time splitting, company cleanup, and
// sentinel substitution for the three known answer questions. Unknown
// grade or answer keys are dropped.
func Normalize(raw RawReview) NormalizedReview {
	date, tm := SplitPublished(raw.PublishedRaw)
	return NormalizedReview{
		Title:            orSentinel(raw.Title, NoTitle),
		ReviewerName:     orSentinel(raw.ReviewerName, NoName),
		ReviewerPosition: orSentinel(raw.ReviewerPosition, NoPosition),
		ReviewerCompany:  CleanCompany(orSentinel(raw.ReviewerCompany, NoCompany)),
		PublishedDate:    date,
		PublishedTime:    tm,
		CostBenefit:      StarsFromWidth(raw.Grades[GradeCostBenefit]),
		EaseOfUse:        StarsFromWidth(raw.Grades[GradeEaseOfUse]),
		Functionality:    StarsFromWidth(raw.Grades[GradeFunctionality]),
		Support:          StarsFromWidth(raw.Grades[GradeSupport]),
		Likes:            answerOrSentinel(raw.Answers, QuestionLikes),
		Improvements:     answerOrSentinel(raw.Answers, QuestionImprovements),
		Problems:         answerOrSentinel(raw.Answers, QuestionProblems),
	}
}

func orSentinel(s, sentinel string) string {
	if s == "" {
		return sentinel
	}
	return s
}

func answerOrSentinel(answers map[string]string, question string) string {
	if a, ok := answers[question]; ok && a != "" {
		return a
	}
	return NoAnswer
}

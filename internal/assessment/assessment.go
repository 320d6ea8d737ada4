package assessment

// Risk categories derived from the difficulty score.
const (
	CategoryEasy      = "Easy"
	CategoryModerate  = "Moderate"
	CategoryDifficult = "Difficult"
)

// Result is the assessment returned for one request. It is built fresh
// per request and never persisted.
type Result struct {
	Score          int      `json:"score"`
	RiskCategory   string   `json:"risk_category"`
	Concerns       []string `json:"concerns"`
	ImagesAnalyzed int      `json:"images_analyzed"`
}

// ScoreFromProbability maps a difficulty probability in [0,1] to an
// integer score in [0,100], truncating toward zero.
func ScoreFromProbability(p float64) int {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return int(p * 100)
}

// Categorize maps a score to its risk category. Cut points are fixed at
// 33 and 66.
func Categorize(score int) string {
	switch {
	case score <= 33:
		return CategoryEasy
	case score <= 66:
		return CategoryModerate
	default:
		return CategoryDifficult
	}
}

// FromProbability builds the full assessment for a model output.
func FromProbability(p float64, imagesAnalyzed int) Result {
	score := ScoreFromProbability(p)
	category := Categorize(score)
	return Result{
		Score:          score,
		RiskCategory:   category,
		Concerns:       ConcernsFor(category),
		ImagesAnalyzed: imagesAnalyzed,
	}
}

// Placeholder is served when the model checkpoint cannot be loaded, so
// the endpoint degrades instead of failing. Health reports the real
// model state.
func Placeholder(imagesAnalyzed int) Result {
	return Result{
		Score:          50,
		RiskCategory:   CategoryModerate,
		Concerns:       append([]string(nil), placeholderConcerns...),
		ImagesAnalyzed: imagesAnalyzed,
	}
}

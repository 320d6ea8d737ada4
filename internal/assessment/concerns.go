package assessment

// Hand-authored clinical concern lists per risk category. The lists are
// fixed: every assessment for a category carries entries from its list
// and nothing else.
var difficultyConcerns = map[string][]string{
	CategoryEasy: {
		"Normal airway anatomy observed",
		"Good neck mobility",
		"Adequate mouth opening",
	},
	CategoryModerate: {
		"Some anatomical variations noted",
		"Consider backup airway equipment",
		"Mallampati score may be elevated",
		"Monitor for potential difficulties",
	},
	CategoryDifficult: {
		"Limited neck extension observed",
		"Mallampati score appears elevated",
		"Reduced thyromental distance",
		"Limited mouth opening",
		"Consider video laryngoscope",
		"Have difficult airway cart ready",
		"Consider awake intubation approach",
	},
}

var placeholderConcerns = []string{
	"Model not available - showing placeholder results",
	"Please ensure the model checkpoint is present",
	"Install ONNX Runtime and set MODEL_ONNX_LIB to its shared library path",
}

// ConcernsFor returns a copy of the static concern list for a category.
func ConcernsFor(category string) []string {
	return append([]string(nil), difficultyConcerns[category]...)
}

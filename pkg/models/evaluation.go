package models

// EvaluationRequest carries one translation attempt to the scoring service
type EvaluationRequest struct {
	Original  string
	Answer    string
	Reference string
	Locale    string
	Direction Direction
}

// Mistake is a single issue found in the user's translation
type Mistake struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Evaluation is the structured verdict on a translation
type Evaluation struct {
	Score                int       `json:"score"`
	Explanation          string    `json:"explanation"`
	CorrectedTranslation string    `json:"corrected_translation"`
	Mistakes             []Mistake `json:"mistakes"`
	// Fallback is set when the scoring service could not be used
	Fallback bool `json:"-"`
}

package model

// Score bounds accepted from the assistant.
const (
	MinPasswordScore = 1
	MaxPasswordScore = 100
)

// PasswordAnalysis is an externally computed strength score with suggestions.
type PasswordAnalysis struct {
	Score       int
	Suggestions []string
}

// ScoreInRange reports whether the score lies within the accepted bounds.
func (a PasswordAnalysis) ScoreInRange() bool {
	return a.Score >= MinPasswordScore && a.Score <= MaxPasswordScore
}

package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Status messages produced by AssistService.
const (
	MsgSmartSearchEmpty    = "Please enter a search term for smart search."
	MsgSmartSearchNone     = "AI smart search did not find any related site names."
	MsgSmartSearchFailed   = "An error occurred during AI smart search."
	MsgAnalyzeEmpty        = "Please enter a password to analyze."
	MsgAnalyzeInconclusive = "Could not analyze password strength."
	MsgAnalyzeFailed       = "An error occurred during password analysis."
)

var searchTermsSchema = driven.ResponseSchema{
	Type: "OBJECT",
	Properties: map[string]driven.ResponseSchema{
		"search_terms": {
			Type:  "ARRAY",
			Items: &driven.ResponseSchema{Type: "STRING"},
		},
	},
}

var passwordAnalysisSchema = driven.ResponseSchema{
	Type: "OBJECT",
	Properties: map[string]driven.ResponseSchema{
		"score": {Type: "NUMBER"},
		"suggestions": {
			Type:  "ARRAY",
			Items: &driven.ResponseSchema{Type: "STRING"},
		},
	},
	Required: []string{"score", "suggestions"},
}

// QueryExpansion is the outcome of a smart search. Term equals the input term
// unless Expanded is true.
type QueryExpansion struct {
	Term     string
	Message  string
	Expanded bool
}

// PasswordReport is the outcome of a strength check. Analysis is nil when no
// usable score came back.
type PasswordReport struct {
	Analysis *model.PasswordAnalysis
	Message  string
}

// AssistService turns Assistant calls into search-term rewrites and password
// reports. Assistant failures are logged and reported through the message;
// neither method returns an error.
type AssistService struct {
	assistant driven.Assistant
	logger    *slog.Logger
}

// NewAssistService creates an AssistService. A nil logger falls back to slog.Default().
func NewAssistService(assistant driven.Assistant, logger *slog.Logger) *AssistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistService{assistant: assistant, logger: logger}
}

// ExpandQuery asks the assistant for site names related to term and, when any
// come back, replaces the term with them joined by single spaces.
func (s *AssistService) ExpandQuery(ctx context.Context, term string) QueryExpansion {
	unchanged := QueryExpansion{Term: term}

	if strings.TrimSpace(term) == "" {
		unchanged.Message = MsgSmartSearchEmpty
		return unchanged
	}

	prompt := fmt.Sprintf(`Extract website or service names from the following user query. Return the result as a JSON array. If no related websites are found, return an empty array.
User query: %q
Example:
{ "search_terms": ["Facebook", "Instagram", "Twitter"] }`, term)

	raw, err := s.assistant.Generate(ctx, prompt, searchTermsSchema)
	if err != nil {
		s.logger.Warn("smart search failed", "error", err)
		unchanged.Message = MsgSmartSearchFailed
		return unchanged
	}

	var payload struct {
		SearchTerms []string `json:"search_terms"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("smart search returned malformed payload", "error", err)
		unchanged.Message = MsgSmartSearchFailed
		return unchanged
	}

	terms := make([]string, 0, len(payload.SearchTerms))
	for _, t := range payload.SearchTerms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	if len(terms) == 0 {
		unchanged.Message = MsgSmartSearchNone
		return unchanged
	}

	return QueryExpansion{
		Term:     strings.Join(terms, " "),
		Message:  fmt.Sprintf("AI found the following sites: %s. Search results have been updated.", strings.Join(terms, ", ")),
		Expanded: true,
	}
}

// AnalyzePassword asks the assistant to score password from 1 to 100 and
// suggest improvements.
func (s *AssistService) AnalyzePassword(ctx context.Context, password string) PasswordReport {
	if password == "" {
		return PasswordReport{Message: MsgAnalyzeEmpty}
	}

	prompt := fmt.Sprintf(`Analyze the security strength of the following password. Provide a score from 1-100 and a list of 3 actionable suggestions to improve it in a JSON format.
Password: %q
Example:
{ "score": 85, "suggestions": ["Use a longer password.", "Include special characters.", "Avoid using common words or phrases."] }`, password)

	raw, err := s.assistant.Generate(ctx, prompt, passwordAnalysisSchema)
	if err != nil {
		s.logger.Warn("password analysis failed", "error", err)
		return PasswordReport{Message: MsgAnalyzeFailed}
	}

	var payload struct {
		Score       *float64 `json:"score"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("password analysis returned malformed payload", "error", err)
		return PasswordReport{Message: MsgAnalyzeFailed}
	}

	if payload.Score == nil {
		return PasswordReport{Message: MsgAnalyzeInconclusive}
	}

	analysis := model.PasswordAnalysis{
		Score:       int(math.Round(*payload.Score)),
		Suggestions: payload.Suggestions,
	}
	if !analysis.ScoreInRange() {
		s.logger.Warn("password analysis score out of range", "score", *payload.Score)
		return PasswordReport{Message: MsgAnalyzeInconclusive}
	}
	if analysis.Suggestions == nil {
		analysis.Suggestions = []string{}
	}

	return PasswordReport{
		Analysis: &analysis,
		Message:  fmt.Sprintf("Password Strength: %d/100. Suggestions: %s", analysis.Score, strings.Join(analysis.Suggestions, " ")),
	}
}

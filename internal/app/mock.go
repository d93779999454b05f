package app

import (
	"context"
	"strings"
)

// MockBackend simulates the analysis server so the TUI can be exercised
// without one. The first analyze call asks a follow-up round, the second
// reports extraction, and research returns a canned summary.
type MockBackend struct {
	analyzeCalls int
	firstInput   string
}

var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) Analyze(ctx context.Context, symptoms, threadID string) (*AnalysisResponse, error) {
	m.analyzeCalls++
	if m.analyzeCalls == 1 {
		m.firstInput = symptoms
		return &AnalysisResponse{
			Status: "needs_info",
			FollowUpQuestions: []string{
				"How long have you had these symptoms?",
				"On a scale of 1-10, how severe are they?",
			},
			ExtractedData: &ExtractedData{},
		}, nil
	}
	return &AnalysisResponse{
		Status: StatusExtracted,
		ExtractedData: &ExtractedData{
			ParsedSymptoms:      mockSymptoms(m.firstInput),
			BodyPartsAffected:   []string{"head"},
			TimeSinceStart:      "2 days ago",
			EvolutionOfSymptoms: []string{"roughly stable since onset"},
			MedicalChecks:       []string{"none reported"},
		},
	}, nil
}

func (m *MockBackend) WebResearch(ctx context.Context, threadID string) (*WebResearchResponse, error) {
	return &WebResearchResponse{
		Status:     "success",
		IsComplete: true,
		WebResearchResults: &WebResearchResults{
			PossibleConditions:  []string{"tension headache", "viral infection"},
			SymptomExplanations: []string{"Headache with mild fever is most often self-limiting."},
			RedFlags:            []string{"Seek care if fever exceeds 39.5C or a stiff neck develops."},
			AdditionalQuestions: []string{"Any recent travel?"},
			SearchSummary:       "Common, usually benign presentation; monitor and rest.",
			ConfidenceLevel:     "medium",
			Iteration:           1,
		},
		Message: "Web research completed successfully",
	}, nil
}

// mockSymptoms turns the raw input into a plausible symptom list without
// pretending to understand it.
func mockSymptoms(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return []string{"unspecified symptoms"}
	}
	if len(input) > 60 {
		input = input[:60] + "..."
	}
	return []string{input}
}

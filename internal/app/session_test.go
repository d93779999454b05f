package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_MintsStableThreadID(t *testing.T) {
	s := NewSession()

	_, err := uuid.Parse(s.ThreadID)
	require.NoError(t, err, "thread id should be a uuid")
	assert.Equal(t, StageCollecting, s.Stage)

	s2 := NewSession()
	assert.NotEqual(t, s.ThreadID, s2.ThreadID)
}

func TestApplyAnalysis_CompleteWinsOverEverything(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status:     StatusExtracted,
		IsComplete: true,
		ExtractedData: &ExtractedData{
			ParsedSymptoms: []string{"headache"},
		},
	})

	assert.Equal(t, StageComplete, s.Stage)
	assert.Nil(t, s.Round)
	require.NotNil(t, s.Extracted)
	assert.Equal(t, []string{"headache"}, s.Extracted.ParsedSymptoms)
}

func TestApplyAnalysis_ExtractedEnablesResearch(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status: StatusExtracted,
		ExtractedData: &ExtractedData{
			ParsedSymptoms: []string{"mild fever"},
			TimeSinceStart: "yesterday",
		},
	})

	assert.Equal(t, StageExtracted, s.Stage)
	require.NoError(t, s.BeginResearch())
	assert.Equal(t, StageResearching, s.Stage)
}

func TestApplyAnalysis_FollowUpsStartARound(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status:            "needs_info",
		FollowUpQuestions: []string{"How severe is the fever?"},
		ExtractedData:     &ExtractedData{},
	})

	assert.Equal(t, StageAwaitingFollowUp, s.Stage)
	require.NotNil(t, s.Round)
	assert.Equal(t, []string{"How severe is the fever?"}, s.Round.Questions)
	assert.Nil(t, s.Extracted, "empty extracted data should not be kept")
}

func TestApplyAnalysis_NoQuestionsFallsBackToGenericPrompt(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{Status: "continuing"})

	require.NotNil(t, s.Round)
	require.Len(t, s.Round.Questions, 1)
	assert.Contains(t, s.Round.Questions[0], "more details")
}

func TestApplyAnalysis_KeepsEarlierExtractionAcrossRounds(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status:        "needs_info",
		ExtractedData: &ExtractedData{ParsedSymptoms: []string{"headache"}},
		FollowUpQuestions: []string{
			"Anything else?",
		},
	})
	s.ApplyAnalysis(&AnalysisResponse{
		Status:        "needs_info",
		ExtractedData: &ExtractedData{},
		FollowUpQuestions: []string{
			"And anything else still?",
		},
	})

	require.NotNil(t, s.Extracted)
	assert.Equal(t, []string{"headache"}, s.Extracted.ParsedSymptoms)
	assert.Equal(t, 2, s.RoundsAsked)
}

func TestBeginResearch_OnlyFromExtracted(t *testing.T) {
	s := NewSession()
	assert.Error(t, s.BeginResearch())
	assert.Equal(t, StageCollecting, s.Stage)
}

func TestApplyResearch_MergesResultsAndCompletes(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status:        StatusExtracted,
		ExtractedData: &ExtractedData{ParsedSymptoms: []string{"headache"}},
	})
	require.NoError(t, s.BeginResearch())

	s.ApplyResearch(&WebResearchResponse{
		Status: "success",
		WebResearchResults: &WebResearchResults{
			PossibleConditions: []string{"tension headache"},
			ConfidenceLevel:    "medium",
		},
		ExtractedData: &ExtractedData{ParsedSymptoms: []string{"headache", "fever"}},
	})

	assert.Equal(t, StageComplete, s.Stage)
	require.NotNil(t, s.Research)
	assert.Equal(t, []string{"tension headache"}, s.Research.PossibleConditions)
	assert.Equal(t, []string{"headache", "fever"}, s.Extracted.ParsedSymptoms,
		"fresh extracted data should replace the old copy")
}

func TestFailResearch_ReturnsToExtractedUnchanged(t *testing.T) {
	s := NewSession()
	s.ApplyAnalysis(&AnalysisResponse{
		Status:        StatusExtracted,
		ExtractedData: &ExtractedData{ParsedSymptoms: []string{"headache"}},
	})
	require.NoError(t, s.BeginResearch())

	s.FailResearch()

	assert.Equal(t, StageExtracted, s.Stage)
	assert.Nil(t, s.Research)
	assert.Equal(t, []string{"headache"}, s.Extracted.ParsedSymptoms)
}

func TestReset_ClearsStateButKeepsThreadID(t *testing.T) {
	s := NewSession()
	id := s.ThreadID
	s.ApplyAnalysis(&AnalysisResponse{
		IsComplete:    true,
		ExtractedData: &ExtractedData{ParsedSymptoms: []string{"headache"}},
	})
	s.Research = &WebResearchResults{SearchSummary: "summary"}

	s.Reset()

	assert.Equal(t, StageCollecting, s.Stage)
	assert.Nil(t, s.Extracted)
	assert.Nil(t, s.Research)
	assert.Nil(t, s.Round)
	assert.Zero(t, s.RoundsAsked)
	assert.Equal(t, id, s.ThreadID, "reset must not rotate the thread id")
}

func TestValidateSymptoms(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "  \n\t ", wantErr: true},
		{name: "ok", in: "I have a headache and mild fever since yesterday", wantErr: false},
		{name: "exactly at limit", in: makeText(MaxSymptomLen), wantErr: false},
		{name: "over limit", in: makeText(MaxSymptomLen + 1), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSymptoms(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFollowUpRound_CompleteRequiresEveryAnswer(t *testing.T) {
	r := NewFollowUpRound([]string{"q1", "q2", "q3"})
	assert.False(t, r.Complete())
	assert.Equal(t, 0, r.FirstUnanswered())

	r.SetAnswer(0, "a1")
	r.SetAnswer(2, "a3")
	assert.False(t, r.Complete())
	assert.Equal(t, 1, r.FirstUnanswered())

	r.SetAnswer(1, "   ")
	assert.False(t, r.Complete(), "whitespace is not an answer")

	r.SetAnswer(1, "a2")
	assert.True(t, r.Complete())
	assert.Equal(t, -1, r.FirstUnanswered())
}

func TestFollowUpRound_TranscriptFormat(t *testing.T) {
	r := NewFollowUpRound([]string{"How severe is the fever?", "Any nausea?"})
	r.SetAnswer(0, "  38.5C since last night ")
	r.SetAnswer(1, "no")

	want := "Q: How severe is the fever?\nA: 38.5C since last night\n\nQ: Any nausea?\nA: no"
	assert.Equal(t, want, r.Transcript())
}

func TestFollowUpRound_SetAnswerIgnoresOutOfRange(t *testing.T) {
	r := NewFollowUpRound([]string{"q"})
	r.SetAnswer(-1, "x")
	r.SetAnswer(5, "x")
	assert.Equal(t, []string{""}, r.Answers)
}

func TestExtractedData_Empty(t *testing.T) {
	var d *ExtractedData
	assert.True(t, d.Empty())
	assert.True(t, (&ExtractedData{}).Empty())
	assert.True(t, (&ExtractedData{FollowUpQuestions: []string{"q"}}).Empty(),
		"questions alone are not displayable data")
	assert.False(t, (&ExtractedData{TimeSinceStart: "yesterday"}).Empty())
}

func makeText(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxSymptomLen caps the free-text symptom field, in runes.
const MaxSymptomLen = 1000

// Stage is the single place the conversation's position is recorded.
// Transitions happen only through Session methods, so combinations like
// "complete and extracted at once" cannot be represented.
type Stage int

const (
	StageCollecting Stage = iota
	StageAwaitingFollowUp
	StageExtracted
	StageResearching
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageCollecting:
		return "collecting"
	case StageAwaitingFollowUp:
		return "follow-up"
	case StageExtracted:
		return "extracted"
	case StageResearching:
		return "researching"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Session is one conversation with the analysis backend. The thread identifier
// is minted once and attached to every call so the backend can correlate
// turns; it survives Reset on purpose, matching the deployed behavior.
type Session struct {
	ThreadID    string
	Stage       Stage
	Extracted   *ExtractedData
	Research    *WebResearchResults
	Round       *FollowUpRound
	RoundsAsked int
}

func NewSession() *Session {
	return &Session{
		ThreadID: uuid.NewString(),
		Stage:    StageCollecting,
	}
}

// ApplyAnalysis folds an analyze reply into the session. Completion wins over
// extraction; anything else means the backend wants another round, falling
// back to a generic prompt when it sent no questions.
func (s *Session) ApplyAnalysis(resp *AnalysisResponse) {
	if !resp.ExtractedData.Empty() {
		s.Extracted = resp.ExtractedData
	}

	switch {
	case resp.IsComplete:
		s.Round = nil
		s.Stage = StageComplete
	case resp.Status == StatusExtracted:
		s.Round = nil
		s.Stage = StageExtracted
	default:
		questions := resp.FollowUpQuestions
		if len(questions) == 0 {
			questions = []string{"Could you provide more details about your symptoms?"}
		}
		s.Round = NewFollowUpRound(questions)
		s.RoundsAsked++
		s.Stage = StageAwaitingFollowUp
	}
}

func (s *Session) BeginResearch() error {
	if s.Stage != StageExtracted {
		return errors.Errorf("cannot start research while %s", s.Stage)
	}
	s.Stage = StageResearching
	return nil
}

// ApplyResearch merges the research reply and ends the conversation. The
// backend re-sends extracted data alongside the results; prefer the fresh
// copy when it has content.
func (s *Session) ApplyResearch(resp *WebResearchResponse) {
	if resp.WebResearchResults != nil {
		s.Research = resp.WebResearchResults
	}
	if !resp.ExtractedData.Empty() {
		s.Extracted = resp.ExtractedData
	}
	s.Stage = StageComplete
}

// FailResearch returns to the pre-research screen with state untouched so the
// user can try again.
func (s *Session) FailResearch() {
	if s.Stage == StageResearching {
		s.Stage = StageExtracted
	}
}

// Reset clears everything the screens display and starts over. The thread
// identifier is intentionally kept; see NewSession if a fresh correlation
// token is wanted.
func (s *Session) Reset() {
	s.Stage = StageCollecting
	s.Extracted = nil
	s.Research = nil
	s.Round = nil
	s.RoundsAsked = 0
}

// ValidateSymptoms rejects input that would be a wasted round trip.
func ValidateSymptoms(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("please describe your symptoms first")
	}
	if utf8.RuneCountInString(text) > MaxSymptomLen {
		return errors.Errorf("symptom description is limited to %d characters", MaxSymptomLen)
	}
	return nil
}

// FollowUpRound is one batch of clarifying questions from the backend and the
// user's answers, indexed in question order.
type FollowUpRound struct {
	Questions []string
	Answers   []string
}

func NewFollowUpRound(questions []string) *FollowUpRound {
	return &FollowUpRound{
		Questions: questions,
		Answers:   make([]string, len(questions)),
	}
}

func (r *FollowUpRound) SetAnswer(i int, answer string) {
	if i >= 0 && i < len(r.Answers) {
		r.Answers[i] = answer
	}
}

// FirstUnanswered returns the index of the first blank answer, or -1 when
// every question has a non-whitespace answer.
func (r *FollowUpRound) FirstUnanswered() int {
	for i, a := range r.Answers {
		if strings.TrimSpace(a) == "" {
			return i
		}
	}
	return -1
}

func (r *FollowUpRound) Complete() bool {
	return r.FirstUnanswered() == -1
}

// Transcript renders the answered round as the text block the analyze
// endpoint expects on resubmission: "Q:/A:" pairs separated by a blank line.
func (r *FollowUpRound) Transcript() string {
	pairs := make([]string, 0, len(r.Questions))
	for i, q := range r.Questions {
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", q, strings.TrimSpace(r.Answers[i])))
	}
	return strings.Join(pairs, "\n\n")
}

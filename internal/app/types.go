package app

// Wire types for the DiagnosticAI HTTP API. Field names follow the backend
// contract exactly; payloads are passed through and displayed, not validated.

type AnalyzeRequest struct {
	Symptoms string `json:"symptoms"`
	ThreadID string `json:"thread_id"`
}

// StatusExtracted means the backend has everything it needs and web research
// can begin.
const StatusExtracted = "extracted"

type AnalysisResponse struct {
	Status            string         `json:"status"`
	IsComplete        bool           `json:"is_complete"`
	FollowUpQuestions []string       `json:"follow_up_questions"`
	ExtractedData     *ExtractedData `json:"extracted_data"`
}

// ExtractedData is the structured symptom summary the backend builds up over
// the conversation.
type ExtractedData struct {
	ParsedSymptoms      []string `json:"parsed_symptoms"`
	BodyPartsAffected   []string `json:"body_parts_affected"`
	TimeSinceStart      string   `json:"time_since_start"`
	EvolutionOfSymptoms []string `json:"evolution_of_symptoms"`
	MedicalChecks       []string `json:"medical_checks"`
	FollowUpQuestions   []string `json:"follow_up_questions"`
}

// Empty reports whether there is nothing worth displaying. The backend sends
// {} instead of null on early turns.
func (d *ExtractedData) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.ParsedSymptoms) == 0 &&
		len(d.BodyPartsAffected) == 0 &&
		d.TimeSinceStart == "" &&
		len(d.EvolutionOfSymptoms) == 0 &&
		len(d.MedicalChecks) == 0
}

type WebResearchRequest struct {
	ThreadID string `json:"thread_id"`
}

type WebResearchResults struct {
	PossibleConditions    []string `json:"possible_conditions"`
	SymptomExplanations   []string `json:"symptom_explanations"`
	RedFlags              []string `json:"red_flags"`
	AdditionalQuestions   []string `json:"additional_questions"`
	SearchSummary         string   `json:"search_summary"`
	ConfidenceLevel       string   `json:"confidence_level"` // high|medium|low
	NeedsMoreResearch     bool     `json:"needs_more_research"`
	Iteration             int      `json:"iteration"`
	PreviousSearchResults []string `json:"previous_search_results"`
}

type WebResearchResponse struct {
	Status             string              `json:"status"`
	IsComplete         bool                `json:"is_complete"`
	WebResearchResults *WebResearchResults `json:"web_research_results"`
	ExtractedData      *ExtractedData      `json:"extracted_data"`
	Message            string              `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ResearchDebugRequest struct {
	Symptom string `json:"symptom"`
}

type ResearchDebugResponse struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

package tui

import (
	"fmt"
	"strings"

	"diagai/internal/app"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.session.Stage {
	case app.StageCollecting:
		b.WriteString(m.renderCollecting())
	case app.StageAwaitingFollowUp:
		b.WriteString(m.renderFollowUp())
	case app.StageExtracted:
		b.WriteString(m.renderExtracted())
	case app.StageResearching:
		b.WriteString(m.renderResearching())
	case app.StageComplete:
		b.WriteString(m.renderComplete())
	}

	if m.busy {
		frame := spinnerFrames[m.spinnerPos%len(spinnerFrames)]
		b.WriteString("\n")
		b.WriteString(m.theme.Spinner.Render(fmt.Sprintf("%s Waiting for the analysis server…", frame)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrText.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.TopBarTitle.Render("diagai")
	badge := m.theme.TopBarBadge.Render(m.session.Stage.String())
	meta := m.theme.TopBarMeta.Render("thread " + shortID(m.session.ThreadID))
	return m.theme.TopBar.Render(title + "  " + badge + "  " + meta)
}

func (m *Model) renderCollecting() string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("Describe your symptoms"))
	b.WriteString("\n")
	b.WriteString(m.theme.InputBoxF.Width(m.contentWidth()).Render(m.symptoms.View()))
	b.WriteString("\n")
	b.WriteString(m.theme.FaintText.Render(fmt.Sprintf("%d/%d", m.symptoms.Length(), app.MaxSymptomLen)))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderFollowUp() string {
	var b strings.Builder
	b.WriteString(m.theme.PaneTitle.Render("A few follow-up questions"))
	b.WriteString("\n\n")

	round := m.session.Round
	if round == nil {
		return b.String()
	}
	for i, q := range round.Questions {
		b.WriteString(m.theme.Label.Render(fmt.Sprintf("%d. %s", i+1, q)))
		b.WriteString("\n")
		box := m.theme.InputBox
		if i == m.focusIdx {
			box = m.theme.InputBoxF
		}
		if i < len(m.answers) {
			b.WriteString(box.Width(m.contentWidth()).Render(m.answers[i].View()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderExtracted() string {
	var b strings.Builder
	b.WriteString(m.renderExtractedCard())
	b.WriteString("\n")
	b.WriteString(m.theme.OkText.Render("All the needed details are in. Web research can look for possible causes."))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderResearching() string {
	var b strings.Builder
	b.WriteString(m.renderExtractedCard())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderComplete() string {
	var b strings.Builder
	b.WriteString(m.renderExtractedCard())
	if m.session.Research != nil {
		b.WriteString("\n")
		b.WriteString(m.renderResearchCard())
	}
	b.WriteString("\n")
	return b.String()
}

// renderExtractedCard shows exactly the extracted fields that are present.
func (m *Model) renderExtractedCard() string {
	data := m.session.Extracted
	if data.Empty() {
		return m.theme.FaintText.Render("No extracted data yet.")
	}

	var b strings.Builder
	m.writeListField(&b, "Symptoms", data.ParsedSymptoms)
	m.writeListField(&b, "Affected body parts", data.BodyPartsAffected)
	if data.TimeSinceStart != "" {
		b.WriteString(m.theme.Label.Render("Since"))
		b.WriteString("\n  ")
		b.WriteString(m.theme.Value.Render(data.TimeSinceStart))
		b.WriteString("\n")
	}
	m.writeListField(&b, "Evolution", data.EvolutionOfSymptoms)
	m.writeListField(&b, "Medical checks", data.MedicalChecks)

	return m.theme.Pane.Width(m.contentWidth()).Render(
		m.theme.PaneTitle.Render("Symptom summary") + "\n" + strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderResearchCard() string {
	res := m.session.Research

	var b strings.Builder
	m.writeListField(&b, "Possible conditions", res.PossibleConditions)
	m.writeListField(&b, "Explanations", res.SymptomExplanations)

	if len(res.RedFlags) > 0 {
		b.WriteString(m.theme.Label.Render("Red flags"))
		b.WriteString("\n")
		for _, f := range res.RedFlags {
			b.WriteString("  ")
			b.WriteString(m.theme.WarnText.Render("! " + f))
			b.WriteString("\n")
		}
	}
	if res.SearchSummary != "" {
		b.WriteString(m.theme.Label.Render("Summary"))
		b.WriteString("\n  ")
		b.WriteString(m.theme.Value.Render(res.SearchSummary))
		b.WriteString("\n")
	}
	if res.ConfidenceLevel != "" {
		b.WriteString(m.theme.Label.Render("Confidence"))
		b.WriteString("\n  ")
		b.WriteString(m.confidenceStyle(res.ConfidenceLevel).Render(res.ConfidenceLevel))
		b.WriteString("\n")
	}
	m.writeListField(&b, "Worth discussing with a doctor", res.AdditionalQuestions)

	return m.theme.Pane.Width(m.contentWidth()).Render(
		m.theme.PaneTitle.Render("Web research") + "\n" + strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderFooter() string {
	var hints []string
	switch m.session.Stage {
	case app.StageCollecting:
		hints = []string{"enter submit", "ctrl+c quit"}
	case app.StageAwaitingFollowUp:
		hints = []string{"enter submit", "tab next field", "ctrl+c quit"}
	case app.StageExtracted:
		hints = []string{"ctrl+r start web research", "q quit"}
	case app.StageResearching:
		hints = []string{"ctrl+c quit"}
	case app.StageComplete:
		hints = []string{"ctrl+n new conversation", "q quit"}
	}
	return m.theme.Footer.Render(strings.Join(hints, " • "))
}

func (m *Model) writeListField(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(m.theme.Label.Render(label))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("  ")
		b.WriteString(m.theme.Value.Render("• " + it))
		b.WriteString("\n")
	}
}

func (m *Model) confidenceStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "high":
		return m.theme.OkText
	case "medium":
		return m.theme.WarnText
	default:
		return m.theme.FaintText
	}
}

func (m *Model) contentWidth() int {
	return max(40, m.width-4)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

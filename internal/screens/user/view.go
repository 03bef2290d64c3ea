package user

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/ui/components"
	"github.com/mirrorsensei/sensei/internal/ui/layout"
	"github.com/mirrorsensei/sensei/internal/ui/theme"
)

const sidebarWidth = 36

func (s *UserScreen) View(width, height int) string {
	st := s.sess.State()

	mainWidth := width
	var sidebar string
	if !layout.IsCompactWidth(width) {
		mainWidth = width - sidebarWidth
		sidebar = s.renderHistory(sidebarWidth, height)
	}

	selectors := s.renderSelectors(st)
	query := s.query.View(mainWidth)
	results := s.renderResults(st, mainWidth)

	used := lipgloss.Height(selectors) + lipgloss.Height(query) + lipgloss.Height(results)
	responseHeight := max(height-used, 4)
	response := s.renderResponse(st, mainWidth, responseHeight)

	main := lipgloss.JoinVertical(lipgloss.Left, selectors, query, response, results)
	if sidebar == "" {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(mainWidth).Render(main), sidebar)
}

func (s *UserScreen) renderSelectors(st session.State) string {
	lang := "English"
	if st.Language == study.Bengali {
		lang = "বাংলা (Bengali)"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Label.Render("Category ")+s.category.View(s.focus == fieldCategory),
		theme.Label.Render("Level    ")+s.level.View(s.focus == fieldLevel),
		theme.Hint.Render("Language: "+lang),
	)
}

// renderResponse shows the main response, or the spinner while it is
// being generated.
func (s *UserScreen) renderResponse(st session.State, width, height int) string {
	if st.Response != s.shown {
		s.shown = st.Response
		s.response.SetContent(st.Response)
		s.response.GotoTop()
	}
	s.response.SetWidth(max(width-4, 1))
	s.response.SetHeight(max(height-3, 1))

	body := s.response.View()
	switch {
	case s.inflight[session.OpStudy]:
		body = s.spinner.View() + " Sensei is thinking..."
	case st.Response == "":
		body = theme.Hint.Render("Pick a category and level, then ask a question.")
	}
	return components.Pane("Sensei", body, width, height, false)
}

func (s *UserScreen) renderResults(st session.State, width int) string {
	var b strings.Builder

	b.WriteString(s.translate.View(width))
	b.WriteString("\n")
	switch {
	case s.inflight[session.OpTranslate]:
		b.WriteString(s.spinner.View() + " Translating...")
	case st.Translation != "":
		b.WriteString(theme.Body.Width(width - 2).Render(layout.Truncate(st.Translation, 4)))
	}
	b.WriteString("\n")

	qa := s.qa
	if !s.qaEnabled() {
		qa.Label = "Instant Q&A (ask a study question first)"
		qa.Disabled = true
	}
	b.WriteString(qa.View(width))
	b.WriteString("\n")
	switch {
	case s.inflight[session.OpInstantQA]:
		b.WriteString(s.spinner.View() + " Answering...")
	case st.Answer != "":
		b.WriteString(theme.Body.Width(width - 2).Render(layout.Truncate(st.Answer, 4)))
	}
	return b.String()
}

func (s *UserScreen) renderHistory(width, height int) string {
	var b strings.Builder
	b.WriteString(s.search.View(width - 4))
	b.WriteString("\n\n")

	switch {
	case s.historyErr != "":
		b.WriteString(theme.ErrorText.Render(s.historyErr))
	case len(s.history) == 0 && s.search.Value() != "":
		b.WriteString(theme.Hint.Render("No matches in the recent history."))
	case len(s.history) == 0:
		b.WriteString(theme.Hint.Render("No history yet."))
	default:
		for _, item := range s.history {
			b.WriteString(renderHistoryItem(item, width-4))
			b.WriteString("\n")
		}
	}

	return components.Pane("Recent", layout.Truncate(b.String(), max(height-3, 1)), width, height, s.focus == fieldSearch)
}

func renderHistoryItem(item study.HistoryItem, width int) string {
	meta := fmt.Sprintf("%s · %s · %s", item.Timestamp.Local().Format("Jan 02 15:04"), item.Category, item.Level)
	query := lipgloss.NewStyle().Width(width).MaxHeight(2).Render(item.Query)
	return theme.Hint.Render(meta) + "\n" + theme.Selected.Render(query)
}

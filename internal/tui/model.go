package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrank/internal/chunker"
	"docrank/internal/report"
)

// entry pairs a ranked section with its refined excerpt.
type entry struct {
	section report.ExtractedSection
	excerpt string
}

// Model is the Bubble Tea model for browsing a written report.
type Model struct {
	report   *report.Output
	entries  []entry
	visible  []int
	input    textinput.Model
	viewport viewport.Model
	status   string
	cursor   int
	ready    bool
}

// New creates a browser over a report.
func New(out *report.Output) Model {
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "Type to filter sections"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	entries := make([]entry, len(out.ExtractedSections))
	for i, s := range out.ExtractedSections {
		entries[i] = entry{section: s}
		if i < len(out.SubsectionAnalysis) {
			entries[i].excerpt = out.SubsectionAnalysis[i].RefinedText
		}
	}
	m := Model{report: out, entries: entries, input: ti, viewport: vp}
	m.applyFilter()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "down":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor + 1) % len(m.visible)
				m.viewport.SetContent(m.renderCurrent())
			}
			return m, nil
		case "up":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
				m.viewport.SetContent(m.renderCurrent())
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.applyFilter()
		m.viewport.SetContent(m.renderCurrent())
	}
	return m, cmd
}

// View renders the header, current section and filter box.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	md := m.report.Metadata
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s / %s", md.Persona, md.JobToBeDone))
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		fmt.Sprintf("%d sections, %s mode, %s", len(m.entries), md.Mode, md.ProcessingTimestamp))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// applyFilter keeps entries whose document, title or excerpt contains the
// filter text, case-insensitively.
func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.visible = make([]int, 0, len(m.entries))
	for i, e := range m.entries {
		if q == "" ||
			strings.Contains(strings.ToLower(e.section.Document), q) ||
			strings.Contains(strings.ToLower(e.section.SectionTitle), q) ||
			strings.Contains(strings.ToLower(e.excerpt), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	if q == "" {
		m.status = "Up/Down to browse, type to filter, Esc to quit."
	} else {
		m.status = fmt.Sprintf("%d of %d sections match %q", len(m.visible), len(m.entries), q)
	}
}

// highlightQuery is the text the best sentence is chosen against: the
// filter when set, otherwise the persona and job.
func (m Model) highlightQuery() string {
	if q := strings.TrimSpace(m.input.Value()); q != "" {
		return q
	}
	return m.report.Metadata.Persona + " " + m.report.Metadata.JobToBeDone
}

func (m Model) renderCurrent() string {
	if len(m.visible) == 0 {
		return "No sections."
	}
	e := m.entries[m.visible[m.cursor]]
	s := e.section
	title := fmt.Sprintf("#%d  %s\n%s, page %d  (%d/%d)",
		s.ImportanceRank, s.SectionTitle, s.Document, s.PageNumber, m.cursor+1, len(m.visible))
	return title + "\n\n" + highlightBestSentence(e.excerpt, m.highlightQuery())
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentences      = chunker.NewSentenceChunker()
)

func highlightBestSentence(text, query string) string {
	parts := sentences.Split(text)
	if len(parts) == 0 {
		return text
	}
	best := bestSentence(parts, query)
	if best < 0 {
		return strings.Join(parts, " ")
	}
	parts[best] = highlightStyle.Render(parts[best])
	return strings.Join(parts, " ")
}

// bestSentence returns the index of the sentence sharing the most distinct
// words with query, or -1 when query has no words. Ties go to the earliest.
func bestSentence(parts []string, query string) int {
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return -1
	}
	bestIdx, bestScore := 0, -1
	for i, s := range parts {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

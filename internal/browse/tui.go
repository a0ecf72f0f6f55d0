package browse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/feedwatch/internal/diff"
	"github.com/amishk599/feedwatch/internal/model"
)

// Lines per item in the list view (subject + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	paneChanges = iota
	paneSnapshot
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	subjectStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedSubjectStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	newKindStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	updatedKindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(18)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type diffModel struct {
	feed     model.Feed
	changes  []model.Change
	snapshot []model.Record
	removed  int

	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailViewport viewport.Model
	detailRecord   model.Record
	detailKind     string
	detailPrevious *model.Record

	wantQuit bool
}

func newDiffModel(feed model.Feed, current, snapshot []model.Record) diffModel {
	return diffModel{
		feed:     feed,
		changes:  diff.Diff(current, snapshot),
		snapshot: snapshot,
		removed:  len(diff.Removed(current, snapshot)),
	}
}

func (m diffModel) Init() tea.Cmd {
	return nil
}

func (m diffModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m diffModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == paneChanges {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m diffModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *diffModel) moveCursor(delta int) {
	if m.activePane == paneChanges {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.changes)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.snapshot)-1, 0))
	}
}

func (m *diffModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == paneChanges {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * itemHeight
	cursorBottom := cursorTop + itemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m diffModel) openDetailView() (tea.Model, tea.Cmd) {
	switch m.activePane {
	case paneChanges:
		if len(m.changes) == 0 {
			return m, nil
		}
		c := m.changes[m.leftCursor]
		m.detailRecord = c.Record
		m.detailKind = c.Kind.String()
		m.detailPrevious = nil
		if c.Kind == model.ChangeUpdated {
			if prev, ok := findBySubject(m.snapshot, c.Record.Subject); ok {
				m.detailPrevious = &prev
			}
		}
	default:
		if len(m.snapshot) == 0 {
			return m, nil
		}
		m.detailRecord = m.snapshot[m.rightCursor]
		m.detailKind = "stored"
		m.detailPrevious = nil
	}

	m.view = viewDetail
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *diffModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *diffModel) recalcContent() {
	m.leftViewport.SetContent(renderChanges(m.changes, m.leftCursor, m.activePane == paneChanges))
	m.rightViewport.SetContent(renderSnapshot(m.snapshot, m.rightCursor, m.activePane == paneSnapshot))
}

func (m diffModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m diffModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Pending changes (%d)", len(m.changes))
	rightHeader := fmt.Sprintf(" Stored snapshot (%d)", len(m.snapshot))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == paneChanges {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusBar := statusBarStyle.Width(m.width).Render(m.statusText())

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m diffModel) statusText() string {
	return fmt.Sprintf(" %s | %d pending | %d stored | %d removed    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		m.feed.Title(), len(m.changes), len(m.snapshot), m.removed)
}

func (m diffModel) viewDetail() string {
	title := detailTitleStyle.Render("Record · " + m.detailKind)

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")

	return title + "\n" + content + "\n" + statusBar
}

func (m diffModel) renderDetail() string {
	r := m.detailRecord
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Subject", r.Subject)
	addField("Update date", r.UpdateDate)
	addField("Feed", m.feed.Title())
	if m.detailPrevious != nil {
		addField("Previous date", m.detailPrevious.UpdateDate)
	}

	wrapWidth := max(m.width-8, 20)
	label := "── Raw record "
	b.WriteByte('\n')
	b.WriteString(dividerStyle.Render(label+strings.Repeat("─", max(wrapWidth-len(label), 3))) + "\n\n")
	b.WriteString(rawStyle.Render(prettyJSON(r)) + "\n")

	return b.String()
}

func renderChanges(changes []model.Change, cursor int, isActive bool) string {
	if len(changes) == 0 {
		return "  (no changes)"
	}

	var b strings.Builder
	for i, c := range changes {
		kind := newKindStyle.Render(c.Kind.String())
		if c.Kind == model.ChangeUpdated {
			kind = updatedKindStyle.Render(c.Kind.String())
		}
		writeItem(&b, c.Record, kind, isActive && i == cursor)
		if i < len(changes)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderSnapshot(records []model.Record, cursor int, isActive bool) string {
	if records == nil {
		return "  (no snapshot yet)"
	}
	if len(records) == 0 {
		return "  (empty snapshot)"
	}

	var b strings.Builder
	for i, r := range records {
		writeItem(&b, r, "", isActive && i == cursor)
		if i < len(records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeItem(b *strings.Builder, r model.Record, tag string, selected bool) {
	subjectSt := subjectStyle
	subtitleSt := subtitleStyle
	prefix := "  "
	if selected {
		subjectSt = selectedSubjectStyle
		subtitleSt = selectedSubtitleStyle
		prefix = "> "
	}

	b.WriteString(prefix)
	b.WriteString(subjectSt.Render(r.Subject))
	b.WriteByte('\n')

	b.WriteString(prefix)
	b.WriteString(subtitleSt.Render(r.UpdateDate))
	if tag != "" {
		b.WriteString(" · ")
		b.WriteString(tag)
	}
	b.WriteByte('\n')
}

func findBySubject(records []model.Record, subject string) (model.Record, bool) {
	for _, r := range records {
		if r.Subject == subject {
			return r, true
		}
	}
	return model.Record{}, false
}

func prettyJSON(r model.Record) string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("(unable to render: %v)", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunDiffTUI launches the split-pane view of a feed's pending changes next to
// its stored snapshot. Returns wantQuit=true if the user pressed q/ctrl+c,
// false if they pressed esc to return to the picker.
func RunDiffTUI(feed model.Feed, current, snapshot []model.Record) (bool, error) {
	m := newDiffModel(feed, current, snapshot)

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(diffModel)
	return final.wantQuit, nil
}

// Package tui is the terminal front end: a home screen with the quick
// actions and the clipboard manager popup panel drawn from presenter.View.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.klb.dev/clipshelf/internal/presenter"
)

const (
	toastTTL       = 3 * time.Second
	maxToasts      = 3
	maxPanelWidth  = 72
	minPanelWidth  = 30
	defaultTimeout = 2 * time.Second

	// rowsOffset is the box line of the first row: top border, title,
	// save hint, blank line, list header.
	rowsOffset = 5
)

// Options tune the program.
type Options struct {
	// ClipboardTimeout bounds each clipboard read or write.
	ClipboardTimeout time.Duration
	// Changes signals that the settings store was changed by another process.
	Changes <-chan struct{}
	// OpenPanel opens the panel immediately.
	OpenPanel bool
}

type (
	toastMsg        Toast
	toastExpiredMsg int
	actionDoneMsg   struct {
		op  string
		err error
	}
	settingsChangedMsg struct{}
)

type shownToast struct {
	id int
	Toast
}

// Model is the Bubble Tea model.
type Model struct {
	p       *presenter.Presenter
	toastCh <-chan Toast
	changes <-chan struct{}
	timeout time.Duration

	help    help.Model
	width   int
	height  int
	cursor  int
	viewing bool // full content of the selected row

	toasts []shownToast
	nextID int
}

// New returns the model. n must be the Notifier the presenter reports to.
func New(p *presenter.Presenter, n *Notifier, opts Options) Model {
	timeout := opts.ClipboardTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if opts.OpenPanel {
		p.Open()
	}
	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	return Model{
		p:       p,
		toastCh: n.Toasts(),
		changes: opts.Changes,
		timeout: timeout,
		help:    h,
		width:   80,
		height:  24,
	}
}

// Run starts the program and blocks until the user quits.
func Run(p *presenter.Presenter, n *Notifier, opts Options) error {
	prog := tea.NewProgram(New(p, n, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForToast(m.toastCh), waitForChange(m.changes))
}

func waitForToast(ch <-chan Toast) tea.Cmd {
	return func() tea.Msg { return toastMsg(<-ch) }
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return settingsChangedMsg{}
	}
}

func expireToast(id int) tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg(id) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case toastMsg:
		m.nextID++
		m.toasts = append(m.toasts, shownToast{id: m.nextID, Toast: Toast(msg)})
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}
		return m, tea.Batch(waitForToast(m.toastCh), expireToast(m.nextID))

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == int(msg) {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case actionDoneMsg:
		if msg.op == "save" && msg.err == nil {
			m.cursor = 0
		}
		m.clampCursor()
		return m, nil

	case settingsChangedMsg:
		if err := m.p.Reload(); err != nil {
			slog.Warn("reload after external change failed", "err", err)
		}
		m.clampCursor()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if m.p.IsOpen() {
			return m.updatePanel(msg)
		}
		return m.updateHome(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, homeKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, homeKeys.Save):
		return m, m.saveCmd()
	case key.Matches(msg, homeKeys.Open):
		m.p.Open()
		m.cursor = 0
		m.viewing = false
	}
	return m, nil
}

func (m Model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, panelKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, panelKeys.Close):
		if m.viewing {
			m.viewing = false
			return m, nil
		}
		m.p.Close(presenter.CloseControl)
	case key.Matches(msg, panelKeys.Toggle):
		m.viewing = false
		m.p.Close(presenter.CloseAction)
	case key.Matches(msg, panelKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, panelKeys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, panelKeys.Save):
		return m, m.saveCmd()
	case key.Matches(msg, panelKeys.View):
		if _, ok := m.selected(); ok {
			m.viewing = !m.viewing
		}
	case key.Matches(msg, panelKeys.Copy):
		if row, ok := m.selected(); ok {
			return m, m.copyCmd(row.Index)
		}
	case key.Matches(msg, panelKeys.Delete):
		if row, ok := m.selected(); ok {
			_ = m.p.Delete(row.Index)
			m.viewing = false
			m.clampCursor()
		}
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.p.IsOpen() {
		return m, nil
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case msg.Button == tea.MouseButtonWheelDown:
		m.cursor++
		m.clampCursor()
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		_, r := m.panel()
		if !r.contains(msg.X, msg.Y) {
			m.viewing = false
			m.p.Close(presenter.CloseOutside)
			return m, nil
		}
		if m.viewing {
			return m, nil
		}
		if i := msg.Y - r.y - rowsOffset; i >= 0 {
			if _, ok := m.p.Render().Row(i); ok {
				m.cursor = i
			}
		}
	}
	return m, nil
}

// selected returns the row under the cursor, re-derived from a fresh render.
func (m Model) selected() (presenter.Row, bool) {
	return m.p.Render().Row(m.cursor)
}

func (m *Model) clampCursor() {
	n := len(m.p.Render().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n == 0 {
		m.viewing = false
	}
}

func (m Model) saveCmd() tea.Cmd {
	p, timeout := m.p, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionDoneMsg{op: "save", err: p.SaveFromClipboard(ctx)}
	}
}

func (m Model) copyCmd(index int) tea.Cmd {
	p, timeout := m.p, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionDoneMsg{op: "copy", err: p.Copy(ctx, index)}
	}
}

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// panel renders the popup box and where it sits on screen. View and the mouse
// handler both use it, so hit-testing always matches what was drawn.
func (m Model) panel() (string, rect) {
	width := min(maxPanelWidth, m.width-4)
	width = max(width, minPanelWidth)

	var content string
	if m.viewing {
		content = m.fullContent(width - 4)
	} else {
		content = m.listContent(width - 4)
	}
	box := panelStyle.Width(width).Render(content)

	w, h := lipgloss.Width(box), lipgloss.Height(box)
	x := max((m.width-w)/2, 0)
	y := max((m.height-maxToasts-h)/2, 0)
	return box, rect{x: x, y: y, w: w, h: h}
}

func (m Model) listContent(inner int) string {
	v := m.p.Render()
	row := lipgloss.NewStyle().MaxWidth(inner)

	lines := []string{
		titleStyle.Render("Clipboard Manager"),
		mutedStyle.Render("s  save clipboard"),
		"",
		fmt.Sprintf("%s  %s", accentStyle.Render("Saved items"),
			mutedStyle.Render(fmt.Sprintf("%d/%d", len(v.Rows), v.Capacity))),
	}
	if v.Empty {
		lines = append(lines, mutedStyle.Render(v.Message))
	}
	for _, r := range v.Rows {
		line := fmt.Sprintf("%2d. %s", r.Index+1, singleLine(r.Preview))
		if r.Index == m.cursor {
			lines = append(lines, row.Render(selectedStyle.Render("> "+line)))
		} else {
			lines = append(lines, row.Render("  "+line))
		}
	}
	lines = append(lines, "", m.help.View(panelKeys))
	return strings.Join(lines, "\n")
}

func (m Model) fullContent(inner int) string {
	r, ok := m.selected()
	if !ok {
		return mutedStyle.Render(presenter.EmptyMessage)
	}
	body := lipgloss.NewStyle().Width(inner).Render(r.Text)
	if limit := m.height - maxToasts - 8; limit > 0 {
		if ls := strings.Split(body, "\n"); len(ls) > limit {
			body = strings.Join(ls[:limit], "\n") + "\n" + mutedStyle.Render("…")
		}
	}
	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Item %d", r.Index+1)),
		"",
		body,
		"",
		helpStyle.Render("c copy • esc back • x close"),
	}, "\n")
}

func (m Model) home() string {
	lines := []string{
		titleStyle.Render("clipshelf"),
		"",
		accentStyle.Render("s") + "  save clipboard content",
		accentStyle.Render("o") + "  open clipboard manager",
		"",
		mutedStyle.Render("Quickly save and retrieve clipboard content."),
		"",
		m.help.View(homeKeys),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) View() string {
	var b strings.Builder
	if m.p.IsOpen() {
		box, r := m.panel()
		b.WriteString(strings.Repeat("\n", r.y))
		pad := strings.Repeat(" ", r.x)
		for i, line := range strings.Split(box, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(pad + line)
		}
	} else {
		b.WriteString(m.home())
	}

	if len(m.toasts) > 0 {
		b.WriteString("\n\n")
		lines := make([]string, len(m.toasts))
		for i, t := range m.toasts {
			lines[i] = toastLine(t.Toast)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

// singleLine flattens whitespace so one entry occupies one screen line.
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ").Replace(s)
}

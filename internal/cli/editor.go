package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/interact"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/mosaic/sink"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// A terminal character stands for a charW x charH block of container pixels,
// so pixel based settings such as the cell inset keep their proportions.
const (
	charW = 8.0
	charH = 16.0

	headerRows = 1
	footerRows = 7

	// cursorStep is how far the arrow keys move the point cursor, in
	// normalized units.
	cursorStep = 0.05
)

// Editor styles
var (
	editorTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editorModeStyle    = lipgloss.NewStyle().Foreground(colorGray)
	editorHelpStyle    = lipgloss.NewStyle().Foreground(colorDim)
	editorAlertStyle   = lipgloss.NewStyle().Foreground(colorRed)
	editorSparkStyle   = lipgloss.NewStyle().Italic(true).Foreground(colorWhite)
	editorEmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	editorDiscStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	editorPointStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	editorCursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	editorTarnishStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// startMsg asks the editor to load the user's data once the program runs.
type startMsg struct{}

// opDoneMsg reports that a backend operation started by run has returned.
type opDoneMsg struct{}

// editor is the bubbletea model hosting the interaction machine. It is the
// machine's Host: the machine calls back into it from Update, and View draws
// whatever the machine last showed.
type editor struct {
	ctx     context.Context
	machine *interact.Machine

	width, height int

	diagram      *mosaic.Diagram
	form         *editorForm
	pointsEditor bool
	workingSet   mosaic.WorkingSet
	hover        *mosaic.HoverInfo
	alert        error

	cellCursor  int        // keyboard selected cell, -1 for none
	pointCursor geom.Point // keyboard point cursor in the point editor

	// While busy a backend operation owns the machine. Input is dropped,
	// timers and resizes wait in the fields below and View shows frozen.
	busy        bool
	frozen      string
	queued      []*teaTimer
	pendingSize *tea.WindowSizeMsg
}

type editorForm struct {
	kind  interact.FormKind
	draft shard.Draft
}

var _ interact.Host = (*editor)(nil)

// newEditor returns an editor backed by b. cfg.Clock must deliver callbacks
// on the event loop (see teaClock) or synchronously in tests.
func newEditor(ctx context.Context, b interact.Backend, cfg interact.Config) *editor {
	e := &editor{ctx: ctx, width: 80, height: 24, cellCursor: -1}
	e.machine = interact.New(b, e, cfg)
	return e
}

// =============================================================================
// interact.Host
// =============================================================================

func (e *editor) Size() viewport.Size {
	return viewport.Size{Width: float64(e.width) * charW, Height: float64(e.canvasRows()) * charH}
}

func (e *editor) ShowDiagram(d *mosaic.Diagram) {
	e.diagram = d
	if e.cellCursor >= len(d.Cells) {
		e.cellCursor = -1
	}
}

func (e *editor) ShowShardForm(kind interact.FormKind, d shard.Draft) {
	e.form = &editorForm{kind: kind, draft: d}
}

func (e *editor) ShowPointsEditor(ws mosaic.WorkingSet) {
	e.pointsEditor = true
	e.workingSet = ws
}

func (e *editor) HideForms() {
	e.form = nil
	e.pointsEditor = false
}

func (e *editor) ShowHover(info *mosaic.HoverInfo) { e.hover = info }

func (e *editor) Alert(err error) { e.alert = err }

// =============================================================================
// tea.Model
// =============================================================================

func (e *editor) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (e *editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return e, tea.Quit
	}
	if e.busy {
		e.hold(msg)
		return e, nil
	}
	switch msg := msg.(type) {
	case startMsg:
		return e, e.run(e.machine.Start)
	case timerMsg:
		msg.t.fire()
	case tea.WindowSizeMsg:
		e.resize(msg)
	case tea.MouseMsg:
		return e, e.handleMouse(msg)
	case tea.KeyMsg:
		// A key press acknowledges the last alert.
		e.alert = nil
		switch e.machine.Mode() {
		case interact.Viewing:
			if msg.String() == "q" {
				return e, tea.Quit
			}
			e.handleViewingKey(msg)
		case interact.CreatingShard, interact.EditingShard:
			return e, e.handleFormKey(msg)
		case interact.EditingPoints:
			return e, e.handlePointsKey(msg)
		}
	}
	return e, nil
}

// run hands op to a command so a slow backend does not stall the event
// loop. The machine belongs to op until opDoneMsg arrives.
func (e *editor) run(op func(context.Context) error) tea.Cmd {
	e.busy = true
	e.frozen = e.draw()
	return func() tea.Msg {
		_ = op(e.ctx)
		return opDoneMsg{}
	}
}

// hold keeps what arrives while an operation runs and replays it
// once the operation is done.
func (e *editor) hold(msg tea.Msg) {
	switch msg := msg.(type) {
	case timerMsg:
		e.queued = append(e.queued, msg.t)
	case tea.WindowSizeMsg:
		e.pendingSize = &msg
	case opDoneMsg:
		e.busy, e.frozen = false, ""
		if size := e.pendingSize; size != nil {
			e.pendingSize = nil
			e.resize(*size)
		}
		queued := e.queued
		e.queued = nil
		for _, t := range queued {
			t.fire()
		}
	}
}

func (e *editor) resize(msg tea.WindowSizeMsg) {
	e.width, e.height = msg.Width, msg.Height
	e.machine.Resize()
}

func (e *editor) handleMouse(msg tea.MouseMsg) tea.Cmd {
	row := msg.Y - headerRows
	if row < 0 || row >= e.canvasRows() || msg.X < 0 || msg.X >= e.width {
		return nil
	}
	screen := charCenter(msg.X, row)
	switch {
	case msg.Action == tea.MouseActionMotion:
		e.machine.PointerMove(screen)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		e.alert = nil
		// A click on an open form cancels it and reloads.
		if e.machine.Mode().InForm() {
			return e.run(e.machine.Cancel)
		}
		_ = e.machine.Click(e.ctx, screen)
	}
	return nil
}

func (e *editor) handleViewingKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "p":
		_ = e.machine.EditPoints(e.ctx)
		e.pointCursor = geom.Point{}
	case "right", "l", "tab":
		e.moveCellCursor(+1)
	case "left", "h", "shift+tab":
		e.moveCellCursor(-1)
	case "enter":
		if cell := e.selectedCell(); cell != nil {
			_ = e.machine.ClickCell(e.ctx, cell)
		}
	}
}

func (e *editor) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	draft, ok := e.machine.Draft()
	if !ok {
		return nil
	}
	switch msg.String() {
	case "esc":
		return e.run(e.machine.Cancel)
	case "enter":
		return e.run(e.machine.Submit)
	case "ctrl+d":
		if e.machine.Mode() == interact.EditingShard {
			return e.run(e.machine.Delete)
		}
	case "tab":
		e.machine.SetTint((draft.Tint + 1) % (e.machine.Limits().TintMax + 1))
	case "shift+tab":
		e.machine.SetTint((draft.Tint + e.machine.Limits().TintMax) % (e.machine.Limits().TintMax + 1))
	case "ctrl+g":
		e.machine.ToggleGlow()
	case "ctrl+r":
		e.machine.RefreshSpark()
	case "backspace":
		if draft.Text != "" {
			_, size := utf8.DecodeLastRuneInString(draft.Text)
			e.machine.SetText(draft.Text[:len(draft.Text)-size])
		}
	case "space", " ":
		e.machine.SetText(draft.Text + " ")
	default:
		if msg.Type == tea.KeyRunes {
			e.machine.SetText(draft.Text + string(msg.Runes))
		}
	}
	return nil
}

func (e *editor) handlePointsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return e.run(e.machine.CancelPoints)
	case "enter":
		return e.run(e.machine.FinishPoints)
	case "+", "=":
		_ = e.machine.RotationUp()
	case "-", "_":
		_ = e.machine.RotationDown()
	case "up", "k":
		e.movePointCursor(0, -cursorStep)
	case "down", "j":
		e.movePointCursor(0, cursorStep)
	case "left", "h":
		e.movePointCursor(-cursorStep, 0)
	case "right", "l":
		e.movePointCursor(cursorStep, 0)
	case "space", " ":
		_ = e.machine.Click(e.ctx, e.screenOf(e.pointCursor))
	}
	return nil
}

func (e *editor) moveCellCursor(delta int) {
	if e.diagram == nil || len(e.diagram.Cells) == 0 {
		return
	}
	prev := e.selectedCell()
	n := len(e.diagram.Cells)
	switch {
	case e.cellCursor < 0 && delta > 0:
		e.cellCursor = 0
	case e.cellCursor < 0:
		e.cellCursor = n - 1
	default:
		e.cellCursor = ((e.cellCursor+delta)%n + n) % n
	}
	next := e.selectedCell()
	if prev != nil {
		e.machine.PointerLeave(prev, next)
	} else {
		e.machine.PointerEnter(next)
	}
}

func (e *editor) selectedCell() *mosaic.Cell {
	if e.diagram == nil || e.cellCursor < 0 || e.cellCursor >= len(e.diagram.Cells) {
		return nil
	}
	return e.diagram.Cells[e.cellCursor]
}

func (e *editor) movePointCursor(dx, dy float64) {
	e.pointCursor = geom.Pt(e.pointCursor.X+dx, e.pointCursor.Y+dy).Clamp(-1, 1)
}

// screenOf maps a normalized point to absolute container pixels.
func (e *editor) screenOf(p geom.Point) geom.Point {
	vp := e.viewport()
	return vp.Screen(vp.ToPixel(p))
}

func (e *editor) viewport() viewport.Viewport {
	margin := viewport.DefaultMargin
	if e.diagram != nil {
		margin = e.diagram.Margin
	}
	return viewport.New(e.Size(), margin)
}

func (e *editor) canvasRows() int {
	return max(e.height-headerRows-footerRows, 1)
}

// charCenter is the container pixel at the center of a terminal character.
func charCenter(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*charW, (float64(row)+0.5)*charH)
}

// =============================================================================
// View
// =============================================================================

func (e *editor) View() string {
	if e.busy {
		return e.frozen
	}
	return e.draw()
}

func (e *editor) draw() string {
	var b strings.Builder

	b.WriteString(editorTitleStyle.Render("Reflections"))
	b.WriteString("  ")
	b.WriteString(editorModeStyle.Render(e.status()))
	b.WriteString("\n")

	b.WriteString(e.canvas())

	footer := e.footer()
	for len(footer) < footerRows {
		footer = append(footer, "")
	}
	b.WriteString(strings.Join(footer[:footerRows], "\n"))
	return b.String()
}

func (e *editor) status() string {
	ws := e.machine.WorkingSet()
	s := fmt.Sprintf("%s · %d points · rotation %d · %d shards",
		e.machine.Mode(), len(ws.Points), ws.Rotation, len(e.machine.Shards()))
	if !e.machine.Persisted() {
		s += " · unsaved"
	}
	if e.busy {
		s += " · working…"
	}
	return s
}

// canvas draws the diagram one character at a time. Runs of characters
// with the same style are rendered together.
func (e *editor) canvas() string {
	rows := e.canvasRows()
	vp := e.viewport()

	type markGlyph struct {
		ch    string
		style lipgloss.Style
	}
	marks := map[[2]int]markGlyph{}
	mark := func(p geom.Point, ch string, st lipgloss.Style) {
		s := vp.Screen(vp.ToPixel(p))
		marks[[2]int{int(s.X / charW), int(s.Y / charH)}] = markGlyph{ch, st}
	}
	if e.pointsEditor {
		for _, p := range e.workingSet.Points {
			mark(p, "+", editorPointStyle)
		}
		mark(e.pointCursor, "×", editorCursorStyle)
	}
	selected := e.selectedCell()

	var b strings.Builder
	for row := 0; row < rows; row++ {
		var (
			run      strings.Builder
			runStyle *lipgloss.Style
		)
		flush := func() {
			if runStyle != nil && run.Len() > 0 {
				b.WriteString(runStyle.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < e.width; col++ {
			ch, st := e.glyph(vp, col, row, selected)
			if m, ok := marks[[2]int{col, row}]; ok {
				ch, st = m.ch, m.style
			}
			if runStyle == nil || !sameStyle(*runStyle, st) {
				flush()
				s := st
				runStyle = &s
			}
			run.WriteString(ch)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

func (e *editor) glyph(vp viewport.Viewport, col, row int, selected *mosaic.Cell) (string, lipgloss.Style) {
	screen := charCenter(col, row)
	if e.diagram == nil || !vp.Inside(screen) {
		return " ", lipgloss.NewStyle()
	}
	cell := e.diagram.CellAt(vp.FromScreen(screen))
	switch {
	case cell == nil:
		return "·", editorDiscStyle
	case cell.Shard == nil:
		if cell.Highlighted || cell == selected {
			return "▓", editorCursorStyle
		}
		return "░", editorEmptyStyle
	case cell.Shard.Tarnished:
		return "▒", editorTarnishStyle
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(sink.TintColor(cell.Shard.Tint)))
	if cell.Highlighted || cell == selected {
		return "▓", st.Bold(true)
	}
	if cell.Shard.Glow > 0 {
		return "█", st.Bold(true)
	}
	return "▒", st
}

// sameStyle compares the properties the canvas sets.
func sameStyle(a, b lipgloss.Style) bool {
	return a.GetForeground() == b.GetForeground() && a.GetBold() == b.GetBold()
}

func (e *editor) footer() []string {
	var lines []string
	if h := e.hover; h != nil {
		if h.Claimed {
			lines = append(lines, fmt.Sprintf("%s %s %s",
				StyleNumber.Render(fmt.Sprintf("#%d", h.Original)),
				editorSparkStyle.Render(h.Spark),
				StyleValue.Render(h.Text)))
		} else {
			lines = append(lines, StyleNumber.Render(fmt.Sprintf("#%d", h.Original))+" "+StyleDim.Render("unclaimed"))
		}
	} else {
		lines = append(lines, "")
	}

	switch {
	case e.form != nil:
		d := e.form.draft
		title := "New shard"
		if e.form.kind == interact.FormEdit {
			title = "Edit shard"
		}
		tint := lipgloss.NewStyle().Foreground(lipgloss.Color(sink.TintColor(d.Tint))).Render("██")
		glow := "off"
		if d.Glow > 0 {
			glow = "on"
		}
		lines = append(lines,
			StyleTitle.Render(title)+StyleDim.Render(fmt.Sprintf("  point %d", d.Point)),
			editorSparkStyle.Render(d.Spark),
			StyleValue.Render(d.Text)+editorCursorStyle.Render("▏"),
			fmt.Sprintf("tint %s %d  glow %s", tint, d.Tint, glow),
		)
	case e.pointsEditor:
		lines = append(lines,
			StyleTitle.Render("Edit points"),
			StyleDim.Render(fmt.Sprintf("%d points, rotation %d", len(e.workingSet.Points), e.workingSet.Rotation)),
		)
	}

	if e.alert != nil {
		lines = append(lines, editorAlertStyle.Render(iconError+" "+errors.UserMessage(e.alert)))
	}
	lines = append(lines, editorHelpStyle.Render(e.help()))
	if len(lines) > footerRows {
		lines = append(lines[:footerRows-1], lines[len(lines)-1])
	}
	return lines
}

func (e *editor) help() string {
	switch e.machine.Mode() {
	case interact.CreatingShard:
		return "type to answer  tab tint  ctrl+g glow  ctrl+r new spark  ⏎ save  esc cancel"
	case interact.EditingShard:
		return "type to answer  tab tint  ctrl+g glow  ctrl+d delete  ⏎ save  esc cancel"
	case interact.EditingPoints:
		return "click or space add point  arrows move  +/- rotation  ⏎ save  esc discard"
	}
	return "click or ⏎ open cell  ←/→ select  p edit points  q quit"
}

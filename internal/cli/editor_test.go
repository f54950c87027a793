package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/reflections/pkg/clock/clocktest"
	"github.com/matzehuels/reflections/pkg/config"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/interact"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
	"github.com/matzehuels/reflections/pkg/store/memory"
)

const testUser = "tester"

type editorFixture struct {
	e     *editor
	store *memory.Store
	clock *clocktest.Fake
	ctx   context.Context
}

func newEditorFixture(t *testing.T, ws *mosaic.WorkingSet) *editorFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	if ws != nil {
		if err := s.CreatePattern(ctx, store.UserID(testUser), *ws); err != nil {
			t.Fatalf("CreatePattern: %v", err)
		}
	}
	c := clocktest.New()
	local := store.NewLocal(s, store.UserID(testUser), store.DefaultLimits())
	cfg := interact.DefaultConfig()
	cfg.Clock = c
	cfg.Renderer = mosaic.NewRenderer(mosaic.WithEdgeMode(mosaic.EdgeClip))
	f := &editorFixture{e: newEditor(ctx, local, cfg), store: s, clock: c, ctx: ctx}
	f.send(startMsg{})
	return f
}

// send delivers msgs to the editor and runs the commands they return
// inline, feeding each result back until none is left.
func (f *editorFixture) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		_, cmd := f.e.Update(msg)
		for cmd != nil {
			next := cmd()
			if _, ok := next.(tea.QuitMsg); ok {
				break
			}
			_, cmd = f.e.Update(next)
		}
	}
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestEditorStart(t *testing.T) {
	f := newEditorFixture(t, nil)

	if f.e.machine.Mode() != interact.Viewing {
		t.Errorf("Mode = %v, want viewing", f.e.machine.Mode())
	}
	if f.e.diagram == nil {
		t.Fatal("no diagram shown after start")
	}
	view := f.e.View()
	if !strings.Contains(view, "Reflections") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "unsaved") {
		t.Error("default working set should be reported as unsaved")
	}
	if got := strings.Count(view, "\n"); got != headerRows+f.e.canvasRows()+footerRows-1 {
		t.Errorf("view has %d newlines", got)
	}
}

func TestEditorResize(t *testing.T) {
	f := newEditorFixture(t, nil)
	f.send(tea.WindowSizeMsg{Width: 100, Height: 40})

	size := f.e.Size()
	if size.Width != 100*charW {
		t.Errorf("Width = %v, want %v", size.Width, 100*charW)
	}
	if want := float64(40-headerRows-footerRows) * charH; size.Height != want {
		t.Errorf("Height = %v, want %v", size.Height, want)
	}
}

func TestEditorQuit(t *testing.T) {
	f := newEditorFixture(t, nil)

	for _, msg := range []tea.KeyMsg{key(tea.KeyCtrlC), runes("q")} {
		_, cmd := f.e.Update(msg)
		if cmd == nil {
			t.Fatalf("%q: no command returned", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q: command did not quit", msg.String())
		}
	}
}

func TestEditorPoints(t *testing.T) {
	f := newEditorFixture(t, nil)

	f.send(runes("p"))
	if f.e.machine.Mode() != interact.EditingPoints || !f.e.pointsEditor {
		t.Fatalf("Mode = %v, points editor %v", f.e.machine.Mode(), f.e.pointsEditor)
	}

	for range 10 {
		f.send(key(tea.KeyRight))
	}
	if !f.e.pointCursor.Near(geom.Pt(0.5, 0), 1e-9) {
		t.Fatalf("cursor = %v, want (0.5, 0)", f.e.pointCursor)
	}
	f.send(key(tea.KeySpace))
	f.clock.Advance(time.Second)

	ws := f.e.machine.WorkingSet()
	if len(ws.Points) != 2 {
		t.Fatalf("points = %v", ws.Points)
	}
	if !ws.Points[1].Near(geom.Pt(0.5, 0), 1e-6) {
		t.Errorf("added point = %v", ws.Points[1])
	}

	f.send(runes("+"))
	if f.e.machine.WorkingSet().Rotation != 1 {
		t.Errorf("Rotation = %d, want 1", f.e.machine.WorkingSet().Rotation)
	}
	if !strings.Contains(f.e.View(), "Edit points") {
		t.Error("view missing point editor")
	}

	f.send(key(tea.KeyEnter))
	if f.e.machine.Mode() != interact.Viewing || f.e.pointsEditor {
		t.Fatalf("Mode = %v after save", f.e.machine.Mode())
	}
	saved, err := f.store.GetPattern(f.ctx, store.UserID(testUser))
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if len(saved.Points) != 2 || saved.Rotation != 1 {
		t.Errorf("saved = %+v", saved)
	}
}

func TestEditorPointsDiscard(t *testing.T) {
	f := newEditorFixture(t, nil)

	f.send(runes("p"))
	f.send(key(tea.KeyUp))
	f.send(key(tea.KeySpace))
	f.send(key(tea.KeyEscape))

	if f.e.machine.Mode() != interact.Viewing {
		t.Fatalf("Mode = %v", f.e.machine.Mode())
	}
	if n := len(f.e.machine.WorkingSet().Points); n != 1 {
		t.Errorf("points = %d after discard, want 1", n)
	}
	if _, err := f.store.GetPattern(f.ctx, store.UserID(testUser)); err == nil {
		t.Error("discarded points were persisted")
	}
}

func TestEditorShardForm(t *testing.T) {
	f := newEditorFixture(t, &mosaic.WorkingSet{Points: []geom.Point{
		geom.Pt(0.5, 0.1), geom.Pt(-0.3, 0.4), geom.Pt(0.2, -0.6), geom.Pt(0.7, 0.5),
	}})
	if len(f.e.diagram.Cells) == 0 {
		t.Fatal("no cells rendered")
	}

	f.send(key(tea.KeyTab))
	cell := f.e.selectedCell()
	if cell == nil {
		t.Fatal("tab did not select a cell")
	}
	f.send(key(tea.KeyEnter))
	if f.e.machine.Mode() != interact.CreatingShard {
		t.Fatalf("Mode = %v, want creating", f.e.machine.Mode())
	}
	f.clock.Advance(interact.DefaultRevealDelay)
	if f.e.form == nil || f.e.form.kind != interact.FormCreate {
		t.Fatal("form not revealed")
	}

	f.send(runes("sea"))
	f.send(key(tea.KeySpace))
	f.send(runes("glass"))
	f.send(key(tea.KeyBackspace))
	f.send(key(tea.KeyTab))
	if d, _ := f.e.machine.Draft(); d.Text != "sea glas" || d.Tint != 1 {
		t.Errorf("draft = %+v", d)
	}
	if !strings.Contains(f.e.View(), "New shard") {
		t.Error("view missing form")
	}

	f.send(key(tea.KeyEnter))
	if f.e.machine.Mode() != interact.Viewing || f.e.form != nil {
		t.Fatalf("Mode = %v after submit", f.e.machine.Mode())
	}
	shards, err := f.store.ListShards(f.ctx, store.UserID(testUser))
	if err != nil {
		t.Fatal(err)
	}
	if len(shards) != 1 || shards[0].Text != "sea glas" || shards[0].Point != cell.Original {
		t.Errorf("shards = %+v", shards)
	}
}

func TestEditorCellCursorWraps(t *testing.T) {
	f := newEditorFixture(t, &mosaic.WorkingSet{Points: []geom.Point{
		geom.Pt(0.5, 0), geom.Pt(-0.5, 0),
	}})
	n := len(f.e.diagram.Cells)
	if n == 0 {
		t.Fatal("no cells rendered")
	}

	f.send(key(tea.KeyShiftTab))
	if f.e.cellCursor != n-1 {
		t.Errorf("cursor = %d, want last cell %d", f.e.cellCursor, n-1)
	}
	f.send(key(tea.KeyTab))
	if f.e.cellCursor != 0 {
		t.Errorf("cursor = %d, want 0 after wrap", f.e.cellCursor)
	}
}

func TestEditorMouseOutsideCanvas(t *testing.T) {
	f := newEditorFixture(t, nil)
	f.send(runes("p"))

	// Row 0 is the title bar.
	f.send(tea.MouseMsg{X: 40, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if n := len(f.e.machine.WorkingSet().Points); n != 1 {
		t.Errorf("points = %d, click on the title bar added a point", n)
	}
}

func TestCharCenter(t *testing.T) {
	got := charCenter(2, 3)
	if want := geom.Pt(2.5*charW, 3.5*charH); got != want {
		t.Errorf("charCenter(2, 3) = %v, want %v", got, want)
	}
}

// gatedBackend blocks CreateShard until release is closed.
type gatedBackend struct {
	interact.Backend
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBackend) CreateShard(ctx context.Context, d shard.Draft) ([]shard.Shard, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Backend.CreateShard(ctx, d)
}

func TestEditorBackendCallsLeaveLoopFree(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	ws := mosaic.WorkingSet{Points: []geom.Point{geom.Pt(0.5, 0.1), geom.Pt(-0.3, 0.4), geom.Pt(0.2, -0.6)}}
	if err := s.CreatePattern(ctx, store.UserID(testUser), ws); err != nil {
		t.Fatal(err)
	}
	b := &gatedBackend{
		Backend: store.NewLocal(s, store.UserID(testUser), store.DefaultLimits()),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := clocktest.New()
	cfg := interact.DefaultConfig()
	cfg.Clock = c
	cfg.Renderer = mosaic.NewRenderer(mosaic.WithEdgeMode(mosaic.EdgeClip))
	f := &editorFixture{e: newEditor(ctx, b, cfg), store: s, clock: c, ctx: ctx}
	f.send(startMsg{}, key(tea.KeyTab), key(tea.KeyEnter))
	c.Advance(interact.DefaultRevealDelay)
	f.send(runes("x"))

	_, cmd := f.e.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("submit did not return a command")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-b.entered

	// CreateShard is blocked; Update must still return at once.
	f.e.Update(runes("y"))
	f.e.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if !strings.Contains(f.e.View(), "working") {
		t.Error("view does not show the pending operation")
	}
	if f.e.width == 100 {
		t.Error("resize applied while the operation runs")
	}
	if _, quit := f.e.Update(key(tea.KeyCtrlC)); quit == nil {
		t.Error("ctrl+c ignored while busy")
	}

	close(b.release)
	f.send(<-done)

	if f.e.busy || f.e.machine.Mode() != interact.Viewing {
		t.Fatalf("busy = %v, Mode = %v", f.e.busy, f.e.machine.Mode())
	}
	if f.e.width != 100 {
		t.Errorf("width = %d, held resize not applied", f.e.width)
	}
	shards, err := s.ListShards(ctx, store.UserID(testUser))
	if err != nil {
		t.Fatal(err)
	}
	if len(shards) != 1 || shards[0].Text != "x" {
		t.Errorf("shards = %+v", shards)
	}
}

func TestEditorHoldsTimersWhileBusy(t *testing.T) {
	f := newEditorFixture(t, nil)
	cmd := f.e.run(func(context.Context) error { return nil })

	fired := false
	tm := &teaTimer{fn: func() { fired = true }}
	tm.state.Store(timerQueued)
	f.e.Update(timerMsg{t: tm})
	if fired {
		t.Fatal("timer fired while busy")
	}

	f.send(cmd())
	if !fired {
		t.Error("held timer did not fire")
	}
}

func TestEditorConfiguredLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Mosaic.RotationMax = 0
	cfg.Mosaic.TintMax = 0

	ctx := context.Background()
	s := memory.New()
	c := clocktest.New()
	limits := storeLimits(cfg)
	mcfg := cfg.MachineConfig()
	mcfg.Clock = c
	mcfg.Renderer = mosaic.NewRenderer(mosaic.WithEdgeMode(mosaic.EdgeClip))
	f := &editorFixture{e: newEditor(ctx, store.NewLocal(s, store.UserID(testUser), limits), mcfg), store: s, clock: c, ctx: ctx}

	if got := f.e.machine.Limits(); got != limits.Shard {
		t.Errorf("machine shard limits = %+v, store = %+v", got, limits.Shard)
	}

	f.send(startMsg{}, runes("p"), runes("+"))
	if r := f.e.machine.WorkingSet().Rotation; r != 0 {
		t.Fatalf("Rotation = %d, limit is 0", r)
	}
	f.send(key(tea.KeyEnter))
	if f.e.alert != nil || f.e.machine.Mode() != interact.Viewing {
		t.Fatalf("save failed: alert %v, Mode %v", f.e.alert, f.e.machine.Mode())
	}
	saved, err := s.GetPattern(ctx, store.UserID(testUser))
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if saved.Rotation != 0 {
		t.Errorf("saved rotation = %d", saved.Rotation)
	}
}

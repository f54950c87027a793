package interact

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reflections/pkg/clock"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// Default delays.
const (
	DefaultRevealDelay   = 300 * time.Millisecond
	DefaultDebounceDelay = 50 * time.Millisecond
)

// Config tunes a Machine. Zero delays and a nil renderer, clock or logger
// take defaults. Limits are used as given, so a zero RotationMax forbids
// rotation and a zero PointsMax allows any number of points; only negative
// limits fall back to the defaults. Start from DefaultConfig to get the
// stock limits.
type Config struct {
	RevealDelay   time.Duration
	HoverDelay    time.Duration
	DebounceDelay time.Duration
	Limits        shard.Limits
	PointsMax     int
	RotationMax   int
	Renderer      *mosaic.Renderer
	Clock         clock.Clock
	Logger        *log.Logger
	Rand          *rand.Rand
}

// DefaultConfig returns a Config carrying the default limits.
func DefaultConfig() Config {
	return Config{
		Limits:      shard.DefaultLimits(),
		PointsMax:   mosaic.DefaultPointsMax,
		RotationMax: mosaic.DefaultRotationMax,
	}
}

func (c Config) withDefaults() Config {
	if c.RevealDelay <= 0 {
		c.RevealDelay = DefaultRevealDelay
	}
	if c.HoverDelay <= 0 {
		c.HoverDelay = mosaic.DefaultHoverDelay
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	def := DefaultConfig()
	if c.Limits.TintMax < 0 {
		c.Limits.TintMax = def.Limits.TintMax
	}
	if c.Limits.GlowMax < 0 {
		c.Limits.GlowMax = def.Limits.GlowMax
	}
	if c.Limits.PointMax < 0 {
		c.Limits.PointMax = def.Limits.PointMax
	}
	if c.PointsMax < 0 {
		c.PointsMax = def.PointsMax
	}
	if c.RotationMax < 0 {
		c.RotationMax = def.RotationMax
	}
	if c.Renderer == nil {
		c.Renderer = mosaic.NewRenderer()
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}

// Machine is the interaction state machine.
type Machine struct {
	cfg     Config
	backend Backend
	host    Host
	log     *log.Logger

	mode      Mode
	points    *mosaic.PointsState
	persisted bool
	shards    []shard.Shard
	diagram   *mosaic.Diagram
	hover     *mosaic.Hover
	hovered   *mosaic.Cell

	draft       *shard.Draft
	editingID   string
	formVisible bool
	reveal      clock.Timer
	debounce    clock.Timer
}

// New returns a machine in viewing mode with the default working set. Call
// Start to load the user's data.
func New(b Backend, h Host, cfg Config) *Machine {
	cfg = cfg.withDefaults()
	m := &Machine{
		cfg:     cfg,
		backend: b,
		host:    h,
		log:     cfg.Logger,
		mode:    Viewing,
		points:  mosaic.NewPointsState(cfg.PointsMax, cfg.RotationMax),
	}
	m.hover = mosaic.NewHover(cfg.Clock, cfg.HoverDelay, h.ShowHover)
	return m
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Draft returns a copy of the shard draft and whether one exists.
func (m *Machine) Draft() (shard.Draft, bool) {
	if m.draft == nil {
		return shard.Draft{}, false
	}
	return *m.draft, true
}

// FormVisible reports whether the shard form has been revealed.
func (m *Machine) FormVisible() bool { return m.formVisible }

// WorkingSet returns a copy of the current points working set.
func (m *Machine) WorkingSet() mosaic.WorkingSet { return m.points.Get() }

// Limits returns the shard limits in effect.
func (m *Machine) Limits() shard.Limits { return m.cfg.Limits }

// Persisted reports whether the working set exists in the backend.
func (m *Machine) Persisted() bool { return m.persisted }

// Diagram returns the displayed diagram, which may be nil.
func (m *Machine) Diagram() *mosaic.Diagram { return m.diagram }

// Shards returns the bound shards.
func (m *Machine) Shards() []shard.Shard { return append([]shard.Shard(nil), m.shards...) }

// Hover returns the hover controller of the displayed diagram.
func (m *Machine) Hover() *mosaic.Hover { return m.hover }

// Start enters viewing mode: it loads points and shards, renders and binds.
// A fetch failure is reported to the host and returned; whatever could be
// loaded is still displayed.
func (m *Machine) Start(ctx context.Context) error {
	return m.enterViewing(ctx, nil)
}

// Click handles a click at an absolute container position.
//
// In viewing mode it opens the form for the cell under the pointer. While a
// shard form is open any click on the diagram cancels the form. In the point
// editor a click inside the viewport circle appends a point.
func (m *Machine) Click(ctx context.Context, screen geom.Point) error {
	vp := m.viewport()
	switch m.mode {
	case Viewing:
		cell := m.diagram.CellAt(vp.FromScreen(screen))
		if cell == nil {
			return nil
		}
		return m.ClickCell(ctx, cell)
	case CreatingShard, EditingShard:
		return m.Cancel(ctx)
	case EditingPoints:
		if !vp.Inside(screen) {
			return nil
		}
		return m.addPoint(vp.ToNormalized(vp.FromScreen(screen)))
	}
	return nil
}

// ClickCell opens the create form for an unclaimed cell or the edit form for
// a claimed one. It only acts in viewing mode.
func (m *Machine) ClickCell(ctx context.Context, cell *mosaic.Cell) error {
	if m.mode != Viewing || cell == nil {
		m.log.Debug("click ignored", "mode", m.mode)
		return nil
	}
	if s := cell.Shard; s != nil {
		m.enterEditingShard(*s)
	} else {
		m.enterCreatingShard(cell.Original)
	}
	return nil
}

// EditPoints opens the point editor from viewing mode.
func (m *Machine) EditPoints(ctx context.Context) error {
	if m.mode != Viewing {
		m.log.Debug("edit points ignored", "mode", m.mode)
		return nil
	}
	m.exit()
	m.mode = EditingPoints
	m.points.Snapshot()
	m.host.HideForms()
	m.host.ShowPointsEditor(m.points.Get())
	m.render()
	m.log.Debug("entered", "mode", m.mode)
	return nil
}

// FinishPoints persists the working set and returns to viewing mode. The
// set is created when nothing was stored yet and updated otherwise. On
// failure the editor stays open with the edits intact.
func (m *Machine) FinishPoints(ctx context.Context) error {
	if m.mode != EditingPoints {
		return nil
	}
	m.flushDebounce()
	ws := m.points.Get()
	if err := ws.Validate(m.cfg.PointsMax, m.cfg.RotationMax); err != nil {
		m.host.Alert(err)
		return err
	}
	var err error
	if m.persisted {
		err = m.backend.UpdatePoints(ctx, ws)
	} else {
		err = m.backend.CreatePoints(ctx, ws)
	}
	if err != nil {
		m.log.Error("save points", "err", err)
		m.host.Alert(err)
		return err
	}
	m.persisted = true
	m.points.Commit()
	m.log.Info("points saved", "points", len(ws.Points), "rotation", ws.Rotation)
	return m.enterViewing(ctx, nil)
}

// CancelPoints discards the edits made since the editor opened and returns
// to viewing mode without persisting anything.
func (m *Machine) CancelPoints(ctx context.Context) error {
	if m.mode != EditingPoints {
		return nil
	}
	m.stopDebounce()
	m.points.Restore()
	return m.enterViewing(ctx, nil)
}

// RotationUp increments the rotation count and re-renders immediately.
func (m *Machine) RotationUp() error { return m.rotate(+1) }

// RotationDown decrements the rotation count and re-renders immediately.
func (m *Machine) RotationDown() error { return m.rotate(-1) }

func (m *Machine) rotate(delta int) error {
	if m.mode != EditingPoints {
		return nil
	}
	if err := m.points.SetRotation(m.points.Rotation() + delta); err != nil {
		m.log.Debug("rotation at bound", "rotation", m.points.Rotation())
		return nil
	}
	m.stopDebounce()
	m.render()
	m.host.ShowPointsEditor(m.points.Get())
	return nil
}

// SetText sets the draft text.
func (m *Machine) SetText(text string) {
	m.editDraft(func(d *shard.Draft) { d.Text = text })
}

// SetTint sets the draft tint. Range checks happen on submit.
func (m *Machine) SetTint(tint int) {
	m.editDraft(func(d *shard.Draft) { d.Tint = tint })
}

// ToggleGlow flips the draft glow between 0 and the maximum.
func (m *Machine) ToggleGlow() {
	m.editDraft(func(d *shard.Draft) {
		if d.Glow > 0 {
			d.Glow = 0
		} else {
			d.Glow = m.cfg.Limits.GlowMax
		}
	})
}

// RefreshSpark draws a new spark. Only the create form offers this.
func (m *Machine) RefreshSpark() {
	if m.mode != CreatingShard {
		return
	}
	m.editDraft(func(d *shard.Draft) { d.Spark = shard.RandomSpark(m.cfg.Rand) })
}

func (m *Machine) editDraft(f func(*shard.Draft)) {
	if !m.mode.InForm() || m.draft == nil {
		return
	}
	f(m.draft)
	if m.formVisible {
		m.host.ShowShardForm(m.formKind(), *m.draft)
	}
}

// Submit validates the draft and creates or updates the shard. A validation
// error is reported without any backend call and leaves the form open; so
// does a backend failure.
func (m *Machine) Submit(ctx context.Context) error {
	if !m.mode.InForm() || m.draft == nil {
		return nil
	}
	v := shard.NewValidator(m.cfg.Limits.ForPoints(m.points.Len()))
	res := v.Validate(*m.draft)
	if err := res.Err(); err != nil {
		m.host.Alert(err)
		return err
	}

	var (
		list []shard.Shard
		err  error
	)
	if m.mode == CreatingShard {
		list, err = m.backend.CreateShard(ctx, res.Draft)
	} else {
		list, err = m.backend.UpdateShard(ctx, m.editingID, res.Draft)
	}
	if err != nil {
		m.log.Error("save shard", "mode", m.mode, "err", err)
		m.host.Alert(err)
		return err
	}
	m.log.Info("shard saved", "mode", m.mode, "point", res.Draft.Point)
	return m.enterViewing(ctx, list)
}

// Delete removes the shard being edited.
func (m *Machine) Delete(ctx context.Context) error {
	if m.mode != EditingShard {
		return nil
	}
	list, err := m.backend.DeleteShard(ctx, m.editingID)
	if err != nil {
		m.log.Error("delete shard", "id", m.editingID, "err", err)
		m.host.Alert(err)
		return err
	}
	m.log.Info("shard deleted", "id", m.editingID)
	return m.enterViewing(ctx, list)
}

// Cancel leaves a shard form or discards the point editor.
func (m *Machine) Cancel(ctx context.Context) error {
	switch m.mode {
	case CreatingShard, EditingShard:
		return m.enterViewing(ctx, nil)
	case EditingPoints:
		return m.CancelPoints(ctx)
	}
	return nil
}

// PointerEnter starts hovering a cell. Hover only applies in viewing mode.
func (m *Machine) PointerEnter(cell *mosaic.Cell) {
	if m.mode != Viewing {
		return
	}
	m.hover.Enter(cell)
	m.hovered = cell
}

// PointerLeave ends hovering from, moving to next (which may be nil).
func (m *Machine) PointerLeave(from, next *mosaic.Cell) {
	if m.mode != Viewing {
		return
	}
	m.hover.Leave(from, next)
	m.hovered = next
}

// PointerMove tracks the pointer at an absolute container position and
// emits the matching leave and enter events.
func (m *Machine) PointerMove(screen geom.Point) {
	if m.mode != Viewing {
		return
	}
	cell := m.diagram.CellAt(m.viewport().FromScreen(screen))
	if cell == m.hovered {
		return
	}
	if m.hovered != nil {
		m.PointerLeave(m.hovered, cell)
		return
	}
	m.PointerEnter(cell)
}

// Resize re-renders for the host's current size.
func (m *Machine) Resize() {
	m.render()
}

func (m *Machine) enterCreatingShard(original int) {
	m.exit()
	m.mode = CreatingShard
	m.draft = &shard.Draft{Spark: shard.RandomSpark(m.cfg.Rand), Point: original}
	m.editingID = ""
	m.host.HideForms()
	m.scheduleReveal()
	m.log.Debug("entered", "mode", m.mode, "point", original)
}

func (m *Machine) enterEditingShard(s shard.Shard) {
	m.exit()
	m.mode = EditingShard
	d := shard.DraftOf(s)
	m.draft = &d
	m.editingID = s.ID
	m.host.HideForms()
	m.scheduleReveal()
	m.log.Debug("entered", "mode", m.mode, "shard", s.ID)
}

// enterViewing fetches points and, unless a fresh list is supplied, shards;
// then renders and binds. Fetch failures keep the previous data.
func (m *Machine) enterViewing(ctx context.Context, fresh []shard.Shard) error {
	m.exit()
	m.mode = Viewing
	m.host.HideForms()

	var firstErr error
	ws, err := m.backend.GetPoints(ctx)
	switch {
	case err == nil:
		m.points.Set(ws)
		m.persisted = true
	case errors.IsNotFound(err):
		m.points.Set(mosaic.DefaultWorkingSet())
		m.persisted = false
	default:
		m.log.Error("fetch points", "err", err)
		firstErr = err
	}

	if fresh == nil {
		fresh, err = m.backend.ListShards(ctx)
		if err != nil {
			m.log.Error("fetch shards", "err", err)
			if firstErr == nil {
				firstErr = err
			}
			fresh = m.shards
		}
	}
	valid, rejected := shard.NewValidator(m.cfg.Limits).Revalidate(fresh)
	for _, r := range rejected {
		m.log.Warn("dropping invalid shard", "point", r.Draft.Point, "err", r.Err())
	}
	m.shards = valid

	m.render()
	if firstErr != nil {
		m.host.Alert(firstErr)
	}
	return firstErr
}

// exit runs the exit actions common to every mode.
func (m *Machine) exit() {
	if m.reveal != nil {
		m.reveal.Stop()
		m.reveal = nil
	}
	m.formVisible = false
	m.hover.Clear()
	m.hovered = nil
	if m.mode.InForm() {
		m.draft = nil
		m.editingID = ""
	}
	if m.mode == EditingPoints {
		m.stopDebounce()
	}
}

func (m *Machine) scheduleReveal() {
	mode := m.mode
	m.reveal = m.cfg.Clock.AfterFunc(m.cfg.RevealDelay, func() {
		if m.mode != mode || m.draft == nil {
			return
		}
		m.reveal = nil
		m.formVisible = true
		m.host.ShowShardForm(m.formKind(), *m.draft)
	})
}

func (m *Machine) formKind() FormKind {
	if m.mode == EditingShard {
		return FormEdit
	}
	return FormCreate
}

func (m *Machine) addPoint(p geom.Point) error {
	if err := m.points.Append(p); err != nil {
		m.host.Alert(err)
		return err
	}
	m.stopDebounce()
	m.debounce = m.cfg.Clock.AfterFunc(m.cfg.DebounceDelay, func() {
		m.debounce = nil
		if m.mode == EditingPoints {
			m.render()
			m.host.ShowPointsEditor(m.points.Get())
		}
	})
	return nil
}

func (m *Machine) flushDebounce() {
	if m.debounce != nil {
		m.stopDebounce()
		m.render()
	}
}

func (m *Machine) stopDebounce() {
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
}

// render rebuilds the diagram for the current working set. An empty
// container or a failed pass keeps the previous diagram on screen.
func (m *Machine) render() {
	d, err := m.cfg.Renderer.Render(m.points.Get(), m.host.Size())
	if err != nil {
		m.log.Error("render aborted", "err", err)
		return
	}
	if d == nil {
		m.log.Debug("render skipped: empty container")
		return
	}
	mosaic.Bind(d, m.shards)
	m.diagram = d
	m.hover.SetDiagram(d)
	m.hovered = nil
	m.host.ShowDiagram(d)
}

func (m *Machine) viewport() viewport.Viewport {
	return viewport.New(m.host.Size(), m.cfg.Renderer.Margin())
}

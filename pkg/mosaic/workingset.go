package mosaic

import (
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
)

// Limits on a working set.
const (
	DefaultRotationMax = 12
	DefaultPointsMax   = 256
)

// WorkingSet is the user's ordered points and rotation count. Point
// identity is the slice index.
type WorkingSet struct {
	Points   []geom.Point `json:"points"`
	Rotation int          `json:"rotationCount"`
}

// DefaultWorkingSet is the lazily created set: one point at the center and
// no rotation.
func DefaultWorkingSet() WorkingSet {
	return WorkingSet{Points: []geom.Point{{}}}
}

// Clone returns a deep copy.
func (ws WorkingSet) Clone() WorkingSet {
	out := ws
	if ws.Points != nil {
		out.Points = append([]geom.Point(nil), ws.Points...)
	}
	return out
}

// Clamp returns a copy with every coordinate limited to [-1, 1].
func (ws WorkingSet) Clamp() WorkingSet {
	out := ws.Clone()
	for i, p := range out.Points {
		out.Points[i] = p.Clamp(-1, 1)
	}
	return out
}

// Validate checks point count, finiteness and rotation bounds.
func (ws WorkingSet) Validate(maxPoints, maxRotation int) error {
	if err := errors.ValidatePointCount(len(ws.Points), maxPoints); err != nil {
		return err
	}
	for i, p := range ws.Points {
		if err := errors.ValidateCoordinate(i, p.X); err != nil {
			return err
		}
		if err := errors.ValidateCoordinate(i, p.Y); err != nil {
			return err
		}
	}
	return errors.ValidateRotation(ws.Rotation, maxRotation)
}

// Equal reports whether both sets hold the same points and rotation.
func (ws WorkingSet) Equal(o WorkingSet) bool {
	if ws.Rotation != o.Rotation || len(ws.Points) != len(o.Points) {
		return false
	}
	for i := range ws.Points {
		if ws.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// PointsState owns the working set while the user edits it. A snapshot
// taken on entering the editor lets the edit be discarded.
type PointsState struct {
	ws          WorkingSet
	snapshot    *WorkingSet
	maxPoints   int
	maxRotation int
}

// NewPointsState returns a state holding the default working set.
func NewPointsState(maxPoints, maxRotation int) *PointsState {
	if maxRotation < 0 {
		maxRotation = DefaultRotationMax
	}
	return &PointsState{ws: DefaultWorkingSet(), maxPoints: maxPoints, maxRotation: maxRotation}
}

// Get returns a copy of the current working set.
func (s *PointsState) Get() WorkingSet { return s.ws.Clone() }

// Set replaces the working set with a clamped copy of ws.
func (s *PointsState) Set(ws WorkingSet) { s.ws = ws.Clamp() }

// Len is the number of points.
func (s *PointsState) Len() int { return len(s.ws.Points) }

// Rotation returns the current rotation count.
func (s *PointsState) Rotation() int { return s.ws.Rotation }

// RotationMax returns the configured upper bound.
func (s *PointsState) RotationMax() int { return s.maxRotation }

// Append adds a clamped point. It fails when the point is not finite or the
// set is full.
func (s *PointsState) Append(p geom.Point) error {
	if err := errors.ValidateCoordinate(len(s.ws.Points), p.X); err != nil {
		return err
	}
	if err := errors.ValidateCoordinate(len(s.ws.Points), p.Y); err != nil {
		return err
	}
	if err := errors.ValidatePointCount(len(s.ws.Points)+1, s.maxPoints); err != nil {
		return err
	}
	s.ws.Points = append(s.ws.Points, p.Clamp(-1, 1))
	return nil
}

// SetRotation sets the rotation count. It fails outside [0, RotationMax].
func (s *PointsState) SetRotation(n int) error {
	if err := errors.ValidateRotation(n, s.maxRotation); err != nil {
		return err
	}
	s.ws.Rotation = n
	return nil
}

// Clear drops all points and resets the rotation.
func (s *PointsState) Clear() {
	s.ws = WorkingSet{Points: []geom.Point{}}
}

// Snapshot records the current set for a later Restore.
func (s *PointsState) Snapshot() {
	snap := s.ws.Clone()
	s.snapshot = &snap
}

// Restore reverts to the last snapshot and reports whether one existed.
func (s *PointsState) Restore() bool {
	if s.snapshot == nil {
		return false
	}
	s.ws = *s.snapshot
	s.snapshot = nil
	return true
}

// Commit forgets the snapshot, keeping the current set.
func (s *PointsState) Commit() { s.snapshot = nil }

// Dirty reports whether the set changed since the snapshot.
func (s *PointsState) Dirty() bool {
	return s.snapshot != nil && !s.snapshot.Equal(s.ws)
}

package store

import (
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
)

// Limits are the server-side bounds on stored data.
type Limits struct {
	Shard       shard.Limits
	PointsMax   int
	RotationMax int
}

// DefaultLimits mirrors the client defaults.
func DefaultLimits() Limits {
	return Limits{
		Shard:       shard.DefaultLimits(),
		PointsMax:   mosaic.DefaultPointsMax,
		RotationMax: mosaic.DefaultRotationMax,
	}
}

// CheckPattern validates ws and returns a copy clamped to [-1, 1].
func (l Limits) CheckPattern(ws mosaic.WorkingSet) (mosaic.WorkingSet, error) {
	if err := ws.Validate(l.PointsMax, l.RotationMax); err != nil {
		return mosaic.WorkingSet{}, err
	}
	return ws.Clamp(), nil
}

// CheckDraft validates d and returns the normalized draft.
func (l Limits) CheckDraft(d shard.Draft) (shard.Draft, error) {
	res := shard.NewValidator(l.Shard).Validate(d)
	if err := res.Err(); err != nil {
		return shard.Draft{}, err
	}
	return res.Draft, nil
}

package interact

import (
	"context"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// Backend persists the working set and shards of the current user.
//
// GetPoints returns an error with a not-found code when nothing was stored
// yet. The shard mutations return the user's full shard list.
type Backend interface {
	GetPoints(ctx context.Context) (mosaic.WorkingSet, error)
	CreatePoints(ctx context.Context, ws mosaic.WorkingSet) error
	UpdatePoints(ctx context.Context, ws mosaic.WorkingSet) error

	ListShards(ctx context.Context) ([]shard.Shard, error)
	CreateShard(ctx context.Context, d shard.Draft) ([]shard.Shard, error)
	UpdateShard(ctx context.Context, id string, d shard.Draft) ([]shard.Shard, error)
	DeleteShard(ctx context.Context, id string) ([]shard.Shard, error)
}

// FormKind tells the host which shard form to show.
type FormKind int

const (
	FormCreate FormKind = iota
	FormEdit
)

func (k FormKind) String() string {
	if k == FormEdit {
		return "edit"
	}
	return "create"
}

// Host is the display surface driven by the machine.
type Host interface {
	// Size is the current container size.
	Size() viewport.Size
	// ShowDiagram replaces the displayed diagram.
	ShowDiagram(d *mosaic.Diagram)
	// ShowShardForm reveals (or refreshes) a shard form with the draft.
	ShowShardForm(kind FormKind, d shard.Draft)
	// ShowPointsEditor reveals the point editor.
	ShowPointsEditor(ws mosaic.WorkingSet)
	// HideForms hides the shard forms and the point editor.
	HideForms()
	// ShowHover displays the hovered point, or clears it when info is nil.
	ShowHover(info *mosaic.HoverInfo)
	// Alert reports an error to the user.
	Alert(err error)
}

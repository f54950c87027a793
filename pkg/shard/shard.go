// Package shard defines a shard (a spark answered by the user, colored and
// pinned to one point of the mosaic) together with its validation rules and
// the list of sparks a new shard can be drawn from.
package shard

// Shard is a persisted answer bound to an origin point.
type Shard struct {
	ID        string `json:"id"`
	Spark     string `json:"spark"`
	Text      string `json:"text"`
	Tint      int    `json:"tint"`
	Glow      int    `json:"glow"`
	Point     int    `json:"point"`
	Tarnished bool   `json:"tarnished,omitempty"`
}

// Draft is the editable working copy behind the create and edit forms.
type Draft struct {
	Spark string `json:"spark"`
	Text  string `json:"text"`
	Tint  int    `json:"tint"`
	Glow  int    `json:"glow"`
	Point int    `json:"point"`
}

// DraftOf copies the editable fields of s.
func DraftOf(s Shard) Draft {
	return Draft{Spark: s.Spark, Text: s.Text, Tint: s.Tint, Glow: s.Glow, Point: s.Point}
}

// Apply returns s with the editable fields of d. The origin point is kept:
// a shard never moves once created.
func (d Draft) Apply(s Shard) Shard {
	s.Spark, s.Text, s.Tint, s.Glow = d.Spark, d.Text, d.Tint, d.Glow
	return s
}

// New returns a shard built from d with the given id.
func (d Draft) New(id string) Shard {
	return Shard{ID: id, Spark: d.Spark, Text: d.Text, Tint: d.Tint, Glow: d.Glow, Point: d.Point}
}

// ByPoint indexes shards by origin point. When several shards claim the same
// point the last one wins.
func ByPoint(shards []Shard) map[int]Shard {
	m := make(map[int]Shard, len(shards))
	for _, s := range shards {
		m[s.Point] = s
	}
	return m
}

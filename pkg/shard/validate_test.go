package shard

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/reflections/pkg/errors"
)

func validDraft() Draft {
	return Draft{Spark: "What makes you glow?", Text: "sunrise", Tint: 3, Glow: 1, Point: 0}
}

func TestValidate(t *testing.T) {
	v := NewValidator(DefaultLimits())
	tests := []struct {
		name   string
		mutate func(*Draft)
		fields []string
	}{
		{"valid", func(*Draft) {}, nil},
		{"empty spark", func(d *Draft) { d.Spark = "" }, []string{"spark"}},
		{"blank text", func(d *Draft) { d.Text = "   " }, []string{"text"}},
		{"tint too high", func(d *Draft) { d.Tint = 9 }, []string{"tint"}},
		{"tint negative", func(d *Draft) { d.Tint = -1 }, []string{"tint"}},
		{"tint at max", func(d *Draft) { d.Tint = 8 }, nil},
		{"glow too high", func(d *Draft) { d.Glow = 2 }, []string{"glow"}},
		{"point too high", func(d *Draft) { d.Point = 129 }, []string{"point"}},
		{"several", func(d *Draft) { d.Text = ""; d.Tint = 99 }, []string{"text", "tint"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			res := v.Validate(d)

			var fields []string
			for _, p := range res.Problems {
				fields = append(fields, p.Field)
			}
			if !slices.Equal(fields, tt.fields) {
				t.Errorf("problem fields = %v, want %v", fields, tt.fields)
			}
			if res.OK() != (len(tt.fields) == 0) {
				t.Errorf("OK() = %v", res.OK())
			}
			err := res.Err()
			if res.OK() && err != nil {
				t.Errorf("Err() = %v, want nil", err)
			}
			if !res.OK() && !errors.Is(err, errors.ErrCodeInvalidShard) {
				t.Errorf("Err() code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestValidateTrims(t *testing.T) {
	v := NewValidator(DefaultLimits())
	res := v.Validate(Draft{Spark: "  spark ", Text: "\ttext\n"})
	if !res.OK() {
		t.Fatalf("problems: %v", res.Problems)
	}
	if res.Draft.Spark != "spark" || res.Draft.Text != "text" {
		t.Errorf("draft = %+v", res.Draft)
	}
}

func TestLimitsForPoints(t *testing.T) {
	l := DefaultLimits().ForPoints(3)
	if l.PointMax != 2 {
		t.Errorf("PointMax = %d, want 2", l.PointMax)
	}
	v := NewValidator(l)
	d := validDraft()
	d.Point = 3
	if v.Validate(d).OK() {
		t.Error("point 3 of 3 accepted")
	}
	if got := DefaultLimits().ForPoints(1000).PointMax; got != 128 {
		t.Errorf("large set PointMax = %d, want 128", got)
	}
	if got := DefaultLimits().ForPoints(0).PointMax; got != 128 {
		t.Errorf("empty set PointMax = %d, want 128", got)
	}
}

func TestRevalidate(t *testing.T) {
	v := NewValidator(DefaultLimits())
	in := []Shard{
		{ID: "a", Spark: "s", Text: " kept ", Tint: 1, Point: 0},
		{ID: "b", Spark: "s", Text: "bad tint", Tint: 12, Point: 1},
		{ID: "c", Spark: "", Text: "no spark", Point: 2},
	}
	valid, rejected := v.Revalidate(in)
	if len(valid) != 1 || valid[0].ID != "a" || valid[0].Text != "kept" {
		t.Errorf("valid = %+v", valid)
	}
	if len(rejected) != 2 {
		t.Errorf("rejected = %d, want 2", len(rejected))
	}
	if in[0].Text != " kept " {
		t.Error("input mutated")
	}
}

func TestDraftApplyKeepsPoint(t *testing.T) {
	s := Shard{ID: "x", Spark: "a", Text: "b", Tint: 1, Glow: 0, Point: 4}
	d := Draft{Spark: "c", Text: "d", Tint: 2, Glow: 1, Point: 9}
	got := d.Apply(s)
	if got.Point != 4 || got.ID != "x" || got.Text != "d" || got.Glow != 1 {
		t.Errorf("Apply = %+v", got)
	}
}

func TestRandomSpark(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		s := RandomSpark(r)
		if !slices.Contains(Sparks, s) {
			t.Fatalf("unknown spark %q", s)
		}
	}
	if len(Sparks) != 16 {
		t.Errorf("len(Sparks) = %d, want 16", len(Sparks))
	}
	if s := RandomSpark(nil); strings.TrimSpace(s) == "" {
		t.Error("empty spark")
	}
}

package shard

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/reflections/pkg/errors"
)

var validate = validator.New()

// Limits bounds the numeric shard fields. All ranges start at zero.
type Limits struct {
	TintMax  int
	GlowMax  int
	PointMax int
}

// DefaultLimits matches the stored schema: tint 0..8, glow 0..1, point 0..128.
func DefaultLimits() Limits {
	return Limits{TintMax: 8, GlowMax: 1, PointMax: 128}
}

// ForPoints narrows PointMax so that the origin must index one of n points.
func (l Limits) ForPoints(n int) Limits {
	if n > 0 && n-1 < l.PointMax {
		l.PointMax = n - 1
	}
	return l
}

// Problem is a single field violation.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p Problem) String() string { return p.Field + ": " + p.Message }

// Result is the outcome of validating a draft. Draft holds the normalized
// values (trimmed text) whether or not validation passed.
type Result struct {
	Draft    Draft
	Problems []Problem
}

// OK reports whether the draft passed.
func (r Result) OK() bool { return len(r.Problems) == 0 }

// Err returns an INVALID_SHARD error listing every problem, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		msgs[i] = p.String()
	}
	return errors.New(errors.ErrCodeInvalidShard, "%s", strings.Join(msgs, "; "))
}

// Validator checks drafts against a set of limits.
type Validator struct {
	Limits Limits
}

// NewValidator returns a validator for the given limits.
func NewValidator(l Limits) *Validator {
	return &Validator{Limits: l}
}

// Validate normalizes and checks d. Spark and text must be non-empty after
// trimming; tint, glow and point must lie within the limits.
func (v *Validator) Validate(d Draft) Result {
	d.Spark = strings.TrimSpace(d.Spark)
	d.Text = strings.TrimSpace(d.Text)
	res := Result{Draft: d}

	check := func(field string, value any, tag string) {
		if err := validate.Var(value, tag); err != nil {
			res.Problems = append(res.Problems, problemsFrom(field, err)...)
		}
	}
	check("spark", d.Spark, "required")
	check("text", d.Text, "required")
	check("tint", d.Tint, rangeTag(v.Limits.TintMax))
	check("glow", d.Glow, rangeTag(v.Limits.GlowMax))
	check("point", d.Point, rangeTag(v.Limits.PointMax))
	return res
}

// ValidateShard validates the editable fields of a stored shard.
func (v *Validator) ValidateShard(s Shard) Result {
	return v.Validate(DraftOf(s))
}

// Revalidate splits loaded shards into those that still satisfy the limits
// and the results of those that do not.
func (v *Validator) Revalidate(shards []Shard) (valid []Shard, rejected []Result) {
	valid = make([]Shard, 0, len(shards))
	for _, s := range shards {
		r := v.ValidateShard(s)
		if !r.OK() {
			rejected = append(rejected, r)
			continue
		}
		s.Spark, s.Text = r.Draft.Spark, r.Draft.Text
		valid = append(valid, s)
	}
	return valid, rejected
}

func rangeTag(max int) string {
	return fmt.Sprintf("gte=0,lte=%d", max)
}

func problemsFrom(field string, err error) []Problem {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Problem{{Field: field, Message: err.Error()}}
	}
	out := make([]Problem, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, Problem{Field: field, Message: fieldMessage(e)})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return "is invalid"
	}
}

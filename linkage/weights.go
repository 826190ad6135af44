package linkage

import (
	"errors"
	"fmt"
	"math"
)

// Default field weights. Their sum is the default global maximum, 3.7.
const (
	DefaultGivenNameWeight  = 0.8
	DefaultFamilyNameWeight = 1.0
	DefaultBirthYearWeight  = 0.3
	DefaultBirthMonthWeight = 0.2
	DefaultBirthDayWeight   = 0.1
	DefaultPhoneWeight      = 0.6
	DefaultEmailWeight      = 0.7
)

var (
	ErrInvalidWeight = errors.New("invalid field weight")
	ErrNoWeights     = errors.New("weight table has no weighted fields")
)

// WeightTable maps fields to their maximum contribution to a score.
// It is immutable after construction and safe to share between engines.
type WeightTable struct {
	weights   [fieldCount]float64
	fields    []Field // weighted fields, scoring order
	globalMax float64
}

var defaultWeights = mustWeightTable(map[Field]float64{
	FieldGivenName:  DefaultGivenNameWeight,
	FieldFamilyName: DefaultFamilyNameWeight,
	FieldBirthYear:  DefaultBirthYearWeight,
	FieldBirthMonth: DefaultBirthMonthWeight,
	FieldBirthDay:   DefaultBirthDayWeight,
	FieldEmail:      DefaultEmailWeight,
	FieldPhone:      DefaultPhoneWeight,
})

// DefaultWeights returns the standard person weighting profile.
func DefaultWeights() *WeightTable { return defaultWeights }

// NewWeightTable builds a table from explicit weights. Fields left out are not scored.
func NewWeightTable(weights map[Field]float64) (*WeightTable, error) {
	t := &WeightTable{}
	for f, w := range weights {
		if f < 0 || f >= fieldCount {
			return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
		}
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidWeight, f, w)
		}
		t.weights[f] = w
	}
	for _, f := range Fields() {
		if t.weights[f] > 0 {
			t.fields = append(t.fields, f)
			t.globalMax += t.weights[f]
		}
	}
	if len(t.fields) == 0 {
		return nil, ErrNoWeights
	}
	return t, nil
}

// NewWeightTableFromNames is NewWeightTable keyed by field name or alias.
func NewWeightTableFromNames(weights map[string]float64) (*WeightTable, error) {
	byField := make(map[Field]float64, len(weights))
	for name, w := range weights {
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		byField[f] = w
	}
	return NewWeightTable(byField)
}

func mustWeightTable(weights map[Field]float64) *WeightTable {
	t, err := NewWeightTable(weights)
	if err != nil {
		panic(err)
	}
	return t
}

// Weight returns the weight of f, or 0 when f is not scored.
func (t *WeightTable) Weight(f Field) float64 {
	if f < 0 || f >= fieldCount {
		return 0
	}
	return t.weights[f]
}

// GlobalMax is the sum of all weights.
func (t *WeightTable) GlobalMax() float64 { return t.globalMax }

// Fields returns the weighted fields in scoring order.
func (t *WeightTable) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Map returns a copy of the table keyed by field name.
func (t *WeightTable) Map() map[string]float64 {
	out := make(map[string]float64, len(t.fields))
	for _, f := range t.fields {
		out[f.String()] = t.weights[f]
	}
	return out
}

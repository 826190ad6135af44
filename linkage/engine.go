package linkage

import "math"

// Engine scores record pairs against a weight table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights *WeightTable
	text    StringSimilarity
}

type Option func(*Engine)

// WithWeights replaces the default weight table. A nil table is ignored.
func WithWeights(t *WeightTable) Option {
	return func(e *Engine) {
		if t != nil {
			e.weights = t
		}
	}
}

// WithStringSimilarity replaces the text comparator. A nil comparator is ignored.
func WithStringSimilarity(s StringSimilarity) Option {
	return func(e *Engine) {
		if s != nil {
			e.text = s
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights(), text: Blended}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// SimilarityOfRecords scores a pair with the default weights and blend.
func SimilarityOfRecords(a, b Record) float64 { return defaultEngine.Similarity(a, b) }

func (e *Engine) Weights() *WeightTable { return e.weights }

// FieldScore is one field's part of a Comparison.
type FieldScore struct {
	Field        string  `json:"field"`
	Weight       float64 `json:"weight"`
	Compared     bool    `json:"compared"`
	Similarity   float64 `json:"similarity"`
	Contribution float64 `json:"contribution"`
}

// Comparison is a scored pair with its per-field breakdown.
type Comparison struct {
	Score         float64      `json:"score"`
	Accumulated   float64      `json:"accumulated"`
	ApplicableMax float64      `json:"applicable_max"`
	GlobalMax     float64      `json:"global_max"`
	Fields        []FieldScore `json:"fields"`
}

// Similarity returns accumulated / ((applicable + global) / 2).
//
// Fields missing on either side add to neither sum. Averaging the applicable
// maximum with the global one keeps pairs with little shared data away from 1.
func (e *Engine) Similarity(a, b Record) float64 {
	return e.compare(a, b, nil).Score
}

// Explain is Similarity with the per-field breakdown.
func (e *Engine) Explain(a, b Record) Comparison {
	fields := make([]FieldScore, 0, len(e.weights.fields))
	return e.compare(a, b, &fields)
}

func (e *Engine) compare(a, b Record, fields *[]FieldScore) Comparison {
	var accumulated, applicable float64
	for _, f := range e.weights.fields {
		w := e.weights.weights[f]
		sim, ok := e.compareField(f, a, b)
		if ok {
			applicable += w
			accumulated += sim * w
		}
		if fields != nil {
			fs := FieldScore{Field: f.String(), Weight: w, Compared: ok}
			if ok {
				fs.Similarity = sim
				fs.Contribution = sim * w
			}
			*fields = append(*fields, fs)
		}
	}
	c := Comparison{
		Score:         accumulated / ((applicable + e.weights.globalMax) / 2.0),
		Accumulated:   accumulated,
		ApplicableMax: applicable,
		GlobalMax:     e.weights.globalMax,
	}
	if fields != nil {
		c.Fields = *fields
	}
	return c
}

// compareField reports false when either side lacks the field.
func (e *Engine) compareField(f Field, a, b Record) (float64, bool) {
	if f.Kind() == KindNumeric {
		x, okA := f.number(a)
		y, okB := f.number(b)
		if !okA || !okB {
			return 0, false
		}
		if x == y {
			return 1.0, true
		}
		return 0.0, true
	}
	x, okA := f.text(a)
	y, okB := f.text(b)
	if !okA || !okB {
		return 0, false
	}
	return clamp01(e.text(x, y)), true
}

// clamp01 bounds plugged-in comparators; NaN counts as no similarity.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package linkage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultProfile names the built-in weight table.
const DefaultProfile = "default"

var (
	ErrDuplicateProfile = errors.New("duplicate weight profile")
	ErrUnknownProfile   = errors.New("unknown weight profile")
)

type profileSpec struct {
	Description string             `yaml:"description"`
	Metric      string             `yaml:"metric" validate:"omitempty,oneof=blended jaro_winkler damerau_levenshtein sorensen_dice levenshtein"`
	Weights     map[string]float64 `yaml:"weights" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
}

var validate = validator.New()

// Profile pairs a weight table with the text metric used for its fields.
type Profile struct {
	Name        string
	Description string
	Metric      string
	Weights     *WeightTable
	text        StringSimilarity
}

// Engine builds an engine for the profile.
func (p *Profile) Engine() *Engine {
	return NewEngine(WithWeights(p.Weights), WithStringSimilarity(p.text))
}

// Profiles is a set of named profiles. It always contains DefaultProfile.
type Profiles map[string]*Profile

// NewProfiles returns a set holding only the default profile.
func NewProfiles() Profiles {
	return Profiles{DefaultProfile: {
		Name:    DefaultProfile,
		Metric:  MetricBlended,
		Weights: DefaultWeights(),
		text:    Blended,
	}}
}

// NewProfile builds a profile; an empty metric selects MetricBlended.
func NewProfile(name string, weights *WeightTable, metric string) (*Profile, error) {
	if weights == nil {
		return nil, ErrNoWeights
	}
	if metric == "" {
		metric = MetricBlended
	}
	text, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	return &Profile{Name: name, Metric: metric, Weights: weights, text: text}, nil
}

// LoadProfiles reads every .yml/.yaml file below dir. Each file maps profile
// names to a weights block:
//
//	strict:
//	  description: names only
//	  metric: levenshtein
//	  weights:
//	    given_name: 1.0
//	    family_name: 1.0
//
// A file may override "default".
func LoadProfiles(dir string) (Profiles, error) {
	out := NewProfiles()
	seen := map[string]string{}
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".yml") && !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		specs := map[string]profileSpec{}
		if err := yaml.Unmarshal(raw, &specs); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for name, spec := range specs {
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("%w: %s in %s and %s", ErrDuplicateProfile, name, prev, path)
			}
			if err := validate.Struct(spec); err != nil {
				return fmt.Errorf("%s: profile %s: %w", path, name, err)
			}
			t, err := NewWeightTableFromNames(spec.Weights)
			if err != nil {
				return fmt.Errorf("%s: profile %s: %w", path, name, err)
			}
			prof, err := NewProfile(name, t, spec.Metric)
			if err != nil {
				return fmt.Errorf("%s: profile %s: %w", path, name, err)
			}
			prof.Description = spec.Description
			seen[name] = path
			out[name] = prof
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the named profile; an empty name selects DefaultProfile.
func (p Profiles) Get(name string) (*Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	prof, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return prof, nil
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	out := make([]string, 0, len(p))
	for name := range p {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

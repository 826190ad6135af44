package linkage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	p, err := LoadProfiles("testdata/profiles")
	require.NoError(t, err)
	assert.Equal(t, []string{"contact", "default", "names_edit", "names_only"}, p.Names())

	def, err := p.Get("")
	require.NoError(t, err)
	assert.Same(t, DefaultWeights(), def.Weights)
	assert.Equal(t, MetricBlended, def.Metric)

	names, err := p.Get("names_only")
	require.NoError(t, err)
	assert.InDelta(t, 1.8, names.Weights.GlobalMax(), tolerance)
	assert.Equal(t, MetricBlended, names.Metric)
	assert.Equal(t, "Compare on names alone", names.Description)

	contact, err := p.Get("contact")
	require.NoError(t, err)
	assert.Equal(t, []Field{FieldFamilyName, FieldEmail, FieldPhone}, contact.Weights.Fields())

	_, err = p.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.NotContains(t, err.Error(), "record")
}

func TestProfileMetricSelectsComparator(t *testing.T) {
	p, err := LoadProfiles("testdata/profiles")
	require.NoError(t, err)
	edit, err := p.Get("names_edit")
	require.NoError(t, err)
	assert.Equal(t, MetricLevenshtein, edit.Metric)

	a := Record{GivenName: Some("Alice"), FamilyName: Some("Anderson")}
	b := Record{GivenName: Some("Alcie"), FamilyName: Some("Anderson")}
	assert.InDelta(t, (0.8*0.6+1.0)/1.8, edit.Engine().Similarity(a, b), tolerance)

	names, err := p.Get("names_only")
	require.NoError(t, err)
	want := (0.8*Blended("Alice", "Alcie") + 1.0) / 1.8
	assert.InDelta(t, want, names.Engine().Similarity(a, b), tolerance)
}

func TestLoadProfilesRejectsUnknownMetric(t *testing.T) {
	dir := t.TempDir()
	body := []byte("odd:\n  metric: soundex\n  weights:\n    given_name: 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.yml"), body, 0o600))

	_, err := LoadProfiles(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "odd")
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("x", DefaultWeights(), "")
	require.NoError(t, err)
	assert.Equal(t, MetricBlended, p.Metric)

	_, err = NewProfile("x", DefaultWeights(), "soundex")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = NewProfile("x", nil, "")
	assert.ErrorIs(t, err, ErrNoWeights)
}

func TestLoadProfilesRejectsNonPositiveWeights(t *testing.T) {
	_, err := LoadProfiles("testdata/badprofiles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadProfilesRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	body := []byte("dup:\n  weights:\n    given_name: 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), body, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), body, 0o600))

	_, err := LoadProfiles(dir)
	assert.ErrorIs(t, err, ErrDuplicateProfile)
}

func TestLoadProfilesRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	body := []byte("odd:\n  weights:\n    shoe_size: 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.yml"), body, 0o600))

	_, err := LoadProfiles(dir)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestLoadProfilesMissingDir(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

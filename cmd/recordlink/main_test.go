package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pedrohavay/recordlink/config"
	"github.com/pedrohavay/recordlink/linkage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEnv() *env {
	return &env{
		cfg:      config.Config{Match: config.MatchConfig{Threshold: 0.5, DefaultPhoneRegion: "US"}},
		logger:   zap.NewNop(),
		profiles: linkage.NewProfiles(),
	}
}

func TestDumpWeights(t *testing.T) {
	out := bytes.Buffer{}
	require.NoError(t, dumpWeights(testEnv(), nil, &out))

	var got struct {
		Profile   string             `json:"profile"`
		Metric    string             `json:"metric"`
		Weights   map[string]float64 `json:"weights"`
		GlobalMax float64            `json:"global_max"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, linkage.DefaultProfile, got.Profile)
	assert.Equal(t, linkage.MetricBlended, got.Metric)
	assert.InDelta(t, 3.7, got.GlobalMax, 1e-12)
	assert.Len(t, got.Weights, 7)
	assert.Equal(t, 0.8, got.Weights["given_name"])

	assert.ErrorIs(t, dumpWeights(testEnv(), []string{"-profile", "missing"}, &out), linkage.ErrUnknownProfile)
}

func TestScoreFromStdin(t *testing.T) {
	out := bytes.Buffer{}
	in := strings.NewReader(`[{"given_name":"Alice"},{"given_name":"Alice"}]`)
	require.NoError(t, score(testEnv(), nil, in, &out))

	got, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.8/((0.8+3.7)/2), got, 1e-12)
}

func TestScoreFromFilesWithExplain(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"given_name":"Alice","birth_date_year":1990}`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"given_name":"Alice","birth_date_year":1990}`), 0o644))

	out := bytes.Buffer{}
	require.NoError(t, score(testEnv(), []string{"-a", a, "-b", b, "-explain"}, nil, &out))

	var cmp linkage.Comparison
	require.NoError(t, json.Unmarshal(out.Bytes(), &cmp))
	assert.InDelta(t, 1.1, cmp.Accumulated, 1e-12)
	assert.InDelta(t, 1.1, cmp.ApplicableMax, 1e-12)
	assert.InDelta(t, 1.1/((1.1+3.7)/2), cmp.Score, 1e-12)
}

func TestScoreWithProfileMetric(t *testing.T) {
	names, err := linkage.NewWeightTableFromNames(map[string]float64{"given_name": 1.0})
	require.NoError(t, err)
	e := testEnv()
	e.profiles["edit"], err = linkage.NewProfile("edit", names, linkage.MetricLevenshtein)
	require.NoError(t, err)

	out := bytes.Buffer{}
	in := strings.NewReader(`[{"given_name":"Alice"},{"given_name":"Alcie"}]`)
	require.NoError(t, score(e, []string{"-profile", "edit"}, in, &out))

	got, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got, 1e-12)
}

func TestScoreErrors(t *testing.T) {
	out := bytes.Buffer{}
	assert.Error(t, score(testEnv(), []string{"-a", "only.json"}, nil, &out))
	assert.Error(t, score(testEnv(), nil, strings.NewReader(`{"a":{}}`), &out))
	assert.Error(t, score(testEnv(), nil, strings.NewReader(`nope`), &out))
}

func TestRank(t *testing.T) {
	in := strings.Join([]string{
		`{"id":"1","given_name":"Alice","family_name":"Anderson","birth_date_year":1990}`,
		`{"id":"2","given_name":"Alice","family_name":"Anderson","birth_date_year":1990}`,
		`{"id":"3","given_name":"Bob","family_name":"Brown"}`,
	}, "\n")
	out := bytes.Buffer{}
	require.NoError(t, rank(testEnv(), []string{"-threshold", "0.5"}, strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	var m linkage.Match
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "1", m.Left)
	assert.Equal(t, "2", m.Right)
	assert.InDelta(t, 2.1/((2.1+3.7)/2), m.Score, 1e-12)

	assert.Error(t, rank(testEnv(), []string{"-threshold", "1.5"}, strings.NewReader(in), &out))
	assert.Error(t, rank(testEnv(), []string{"-threshold", "NaN"}, strings.NewReader(in), &out))
	assert.Error(t, rank(testEnv(), []string{"-format", "xml"}, strings.NewReader(in), &out))
}

func TestCleanCSV(t *testing.T) {
	in := "id,given_name,family_name,birth_date_year,birth_date_month,birth_date_month_day,primary_email,primary_phone,note\n" +
		"7, Ann ,  Lee ,,,,ann@example.com,(650) 253-0000,\n"
	out := bytes.Buffer{}
	require.NoError(t, clean(testEnv(), []string{"-format", "csv"}, strings.NewReader(in), &out))

	var got []linkage.Record
	require.NoError(t, linkage.ReadRecordsCSV(&out, func(r linkage.Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, "Ann", got[0].GivenName.OrElse(""))
	assert.Equal(t, "Lee", got[0].FamilyName.OrElse(""))
	assert.Equal(t, "ann@example.com", got[0].Email.OrElse(""))
	assert.Equal(t, "+16502530000", got[0].Phone.OrElse(""))
	assert.False(t, got[0].Note.IsSet())
}

func TestRecordFormats(t *testing.T) {
	records := []linkage.Record{
		{ID: "1", GivenName: linkage.Some("Alice"), BirthYear: linkage.Some(1990)},
		{ID: "2", FamilyName: linkage.Some("Brown")},
	}
	for _, format := range []string{"jsonl", "csv", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			buf := bytes.Buffer{}
			require.NoError(t, writeRecords(format, &buf, records))
			var got []linkage.Record
			require.NoError(t, readRecords(format, &buf, func(r linkage.Record) error {
				got = append(got, r)
				return nil
			}))
			assert.Equal(t, records, got)
		})
	}
	assert.Error(t, writeRecords("xml", &bytes.Buffer{}, records))
}

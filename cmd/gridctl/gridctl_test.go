package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormat(t *testing.T) {
	out, err := run(t, "format", "45.5", "10", "--", "-30")
	require.NoError(t, err)
	assert.Equal(t, "45° 30′\n10°\n-30°\n", out)

	_, err = run(t, "format", "north")
	assert.Error(t, err)
}

func TestLinesJSON(t *testing.T) {
	out, err := run(t, "lines", "--west", "-20", "--south", "-20", "--east", "20", "--north", "20", "--zoom", "2", "--json")
	require.NoError(t, err)

	var lines struct {
		Density   float64           `json:"density"`
		Parallels []json.RawMessage `json:"parallels"`
		Meridians []json.RawMessage `json:"meridians"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	assert.Equal(t, 10.0, lines.Density)
	assert.Len(t, lines.Parallels, 4)
	assert.Len(t, lines.Meridians, 4)
}

func TestLinesGeoJSON(t *testing.T) {
	out, err := run(t, "lines", "--west", "-20", "--south", "-20", "--east", "20", "--north", "20", "--zoom", "2", "--geojson")
	require.NoError(t, err)
	assert.Contains(t, out, `"FeatureCollection"`)
	assert.Equal(t, 8, strings.Count(out, `"LineString"`))
}

func TestLinesTable(t *testing.T) {
	out, err := run(t, "lines", "--west", "-20", "--south", "-20", "--east", "20", "--north", "20", "--zoom", "2", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "-10°")
	assert.Contains(t, out, "meridian")
}

func TestLabelsPlanar(t *testing.T) {
	out, err := run(t, "labels", "--zoom", "3", "--width", "800", "--height", "600", "--csv")
	require.NoError(t, err)
	for _, anchor := range []string{"left", "right", "top", "bottom"} {
		assert.Contains(t, out, anchor)
	}
}

func TestLabelsRejectsUnknownProjection(t *testing.T) {
	_, err := run(t, "labels", "--projection", "conic")
	assert.ErrorContains(t, err, "invalid projection")
}

func TestDensityTable(t *testing.T) {
	out, err := run(t, "density", "--from", "0", "--to", "2", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "30°")
	assert.Contains(t, out, "15°")
	assert.Contains(t, out, "10°")

	_, err = run(t, "density", "--from", "5", "--to", "1")
	assert.Error(t, err)
}

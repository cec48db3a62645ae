package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coaster-studio/internal/geometry"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc() TrackDocument {
	return TrackDocument{
		TrackPoints: []PointRecord{
			{ID: "p1", Position: [3]float64{0, 10, 0}},
			{ID: "p2", Position: [3]float64{30, 12, 5}, Tilt: 0.2},
		},
		LoopSegments: []LoopRecord{
			{ID: "l1", EntryPointID: "p2", Radius: 8, Pitch: 2},
		},
		IsLooped:         true,
		HasChainLift:     true,
		ShowWoodSupports: false,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := memStore(t)
	require.NoError(t, s.Save("alpha", sampleDoc()))

	got, err := s.Load("alpha")
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), got)
}

func TestSaveOverwrites(t *testing.T) {
	s := memStore(t)
	require.NoError(t, s.Save("alpha", sampleDoc()))

	doc := sampleDoc()
	doc.IsLooped = false
	require.NoError(t, s.Save("alpha", doc))

	got, err := s.Load("alpha")
	require.NoError(t, err)
	assert.False(t, got.IsLooped)

	names, err := s.List()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestLoadMissing(t *testing.T) {
	s := memStore(t)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	s := memStore(t)
	require.NoError(t, s.Save("alpha", sampleDoc()))
	require.NoError(t, s.Save("beta", TrackDocument{}))

	names, err := s.List()
	require.NoError(t, err)
	assert.Len(t, names, 2)

	require.NoError(t, s.Delete("alpha"))
	require.NoError(t, s.Delete("alpha"), "deleting a missing track is not an error")

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, names)
}

func TestExportImport(t *testing.T) {
	s := memStore(t)
	require.NoError(t, s.Save("alpha", sampleDoc()))

	path := filepath.Join(t.TempDir(), "alpha.json")
	require.NoError(t, s.Export("alpha", path))

	imported, err := s.Import("copy", path)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), imported)

	got, err := s.Load("copy")
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), got)
}

func TestDocumentTolerance(t *testing.T) {
	// Loaders must accept documents with no loop segments and with loop
	// segments pointing at deleted points.
	raw := `{"trackPoints":[{"id":"a","position":[0,0,0],"tilt":0},
		{"id":"b","position":[10,0,0],"tilt":0}],
		"loopSegments":[{"id":"l","entryPointId":"gone","radius":8,"pitch":0}],
		"isLooped":false,"hasChainLift":false,"showWoodSupports":false}`

	var doc TrackDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	table := geometry.BuildSectionTable(doc.Points(), doc.Loops(), doc.IsLooped)
	require.Len(t, table.Sections, 1)
	assert.Equal(t, geometry.SectionSpline, table.Sections[0].Kind)

	doc.LoopSegments = nil
	table = geometry.BuildSectionTable(doc.Points(), doc.Loops(), doc.IsLooped)
	assert.Len(t, table.Sections, 1)
}

func TestDocumentConversion(t *testing.T) {
	doc := sampleDoc()
	pts := doc.Points()
	loops := doc.Loops()

	require.Len(t, pts, 2)
	assert.Equal(t, 30.0, pts[1].Position.X)
	assert.Equal(t, 0.2, pts[1].Tilt)

	require.Len(t, loops, 1)
	assert.Equal(t, "p2", loops[0].EntryPointID)

	back := NewTrackDocument(pts, loops, doc.IsLooped, doc.HasChainLift, doc.ShowWoodSupports)
	assert.Equal(t, doc, back)
}

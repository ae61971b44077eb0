package batchfile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/script"
	"github.com/go-go-golems/tadakan/pkg/workspace"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	ws := workspace.New(fs, "/ws")
	_, err := ws.Initialize()
	require.NoError(t, err)
	return NewManager(ws, WithClock(func() time.Time { return fixedNow })), fs
}

func testPreset() *preset.Preset {
	return preset.New("陣営キャラ",
		[]string{preset.FactionField, preset.CharacterField},
		"{陣営}_{キャラ名}",
		preset.WithID("B63EF9"),
		preset.WithTargetExtensions([]string{".jpg"}),
	)
}

func TestManager_SaveLoad(t *testing.T) {
	m, fs := newManager(t)
	bf := m.Create(testPreset(), map[string]string{preset.FactionField: "赤軍", preset.CharacterField: "田中"})
	assert.Equal(t, "/ws", bf.WorkspacePath)
	assert.Equal(t, fixedNow, bf.CreatedAt)

	path, err := m.Save(bf)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/ws", workspace.RenameBatchesDir, "B63EF9_赤軍_田中.bat"), path)

	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	text, err := script.ShiftJIS.Decode(raw)
	require.NoError(t, err)
	assert.Contains(t, text, "REM Preset ID: B63EF9\r\n")

	// no marker: skipped
	require.NoError(t, afero.WriteFile(fs, filepath.Join(m.Dir(), "X1_a_b.bat"), []byte("@echo off\r\n"), 0644))
	// too few segments: skipped
	require.NoError(t, afero.WriteFile(fs, filepath.Join(m.Dir(), "X1_a.bat"), []byte("REM Preset ID: X1\r\n"), 0644))
	// not a script
	require.NoError(t, afero.WriteFile(fs, filepath.Join(m.Dir(), "notes.txt"), []byte("REM Preset ID: X1"), 0644))

	loaded, err := m.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "B63EF9", loaded[0].PresetID)
	assert.Equal(t, "赤軍", loaded[0].FieldValues[preset.FactionField])
	assert.Equal(t, "田中", loaded[0].FieldValues[preset.CharacterField])
}

func TestManager_LoadedBatchFileTalliesSavedExtensions(t *testing.T) {
	m, _ := newManager(t)
	p := testPreset()
	p.TargetExtensions = []string{".jpg", ".png"}
	_, err := m.Save(m.Create(p, map[string]string{preset.FactionField: "赤軍", preset.CharacterField: "田中"}))
	require.NoError(t, err)

	loaded, err := m.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{".jpg", ".png"}, loaded[0].TargetExtensions)

	r := m.Tally(loaded[0], []string{"a.jpg", "b.png", "c.txt"})
	assert.Equal(t, 2, r.ProcessedFilesCount)
	assert.Equal(t, 2, r.SuccessCount)
}

func TestManager_LoadSplitsOnUnderscore(t *testing.T) {
	m, _ := newManager(t)
	bf := m.Create(testPreset(), map[string]string{preset.FactionField: "赤_軍", preset.CharacterField: "田中"})
	_, err := m.Save(bf)
	require.NoError(t, err)

	loaded, err := m.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "赤", loaded[0].FieldValues[preset.FactionField])
	assert.Equal(t, "軍", loaded[0].FieldValues[preset.CharacterField])
}

func TestManager_LoadMissingFolder(t *testing.T) {
	m := NewManager(workspace.New(afero.NewMemMapFs(), "/nowhere"))
	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestManager_SearchAndDelete(t *testing.T) {
	m, _ := newManager(t)
	for _, v := range []map[string]string{
		{preset.FactionField: "Red", preset.CharacterField: "Tanaka"},
		{preset.FactionField: "Blue", preset.CharacterField: "Sato"},
		{preset.FactionField: "Redwood", preset.CharacterField: "Suzuki"},
	} {
		_, err := m.Save(m.Create(testPreset(), v))
		require.NoError(t, err)
	}
	_, err := m.Load()
	require.NoError(t, err)

	assert.Len(t, m.Search(map[string]string{preset.FactionField: "red"}), 2)
	assert.Len(t, m.Search(map[string]string{preset.FactionField: "red", preset.CharacterField: "tan"}), 1)
	assert.Empty(t, m.Search(map[string]string{"unknown": "x"}))
	assert.Len(t, m.Search(nil), 3)

	ok, err := m.Delete("B63EF9_Blue_Sato.bat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Delete("B63EF9_Blue_Sato.bat")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_TallyHistoryReport(t *testing.T) {
	m, _ := newManager(t)
	bf := m.Create(testPreset(), map[string]string{preset.FactionField: "赤軍", preset.CharacterField: "田中"})

	r := m.Tally(bf, []string{"a.jpg", "b.JPG", "c.png"})
	assert.Equal(t, 2, r.ProcessedFilesCount)
	assert.Equal(t, 2, r.SuccessCount)
	assert.Equal(t, 1.0, r.SuccessRate())
	assert.Equal(t, bf.Filename(), r.BatchFilename)

	m.Record(r)
	m.Record(ExecutionResult{BatchFilename: "other.bat", ExecutedAt: fixedNow, ProcessedFilesCount: 2, SuccessCount: 1, ErrorCount: 1})
	m.Record(ExecutionResult{BatchFilename: "other.bat", ExecutedAt: fixedNow.AddDate(0, 0, -60), ProcessedFilesCount: 10})

	assert.Len(t, m.History(bf.Filename()), 1)
	assert.Len(t, m.History("other.bat"), 2)

	rep := m.Report(30)
	assert.Equal(t, 2, rep.TotalExecutions)
	assert.InDelta(t, 0.75, rep.SuccessRate, 1e-9)
	assert.Equal(t, map[string]int{"other.bat": 1}, rep.ErrorSummary)
	require.Len(t, rep.MostUsedBatches, 2)

	all := m.Report(0)
	assert.Equal(t, 3, all.TotalExecutions)
	assert.Equal(t, "other.bat", all.MostUsedBatches[0].BatchFilename)

	stats := m.UsageStatistics()
	assert.Equal(t, 3, stats.TotalExecutions)
	assert.InDelta(t, 14.0/3.0, stats.AverageFilesPerExecution, 1e-9)
}

package batchfile

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/script"
)

func sampleBatch() *BatchFile {
	bf := New("B63EF9", "陣営キャラ", map[string]string{
		preset.FactionField:   "クレキュリア",
		preset.CharacterField: "アクララ",
	}, []string{".jpg", ".png"}, "/ws")
	bf.CreatedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return bf
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "B63EF9_クレキュリア_アクララ.bat", sampleBatch().Filename())

	empty := New("B63EF9", "", nil, nil, "")
	assert.Equal(t, "B63EF9__.bat", empty.Filename())
}

func TestNextSequence(t *testing.T) {
	bf := sampleBatch()
	var got []string
	for i := 0; i < 10; i++ {
		got = append(got, bf.NextSequence())
	}
	assert.Equal(t, "A00001", got[0])
	assert.Equal(t, "A00002", got[1])
	assert.Equal(t, "A00010", got[9])
	assert.Equal(t, 10, bf.CurrentSequence())

	other := sampleBatch()
	assert.Equal(t, "A00001", other.NextSequence())
}

func TestSequenceGenerator_Reset(t *testing.T) {
	var s SequenceGenerator
	assert.Equal(t, 0, s.Current())
	s.Next()
	s.Next()
	s.Reset()
	assert.Equal(t, "A00001", s.Next())
	for i := 1; i < 99998; i++ {
		s.Next()
	}
	assert.Equal(t, "A99999", s.Next())
}

func TestFilterTargetFiles(t *testing.T) {
	files := []string{"a.JPG", "b.png", "c.txt", "noext", "dir/d.jpg"}

	bf := sampleBatch()
	assert.Equal(t, []string{"a.JPG", "b.png", "dir/d.jpg"}, bf.FilterTargetFiles(files))

	bf.TargetExtensions = []string{preset.WildcardExtension}
	assert.Equal(t, files, bf.FilterTargetFiles(files))

	bf.TargetExtensions = []string{".gif"}
	assert.Empty(t, bf.FilterTargetFiles(files))
}

func TestContent(t *testing.T) {
	content := sampleBatch().Content(script.ShiftJIS)
	lines := strings.Split(content, "\n")

	assert.Equal(t, []string{
		"@echo off",
		"chcp 932 > nul",
		"REM Preset ID: B63EF9",
		"REM Generated: 2024-05-01 09:30:00",
		"",
		"setlocal enabledelayedexpansion",
		"",
		"REM Target extensions: .jpg, .png",
		"",
		"for %%f in (*.jpg) do (",
		"    echo Moving %%f...",
		`    move "%%f" "B63EF9_クレキュリア_アクララ\"`,
		")",
		"",
	}, lines[:14])
	assert.Equal(t, "endlocal", lines[len(lines)-1])
	assert.Equal(t, "echo ファイル処理が完了しました。", lines[len(lines)-2])
}

func TestExecutionResult(t *testing.T) {
	r := ExecutionResult{ProcessedFilesCount: 4, SuccessCount: 3, ProcessingTimeSeconds: 1.5}
	assert.InDelta(t, 0.75, r.SuccessRate(), 1e-9)
	assert.Equal(t, 1500*time.Millisecond, r.Duration())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	r.StartedAt, r.CompletedAt = &start, &end
	assert.Equal(t, 3*time.Second, r.Duration())

	assert.Zero(t, ExecutionResult{}.SuccessRate())
}

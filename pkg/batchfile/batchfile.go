package batchfile

import (
	"strings"
	"time"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/script"
)

// BatchFile couples a preset identity with field values. Its filename and
// script content are derived on demand.
type BatchFile struct {
	PresetID         string            `json:"preset_id" yaml:"preset_id"`
	PresetName       string            `json:"preset_name" yaml:"preset_name"`
	FieldValues      map[string]string `json:"field_values" yaml:"field_values"`
	TargetExtensions []string          `json:"target_extensions" yaml:"target_extensions"`
	WorkspacePath    string            `json:"workspace_path" yaml:"workspace_path"`
	CreatedAt        time.Time         `json:"created_at" yaml:"created_at"`

	sequence SequenceGenerator
}

func New(presetID, presetName string, fieldValues map[string]string, targetExtensions []string, workspacePath string) *BatchFile {
	if fieldValues == nil {
		fieldValues = map[string]string{}
	}
	return &BatchFile{
		PresetID:         presetID,
		PresetName:       presetName,
		FieldValues:      fieldValues,
		TargetExtensions: append([]string(nil), targetExtensions...),
		WorkspacePath:    workspacePath,
		CreatedAt:        time.Now(),
	}
}

// FromPreset builds a batch file for p filled with values.
func FromPreset(p *preset.Preset, values map[string]string, workspacePath string) *BatchFile {
	return New(p.ID, p.Name, values, p.TargetExtensions, workspacePath)
}

// Filename is "{id}_{陣営}_{キャラ名}.bat". Missing values become empty segments.
func (b *BatchFile) Filename() string {
	return preset.BatchFilename(b.PresetID, b.FieldValues)
}

// Stem is Filename without the extension; it doubles as the destination folder.
func (b *BatchFile) Stem() string {
	return preset.BatchStem(b.PresetID, b.FieldValues)
}

// NextSequence advances the per-instance counter.
func (b *BatchFile) NextSequence() string {
	return b.sequence.Next()
}

func (b *BatchFile) CurrentSequence() int {
	return b.sequence.Current()
}

// FilterTargetFiles keeps the files whose lower-cased extension is targeted.
// A "*" target returns the input unchanged.
func (b *BatchFile) FilterTargetFiles(files []string) []string {
	return preset.FilterByExtensions(b.TargetExtensions, files)
}

// Content renders the script that moves every targeted file into a folder
// named after the batch stem. enc selects the code page line.
func (b *BatchFile) Content(enc script.Encoding) string {
	stem := b.Stem()
	lines := []string{
		"@echo off",
		enc.CodePageDirective(),
		PresetIDMarker + " " + b.PresetID,
		"REM Generated: " + b.CreatedAt.Format("2006-01-02 15:04:05"),
		"",
		"setlocal enabledelayedexpansion",
		"",
		TargetExtensionsMarker + " " + strings.Join(b.TargetExtensions, ", "),
		"",
	}
	for _, ext := range b.TargetExtensions {
		lines = append(lines,
			"for %%f in (*"+ext+") do (",
			"    echo Moving %%f...",
			`    move "%%f" "`+script.EscapeFilename(stem)+`\"`,
			")",
			"",
		)
	}
	lines = append(lines, "echo ファイル処理が完了しました。", "endlocal")
	return strings.Join(lines, "\n")
}

const (
	// PresetIDMarker prefixes the comment line that records the originating preset.
	PresetIDMarker = "REM Preset ID:"

	// TargetExtensionsMarker prefixes the comma-separated extension list.
	TargetExtensionsMarker = "REM Target extensions:"
)

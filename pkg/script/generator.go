package script

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/fileitem"
	"github.com/go-go-golems/tadakan/pkg/output"
)

// Extension is appended to saved script filenames that lack it.
const Extension = ".bat"

// ValidationError rejects script parameters before any text is produced.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid script parameters: " + e.Reason
}

// RenameOptions controls optional blocks of the rename script.
type RenameOptions struct {
	// ErrorHandling adds an errorlevel check after every command that
	// reports, pauses and aborts.
	ErrorHandling bool
	// LogFile, when set, receives start and finish timestamps.
	LogFile string
}

// FilterCondition moves every file whose name contains Condition.
type FilterCondition struct {
	Field     string `yaml:"field" json:"field"`
	Condition string `yaml:"condition" json:"condition"`
}

// UndoOperation renames CurrentName back to OriginalName inside Directory.
type UndoOperation struct {
	CurrentName  string `yaml:"current_name" json:"current_name"`
	OriginalName string `yaml:"original_name" json:"original_name"`
	Directory    string `yaml:"directory" json:"directory"`
}

// Metadata describes a generated script.
type Metadata struct {
	PresetName      string    `json:"preset_name" yaml:"preset_name"`
	OperationType   string    `json:"operation_type" yaml:"operation_type"`
	FileCount       int       `json:"file_count" yaml:"file_count"`
	TargetDirectory string    `json:"target_directory" yaml:"target_directory"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Generator renders cmd.exe batch scripts. Script text is built with "\n"
// line endings; Save converts to CRLF and to the configured encoding.
type Generator struct {
	fs       afero.Fs
	encoding Encoding
	now      func() time.Time
}

type Option func(*Generator)

func WithEncoding(e Encoding) Option {
	return func(g *Generator) { g.encoding = e }
}

// WithClock replaces time.Now for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(fs afero.Fs, opts ...Option) *Generator {
	g := &Generator{fs: fs, encoding: DefaultEncoding, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) Encoding() Encoding { return g.encoding }

func (g *Generator) preamble() []string {
	return []string{"@echo off", g.encoding.CodePageDirective()}
}

func errorBranch(message string) []string {
	return []string{
		"if errorlevel 1 (",
		"    echo " + message,
		"    pause",
		"    goto :eof",
		")",
	}
}

// RenameBatch renames every item with a new name and moves it into
// targetDirectory. Items without a new name are skipped.
func (g *Generator) RenameBatch(items []*fileitem.Item, targetDirectory string, opts RenameOptions) (string, error) {
	if len(items) == 0 {
		return "", &ValidationError{Reason: "file list is empty"}
	}
	if strings.TrimSpace(targetDirectory) == "" {
		return "", &ValidationError{Reason: "target directory is not specified"}
	}

	lines := g.preamble()
	if opts.LogFile != "" {
		lines = append(lines, fmt.Sprintf(`echo 開始時刻: %%date%% %%time%% >> "%s"`, opts.LogFile))
	}
	lines = append(lines, fmt.Sprintf(`if not exist "%s" mkdir "%s"`, targetDirectory, targetDirectory), "")

	skipped := 0
	for _, item := range items {
		if item.NewName == "" {
			skipped++
			continue
		}
		original := EscapeFilename(item.OriginalName)
		renamed := EscapeFilename(item.NewName)

		lines = append(lines, fmt.Sprintf(`ren "%s" "%s"`, original, renamed))
		if opts.ErrorHandling {
			lines = append(lines, errorBranch("エラーが発生しました: "+original)...)
		}
		lines = append(lines, fmt.Sprintf(`move "%s" "%s"`, renamed, targetDirectory))
		if opts.ErrorHandling {
			lines = append(lines, errorBranch("移動エラーが発生しました: "+renamed)...)
		}
		lines = append(lines, "")
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("rename script: items without new name skipped")
	}

	if opts.LogFile != "" {
		lines = append(lines, fmt.Sprintf(`echo 完了時刻: %%date%% %%time%% >> "%s"`, opts.LogFile))
	}
	lines = append(lines, "echo 処理が完了しました。", "pause")
	return strings.Join(lines, "\n"), nil
}

// FilterBatch moves files from sourceDirectory whose names contain each
// condition into tempDirectory. Conditions are always wrapped in wildcards.
func (g *Generator) FilterBatch(conditions []FilterCondition, sourceDirectory, tempDirectory string) string {
	lines := g.preamble()
	lines = append(lines, fmt.Sprintf(`if not exist "%s" mkdir "%s"`, tempDirectory, tempDirectory), "")
	for _, c := range conditions {
		lines = append(lines,
			fmt.Sprintf(`for %%%%f in ("%s\*%s*") do (`, sourceDirectory, c.Condition),
			fmt.Sprintf(`    move "%%%%f" "%s"`, tempDirectory),
			")",
		)
	}
	lines = append(lines, "", "echo フィルタリングが完了しました。", "pause")
	return strings.Join(lines, "\n")
}

// RestoreBatch moves previously filtered files back to originalDirectory.
func (g *Generator) RestoreBatch(movedFiles []string, tempDirectory, originalDirectory string) string {
	lines := g.preamble()
	for _, name := range movedFiles {
		lines = append(lines, fmt.Sprintf(`move "%s\%s" "%s"`, tempDirectory, EscapeFilename(name), originalDirectory))
	}
	lines = append(lines, "", "echo 復元が完了しました。", "pause")
	return strings.Join(lines, "\n")
}

// UndoBatch reverses earlier renames. An empty directory means the current one.
func (g *Generator) UndoBatch(ops []UndoOperation) string {
	lines := g.preamble()
	for _, op := range ops {
		dir := op.Directory
		if dir == "" {
			dir = "."
		}
		lines = append(lines,
			fmt.Sprintf(`cd /d "%s"`, dir),
			fmt.Sprintf(`ren "%s" "%s"`, EscapeFilename(op.CurrentName), EscapeFilename(op.OriginalName)),
		)
	}
	lines = append(lines, "", "echo アンドゥが完了しました。", "pause")
	return strings.Join(lines, "\n")
}

// Save writes content to outputDirectory/filename in the generator's
// encoding with CRLF line endings and returns the final path.
func (g *Generator) Save(content, outputDirectory, filename string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), Extension) {
		filename += Extension
	}
	path := filepath.Join(outputDirectory, filename)
	b, err := g.Render(content)
	if err != nil {
		return "", err
	}
	if err := output.Write(g.fs, path, b, output.WriteOptions{WarnOnOverwrite: true}); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Str("encoding", g.encoding.Name).Int("bytes", len(b)).Msg("batch script saved")
	return path, nil
}

// Render produces the on-disk bytes for content.
func (g *Generator) Render(content string) ([]byte, error) {
	return g.encoding.Encode(ToCRLF(content))
}

// Metadata builds a description record for a generated script.
func (g *Generator) Metadata(presetName, operationType string, fileCount int, targetDirectory string) Metadata {
	return Metadata{
		PresetName:      presetName,
		OperationType:   operationType,
		FileCount:       fileCount,
		TargetDirectory: targetDirectory,
		CreatedAt:       g.now(),
	}
}

// MetadataPath is the YAML sidecar path for a saved script.
func MetadataPath(scriptPath string) string {
	return strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + ".yaml"
}

// SaveMetadata writes m as UTF-8 YAML next to the script at scriptPath.
func (g *Generator) SaveMetadata(m Metadata, scriptPath string) (string, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal script metadata: %w", err)
	}
	path := MetadataPath(scriptPath)
	if err := output.Write(g.fs, path, b, output.WriteOptions{WarnOnOverwrite: true}); err != nil {
		return "", err
	}
	log.Debug().Str("path", path).Str("operation", m.OperationType).Msg("script metadata saved")
	return path, nil
}

// ToCRLF normalizes line endings to "\r\n".
func ToCRLF(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// FromCRLF normalizes line endings to "\n".
func FromCRLF(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

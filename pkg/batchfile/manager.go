package batchfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/script"
	"github.com/go-go-golems/tadakan/pkg/workspace"
)

// Manager persists batch files below a workspace's rename_batches folder and
// keeps an in-memory execution history.
type Manager struct {
	ws       *workspace.Workspace
	encoding script.Encoding
	now      func() time.Time

	loaded  []*BatchFile
	history []ExecutionResult
}

type ManagerOption func(*Manager)

func WithEncoding(e script.Encoding) ManagerOption {
	return func(m *Manager) { m.encoding = e }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(ws *workspace.Workspace, opts ...ManagerOption) *Manager {
	m := &Manager{ws: ws, encoding: script.DefaultEncoding, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Dir() string { return m.ws.RenameBatches() }

func (m *Manager) Create(p *preset.Preset, values map[string]string) *BatchFile {
	bf := FromPreset(p, values, m.ws.Path)
	bf.CreatedAt = m.now()
	return bf
}

// Save writes bf's content under its canonical filename and returns the path.
func (m *Manager) Save(bf *BatchFile) (string, error) {
	b, err := m.encoding.Encode(script.ToCRLF(bf.Content(m.encoding)))
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.Dir(), bf.Filename())
	if err := output.Write(m.ws.Fs(), path, b, output.WriteOptions{WarnOnOverwrite: true}); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Str("preset_id", bf.PresetID).Msg("batch file saved")
	return path, nil
}

// Load reads every .bat file in the rename_batches folder. The preset id
// comes from the "REM Preset ID:" line; faction and character are recovered
// from the second and third underscore-separated filename segments, so
// values that themselves contain '_' are not recovered correctly. Files
// without a marker or with fewer than three segments are skipped. The
// returned error aggregates unreadable files; the slice is valid either way.
func (m *Manager) Load() ([]*BatchFile, error) {
	fs := m.ws.Fs()
	ret := []*BatchFile{}
	entries, err := afero.ReadDir(fs, m.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			m.loaded = ret
			return ret, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", m.Dir(), err)
	}

	var errs error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), script.Extension) {
			continue
		}
		bf, err := m.loadOne(filepath.Join(m.Dir(), name))
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if bf == nil {
			log.Debug().Str("file", name).Msg("skipping batch file without recoverable identity")
			continue
		}
		bf.WorkspacePath = m.ws.Path
		ret = append(ret, bf)
	}
	m.loaded = ret
	return ret, errs
}

func (m *Manager) loadOne(path string) (*BatchFile, error) {
	raw, err := afero.ReadFile(m.ws.Fs(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content, err := m.encoding.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	presetID := ""
	var exts []string
	for _, line := range strings.Split(script.FromCRLF(content), "\n") {
		switch {
		case presetID == "" && strings.HasPrefix(line, PresetIDMarker):
			presetID = strings.TrimSpace(strings.TrimPrefix(line, PresetIDMarker))
		case exts == nil && strings.HasPrefix(line, TargetExtensionsMarker):
			exts = parseExtensions(strings.TrimPrefix(line, TargetExtensionsMarker))
		}
	}
	if presetID == "" {
		log.Warn().Str("path", path).Msg("batch file has no preset id marker")
		return nil, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return nil, nil
	}
	values := map[string]string{
		preset.FactionField:   parts[1],
		preset.CharacterField: parts[2],
	}
	return New(presetID, "", values, exts, ""), nil
}

// parseExtensions reads the list written after TargetExtensionsMarker.
func parseExtensions(list string) []string {
	ret := []string{}
	for _, e := range strings.Split(list, ",") {
		if e = strings.TrimSpace(e); e != "" {
			ret = append(ret, e)
		}
	}
	return ret
}

// Loaded returns the batch files from the last Load.
func (m *Manager) Loaded() []*BatchFile { return m.loaded }

// Search returns loaded batch files whose field values contain every
// criterion value, case-insensitively. A criterion naming an unknown field
// never matches.
func (m *Manager) Search(criteria map[string]string) []*BatchFile {
	ret := []*BatchFile{}
	for _, bf := range m.loaded {
		if matches(bf, criteria) {
			ret = append(ret, bf)
		}
	}
	return ret
}

func matches(bf *BatchFile, criteria map[string]string) bool {
	for k, v := range criteria {
		have, ok := bf.FieldValues[k]
		if !ok || !strings.Contains(strings.ToLower(have), strings.ToLower(v)) {
			return false
		}
	}
	return true
}

// Delete removes filename from rename_batches. It reports false when the
// file does not exist.
func (m *Manager) Delete(filename string) (bool, error) {
	path := filepath.Join(m.Dir(), filepath.Base(filename))
	exists, err := afero.Exists(m.ws.Fs(), path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}
	if err := m.ws.Fs().Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("batch file deleted")
	return true, nil
}

// Tally accounts for running bf over files without running anything: every
// targeted file counts as processed and successful.
func (m *Manager) Tally(bf *BatchFile, files []string) ExecutionResult {
	start := m.now()
	targets := bf.FilterTargetFiles(files)
	end := m.now()
	return ExecutionResult{
		BatchFilename:       bf.Filename(),
		ExecutedAt:          start,
		ProcessedFilesCount: len(targets),
		SuccessCount:        len(targets),
		StartedAt:           &start,
		CompletedAt:         &end,
	}
}

func (m *Manager) Record(r ExecutionResult) {
	m.history = append(m.history, r)
}

// History returns recorded results for one batch filename, oldest first.
func (m *Manager) History(batchFilename string) []ExecutionResult {
	ret := []ExecutionResult{}
	for _, r := range m.history {
		if r.BatchFilename == batchFilename {
			ret = append(ret, r)
		}
	}
	return ret
}

type BatchUsage struct {
	BatchFilename string `json:"batch_filename" yaml:"batch_filename"`
	Executions    int    `json:"executions" yaml:"executions"`
}

type Report struct {
	TotalExecutions int          `json:"total_executions" yaml:"total_executions"`
	SuccessRate     float64      `json:"success_rate" yaml:"success_rate"`
	MostUsedBatches []BatchUsage `json:"most_used_batches" yaml:"most_used_batches"`
	// ErrorSummary maps batch filenames to their accumulated error counts.
	ErrorSummary map[string]int `json:"error_summary" yaml:"error_summary"`
}

// Report summarizes recorded executions within the last days days.
// days <= 0 means all history.
func (m *Manager) Report(days int) Report {
	cutoff := time.Time{}
	if days > 0 {
		cutoff = m.now().AddDate(0, 0, -days)
	}
	r := Report{ErrorSummary: map[string]int{}}
	processed, succeeded := 0, 0
	counts := map[string]int{}
	for _, e := range m.history {
		if e.ExecutedAt.Before(cutoff) {
			continue
		}
		r.TotalExecutions++
		processed += e.ProcessedFilesCount
		succeeded += e.SuccessCount
		counts[e.BatchFilename]++
		if e.ErrorCount > 0 {
			r.ErrorSummary[e.BatchFilename] += e.ErrorCount
		}
	}
	if processed > 0 {
		r.SuccessRate = float64(succeeded) / float64(processed)
	}
	r.MostUsedBatches = rank(counts)
	return r
}

type PresetUsage struct {
	PresetID   string `json:"preset_id" yaml:"preset_id"`
	BatchFiles int    `json:"batch_files" yaml:"batch_files"`
}

type UsageStatistics struct {
	TotalBatchFiles          int           `json:"total_batch_files" yaml:"total_batch_files"`
	TotalExecutions          int           `json:"total_executions" yaml:"total_executions"`
	AverageFilesPerExecution float64       `json:"average_files_per_execution" yaml:"average_files_per_execution"`
	MostPopularPresets       []PresetUsage `json:"most_popular_presets" yaml:"most_popular_presets"`
}

func (m *Manager) UsageStatistics() UsageStatistics {
	s := UsageStatistics{
		TotalBatchFiles: len(m.loaded),
		TotalExecutions: len(m.history),
	}
	files := 0
	for _, e := range m.history {
		files += e.ProcessedFilesCount
	}
	if len(m.history) > 0 {
		s.AverageFilesPerExecution = float64(files) / float64(len(m.history))
	}
	byPreset := map[string]int{}
	for _, bf := range m.loaded {
		byPreset[bf.PresetID]++
	}
	for _, u := range rank(byPreset) {
		s.MostPopularPresets = append(s.MostPopularPresets, PresetUsage{PresetID: u.BatchFilename, BatchFiles: u.Executions})
	}
	return s
}

// rank orders counts descending, ties by key.
func rank(counts map[string]int) []BatchUsage {
	ret := make([]BatchUsage, 0, len(counts))
	for k, v := range counts {
		ret = append(ret, BatchUsage{BatchFilename: k, Executions: v})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Executions != ret[j].Executions {
			return ret[i].Executions > ret[j].Executions
		}
		return ret[i].BatchFilename < ret[j].BatchFilename
	})
	return ret
}

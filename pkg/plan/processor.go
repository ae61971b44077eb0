package plan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/fileitem"
	"github.com/go-go-golems/tadakan/pkg/listing"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/script"
)

type Processor struct {
	Fs        afero.Fs
	Store     *preset.Store
	Generator *script.Generator
	// Out receives progress lines and, in dry-run mode, the scripts themselves.
	Out io.Writer
}

type ProcessorOptions struct {
	OutputOverride       string
	ContinueOnError      bool
	DryRun               bool
	DefaultErrorHandling bool
	AutoNumberLimit      int
	NgWords              []string
}

// Result describes one produced script.
type Result struct {
	Job   string
	Path  string
	Files int
}

// LoadConfig reads a YAML plan from fs.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	return &cfg, nil
}

func (p *Processor) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Process runs every job in order. Without ContinueOnError the first failing
// job stops the run; otherwise all failures are returned together.
func (p *Processor) Process(cfg *Config, opts ProcessorOptions) ([]Result, error) {
	outputDir := cfg.OutputDir
	if opts.OutputOverride != "" {
		outputDir = opts.OutputOverride
	}
	if outputDir == "" {
		outputDir = "."
	}

	var results []Result
	var errs error
	w := p.out()
	for i, job := range cfg.Jobs {
		_, _ = fmt.Fprintf(w, "[%d/%d] Processing job: %s\n", i+1, len(cfg.Jobs), job.Name)
		log.Debug().Str("job", job.Name).Str("kind", job.Kind).Msg("plan job start")
		res, err := p.processJob(job, outputDir, opts)
		if err != nil {
			_, _ = fmt.Fprintln(w, output.Warnf("job '%s' failed: %s", job.Name, output.ShortError(err)))
			errs = multierror.Append(errs, fmt.Errorf("job '%s': %w", job.Name, err))
			if !opts.ContinueOnError {
				return results, errs
			}
			continue
		}
		results = append(results, res)
		_, _ = fmt.Fprintf(w, "✓ Job '%s' completed successfully\n", job.Name)
	}
	if errs != nil {
		_, _ = fmt.Fprintf(w, "\nCompleted with %d errors out of %d jobs\n", len(errs.(*multierror.Error).Errors), len(cfg.Jobs))
		return results, errs
	}
	_, _ = fmt.Fprintf(w, "\n✓ All %d jobs completed successfully\n", len(cfg.Jobs))
	return results, nil
}

func (p *Processor) processJob(job Job, outputDir string, opts ProcessorOptions) (Result, error) {
	var content, name string
	files := 0
	switch strings.ToLower(job.Kind) {
	case "", KindRename:
		items, stem, err := p.renameItems(job, opts)
		if err != nil {
			return Result{}, err
		}
		errorHandling := opts.DefaultErrorHandling
		if job.ErrorHandling != nil {
			errorHandling = *job.ErrorHandling
		}
		content, err = p.Generator.RenameBatch(items, job.Target, script.RenameOptions{
			ErrorHandling: errorHandling,
			LogFile:       job.LogFile,
		})
		if err != nil {
			return Result{}, err
		}
		name, files = stem, len(items)
	case KindFilter:
		if job.Source == "" || job.Temp == "" {
			return Result{}, fmt.Errorf("filter job needs source and temp")
		}
		conds := make([]script.FilterCondition, 0, len(job.Conditions))
		for _, c := range job.Conditions {
			conds = append(conds, script.FilterCondition{Field: c.Field, Condition: c.Condition})
		}
		content = p.Generator.FilterBatch(conds, job.Source, job.Temp)
		name, files = "filter_"+job.Name, len(conds)
	case KindUndo:
		ops := make([]script.UndoOperation, 0, len(job.Undo))
		for _, u := range job.Undo {
			ops = append(ops, script.UndoOperation{CurrentName: u.Current, OriginalName: u.Original, Directory: u.Directory})
		}
		content = p.Generator.UndoBatch(ops)
		name, files = "undo_"+job.Name, len(ops)
	default:
		return Result{}, fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if job.Output != "" {
		name = job.Output
	}

	if opts.DryRun {
		_, _ = fmt.Fprintln(p.out(), output.SectionHeader(name, job.Description))
		_, _ = fmt.Fprintln(p.out(), content)
		return Result{Job: job.Name, Path: "-", Files: files}, nil
	}
	path, err := p.Generator.Save(content, outputDir, name)
	if err != nil {
		return Result{}, err
	}
	return Result{Job: job.Name, Path: path, Files: files}, nil
}

// renameItems resolves the preset, collects intake files and names each one.
// Auto-numbered names are reserved so that two files of the same job never
// receive the same number.
func (p *Processor) renameItems(job Job, opts ProcessorOptions) ([]*fileitem.Item, string, error) {
	pr, err := p.lookupPreset(job.Preset)
	if err != nil {
		return nil, "", err
	}
	if !pr.ValidateNamingPattern() {
		return nil, "", fmt.Errorf("preset '%s' references undeclared fields %v", pr.Name, pr.UndeclaredPlaceholders())
	}

	entries, walkErrs := listing.Collect(p.Fs, job.Files, job.Depth)
	if len(walkErrs) > 0 {
		var errs error
		for _, e := range walkErrs {
			errs = multierror.Append(errs, e)
		}
		return nil, "", errs
	}
	paths := pr.FilterTargetFiles(listing.Paths(entries))
	if len(paths) == 0 {
		return nil, "", fmt.Errorf("no files matching %v", pr.TargetExtensions)
	}

	ngWords := opts.NgWords
	if len(job.NgWords) > 0 {
		ngWords = job.NgWords
	}
	var synthOpts []rename.Option
	if opts.AutoNumberLimit > 0 {
		synthOpts = append(synthOpts, rename.WithAutoNumberLimit(opts.AutoNumberLimit))
	}
	stem := preset.BatchStem(pr.ID, job.Values)

	if !job.AutoNumber {
		items, err := rename.NewSynthesizer(p.Fs, synthOpts...).PreviewList(pr, paths, job.Values)
		if err != nil {
			if items == nil {
				return nil, "", err
			}
			log.Warn().Err(err).Str("job", job.Name).Msg("some files keep their original name")
		}
		for _, it := range items {
			if it.NewName == it.OriginalName {
				it.NewName = ""
			}
		}
		if err := checkNgWords(items, ngWords); err != nil {
			return nil, "", err
		}
		return items, stem, nil
	}

	synth := rename.NewSynthesizer(p.Fs, append(synthOpts, rename.WithReservations())...)
	items := make([]*fileitem.Item, 0, len(paths))
	for _, path := range paths {
		item, err := fileitem.FromPath(p.Fs, path)
		if err != nil {
			return nil, "", err
		}
		name, err := synth.GenerateFilenameWithAutoNumber(pr, job.Values, item.Extension(false), job.Target, preset.NumberField)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		if err := rename.CheckNgWords(name, ngWords); err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		if err := synth.Reserve(job.Target, name); err != nil {
			return nil, "", err
		}
		item.NewName = name
		items = append(items, item)
	}
	return items, stem, nil
}

func (p *Processor) lookupPreset(ref string) (*preset.Preset, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("rename job needs a preset")
	}
	pr, err := p.Store.Get(ref)
	if err == nil {
		return pr, nil
	}
	if byID, idErr := p.Store.FindByID(ref); idErr == nil {
		return byID, nil
	}
	return nil, err
}

func checkNgWords(items []*fileitem.Item, ngWords []string) error {
	for _, it := range items {
		if it.NewName == "" {
			continue
		}
		if err := rename.CheckNgWords(it.NewName, ngWords); err != nil {
			return fmt.Errorf("%s: %w", it.OriginalPath, err)
		}
	}
	return nil
}

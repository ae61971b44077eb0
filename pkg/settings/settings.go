// Package settings holds application-wide defaults read from viper.
package settings

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/script"
)

const (
	KeyAutoNumberingLimit   = "file_processing.auto_numbering_limit"
	KeyNgWords              = "file_processing.ng_words"
	KeySupportedExtensions  = "file_processing.supported_extensions"
	KeyEncoding             = "batch.encoding"
	KeyIncludeErrorHandling = "batch.include_error_handling"
	KeyIncludeLogging       = "batch.include_logging"
	KeyLogDirectory         = "batch.log_directory"
	KeyDefaultPresetDir     = "app.default_preset_dir"
	KeyDefaultOutputDir     = "app.default_output_dir"
)

// DefaultNgWords are the reserved DOS device names.
var DefaultNgWords = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

var DefaultSupportedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp",
	".mp3", ".wav", ".flac", ".aac", ".ogg",
	".txt", ".md", ".csv", ".json", ".xml",
	".mp4", ".avi", ".mkv", ".mov", ".wmv",
}

type Settings struct {
	AutoNumberingLimit   int
	NgWords              []string
	SupportedExtensions  []string
	Encoding             script.Encoding
	IncludeErrorHandling bool
	IncludeLogging       bool
	LogDirectory         string
	DefaultPresetDir     string
	DefaultOutputDir     string
}

// SetDefaults registers every default on v without overriding values
// already set by a config file or environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAutoNumberingLimit, rename.DefaultAutoNumberLimit)
	v.SetDefault(KeyNgWords, DefaultNgWords)
	v.SetDefault(KeySupportedExtensions, DefaultSupportedExtensions)
	v.SetDefault(KeyEncoding, script.DefaultEncoding.Name)
	v.SetDefault(KeyIncludeErrorHandling, true)
	v.SetDefault(KeyIncludeLogging, false)
	v.SetDefault(KeyLogDirectory, "logs")
	v.SetDefault(KeyDefaultPresetDir, "presets")
	v.SetDefault(KeyDefaultOutputDir, "output")
}

// Load reads settings from v. A nil v yields the defaults.
func Load(v *viper.Viper) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	enc, err := script.LookupEncoding(v.GetString(KeyEncoding))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyEncoding, err)
	}
	limit := v.GetInt(KeyAutoNumberingLimit)
	if limit <= 0 {
		return nil, fmt.Errorf("invalid %s: %d must be positive", KeyAutoNumberingLimit, limit)
	}

	return &Settings{
		AutoNumberingLimit:   limit,
		NgWords:              v.GetStringSlice(KeyNgWords),
		SupportedExtensions:  v.GetStringSlice(KeySupportedExtensions),
		Encoding:             enc,
		IncludeErrorHandling: v.GetBool(KeyIncludeErrorHandling),
		IncludeLogging:       v.GetBool(KeyIncludeLogging),
		LogDirectory:         v.GetString(KeyLogDirectory),
		DefaultPresetDir:     v.GetString(KeyDefaultPresetDir),
		DefaultOutputDir:     v.GetString(KeyDefaultOutputDir),
	}, nil
}

// TargetExtensionsOrDefault returns exts, or the preset defaults when empty.
func TargetExtensionsOrDefault(exts []string) []string {
	if len(exts) == 0 {
		return append([]string(nil), preset.DefaultTargetExtensions...)
	}
	return exts
}

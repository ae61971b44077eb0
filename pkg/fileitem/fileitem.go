package fileitem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Type is the coarse category of a file, derived from its extension.
type Type string

const (
	TypeImage Type = "image"
	TypeAudio Type = "audio"
	TypeText  Type = "text"
	TypeVideo Type = "video"
	TypeOther Type = "other"
)

var typesByExtension = map[string]Type{
	".jpg": TypeImage, ".jpeg": TypeImage, ".png": TypeImage, ".gif": TypeImage, ".bmp": TypeImage, ".webp": TypeImage,
	".mp3": TypeAudio, ".wav": TypeAudio, ".flac": TypeAudio, ".aac": TypeAudio, ".ogg": TypeAudio,
	".txt": TypeText, ".md": TypeText, ".csv": TypeText, ".json": TypeText, ".xml": TypeText,
	".mp4": TypeVideo, ".avi": TypeVideo, ".mkv": TypeVideo, ".mov": TypeVideo, ".wmv": TypeVideo,
}

// Classify maps an extension (with leading dot, any case) to a Type.
func Classify(ext string) Type {
	if t, ok := typesByExtension[strings.ToLower(ext)]; ok {
		return t
	}
	return TypeOther
}

// Item is one file going through preview and script generation.
type Item struct {
	OriginalPath string `json:"original_path" yaml:"original_path"`
	OriginalName string `json:"original_name" yaml:"original_name"`
	NewName      string `json:"new_name,omitempty" yaml:"new_name,omitempty"`
	FileSize     *int64 `json:"file_size,omitempty" yaml:"file_size,omitempty"`
	FileType     Type   `json:"file_type,omitempty" yaml:"file_type,omitempty"`
}

// New builds an item from raw fields without touching the filesystem.
func New(originalPath, originalName string) *Item {
	return &Item{OriginalPath: originalPath, OriginalName: originalName}
}

// FromPath stats path on fs and fills name, size and type.
func FromPath(fs afero.Fs, path string) (*Item, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	name := filepath.Base(path)
	size := fi.Size()
	return &Item{
		OriginalPath: path,
		OriginalName: name,
		FileSize:     &size,
		FileType:     Classify(filepath.Ext(name)),
	}, nil
}

// Extension returns the original extension including the dot, lower-cased
// when normalize is set.
func (i *Item) Extension(normalize bool) string {
	ext := filepath.Ext(i.OriginalName)
	if normalize {
		return strings.ToLower(ext)
	}
	return ext
}

// NewPath joins the new name onto targetDirectory.
func (i *Item) NewPath(targetDirectory string) (string, error) {
	if i.NewName == "" {
		return "", fmt.Errorf("new name is not set for %s", i.OriginalName)
	}
	return filepath.Join(targetDirectory, i.NewName), nil
}

// Exists reports whether the original file is still present.
func (i *Item) Exists(fs afero.Fs) bool {
	ok, err := afero.Exists(fs, i.OriginalPath)
	return err == nil && ok
}

package script

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is a named text encoding paired with the Windows code page that
// cmd.exe must be switched to before reading a script written in it.
type Encoding struct {
	Name     string
	CodePage int
	codec    encoding.Encoding
}

// ShiftJIS is the fixed encoding for generated scripts: cmd.exe on a
// Japanese locale reads batch files as code page 932.
var ShiftJIS = Encoding{Name: "shift_jis", CodePage: 932, codec: japanese.ShiftJIS}

// UTF8 is available for consoles configured for code page 65001.
var UTF8 = Encoding{Name: "utf-8", CodePage: 65001, codec: unicode.UTF8}

// DefaultEncoding is used when no encoding is configured.
var DefaultEncoding = ShiftJIS

var encodingsByName = map[string]Encoding{
	"shift_jis":   ShiftJIS,
	"shift-jis":   ShiftJIS,
	"sjis":        ShiftJIS,
	"cp932":       ShiftJIS,
	"windows-31j": ShiftJIS,
	"utf-8":       UTF8,
	"utf8":        UTF8,
}

// LookupEncoding resolves an encoding by name, case-insensitively.
func LookupEncoding(name string) (Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultEncoding, nil
	}
	e, ok := encodingsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Encoding{}, fmt.Errorf("unsupported script encoding %q", name)
	}
	return e, nil
}

// CodePageDirective is the preamble line switching the console code page.
func (e Encoding) CodePageDirective() string {
	return fmt.Sprintf("chcp %d > nul", e.CodePage)
}

// Encode converts UTF-8 text to the target encoding. Characters that the
// encoding cannot represent are an error.
func (e Encoding) Encode(s string) ([]byte, error) {
	b, err := e.codec.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode script as %s: %w", e.Name, err)
	}
	return b, nil
}

// Decode converts bytes in the target encoding to UTF-8.
func (e Encoding) Decode(b []byte) (string, error) {
	out, err := e.codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode script as %s: %w", e.Name, err)
	}
	return string(out), nil
}

package script

import "strings"

// EscapeChar prefixes cmd.exe metacharacters.
const EscapeChar = '^'

// SpecialCharacters are escaped in every filename written into a script.
const SpecialCharacters = "&()[]{}^=;!'+,`~"

// EscapeFilename prefixes every special character with '^' in a single pass,
// so an inserted '^' is never escaped again.
func EscapeFilename(name string) string {
	if !strings.ContainsAny(name, SpecialCharacters) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 8)
	for _, r := range name {
		if strings.ContainsRune(SpecialCharacters, r) {
			b.WriteRune(EscapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}

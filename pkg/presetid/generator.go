package presetid

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// Length is the number of characters in a preset identifier.
	Length = 6
	// MaxUniqueAttempts bounds GenerateUnique.
	MaxUniqueAttempts = 1000

	letters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   = "0123456789"
	alphabet = letters + digits
)

// ErrExhausted is returned when GenerateUnique cannot find a free identifier.
var ErrExhausted = errors.New("failed to generate unique preset ID after maximum attempts")

var idPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Source is the randomness consumed by Generator. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalSource struct{}

func (globalSource) IntN(n int) int                     { return rand.IntN(n) }
func (globalSource) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Generator produces identifiers like "B63EF9": six characters from [A-Z0-9]
// with at least one letter and at least one digit.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator. A nil src uses the process-wide random source.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

// Generate seeds one letter and one digit, fills the rest from the full
// alphabet and shuffles all positions.
func (g *Generator) Generate() string {
	id := make([]byte, 0, Length)
	id = append(id, letters[g.src.IntN(len(letters))], digits[g.src.IntN(len(digits))])
	for len(id) < Length {
		id = append(id, alphabet[g.src.IntN(len(alphabet))])
	}
	g.src.Shuffle(len(id), func(i, j int) { id[i], id[j] = id[j], id[i] })
	return string(id)
}

// GenerateUnique returns an identifier not contained in existing.
func (g *Generator) GenerateUnique(existing map[string]struct{}) (string, error) {
	for attempt := 1; attempt <= MaxUniqueAttempts; attempt++ {
		id := g.Generate()
		if _, taken := existing[id]; !taken {
			return id, nil
		}
		log.Debug().Str("id", id).Int("attempt", attempt).Msg("preset id collision")
	}
	return "", ErrExhausted
}

// Validate reports whether id is a well-formed preset identifier.
func Validate(id string) bool {
	if !idPattern.MatchString(id) {
		return false
	}
	return strings.ContainsAny(id, letters) && strings.ContainsAny(id, digits)
}

// IDSet builds a membership set from a list of identifiers.
func IDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

package presetid

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_AlwaysValid(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 5000; i++ {
		id := g.Generate()
		require.Len(t, id, Length)
		require.True(t, Validate(id), "generated id %q should validate", id)
		assert.True(t, strings.ContainsAny(id, letters))
		assert.True(t, strings.ContainsAny(id, digits))
	}
}

func TestGenerate_DefaultSource(t *testing.T) {
	id := NewGenerator(nil).Generate()
	assert.True(t, Validate(id))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"B63EF9", true},
		{"A00001", true},
		{"1ABCDE", true},
		{"123456", false},
		{"ABCDEF", false},
		{"b63ef9", false},
		{"B63EF", false},
		{"B63EF90", false},
		{"B63-F9", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.id))
		})
	}
}

func TestGenerateUnique_GrowingExclusionSet(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(42, 7)))
	existing := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id, err := g.GenerateUnique(existing)
		require.NoError(t, err)
		_, dup := existing[id]
		require.False(t, dup)
		existing[id] = struct{}{}
	}
	assert.Len(t, existing, 1000)
}

// fixedSource always yields the same id, "A0AAAA".
type fixedSource struct{}

func (fixedSource) IntN(int) int                { return 0 }
func (fixedSource) Shuffle(int, func(i, j int)) {}

func TestGenerateUnique_Exhausted(t *testing.T) {
	g := NewGenerator(fixedSource{})
	id := g.Generate()
	assert.Equal(t, "A0AAAA", id)

	_, err := g.GenerateUnique(IDSet([]string{id}))
	assert.ErrorIs(t, err, ErrExhausted)
}

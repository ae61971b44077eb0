package output

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestConsolePlain(t *testing.T) {
	InitConsole(true)

	assert.Equal(t, "→ job\n  desc\n", SectionHeader("job", "desc"))
	assert.Equal(t, "→ job\n", SectionHeader("job", " "))
	assert.Equal(t, "Warning: 3 left", Warnf("%d left", 3))
	assert.Equal(t, "  a.jpg → b.jpg", RenamePair("a.jpg", "b.jpg"))
	assert.Equal(t, "  a.jpg (unchanged)", RenamePair("a.jpg", ""))
	assert.Equal(t, "  0 file(s)", FileCount(0))
	assert.Equal(t, "    - x\n", ListNames([]string{"x"}))
	assert.Empty(t, ListNames(nil))
}

func TestShortError(t *testing.T) {
	assert.Empty(t, ShortError(nil))
	assert.Equal(t, "boom", ShortError(errors.New("boom")))

	var errs error
	errs = multierror.Append(errs, errors.New("first"), errors.New("open x: permission denied"))
	assert.Equal(t, "permission denied", ShortError(errs))

	errs = multierror.Append(nil, errors.New("only"))
	assert.Equal(t, "only", ShortError(errs))
}

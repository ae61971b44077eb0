package output

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_CreatesParentAndOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Write(fs, "/a/b/out.bat", []byte("one"), WriteOptions{}))
	require.NoError(t, Write(fs, "/a/b/out.bat", []byte("two"), WriteOptions{WarnOnOverwrite: true}))

	b, err := afero.ReadFile(fs, "/a/b/out.bat")
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
}

func TestWrite_Append(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Write(fs, "/log.txt", []byte("a\n"), WriteOptions{Append: true}))
	require.NoError(t, Write(fs, "/log.txt", []byte("b\n"), WriteOptions{Append: true}))

	b, err := afero.ReadFile(fs, "/log.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(b))
}

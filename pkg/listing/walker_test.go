package listing

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/in/b.PNG", "/in/a.jpg", "/in/sub/c.mp3", "/in/sub/deep/d.txt"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0644))
	}
	return fs
}

func TestWalk(t *testing.T) {
	fs := seedFs(t)

	all, errs := Walk(fs, "/in", 0)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"/in/a.jpg", "/in/b.PNG", "/in/sub/c.mp3", "/in/sub/deep/d.txt"}, Paths(all))
	assert.Equal(t, ".png", all[1].Extension)
	assert.Equal(t, int64(1), all[0].Size)

	top, _ := Walk(fs, "/in", 1)
	assert.Equal(t, []string{"/in/a.jpg", "/in/b.PNG"}, Paths(top))

	two, _ := Walk(fs, "/in", 2)
	assert.Len(t, two, 3)
}

func TestWalk_FileAndMissing(t *testing.T) {
	fs := seedFs(t)

	one, errs := Walk(fs, "/in/a.jpg", 0)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"/in/a.jpg"}, Paths(one))

	_, errs = Walk(fs, "/missing", 0)
	assert.Len(t, errs, 1)

	all, errs := Collect(fs, []string{"/in/sub", "/missing", "/in/a.jpg"}, 0)
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{"/in/sub/c.mp3", "/in/sub/deep/d.txt", "/in/a.jpg"}, Paths(all))
}

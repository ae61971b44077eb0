package preset

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewStore(fs, "/ws/presets"), fs
}

func TestStore_CreateValidates(t *testing.T) {
	s, _ := newMemStore(t)
	cases := []struct {
		name    string
		pname   string
		fields  []string
		pattern string
	}{
		{"blank name", "  ", []string{"a"}, "{a}"},
		{"no fields", "p", nil, "{a}"},
		{"blank pattern", "p", []string{"a"}, " "},
		{"undeclared field", "p", []string{"a"}, "{a}_{b}"},
		{"duplicate field", "p", []string{"a", "a"}, "{a}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(tc.pname, tc.fields, tc.pattern, nil, nil)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestStore_SaveGetListDelete(t *testing.T) {
	s, fs := newMemStore(t)
	p, err := s.Create(" デモ用 ", []string{"カテゴリ", "タイトル", NumberField}, "{カテゴリ}_{タイトル}_{番号}",
		map[string]string{"カテゴリ": "写真", NumberField: "001"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "デモ用", p.Name)

	path, err := s.Save(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/ws/presets", "デモ用.json"), path)
	exists, _ := afero.Exists(fs, path)
	assert.True(t, exists)

	got, err := s.Get("デモ用")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	byID, err := s.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "デモ用", byID.Name)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	ids, err := s.ExistingIDs()
	require.NoError(t, err)
	assert.Contains(t, ids, p.ID)

	deleted, err := s.Delete("デモ用")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.Delete("デモ用")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.Get("デモ用")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReplaceKeepsID(t *testing.T) {
	s, _ := newMemStore(t)
	old, err := s.Create("p", []string{"a"}, "{a}", nil, []string{".jpg"})
	require.NoError(t, err)
	_, err = s.Save(old)
	require.NoError(t, err)

	got, err := s.Get("p")
	require.NoError(t, err)
	replaced, err := s.Replace(got, []string{"a", "b"}, "{a}_{b}", map[string]string{"b": "x"}, []string{".png"})
	require.NoError(t, err)
	assert.Equal(t, old.ID, replaced.ID)
	assert.Equal(t, "p", replaced.Name)
	assert.Equal(t, "{a}_{b}", replaced.NamingPattern)
	assert.Equal(t, []string{".png"}, replaced.TargetExtensions)

	_, err = s.Save(replaced)
	require.NoError(t, err)
	ids, err := s.ExistingIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{old.ID: {}}, ids)

	_, err = s.Replace(got, []string{"a"}, "{a}_{c}", nil, nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStore_ListSkipsBrokenFiles(t *testing.T) {
	s, fs := newMemStore(t)
	p, err := s.Create("good", []string{"a"}, "{a}", nil, nil)
	require.NoError(t, err)
	_, err = s.Save(p)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/ws/presets/broken.json", []byte("{"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/ws/presets/notes.txt", []byte("ignored"), 0644))

	list, err := s.List()
	assert.Error(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Name)

	ids, err := s.ExistingIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestStore_ListMissingDirectory(t *testing.T) {
	s, _ := newMemStore(t)
	list, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ExportImport(t *testing.T) {
	s, fs := newMemStore(t)
	p := factionPreset()
	require.NoError(t, s.Export(p, "/exports/faction.json"))

	other := NewStore(fs, "/other/presets")
	imported, err := other.Import("/exports/faction.json")
	require.NoError(t, err)
	assert.Equal(t, p.ID, imported.ID)

	again, err := other.Get(p.Name)
	require.NoError(t, err)
	assert.Equal(t, p.NamingPattern, again.NamingPattern)
}

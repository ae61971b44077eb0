package preset

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/tadakan/pkg/presetid"
)

func factionPreset() *Preset {
	return New("陣営キャラ",
		[]string{FactionField, CharacterField, NumberField},
		"{陣営}_{キャラ名}_{番号}",
		WithDefaultValues(map[string]string{FactionField: "青軍", NumberField: "001"}),
		WithID("B63EF9"),
	)
}

func TestNew_AssignsValidID(t *testing.T) {
	p := New("x", []string{"a"}, "{a}")
	assert.True(t, presetid.Validate(p.ID))
	assert.Equal(t, DefaultTargetExtensions, p.TargetExtensions)
	assert.NotNil(t, p.DefaultValues)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestValidateNamingPattern(t *testing.T) {
	cases := []struct {
		name    string
		fields  []string
		pattern string
		want    bool
	}{
		{"all declared", []string{"a", "b"}, "{a}-{b}", true},
		{"no placeholders", []string{"a"}, "static", true},
		{"undeclared", []string{"a"}, "{a}_{b}", false},
		{"repeated placeholder", []string{"a"}, "{a}{a}", true},
		{"japanese", []string{"陣営", "キャラ名"}, "{陣営}_{キャラ名}", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New("p", tc.fields, tc.pattern, WithID("A1B2C3"))
			assert.Equal(t, tc.want, p.ValidateNamingPattern())
		})
	}
}

func TestFieldValue_ResolutionOrder(t *testing.T) {
	p := New("p", []string{"a", "b", "c", "d"}, "{a}", WithDefaultValues(map[string]string{"b": "def-b", "c": "", "d": "def-d"}))
	inputs := map[string]string{"a": "in-a", "d": ""}

	v, ok := p.FieldValue("a", inputs).Get()
	assert.True(t, ok)
	assert.Equal(t, "in-a", v)

	v, ok = p.FieldValue("b", inputs).Get()
	assert.True(t, ok)
	assert.Equal(t, "def-b", v)

	v, ok = p.FieldValue("c", inputs).Get()
	assert.True(t, ok, "an empty default is still a value")
	assert.Equal(t, "", v)

	v, ok = p.FieldValue("d", inputs).Get()
	assert.True(t, ok, "empty input falls through to the default")
	assert.Equal(t, "def-d", v)

	assert.False(t, p.FieldValue("missing", inputs).IsPresent())
	assert.Equal(t, "fallback", p.FieldValue("missing", inputs).OrElse("fallback"))
}

func TestBatchFilename(t *testing.T) {
	p := factionPreset()
	assert.Equal(t, "B63EF9_クレキュリア_アクララ.bat",
		p.BatchFilename(map[string]string{FactionField: "クレキュリア", CharacterField: "アクララ"}))
	assert.Equal(t, "B63EF9__.bat", p.BatchFilename(nil))
	assert.Equal(t, "B63EF9_赤軍_田中_A00001.png",
		p.FilenameWithSequence(map[string]string{FactionField: "赤軍", CharacterField: "田中"}, "A00001", ".png"))
}

func TestRoundTrip(t *testing.T) {
	p := factionPreset()
	p.TargetExtensions = []string{".png", ".jpg"}
	b, err := Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"naming_pattern": "{陣営}_{キャラ名}_{番号}"`)

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Fields, got.Fields)
	assert.Equal(t, p.NamingPattern, got.NamingPattern)
	assert.Equal(t, p.DefaultValues, got.DefaultValues)
	assert.Equal(t, p.TargetExtensions, got.TargetExtensions)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt.Time))
}

func TestUnmarshal_LegacyTimestampAndDefaults(t *testing.T) {
	raw := `{"name":"old","fields":["a"],"naming_pattern":"{a}","created_at":"2024-05-01T10:20:30.123456","id":"Z9Z9Z9"}`
	p, err := Unmarshal([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 2024, p.CreatedAt.Year())
	assert.Equal(t, time.May, p.CreatedAt.Month())
	assert.Equal(t, DefaultTargetExtensions, p.TargetExtensions)
	assert.Empty(t, p.DefaultValues)
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	err := json.Unmarshal([]byte(`"yesterday"`), &ts)
	assert.Error(t, err)
}

func TestIsWildcard(t *testing.T) {
	p := New("p", []string{"a"}, "{a}", WithTargetExtensions([]string{"*"}))
	assert.True(t, p.IsWildcard())
	assert.False(t, factionPreset().IsWildcard())
}

func TestFilterByExtensions(t *testing.T) {
	files := []string{"a.JPG", "b.png", "c", "d.txt"}
	assert.Equal(t, []string{"a.JPG", "b.png"}, FilterByExtensions([]string{".jpg", ".png"}, files))
	assert.Equal(t, files, FilterByExtensions([]string{WildcardExtension}, files))
	assert.Empty(t, FilterByExtensions(nil, files))

	p := New("x", []string{"a"}, "{a}", WithTargetExtensions([]string{".txt"}))
	assert.Equal(t, []string{"d.txt"}, p.FilterTargetFiles(files))
}

package settings

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9999, s.AutoNumberingLimit)
	assert.Equal(t, "shift_jis", s.Encoding.Name)
	assert.Equal(t, 932, s.Encoding.CodePage)
	assert.True(t, s.IncludeErrorHandling)
	assert.False(t, s.IncludeLogging)
	assert.Equal(t, "logs", s.LogDirectory)
	assert.Equal(t, "presets", s.DefaultPresetDir)
	assert.Len(t, s.NgWords, 22)
	assert.Contains(t, s.NgWords, "LPT9")
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set(KeyEncoding, "utf-8")
	v.Set(KeyAutoNumberingLimit, 50)
	v.Set(KeyNgWords, []string{"BAD"})

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 65001, s.Encoding.CodePage)
	assert.Equal(t, 50, s.AutoNumberingLimit)
	assert.Equal(t, []string{"BAD"}, s.NgWords)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	v.Set(KeyEncoding, "ebcdic")
	_, err := Load(v)
	require.Error(t, err)

	v = viper.New()
	v.Set(KeyAutoNumberingLimit, 0)
	_, err = Load(v)
	require.Error(t, err)
}

func TestTargetExtensionsOrDefault(t *testing.T) {
	assert.Equal(t, []string{".jpg", ".png", ".gif", ".mp3", ".txt"}, TargetExtensionsOrDefault(nil))
	assert.Equal(t, []string{"*"}, TargetExtensionsOrDefault([]string{"*"}))
}

package cmdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	m, err := ParseKeyValues([]string{"陣営=赤軍", "キャラ名=", "expr=a=b", "", "陣営=青軍"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"陣営": "青軍", "キャラ名": "", "expr": "a=b"}, m)

	_, err = ParseKeyValues([]string{"novalue"})
	require.Error(t, err)
	_, err = ParseKeyValues([]string{"=x"})
	require.Error(t, err)
}

func TestFilterItems(t *testing.T) {
	type p struct{ name, id string }
	items := []p{{"a", "A1"}, {"b", "B2"}, {"c", "C3"}}

	assert.Equal(t, items, FilterItems(items, nil, func(x p) string { return x.name }))
	got := FilterItems(items, []string{"b", "C3"},
		func(x p) string { return x.name },
		func(x p) string { return x.id })
	assert.Equal(t, []p{{"b", "B2"}, {"c", "C3"}}, got)
}

func TestFilterItemsGlob(t *testing.T) {
	names := []string{"K7M2Q9_赤軍_A.bat", "K7M2Q9_青軍_B.bat", "Z1Z1Z1_赤軍_C.bat"}
	id := func(s string) string { return s }

	assert.Equal(t, []string{"K7M2Q9_赤軍_A.bat", "K7M2Q9_青軍_B.bat"}, FilterItems(names, []string{"K7M2Q9_*"}, id))
	assert.Equal(t, []string{"K7M2Q9_赤軍_A.bat", "Z1Z1Z1_赤軍_C.bat"}, FilterItems(names, []string{"*_赤軍_*"}, id))
	assert.Equal(t, names, FilterItems(names, []string{" ", ""}, id))
	assert.Empty(t, FilterItems(names, []string{"[bad"}, id))
}

func TestSelectorsIgnoreEmptyKey(t *testing.T) {
	s := NewSelectors([]string{"*"})
	assert.False(t, s.Match(""))
	assert.True(t, s.Match("anything"))
}

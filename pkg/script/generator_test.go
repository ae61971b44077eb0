package script

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/fileitem"
)

func item(orig, renamed string) *fileitem.Item {
	i := fileitem.New("/src/"+orig, orig)
	i.NewName = renamed
	return i
}

func indexOf(t *testing.T, lines []string, want string) int {
	t.Helper()
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	t.Fatalf("line %q not found in script", want)
	return -1
}

func TestRenameBatch_Validation(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())

	_, err := g.RenameBatch(nil, "/target", RenameOptions{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = g.RenameBatch([]*fileitem.Item{item("a.jpg", "b.jpg")}, "   ", RenameOptions{})
	require.ErrorAs(t, err, &ve)
}

func TestRenameBatch_OrderAndErrorHandling(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())
	items := []*fileitem.Item{
		item("a.jpg", "赤軍_田中_001.jpg"),
		item("skip.jpg", ""),
		item("b (1).jpg", "赤軍_佐藤_002.jpg"),
	}

	text, err := g.RenameBatch(items, "/target", RenameOptions{ErrorHandling: true})
	require.NoError(t, err)
	lines := strings.Split(text, "\n")

	assert.Equal(t, "@echo off", lines[0])
	assert.Equal(t, "chcp 932 > nul", lines[1])
	assert.Contains(t, lines, `if not exist "/target" mkdir "/target"`)
	assert.NotContains(t, text, "skip.jpg")

	ren1 := indexOf(t, lines, `ren "a.jpg" "赤軍_田中_001.jpg"`)
	mv1 := indexOf(t, lines, `move "赤軍_田中_001.jpg" "/target"`)
	ren2 := indexOf(t, lines, `ren "b ^(1^).jpg" "赤軍_佐藤_002.jpg"`)
	mv2 := indexOf(t, lines, `move "赤軍_佐藤_002.jpg" "/target"`)
	assert.True(t, ren1 < mv1 && mv1 < ren2 && ren2 < mv2)

	for _, idx := range []int{ren1, mv1, ren2, mv2} {
		assert.Equal(t, "if errorlevel 1 (", lines[idx+1])
		assert.Equal(t, "    pause", lines[idx+3])
		assert.Equal(t, "    goto :eof", lines[idx+4])
		assert.Equal(t, ")", lines[idx+5])
	}

	assert.Equal(t, "pause", lines[len(lines)-1])
	assert.Equal(t, "echo 処理が完了しました。", lines[len(lines)-2])
}

func TestRenameBatch_WithoutErrorHandlingAndWithLog(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())
	text, err := g.RenameBatch([]*fileitem.Item{item("a.jpg", "b.jpg")}, `C:\out`, RenameOptions{LogFile: `C:\logs\run.log`})
	require.NoError(t, err)

	assert.NotContains(t, text, "errorlevel")
	assert.Contains(t, text, `echo 開始時刻: %date% %time% >> "C:\logs\run.log"`)
	assert.Contains(t, text, `echo 完了時刻: %date% %time% >> "C:\logs\run.log"`)
}

func TestFilterBatch(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())
	text := g.FilterBatch([]FilterCondition{
		{Field: "陣営", Condition: "赤軍"},
		{Field: "キャラ名", Condition: "*田中"},
	}, `C:\src`, `C:\tmp`)

	assert.Contains(t, text, `if not exist "C:\tmp" mkdir "C:\tmp"`)
	assert.Contains(t, text, `for %%f in ("C:\src\*赤軍*") do (`)
	assert.Contains(t, text, `for %%f in ("C:\src\**田中*") do (`)
	assert.Contains(t, text, `    move "%%f" "C:\tmp"`)
	assert.True(t, strings.Index(text, "赤軍") < strings.Index(text, "田中"))
	assert.Contains(t, text, "echo フィルタリングが完了しました。")
}

func TestRestoreAndUndoBatch(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())

	restore := g.RestoreBatch([]string{"a&b.jpg"}, `C:\tmp`, `C:\src`)
	assert.Contains(t, restore, `move "C:\tmp\a^&b.jpg" "C:\src"`)
	assert.Contains(t, restore, "echo 復元が完了しました。")

	undo := g.UndoBatch([]UndoOperation{
		{CurrentName: "new.jpg", OriginalName: "old!.jpg", Directory: `C:\out`},
		{CurrentName: "x.jpg", OriginalName: "y.jpg"},
	})
	lines := strings.Split(undo, "\n")
	cd := indexOf(t, lines, `cd /d "C:\out"`)
	assert.Equal(t, `ren "new.jpg" "old^!.jpg"`, lines[cd+1])
	assert.Contains(t, lines, `cd /d "."`)
	assert.Contains(t, undo, "echo アンドゥが完了しました。")
}

func TestEscapeFilename(t *testing.T) {
	for _, c := range SpecialCharacters {
		name := "a" + string(c) + "b"
		assert.Equal(t, "a^"+string(c)+"b", EscapeFilename(name), "character %q", c)
	}
	assert.Equal(t, "plain 名前.jpg", EscapeFilename("plain 名前.jpg"))
	assert.Equal(t, "^^^&", EscapeFilename("^&"))
}

func TestSave_ShiftJISWithCRLF(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs)
	content := "@echo off\necho 完了"

	path, err := g.Save(content, "/ws/rename_batches", "B63EF9_赤軍_田中")
	require.NoError(t, err)
	assert.Equal(t, "/ws/rename_batches/B63EF9_赤軍_田中.bat", path)

	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.NotEqual(t, []byte(ToCRLF(content)), raw, "expected non-UTF-8 bytes")

	decoded, err := ShiftJIS.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "@echo off\r\necho 完了", decoded)

	again, err := g.Save(content, "/ws/rename_batches", "other.BAT")
	require.NoError(t, err)
	assert.Equal(t, "/ws/rename_batches/other.BAT", again)
}

func TestSave_UnrepresentableCharacter(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs())
	_, err := g.Save("echo 😀", "/out", "x")
	require.Error(t, err)
}

func TestMetadata(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(afero.NewMemMapFs(), WithClock(func() time.Time { return at }))
	m := g.Metadata("陣営キャラ", "rename", 3, "/target")
	assert.Equal(t, Metadata{PresetName: "陣営キャラ", OperationType: "rename", FileCount: 3, TargetDirectory: "/target", CreatedAt: at}, m)
}

func TestSaveMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(fs, WithClock(func() time.Time { return at }))
	scriptPath, err := g.Save("echo ok\n", "/out", "rename_陣営キャラ")
	require.NoError(t, err)

	path, err := g.SaveMetadata(g.Metadata("陣営キャラ", "rename", 3, "/target"), scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "/out/rename_陣営キャラ.yaml", path)

	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "preset_name: 陣営キャラ")
	var got Metadata
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, 3, got.FileCount)
	assert.Equal(t, "rename", got.OperationType)
	assert.True(t, at.Equal(got.CreatedAt))
}

func TestLookupEncoding(t *testing.T) {
	e, err := LookupEncoding("CP932")
	require.NoError(t, err)
	assert.Equal(t, 932, e.CodePage)

	e, err = LookupEncoding("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEncoding.Name, e.Name)

	_, err = LookupEncoding("ebcdic")
	require.Error(t, err)

	assert.Equal(t, "chcp 65001 > nul", UTF8.CodePageDirective())
}

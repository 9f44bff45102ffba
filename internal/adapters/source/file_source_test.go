package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchDialogs читает содержимое файла", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dialogs.json")
		content := []byte(`{"dialogs": [{"id": "1", "type": "user"}]}`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		source := NewFileSource(path, "")
		data, err := source.FetchDialogs(ctx, "acc", 100, 0)

		assert.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("FetchDialogs возвращает пустую страницу при ненулевом смещении", func(t *testing.T) {
		source := NewFileSource("unused.json", "")

		data, err := source.FetchDialogs(ctx, "acc", 100, 50)

		assert.NoError(t, err)
		assert.JSONEq(t, `{"dialogs": [], "hasMore": false}`, string(data))
	})

	t.Run("FetchDialogs возвращает ошибку без пути", func(t *testing.T) {
		source := NewFileSource("", "")

		data, err := source.FetchDialogs(ctx, "acc", 100, 0)

		assert.Error(t, err)
		assert.Nil(t, data)
	})

	t.Run("FetchDialogs возвращает ошибку для несуществующего файла", func(t *testing.T) {
		source := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), "")

		data, err := source.FetchDialogs(ctx, "acc", 100, 0)

		assert.Error(t, err)
		assert.Nil(t, data)
	})

	t.Run("FetchFolders без пути возвращает пустой массив", func(t *testing.T) {
		source := NewFileSource("dialogs.json", "")

		data, err := source.FetchFolders(ctx, "acc")

		assert.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("FetchFolders читает содержимое файла", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "folders.json")
		content := []byte(`[{"id": 2, "title": "Работа"}]`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		source := NewFileSource("dialogs.json", path)
		data, err := source.FetchFolders(ctx, "acc")

		assert.NoError(t, err)
		assert.Equal(t, content, data)
	})
}

package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-dialog-insights/internal/core/services"
	"telegram-dialog-insights/internal/domain"
)

func newTestStore() *DialogStore {
	normalizer := services.NewNormalizationService(services.NewFolderService())
	return NewDialogStore(normalizer)
}

func TestDialogStoreReplaceAll(t *testing.T) {
	s := newTestStore()

	raw := []domain.RawDialog{
		{ID: json.RawMessage(`"1"`), Type: "user", UnreadCount: 3},
		{ID: json.RawMessage(`"2"`), Type: "channel"},
	}
	folders := []domain.RawFolder{
		{ID: 2, Title: "Работа", IncludedChatIDs: []json.RawMessage{json.RawMessage(`"2"`)}},
	}

	s.ReplaceAll(raw, folders)

	dialogs, canonicalFolders := s.Snapshot()
	require.Len(t, dialogs, 2)
	require.Len(t, canonicalFolders, 1)
	assert.Equal(t, "Работа", canonicalFolders[0].Title)
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.UpdatedAt().IsZero())

	t.Run("повторная загрузка заменяет состояние целиком", func(t *testing.T) {
		s.ReplaceAll([]domain.RawDialog{{ID: json.RawMessage(`"9"`)}}, nil)
		dialogs, canonicalFolders := s.Snapshot()
		require.Len(t, dialogs, 1)
		assert.Equal(t, "9", dialogs[0].ID)
		assert.Empty(t, canonicalFolders)
		assert.Equal(t, uint64(2), s.Version())
	})
}

func TestDialogStoreClear(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]domain.RawDialog{{ID: json.RawMessage(`"1"`)}}, nil)
	s.Clear()

	dialogs, folders := s.Snapshot()
	assert.Empty(t, dialogs)
	assert.Empty(t, folders)
	assert.True(t, s.UpdatedAt().IsZero())
}

func TestDialogStoreSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	s.ReplaceAll([]domain.RawDialog{{ID: json.RawMessage(`"1"`), Title: "Оригинал"}}, nil)

	dialogs, _ := s.Snapshot()
	dialogs[0].Title = "Изменено"

	again, _ := s.Snapshot()
	assert.Equal(t, "Оригинал", again[0].Title)
}

func TestRegistry(t *testing.T) {
	normalizer := services.NewNormalizationService(services.NewFolderService())
	r := NewRegistry(normalizer)

	t.Run("хранилище создается при первом обращении", func(t *testing.T) {
		first := r.ForAccount("a1")
		require.NotNil(t, first)
		assert.Same(t, first, r.ForAccount("a1"))
	})

	t.Run("аккаунты изолированы", func(t *testing.T) {
		r.ForAccount("a1").ReplaceAll([]domain.RawDialog{{ID: json.RawMessage(`"1"`)}}, nil)
		assert.Equal(t, 1, r.ForAccount("a1").Len())
		assert.Equal(t, 0, r.ForAccount("a2").Len())
	})

	t.Run("удаление отбрасывает состояние", func(t *testing.T) {
		r.Remove("a1")
		assert.Equal(t, 0, r.ForAccount("a1").Len())
	})
}

// Package store хранит каноническую коллекцию диалогов активного аккаунта.
package store

import (
	"sync"
	"time"

	"telegram-dialog-insights/internal/core/services"
	"telegram-dialog-insights/internal/domain"
)

// DialogStore хранит канонические диалоги и папки одного аккаунта.
// Единственная мутация — ReplaceAll: коллекция всегда пересобирается
// целиком, частичных обновлений нет. Чтения защищены от одновременной
// замены мьютексом.
type DialogStore struct {
	normalizer *services.NormalizationService

	mu        sync.RWMutex
	dialogs   []domain.Dialog
	folders   []domain.Folder
	index     *services.MembershipIndex
	version   uint64
	updatedAt time.Time
}

// NewDialogStore создает новый экземпляр DialogStore.
func NewDialogStore(normalizer *services.NormalizationService) *DialogStore {
	return &DialogStore{normalizer: normalizer}
}

// ReplaceAll нормализует сырой набор и атомарно заменяет прежнее состояние.
func (s *DialogStore) ReplaceAll(rawDialogs []domain.RawDialog, rawFolders []domain.RawFolder) {
	dialogs, idx := s.normalizer.NormalizeAll(rawDialogs, rawFolders)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs = dialogs
	s.folders = idx.Folders
	s.index = idx
	s.version++
	s.updatedAt = time.Now()
}

// Clear сбрасывает состояние аккаунта.
func (s *DialogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs = nil
	s.folders = nil
	s.index = nil
	s.version++
	s.updatedAt = time.Time{}
}

// Snapshot возвращает копии срезов диалогов и папок. Аналитика никогда
// не мутирует канонические записи, поэтому копируются только заголовки.
func (s *DialogStore) Snapshot() ([]domain.Dialog, []domain.Folder) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dialogs := make([]domain.Dialog, len(s.dialogs))
	copy(dialogs, s.dialogs)
	folders := make([]domain.Folder, len(s.folders))
	copy(folders, s.folders)
	return dialogs, folders
}

// Version возвращает номер поколения коллекции. Растет при каждой замене;
// пригоден как ключ мемоизации производных представлений.
func (s *DialogStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// UpdatedAt возвращает момент последней успешной загрузки.
func (s *DialogStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Len возвращает размер канонической коллекции.
func (s *DialogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dialogs)
}

// Registry выдает хранилище по идентификатору аккаунта, создавая его
// при первом обращении. Состояние аккаунта живет до явного удаления.
type Registry struct {
	normalizer *services.NormalizationService

	mu     sync.Mutex
	stores map[string]*DialogStore
}

// NewRegistry создает новый экземпляр Registry.
func NewRegistry(normalizer *services.NormalizationService) *Registry {
	return &Registry{
		normalizer: normalizer,
		stores:     make(map[string]*DialogStore),
	}
}

// ForAccount возвращает хранилище аккаунта, создавая его при необходимости.
func (r *Registry) ForAccount(accountID string) *DialogStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[accountID]; ok {
		return s
	}
	s := NewDialogStore(r.normalizer)
	r.stores[accountID] = s
	return s
}

// Remove удаляет хранилище аккаунта вместе с его состоянием.
func (r *Registry) Remove(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, accountID)
}

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"telegram-dialog-insights/internal/analytics"
)

// CacheItem представляет кэшированный отчет аккаунта
type CacheItem struct {
	Report    *analytics.Report
	ExpiresAt time.Time
}

// CacheStore управляет хранением и извлечением кэшированных отчетов.
// Ключом служит идентификатор аккаунта.
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

// Get извлекает кэшированный отчет по ключу
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		// Элемент не существует или срок его действия истек
		return nil, false
	}

	return item, true
}

// Put сохраняет отчет в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, report *analytics.Report, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	cs.cache[key] = &CacheItem{
		Report:    report,
		ExpiresAt: now.Add(ttl),
	}
}

// Invalidate удаляет отчет аккаунта из кэша
func (cs *CacheStore) Invalidate(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	delete(cs.cache, key)
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// CalculateKey вычисляет ключ кэша SHA256 по идентификатору аккаунта
// и версии коллекции: после каждого обновления данных ключ меняется.
func CalculateKey(accountID string, version uint64) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%s:%d", accountID, version)
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

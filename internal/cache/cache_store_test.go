package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-dialog-insights/internal/analytics"
)

func testReport(summary string) *analytics.Report {
	return &analytics.Report{Summary: summary}
}

func TestCacheStore(t *testing.T) {
	t.Run("Создание нового хранилища кэша", func(t *testing.T) {
		cs := NewCacheStore()
		assert.NotNil(t, cs)
		assert.NotNil(t, cs.cache)
	})

	t.Run("Запись и чтение из кэша", func(t *testing.T) {
		cs := NewCacheStore()
		key := "test_key"
		report := testReport("отчет")
		ttl := 1 * time.Minute

		cs.Put(key, report, ttl)

		item, found := cs.Get(key)
		require.True(t, found)
		require.NotNil(t, item)
		assert.Equal(t, report, item.Report)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, 1*time.Second)
	})

	t.Run("Чтение несуществующего ключа", func(t *testing.T) {
		cs := NewCacheStore()
		_, found := cs.Get("non_existent_key")
		assert.False(t, found)
	})

	t.Run("Чтение просроченного ключа", func(t *testing.T) {
		cs := NewCacheStore()
		key := "expired_key"
		ttl := -1 * time.Second // Просрочено в прошлом

		cs.Put(key, testReport("старый"), ttl)

		_, found := cs.Get(key)
		assert.False(t, found)
	})

	t.Run("Инвалидация ключа", func(t *testing.T) {
		cs := NewCacheStore()
		key := "to_invalidate"
		cs.Put(key, testReport("отчет"), time.Minute)

		cs.Invalidate(key)

		_, found := cs.Get(key)
		assert.False(t, found)
	})

	t.Run("Очистка просроченных ключей", func(t *testing.T) {
		cs := NewCacheStore()
		expiredKey := "expired"
		validKey := "valid"

		cs.Put(expiredKey, testReport("старый"), -1*time.Minute)
		cs.Put(validKey, testReport("свежий"), 1*time.Minute)

		cs.CleanupExpired()

		_, foundExpired := cs.Get(expiredKey)
		assert.False(t, foundExpired, "Просроченный элемент должен быть удален")

		_, foundValid := cs.Get(validKey)
		assert.True(t, foundValid, "Действительный элемент не должен быть удален")
	})
}

func TestStartCleanupTicker(t *testing.T) {
	cs := NewCacheStore()
	expiredKey := "expired"
	validKey := "valid"

	cs.Put(expiredKey, testReport("старый"), 50*time.Millisecond)
	cs.Put(validKey, testReport("свежий"), 1*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.StartCleanupTicker(ctx, 100*time.Millisecond)

	// Ждем, пока таймер сработает хотя бы раз
	time.Sleep(150 * time.Millisecond)

	_, foundExpired := cs.Get(expiredKey)
	assert.False(t, foundExpired, "Просроченный элемент должен быть удален таймером")

	_, foundValid := cs.Get(validKey)
	assert.True(t, foundValid, "Действительный элемент должен остаться")

	// Убеждаемся, что горутина останавливается
	cancel()
	time.Sleep(50 * time.Millisecond) // Даем время на реакцию на отмену
}

func TestCalculateKey(t *testing.T) {
	t.Run("Ключ детерминирован", func(t *testing.T) {
		assert.Equal(t, CalculateKey("acc", 1), CalculateKey("acc", 1))
	})

	t.Run("Версия меняет ключ", func(t *testing.T) {
		assert.NotEqual(t, CalculateKey("acc", 1), CalculateKey("acc", 2))
	})

	t.Run("Аккаунт меняет ключ", func(t *testing.T) {
		assert.NotEqual(t, CalculateKey("acc-1", 1), CalculateKey("acc-2", 1))
	})
}

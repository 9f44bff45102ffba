// Package storage хранит последние собранные отчеты на диске, чтобы они
// переживали перезапуск сервера. Внутри — одна Bolt-база с бакетом
// отчетов, ключом служит идентификатор аккаунта.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"telegram-dialog-insights/internal/analytics"
)

var reportsBucket = []byte("reports")

// ReportStore — персистентное хранилище отчетов поверх Bolt.
type ReportStore struct {
	db *bolt.DB
}

// NewReportStore открывает базу по указанному пути и создает бакет,
// если его еще нет.
func NewReportStore(path string) (*ReportStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %q: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure reports bucket: %w", err)
	}

	return &ReportStore{db: db}, nil
}

// Close закрывает базу.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// Save сохраняет отчет аккаунта, затирая предыдущий.
func (s *ReportStore) Save(accountID string, report *analytics.Report) error {
	if report == nil {
		return fmt.Errorf("отчет не задан")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Put([]byte(accountID), data)
	})
}

// Load возвращает последний сохраненный отчет аккаунта.
// Отсутствие отчета не считается ошибкой: возвращается (nil, false, nil).
func (s *ReportStore) Load(accountID string) (*analytics.Report, bool, error) {
	var data []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if stored := tx.Bucket(reportsBucket).Get([]byte(accountID)); stored != nil {
			data = make([]byte, len(stored))
			copy(data, stored)
		}
		return nil
	}); err != nil {
		return nil, false, err
	}

	if data == nil {
		return nil, false, nil
	}

	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, true, nil
}

// Delete удаляет сохраненный отчет аккаунта.
func (s *ReportStore) Delete(accountID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Delete([]byte(accountID))
	})
}

// Accounts возвращает идентификаторы аккаунтов с сохраненными отчетами.
func (s *ReportStore) Accounts() ([]string, error) {
	var accounts []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).ForEach(func(k, _ []byte) error {
			accounts = append(accounts, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

package source

import (
	"context"
	"fmt"

	"telegram-dialog-insights/internal/ports"
)

// MemorySource реализует интерфейс DialogSource для чтения данных из памяти.
// Постраничность не поддерживается: весь набор отдается первой страницей.
type MemorySource struct {
	dialogs []byte
	folders []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(dialogs, folders []byte) ports.DialogSource {
	return &MemorySource{dialogs: dialogs, folders: folders}
}

// FetchDialogs возвращает данные диалогов из памяти.
func (s *MemorySource) FetchDialogs(_ context.Context, _ string, _, offset int) ([]byte, error) {
	if s.dialogs == nil {
		return nil, fmt.Errorf("данные диалогов не установлены")
	}
	if offset > 0 {
		return []byte(`{"dialogs": [], "hasMore": false}`), nil
	}

	// Возвращаем копию данных, чтобы избежать изменений оригинальных данных
	dataCopy := make([]byte, len(s.dialogs))
	copy(dataCopy, s.dialogs)

	return dataCopy, nil
}

// FetchFolders возвращает данные папок из памяти. Отсутствие папок
// не считается ошибкой.
func (s *MemorySource) FetchFolders(_ context.Context, _ string) ([]byte, error) {
	if s.folders == nil {
		return []byte(`[]`), nil
	}

	dataCopy := make([]byte, len(s.folders))
	copy(dataCopy, s.folders)

	return dataCopy, nil
}

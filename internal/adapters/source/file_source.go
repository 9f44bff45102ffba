package source

import (
	"context"
	"fmt"
	"os"

	"telegram-dialog-insights/internal/ports"
)

// FileSource реализует интерфейс DialogSource для чтения экспортированных
// данных аккаунта из файлов на диске.
type FileSource struct {
	dialogsPath string
	foldersPath string
}

// NewFileSource создает новый экземпляр FileSource. Путь к файлу папок
// может быть пустым: тогда папки считаются отсутствующими.
func NewFileSource(dialogsPath, foldersPath string) ports.DialogSource {
	return &FileSource{dialogsPath: dialogsPath, foldersPath: foldersPath}
}

// FetchDialogs читает файл с диалогами и возвращает его содержимое.
func (s *FileSource) FetchDialogs(_ context.Context, _ string, _, offset int) ([]byte, error) {
	if s.dialogsPath == "" {
		return nil, fmt.Errorf("не указан путь к файлу диалогов")
	}
	if offset > 0 {
		return []byte(`{"dialogs": [], "hasMore": false}`), nil
	}

	data, err := os.ReadFile(s.dialogsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.dialogsPath, err)
	}

	return data, nil
}

// FetchFolders читает файл с папками и возвращает его содержимое.
func (s *FileSource) FetchFolders(_ context.Context, _ string) ([]byte, error) {
	if s.foldersPath == "" {
		return []byte(`[]`), nil
	}

	data, err := os.ReadFile(s.foldersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.foldersPath, err)
	}

	return data, nil
}

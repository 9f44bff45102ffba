package ports

import (
	"context"

	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/domain"
)

// DialogSource определяет интерфейс источника сырых данных аккаунта.
// Источником может быть HTTP-бэкенд, MTProto-клиент, файл или память.
type DialogSource interface {
	// FetchDialogs загружает страницу диалогов аккаунта.
	FetchDialogs(ctx context.Context, accountID string, limit, offset int) ([]byte, error)
	// FetchFolders загружает список папок аккаунта.
	FetchFolders(ctx context.Context, accountID string) ([]byte, error)
}

// Parser определяет интерфейс разбора сырых данных источника.
type Parser interface {
	// ParseDialogs преобразует сырой ответ источника в страницу диалогов.
	ParseDialogs(data []byte) (*domain.Payload, error)
	// ParseFolders преобразует сырой ответ источника в список папок.
	ParseFolders(data []byte) ([]domain.RawFolder, error)
}

// Normalizer определяет интерфейс нормализации сырых диалогов
// в каноническую коллекцию.
type Normalizer interface {
	NormalizeAll(dialogs []domain.RawDialog, folders []domain.RawFolder) ([]domain.Dialog, []domain.Folder)
}

// Exporter определяет интерфейс вывода готового отчета.
type Exporter interface {
	// Export принимает собранный отчет и выводит его получателю.
	Export(report *analytics.Report) error
}

// Package usecase содержит сценарии использования сервера аналитики.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/cache"
	"telegram-dialog-insights/internal/domain"
	"telegram-dialog-insights/internal/pkg/config"
	"telegram-dialog-insights/internal/ports"
	"telegram-dialog-insights/internal/storage"
	"telegram-dialog-insights/internal/store"
)

// RefreshAccountUseCase инкапсулирует полный цикл обновления аккаунта:
// выборка сырых данных из источника, разбор, нормализация, пересборка
// канонической коллекции и построение отчета.
type RefreshAccountUseCase struct {
	cfg         *config.Config
	source      ports.DialogSource
	parser      ports.Parser
	registry    *store.Registry
	engine      *analytics.Engine
	cacheStore  *cache.CacheStore
	reportStore *storage.ReportStore
}

// NewRefreshAccountUseCase создает новый экземпляр RefreshAccountUseCase.
// reportStore может быть nil: тогда отчеты живут только в памяти.
func NewRefreshAccountUseCase(
	cfg *config.Config,
	source ports.DialogSource,
	parser ports.Parser,
	registry *store.Registry,
	engine *analytics.Engine,
	cacheStore *cache.CacheStore,
	reportStore *storage.ReportStore,
) *RefreshAccountUseCase {
	return &RefreshAccountUseCase{
		cfg:         cfg,
		source:      source,
		parser:      parser,
		registry:    registry,
		engine:      engine,
		cacheStore:  cacheStore,
		reportStore: reportStore,
	}
}

// RefreshAccount загружает все диалоги и папки аккаунта, атомарно заменяет
// каноническую коллекцию и возвращает свежесобранный отчет.
func (uc *RefreshAccountUseCase) RefreshAccount(ctx context.Context, accountID string) (*analytics.Report, error) {
	rawDialogs, err := uc.fetchAllDialogs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	slog.Info("Загружены диалоги аккаунта", "account_id", accountID, "count", len(rawDialogs))

	// Недоступность папок не роняет обновление: отчет без папок
	// полезнее отсутствия отчета.
	rawFolders := uc.fetchFolders(ctx, accountID)

	st := uc.registry.ForAccount(accountID)
	st.ReplaceAll(rawDialogs, rawFolders)

	dialogs, folders := st.Snapshot()
	report := uc.engine.BuildReport(dialogs, folders)

	key := cache.CalculateKey(accountID, st.Version())
	uc.cacheStore.Put(key, &report, uc.cfg.CacheTTL())

	if uc.reportStore != nil {
		if err := uc.reportStore.Save(accountID, &report); err != nil {
			slog.Warn("Не удалось сохранить отчет на диск", "account_id", accountID, "error", err)
		}
	}

	slog.Info("Обновление аккаунта завершено", "account_id", accountID,
		"dialogs", len(dialogs), "folders", len(folders), "version", st.Version())
	return &report, nil
}

// fetchAllDialogs выбирает диалоги аккаунта постранично, пока источник
// сообщает о наличии следующих страниц.
func (uc *RefreshAccountUseCase) fetchAllDialogs(ctx context.Context, accountID string) ([]domain.RawDialog, error) {
	pageSize := uc.cfg.Source.PageSize
	var all []domain.RawDialog

	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := uc.source.FetchDialogs(ctx, accountID, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("не удалось загрузить диалоги аккаунта %s: %w", accountID, err)
		}

		payload, err := uc.parser.ParseDialogs(data)
		if err != nil {
			return nil, fmt.Errorf("не удалось разобрать диалоги аккаунта %s: %w", accountID, err)
		}

		all = append(all, payload.Dialogs...)
		slog.Debug("Получена страница диалогов", "account_id", accountID,
			"offset", offset, "page", len(payload.Dialogs), "has_more", payload.HasMore)

		if !payload.HasMore || len(payload.Dialogs) == 0 {
			break
		}
		offset += len(payload.Dialogs)
	}

	return all, nil
}

// fetchFolders выбирает папки аккаунта. Любая ошибка деградирует
// до пустого списка.
func (uc *RefreshAccountUseCase) fetchFolders(ctx context.Context, accountID string) []domain.RawFolder {
	data, err := uc.source.FetchFolders(ctx, accountID)
	if err != nil {
		slog.Warn("Не удалось загрузить папки аккаунта", "account_id", accountID, "error", err)
		return nil
	}

	folders, err := uc.parser.ParseFolders(data)
	if err != nil {
		slog.Warn("Не удалось разобрать папки аккаунта", "account_id", accountID, "error", err)
		return nil
	}
	return folders
}

// GetReport возвращает последний собранный отчет аккаунта: сперва из кэша
// текущего поколения коллекции, затем из персистентного хранилища.
func (uc *RefreshAccountUseCase) GetReport(accountID string) (*analytics.Report, bool, error) {
	st := uc.registry.ForAccount(accountID)
	key := cache.CalculateKey(accountID, st.Version())
	if item, found := uc.cacheStore.Get(key); found {
		return item.Report, true, nil
	}

	if uc.reportStore == nil {
		return nil, false, nil
	}
	return uc.reportStore.Load(accountID)
}

// Dialogs возвращает страницу канонической коллекции аккаунта
// и общий размер коллекции.
func (uc *RefreshAccountUseCase) Dialogs(accountID string, offset, limit int) ([]domain.Dialog, int) {
	dialogs, _ := uc.registry.ForAccount(accountID).Snapshot()
	total := len(dialogs)

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Dialog{}, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return dialogs[offset:end], total
}

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/cache"
	"telegram-dialog-insights/internal/domain"
	"telegram-dialog-insights/internal/pkg/config"
)

// AccountService определяет интерфейс сценария обновления аккаунта,
// которым пользуется HTTP-слой.
type AccountService interface {
	RefreshAccount(ctx context.Context, accountID string) (*analytics.Report, error)
	GetReport(accountID string) (*analytics.Report, bool, error)
	Dialogs(accountID string, offset, limit int) ([]domain.Dialog, int)
}

// reportViews сопоставляет имя представления из URL с функцией выбора
// соответствующей части отчета. Имена совпадают с json-полями отчета.
var reportViews = map[string]func(*analytics.Report) any{
	"metrics":              func(r *analytics.Report) any { return r.Metrics },
	"dialogTypes":          func(r *analytics.Report) any { return r.DialogTypes },
	"topUnread":            func(r *analytics.Report) any { return r.TopUnread },
	"activityTimeline":     func(r *analytics.Report) any { return r.ActivityTimeline },
	"folderDistribution":   func(r *analytics.Report) any { return r.FolderDistribution },
	"communities":          func(r *analytics.Report) any { return r.Communities },
	"notifications":        func(r *analytics.Report) any { return r.Notifications },
	"groupsAgeTimeline":    func(r *analytics.Report) any { return r.GroupsAgeTimeline },
	"contactsStatus":       func(r *analytics.Report) any { return r.ContactsStatus },
	"activityHeatmap":      func(r *analytics.Report) any { return r.ActivityHeatmap },
	"readingFunnel":        func(r *analytics.Report) any { return r.ReadingFunnel },
	"participationProfile": func(r *analytics.Report) any { return r.ParticipationProfile },
	"notificationFlow":     func(r *analytics.Report) any { return r.NotificationFlow },
	"draftsTimeline":       func(r *analytics.Report) any { return r.DraftsTimeline },
	"correlationMatrix":    func(r *analytics.Report) any { return r.CorrelationMatrix },
	"summary":              func(r *analytics.Report) any { return r.Summary },
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore *cache.CacheStore
	service    AccountService
}

// New создает новый экземпляр Server
func New(cfg *config.Config, service AccountService, taskStore *TaskStore, cacheStore *cache.CacheStore) (*Server, error) {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		// Работоспособность источника проверяется при запуске.
		// Если сервер запущен, предполагается, что источник в порядке.
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		// Конечная точка для запуска фонового обновления аккаунта
		r.Post("/accounts/{accountID}/refresh", func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "accountID")
			if accountID == "" {
				http.Error(w, "Требуется идентификатор аккаунта", http.StatusBadRequest)
				return
			}

			// Генерация уникального идентификатора задачи
			taskID := uuid.NewString()

			// Создание задачи в хранилище
			taskStore.CreateTask(taskID, accountID, 24*time.Hour) // TTL для записи о задаче

			// Запуск обновления в горутине
			go func() {
				taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

				// Создание контекста для задачи с таймаутом из конфигурации.
				taskCtx := context.Background()
				if cfg.Processing.TaskTimeoutSeconds > 0 {
					var cancel context.CancelFunc
					taskCtx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Processing.TaskTimeoutSeconds)*time.Second)
					defer cancel()
				}

				report, err := service.RefreshAccount(taskCtx, accountID)
				if err != nil {
					slog.Error("Обновление аккаунта завершилось ошибкой", "account_id", accountID, "task_id", taskID, "error", err)
					taskStore.UpdateTaskError(taskID, err.Error())
					return
				}

				taskStore.UpdateTaskResult(taskID, report)
			}()

			// Возврат идентификатора задачи
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"task_id": taskID})
		})

		// Конечная точка для проверки статуса задачи
		r.Get("/tasks/{taskID}", func(w http.ResponseWriter, r *http.Request) {
			taskID := chi.URLParam(r, "taskID")

			task, err := taskStore.GetTask(taskID)
			if err != nil {
				http.Error(w, "Задача не найдена", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"task_id":       task.ID,
				"account_id":    task.AccountID,
				"status":        task.Status,
				"error_message": task.ErrorMessage,
			})
		})

		// Конечная точка для получения последнего отчета аккаунта
		r.Get("/accounts/{accountID}/report", func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "accountID")

			report, found, err := service.GetReport(accountID)
			if err != nil {
				slog.Error("Не удалось загрузить отчет", "account_id", accountID, "error", err)
				http.Error(w, "Не удалось загрузить отчет", http.StatusInternalServerError)
				return
			}
			if !found {
				http.Error(w, "Отчет не найден", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(report)
		})

		// Конечная точка для получения отдельного представления отчета
		r.Get("/accounts/{accountID}/report/views/{view}", func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "accountID")
			view := chi.URLParam(r, "view")

			extract, ok := reportViews[view]
			if !ok {
				http.Error(w, "Неизвестное представление отчета", http.StatusNotFound)
				return
			}

			report, found, err := service.GetReport(accountID)
			if err != nil {
				slog.Error("Не удалось загрузить отчет", "account_id", accountID, "error", err)
				http.Error(w, "Не удалось загрузить отчет", http.StatusInternalServerError)
				return
			}
			if !found {
				http.Error(w, "Отчет не найден", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(extract(report))
		})

		// Конечная точка для получения канонической коллекции с пагинацией
		r.Get("/accounts/{accountID}/dialogs", func(w http.ResponseWriter, r *http.Request) {
			accountID := chi.URLParam(r, "accountID")

			page := parseQueryInt(r.URL.Query().Get("page"), 1)
			pageSize := parseQueryInt(r.URL.Query().Get("page_size"), 50)
			if page < 1 {
				page = 1
			}
			if pageSize < 1 {
				pageSize = 50
			}

			offset := (page - 1) * pageSize
			dialogs, totalItems := service.Dialogs(accountID, offset, pageSize)
			totalPages := (totalItems + pageSize - 1) / pageSize // Округление вверх

			// Подготовка ответа
			response := struct {
				Pagination struct {
					CurrentPage int `json:"current_page"`
					PageSize    int `json:"page_size"`
					TotalItems  int `json:"total_items"`
					TotalPages  int `json:"total_pages"`
				} `json:"pagination"`
				Data []domain.Dialog `json:"data"`
			}{
				Data: dialogs,
			}
			response.Pagination.CurrentPage = page
			response.Pagination.PageSize = pageSize
			response.Pagination.TotalItems = totalItems
			response.Pagination.TotalPages = totalPages

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(response)
		})
	})

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  config.DefaultReadTimeout,
		WriteTimeout: config.DefaultWriteTimeout,
		IdleTimeout:  config.DefaultIdleTimeout,
	}

	s := &Server{
		HTTPServer: httpServer,
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		service:    service,
	}

	return s, nil
}

// StartCleanupTickers запускает периодическую очистку просроченных задач
// и элементов кэша. Остановка — через отмену контекста.
func (s *Server) StartCleanupTickers(ctx context.Context) {
	s.taskStore.StartCleanupTicker(ctx, config.DefaultCleanupInterval)
	s.cacheStore.StartCleanupTicker(ctx, config.DefaultCleanupInterval)
}

// Handler возвращает корневой обработчик сервера.
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}

// parseQueryInt разбирает целочисленный параметр запроса,
// возвращая значение по умолчанию при ошибке.
func parseQueryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

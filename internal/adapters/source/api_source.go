package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"telegram-dialog-insights/internal/ports"
)

// APISource реализует интерфейс DialogSource поверх HTTP-бэкенда.
// Бэкенд отдает страницы диалогов и список папок по аккаунту.
type APISource struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// APISourceOption настраивает APISource.
type APISourceOption func(*APISource)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(client *http.Client) APISourceOption {
	return func(s *APISource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger подменяет логгер.
func WithLogger(logger *slog.Logger) APISourceOption {
	return func(s *APISource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAPISource создает новый экземпляр APISource.
func NewAPISource(baseURL, token string, opts ...APISourceOption) ports.DialogSource {
	s := &APISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchDialogs загружает страницу диалогов аккаунта.
func (s *APISource) FetchDialogs(ctx context.Context, accountID string, limit, offset int) ([]byte, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/dialogs", s.baseURL, url.PathEscape(accountID))
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return s.get(ctx, endpoint)
}

// FetchFolders загружает список папок аккаунта.
func (s *APISource) FetchFolders(ctx context.Context, accountID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/folders", s.baseURL, url.PathEscape(accountID))
	return s.get(ctx, endpoint)
}

func (s *APISource) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	s.logger.Debug("запрос к бэкенду выполнен",
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"telegram-dialog-insights/internal/domain"
	"telegram-dialog-insights/internal/ports"
)

// JsonParser реализует интерфейс Parser для разбора JSON ответов источника.
// Разбор устойчив к форме ответа: страница диалогов принимается и как
// объект с полем dialogs, и как простой массив; список папок — и как
// массив, и как объект с полем filters или folders.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// ParseDialogs преобразует срез байт с JSON в страницу диалогов.
// Записи разбираются по одной: битая запись пропускается, а не роняет
// всю страницу.
func (p *JsonParser) ParseDialogs(data []byte) (*domain.Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty dialogs response")
	}

	var rawDialogs []json.RawMessage
	payload := &domain.Payload{}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rawDialogs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dialogs array: %w", err)
		}
	} else {
		var envelope struct {
			Dialogs []json.RawMessage `json:"dialogs"`
			Total   int               `json:"total"`
			HasMore bool              `json:"hasMore"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dialogs payload: %w", err)
		}
		rawDialogs = envelope.Dialogs
		payload.Total = envelope.Total
		payload.HasMore = envelope.HasMore
	}

	payload.Dialogs = make([]domain.RawDialog, 0, len(rawDialogs))
	for _, raw := range rawDialogs {
		var dialog domain.RawDialog
		if err := json.Unmarshal(raw, &dialog); err != nil {
			continue
		}
		payload.Dialogs = append(payload.Dialogs, dialog)
	}

	if payload.Total == 0 {
		payload.Total = len(payload.Dialogs)
	}
	return payload, nil
}

// ParseFolders преобразует срез байт с JSON в список папок.
func (p *JsonParser) ParseFolders(data []byte) ([]domain.RawFolder, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty folders response")
	}

	var rawFolders []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rawFolders); err != nil {
			return nil, fmt.Errorf("failed to unmarshal folders array: %w", err)
		}
	} else {
		var envelope struct {
			Filters []json.RawMessage `json:"filters"`
			Folders []json.RawMessage `json:"folders"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal folders payload: %w", err)
		}
		rawFolders = envelope.Filters
		if len(rawFolders) == 0 {
			rawFolders = envelope.Folders
		}
	}

	folders := make([]domain.RawFolder, 0, len(rawFolders))
	for _, raw := range rawFolders {
		var folder domain.RawFolder
		if err := json.Unmarshal(raw, &folder); err != nil {
			continue
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

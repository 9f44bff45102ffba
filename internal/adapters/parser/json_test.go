package parser

import (
	"testing"
)

func TestJsonParserDialogs(t *testing.T) {
	t.Run("NewJsonParser создает корректный экземпляр", func(t *testing.T) {
		parser := NewJsonParser()
		if parser == nil {
			t.Error("Ожидался экземпляр JsonParser, получен nil")
		}
	})

	t.Run("Разбор страницы диалогов с конвертом", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `{
			"total": 2,
			"hasMore": true,
			"dialogs": [
				{"id": "123", "name": "Рабочий чат", "type": "group", "unreadCount": 5},
				{"id": 456, "title": "Канал", "type": "channel"}
			]
		}`

		payload, err := parser.ParseDialogs([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if payload.Total != 2 {
			t.Errorf("Ожидался total 2, получено %d", payload.Total)
		}

		if !payload.HasMore {
			t.Error("Ожидался hasMore true")
		}

		if len(payload.Dialogs) != 2 {
			t.Errorf("Ожидалось 2 диалога, получено %d", len(payload.Dialogs))
		}

		if payload.Dialogs[0].Name != "Рабочий чат" {
			t.Errorf("Ожидалось имя 'Рабочий чат', получено '%s'", payload.Dialogs[0].Name)
		}

		if payload.Dialogs[0].UnreadCount != 5 {
			t.Errorf("Ожидалось 5 непрочитанных, получено %d", payload.Dialogs[0].UnreadCount)
		}
	})

	t.Run("Разбор простого массива диалогов", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `[{"id": "1", "type": "user"}, {"id": "2", "type": "bot"}]`

		payload, err := parser.ParseDialogs([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if len(payload.Dialogs) != 2 {
			t.Errorf("Ожидалось 2 диалога, получено %d", len(payload.Dialogs))
		}

		if payload.Total != 2 {
			t.Errorf("Ожидался total по числу записей, получено %d", payload.Total)
		}
	})

	t.Run("Битая запись пропускается, остальные сохраняются", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `{"dialogs": [{"id": "1", "type": "user"}, "не объект", {"id": "2", "type": "group"}]}`

		payload, err := parser.ParseDialogs([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if len(payload.Dialogs) != 2 {
			t.Errorf("Ожидалось 2 валидных диалога, получено %d", len(payload.Dialogs))
		}
	})

	t.Run("Разбор некорректного JSON возвращает ошибку", func(t *testing.T) {
		parser := &JsonParser{}

		payload, err := parser.ParseDialogs([]byte(`{"dialogs":}`))
		if err == nil {
			t.Error("Ожидалась ошибка для некорректного JSON, получено nil")
		}

		if payload != nil {
			t.Error("Ожидался nil для некорректного JSON")
		}
	})

	t.Run("Разбор пустого ответа возвращает ошибку", func(t *testing.T) {
		parser := &JsonParser{}

		payload, err := parser.ParseDialogs([]byte(``))
		if err == nil {
			t.Error("Ожидалась ошибка для пустого ответа, получено nil")
		}

		if payload != nil {
			t.Error("Ожидался nil для пустого ответа")
		}
	})
}

func TestJsonParserFolders(t *testing.T) {
	t.Run("Разбор простого массива папок", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `[{"id": 2, "title": "Работа", "includedChatIds": ["1", "2"]}]`

		folders, err := parser.ParseFolders([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if len(folders) != 1 {
			t.Fatalf("Ожидалась 1 папка, получено %d", len(folders))
		}

		if folders[0].Title != "Работа" {
			t.Errorf("Ожидался заголовок 'Работа', получено '%s'", folders[0].Title)
		}

		if len(folders[0].IncludedChatIDs) != 2 {
			t.Errorf("Ожидалось 2 участника, получено %d", len(folders[0].IncludedChatIDs))
		}
	})

	t.Run("Разбор конверта с полем filters", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `{"filters": [{"id": 3, "title": "Личное", "includePeers": [{"userId": 42}]}]}`

		folders, err := parser.ParseFolders([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if len(folders) != 1 {
			t.Fatalf("Ожидалась 1 папка, получено %d", len(folders))
		}

		if len(folders[0].IncludePeers) != 1 {
			t.Errorf("Ожидался 1 участник includePeers, получено %d", len(folders[0].IncludePeers))
		}
	})

	t.Run("Разбор конверта с полем folders", func(t *testing.T) {
		parser := &JsonParser{}
		testData := `{"folders": [{"id": 4, "title": "Новости"}]}`

		folders, err := parser.ParseFolders([]byte(testData))
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}

		if len(folders) != 1 {
			t.Errorf("Ожидалась 1 папка, получено %d", len(folders))
		}
	})

	t.Run("Разбор пустого ответа возвращает ошибку", func(t *testing.T) {
		parser := &JsonParser{}

		folders, err := parser.ParseFolders([]byte(` `))
		if err == nil {
			t.Error("Ожидалась ошибка для пустого ответа, получено nil")
		}

		if folders != nil {
			t.Error("Ожидался nil для пустого ответа")
		}
	})
}

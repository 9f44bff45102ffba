package services

import (
	"bytes"
	"encoding/json"
)

// StringID приводит идентификатор произвольной формы (строка, число,
// устаревшая обертка {value: ...}) к строке. Числовые и строковые
// идентификаторы одного диалога обязаны давать одинаковый результат:
// несовпадение типов здесь исторически ломало поиск по папкам.
func StringID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	return stringFromDecoded(v)
}

func stringFromDecoded(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case map[string]any:
		// Устаревшая схема: {value: <id>, loc: <подпись>}.
		if inner, ok := value["value"]; ok {
			return stringFromDecoded(inner)
		}
		return ""
	default:
		return ""
	}
}

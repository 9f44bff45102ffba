// Package timeparse приводит гетерогенные представления даты к единому
// моменту времени. Источники присылают даты как строки ISO-8601, секунды
// или миллисекунды Unix, поэтому каждый компонент, работающий с датами,
// обязан проходить через Instant.
package timeparse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Поддерживаемые строковые форматы, в порядке убывания строгости.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Instant приводит произвольное представление даты к моменту времени.
// Поддерживаются nil, строка ISO-8601, число (секунды или миллисекунды
// Unix), time.Time и json.RawMessage с любым из этих значений.
// Функция тотальна: непригодное значение дает nil, а не ошибку.
func Instant(raw any) *time.Time {
	switch v := raw.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		t := v
		return &t
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		t := *v
		return &t
	case string:
		return fromString(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return fromNumber(f)
	case float64:
		return fromNumber(v)
	case float32:
		return fromNumber(float64(v))
	case int:
		return fromNumber(float64(v))
	case int32:
		return fromNumber(float64(v))
	case int64:
		return fromNumber(float64(v))
	case json.RawMessage:
		return fromRaw(v)
	case []byte:
		return fromRaw(v)
	default:
		return nil
	}
}

// FormatLocal форматирует момент времени для отображения: "HH:MM DD-MM-YYYY".
func FormatLocal(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04 02-01-2006")
}

func fromString(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func fromNumber(f float64) *time.Time {
	if f == 0 {
		return nil
	}
	n := int64(f)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	var t time.Time
	// Десять десятичных цифр в целой части — значение в секундах Unix,
	// иначе — уже миллисекунды.
	if len(strconv.FormatInt(abs, 10)) == 10 {
		t = time.Unix(n, 0)
	} else {
		t = time.UnixMilli(n)
	}
	return &t
}

func fromRaw(raw []byte) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		// Встречается значение без кавычек, которое не является JSON,
		// например голая ISO-строка. Пробуем как строку.
		return fromString(string(raw))
	}
	switch value := v.(type) {
	case string:
		return fromString(value)
	case json.Number:
		return Instant(value)
	case map[string]any:
		// Устаревшая схема оборачивала значение в объект {value: ...}.
		if inner, ok := value["value"]; ok {
			return Instant(normalizeDecoded(inner))
		}
		return nil
	default:
		return nil
	}
}

// normalizeDecoded приводит значение из декодера к типам, которые
// понимает Instant.
func normalizeDecoded(v any) any {
	switch value := v.(type) {
	case json.Number:
		return value
	case string, float64, nil:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}

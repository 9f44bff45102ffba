package exporter

import "telegram-dialog-insights/internal/domain"

// Отображаемые строки для презентационного слоя. Канонические сущности
// остаются без локализации, строки живут только здесь.

var typeLabels = map[domain.DialogType]string{
	domain.TypeUser:       "личный",
	domain.TypeBot:        "бот",
	domain.TypeGroup:      "группа",
	domain.TypeSupergroup: "супергруппа",
	domain.TypeChannel:    "канал",
}

// TypeLabel возвращает отображаемое имя типа диалога.
// Неизвестный тип возвращается как есть.
func TypeLabel(t domain.DialogType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// YesNo возвращает "да" или "нет" для булевого признака.
func YesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

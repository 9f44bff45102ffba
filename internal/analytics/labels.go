package analytics

import "telegram-dialog-insights/internal/domain"

// Подписи и цвета диаграмм. Порядок фиксирован: от него зависит
// детерминированность всех производных представлений.

var dialogTypeOrder = []domain.DialogType{
	domain.TypeUser,
	domain.TypeBot,
	domain.TypeGroup,
	domain.TypeSupergroup,
	domain.TypeChannel,
}

var dialogTypeLabels = map[domain.DialogType]string{
	domain.TypeUser:       "Личные",
	domain.TypeBot:        "Боты",
	domain.TypeGroup:      "Группы",
	domain.TypeSupergroup: "Супергруппы",
	domain.TypeChannel:    "Каналы",
}

var dialogTypeColors = []string{"#64adf5", "#ec6060", "#cc64f5", "#bfb32c", "#64f586"}

var notifyStateOrder = []domain.NotifyState{
	domain.NotifyEnabled,
	domain.NotifySilent,
	domain.NotifyMuted,
}

var notifyStateLabels = map[domain.NotifyState]string{
	domain.NotifyEnabled: "Включены",
	domain.NotifySilent:  "Без звука",
	domain.NotifyMuted:   "Выключены",
}

const (
	readStateRead   = "Прочитано"
	readStateUnread = "Непрочитано"
)

var contactStatusOrder = []string{"online", "recently", "lastWeek", "lastMonth", "offline"}

var contactStatusLabels = []string{"Онлайн", "Недавно", "На этой неделе", "В этом месяце", "Давно"}

var contactStatusColors = []string{"#64f586", "#64adf5", "#f5a742", "#cc64f5", "#95a5a6"}

var heatmapDayLabels = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

var funnelLabels = []string{"Всего диалогов", "Непрочитанные", "Упоминания", "Реакции"}

var participationLabels = []string{"Админ", "Создатель", "Закреплено", "Заглушено", "Архив", "Черновики"}

var correlationLabels = []string{"Непрочитанные", "Закреплённые", "Заглушённые", "Архивные", "Черновики"}

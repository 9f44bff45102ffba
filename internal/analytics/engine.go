// Package analytics вычисляет производные представления над канонической
// коллекцией диалогов. Все вычисления — чистые функции от переданного
// набора: одинаковый вход дает побайтно одинаковый результат, скрытого
// состояния нет, коллекция никогда не мутируется.
package analytics

import (
	"math"
	"sort"
	"time"

	"telegram-dialog-insights/internal/domain"
)

// Engine вычисляет представления. Единственная зависимость — источник
// текущего времени, вынесенный для воспроизводимых прогонов и тестов.
type Engine struct {
	clock func() time.Time
}

// EngineOption настраивает Engine.
type EngineOption func(*Engine)

// WithClock подменяет источник текущего времени.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine создает новый экземпляр Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics возвращает сводные счетчики коллекции.
func (e *Engine) Metrics(dialogs []domain.Dialog) Metrics {
	var m Metrics
	m.Total = len(dialogs)
	for i := range dialogs {
		d := &dialogs[i]
		if d.HasUnread() {
			m.Unread++
		}
		m.Mentions += d.UnreadMentionsCount
		if d.IsArchived {
			m.Archived++
		}
		if d.IsPinned {
			m.Pinned++
		}
		if d.Muted {
			m.Muted++
		}
		if d.HasDraft() {
			m.Drafts++
		}
		if d.IsAdmin {
			m.Admin++
		}
		if d.IsCreator {
			m.Creator++
		}
		if d.IsPremium {
			m.Premium++
		}
		if d.IsVerified {
			m.Verified++
		}
		if d.Type == domain.TypeUser && d.Status == "online" {
			m.Online++
		}
	}
	return m
}

// DialogTypes возвращает гистограмму по типам. Неизвестные типы
// отбрасываются без ошибки.
func (e *Engine) DialogTypes(dialogs []domain.Dialog) TypesHistogram {
	counts := make(map[domain.DialogType]int, len(dialogTypeOrder))
	for i := range dialogs {
		if _, known := dialogTypeLabels[dialogs[i].Type]; known {
			counts[dialogs[i].Type]++
		}
	}

	hist := TypesHistogram{
		Labels: make([]string, 0, len(dialogTypeOrder)),
		Data:   make([]int, 0, len(dialogTypeOrder)),
		Colors: dialogTypeColors,
	}
	for _, t := range dialogTypeOrder {
		hist.Labels = append(hist.Labels, dialogTypeLabels[t])
		hist.Data = append(hist.Data, counts[t])
	}
	return hist
}

// TopUnread возвращает первые десять диалогов по числу непрочитанных.
// Сортировка устойчивая: при равенстве сохраняется исходный порядок.
func (e *Engine) TopUnread(dialogs []domain.Dialog) []TopUnreadEntry {
	withUnread := make([]*domain.Dialog, 0, len(dialogs))
	for i := range dialogs {
		if dialogs[i].HasUnread() {
			withUnread = append(withUnread, &dialogs[i])
		}
	}

	sort.SliceStable(withUnread, func(i, j int) bool {
		return withUnread[i].UnreadCount > withUnread[j].UnreadCount
	})

	if len(withUnread) > 10 {
		withUnread = withUnread[:10]
	}

	top := make([]TopUnreadEntry, 0, len(withUnread))
	for _, d := range withUnread {
		top = append(top, TopUnreadEntry{
			Name:            d.Title,
			UnreadCount:     d.UnreadCount,
			UnreadMentions:  d.UnreadMentionsCount,
			UnreadReactions: d.UnreadReactionsCount,
			Type:            d.Type,
			ID:              d.ID,
		})
	}
	return top
}

// round1 и round2 повторяют округление toFixed исходной панели.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

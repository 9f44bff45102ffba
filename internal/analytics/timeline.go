package analytics

import (
	"fmt"
	"time"

	"telegram-dialog-insights/internal/domain"
)

const timelineDays = 30

// ActivityTimeline строит активность за последние 30 дней. Диалог
// попадает в корзину календарного дня своей последней активности;
// направление определяется флагом последнего сообщения.
func (e *Engine) ActivityTimeline(dialogs []domain.Dialog) ActivityTimeline {
	now := e.clock().UTC()
	start := now.AddDate(0, 0, -(timelineDays - 1)).Truncate(24 * time.Hour)

	timeline := ActivityTimeline{
		Labels:   make([]string, timelineDays),
		Incoming: make([]int, timelineDays),
		Outgoing: make([]int, timelineDays),
	}

	indexByDay := make(map[string]int, timelineDays)
	for i := 0; i < timelineDays; i++ {
		day := start.AddDate(0, 0, i)
		indexByDay[day.Format("2006-01-02")] = i
		timeline.Labels[i] = fmt.Sprintf("%d.%d", day.Day(), int(day.Month()))
	}

	for i := range dialogs {
		d := &dialogs[i]
		if d.LastActivityAt == nil {
			continue
		}
		idx, ok := indexByDay[d.LastActivityAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		if d.Outgoing {
			timeline.Outgoing[idx]++
		} else {
			timeline.Incoming[idx]++
		}
	}

	return timeline
}

// DraftsTimeline строит распределение черновиков за последние 30 дней.
// Дата черновика берется из самого черновика, при ее отсутствии —
// из последней активности диалога.
func (e *Engine) DraftsTimeline(dialogs []domain.Dialog) DraftsTimeline {
	withDrafts := make([]*domain.Dialog, 0, len(dialogs))
	for i := range dialogs {
		if dialogs[i].HasDraft() {
			withDrafts = append(withDrafts, &dialogs[i])
		}
	}

	if len(withDrafts) == 0 {
		return DraftsTimeline{Labels: []string{}, Data: []int{}}
	}

	now := e.clock().UTC()
	start := now.AddDate(0, 0, -(timelineDays - 1)).Truncate(24 * time.Hour)

	result := DraftsTimeline{
		Labels: make([]string, timelineDays),
		Data:   make([]int, timelineDays),
		Total:  len(withDrafts),
	}
	periodStart := start
	periodEnd := now
	result.PeriodStart = &periodStart
	result.PeriodEnd = &periodEnd

	indexByDay := make(map[string]int, timelineDays)
	for i := 0; i < timelineDays; i++ {
		day := start.AddDate(0, 0, i)
		indexByDay[day.Format("2006-01-02")] = i
		result.Labels[i] = day.Format("02.01")
	}

	for _, d := range withDrafts {
		date := d.Draft.Date
		if date == nil {
			date = d.LastActivityAt
		}
		if date == nil {
			continue
		}

		if result.Oldest == nil || date.Before(*result.Oldest) {
			result.Oldest = date
		}
		if result.Newest == nil || date.After(*result.Newest) {
			result.Newest = date
		}

		idx, ok := indexByDay[date.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		result.InRange++
		result.Data[idx]++
	}

	return result
}

package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"telegram-dialog-insights/internal/domain"
)

// BuildReport собирает все производные представления в один снимок.
// Отчет полностью определяется коллекцией, списком папок и текущим
// временем часов движка.
func (e *Engine) BuildReport(dialogs []domain.Dialog, folders []domain.Folder) Report {
	return Report{
		GeneratedAt:          e.clock(),
		Metrics:              e.Metrics(dialogs),
		DialogTypes:          e.DialogTypes(dialogs),
		TopUnread:            e.TopUnread(dialogs),
		ActivityTimeline:     e.ActivityTimeline(dialogs),
		FolderDistribution:   e.FolderDistribution(dialogs, folders),
		Communities:          e.Communities(dialogs),
		Notifications:        e.Notifications(dialogs),
		GroupsAgeTimeline:    e.GroupsAgeTimeline(dialogs),
		ContactsStatus:       e.ContactsStatus(dialogs),
		ActivityHeatmap:      e.ActivityHeatmap(dialogs),
		ReadingFunnel:        e.ReadingFunnel(dialogs),
		ParticipationProfile: e.ParticipationProfile(dialogs),
		NotificationFlow:     e.NotificationFlow(dialogs),
		DraftsTimeline:       e.DraftsTimeline(dialogs),
		CorrelationMatrix:    e.CorrelationMatrix(dialogs),
		Summary:              e.Summary(dialogs),
	}
}

// Summary возвращает короткое текстовое описание коллекции: общее число
// диалогов и самый частый тип с его долей.
func (e *Engine) Summary(dialogs []domain.Dialog) string {
	total := len(dialogs)
	if total == 0 {
		return "Нет диалогов для анализа"
	}

	counts := make(map[domain.DialogType]int, len(dialogTypeOrder))
	for i := range dialogs {
		if _, known := dialogTypeLabels[dialogs[i].Type]; known {
			counts[dialogs[i].Type]++
		}
	}

	topType := dialogTypeOrder[0]
	topCount := 0
	for _, t := range dialogTypeOrder {
		if counts[t] > topCount {
			topCount = counts[t]
			topType = t
		}
	}

	share := strconv.FormatFloat(percent(topCount, total), 'f', 1, 64)
	return fmt.Sprintf("У вас %d диалогов. Больше всего %s - %d (%s%%)",
		total, strings.ToLower(dialogTypeLabels[topType]), topCount, share)
}

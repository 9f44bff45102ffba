package analytics

import (
	"fmt"

	"telegram-dialog-insights/internal/domain"
)

// ActivityHeatmap строит матрицу 7x24 активности по дням недели и часам.
// Строки идут с понедельника, пиковая ячейка — первая со строго
// максимальным значением при обходе по строкам.
func (e *Engine) ActivityHeatmap(dialogs []domain.Dialog) ActivityHeatmap {
	heatmap := ActivityHeatmap{
		DaysLabels:  heatmapDayLabels,
		HoursLabels: make([]string, 24),
		Data:        make([][]int, 7),
	}
	for hour := 0; hour < 24; hour++ {
		heatmap.HoursLabels[hour] = fmt.Sprintf("%d:00", hour)
	}
	for day := 0; day < 7; day++ {
		heatmap.Data[day] = make([]int, 24)
	}

	for i := range dialogs {
		d := &dialogs[i]
		if d.LastActivityAt == nil {
			continue
		}
		// time.Weekday начинается с воскресенья; сдвигаем к Пн=0.
		day := (int(d.LastActivityAt.Weekday()) + 6) % 7
		hour := d.LastActivityAt.Hour()
		heatmap.Data[day][hour]++
	}

	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			value := heatmap.Data[day][hour]
			heatmap.TotalMessages += value
			if value > heatmap.PeakValue {
				heatmap.PeakValue = value
				heatmap.PeakDay = day
				heatmap.PeakHour = hour
			}
		}
	}

	return heatmap
}

package exporter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/pkg/timeparse"
	"telegram-dialog-insights/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода отчета в консоль.
// Таблицы выравниваются по ширине рун, а не байт: подписи кириллические.
type ConsoleExporter struct{}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter() ports.Exporter {
	return &ConsoleExporter{}
}

// Export выводит собранный отчет в консоль.
func (e *ConsoleExporter) Export(report *analytics.Report) error {
	if report == nil {
		return fmt.Errorf("отчет не задан")
	}

	generatedAt := report.GeneratedAt
	fmt.Println("--- Отчет по диалогам ---")
	fmt.Printf("Сформирован: %s\n", timeparse.FormatLocal(&generatedAt))
	fmt.Println(report.Summary)
	fmt.Println()

	m := report.Metrics
	fmt.Println("Метрики:")
	fmt.Printf("  Всего: %d, непрочитанных: %d, упоминаний: %d\n", m.Total, m.Unread, m.Mentions)
	fmt.Printf("  Закреплено: %d, заглушено: %d, в архиве: %d, черновиков: %d\n",
		m.Pinned, m.Muted, m.Archived, m.Drafts)
	fmt.Println()

	fmt.Println("Типы диалогов:")
	printTable(report.DialogTypes.Labels, report.DialogTypes.Data)

	if len(report.TopUnread) > 0 {
		fmt.Println()
		fmt.Println("Топ непрочитанных:")
		names := make([]string, 0, len(report.TopUnread))
		counts := make([]int, 0, len(report.TopUnread))
		for _, entry := range report.TopUnread {
			names = append(names, entry.Name)
			counts = append(counts, entry.UnreadCount)
		}
		printTable(names, counts)
	}

	if len(report.FolderDistribution) > 0 {
		fmt.Println()
		fmt.Println("Папки:")
		names := make([]string, 0, len(report.FolderDistribution))
		counts := make([]int, 0, len(report.FolderDistribution))
		for _, stat := range report.FolderDistribution {
			names = append(names, stat.Name)
			counts = append(counts, stat.Count)
		}
		printTable(names, counts)
	}

	return nil
}

// printTable выводит двухколоночную таблицу "подпись | значение"
// с выравниванием подписей по видимой ширине.
func printTable(labels []string, values []int) {
	width := 0
	for _, label := range labels {
		if w := runewidth.StringWidth(label); w > width {
			width = w
		}
	}
	for i, label := range labels {
		padding := strings.Repeat(" ", width-runewidth.StringWidth(label))
		fmt.Printf("  %s%s | %d\n", label, padding, values[i])
	}
}

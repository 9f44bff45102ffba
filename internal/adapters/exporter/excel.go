package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/ports"
)

// ExcelExporter реализует интерфейс Exporter для выгрузки отчета
// в файл формата xlsx.
type ExcelExporter struct {
	path   string
	logger *slog.Logger
}

// ExcelExporterOption настраивает ExcelExporter.
type ExcelExporterOption func(*ExcelExporter)

// WithExcelLogger подменяет логгер.
func WithExcelLogger(logger *slog.Logger) ExcelExporterOption {
	return func(e *ExcelExporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
// Путь указывает, куда записать итоговый файл.
func NewExcelExporter(path string, opts ...ExcelExporterOption) ports.Exporter {
	e := &ExcelExporter{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export записывает отчет в xlsx-файл: сводка, типы, топ непрочитанных,
// папки и воронка прочтения на отдельных листах.
func (e *ExcelExporter) Export(report *analytics.Report) error {
	if report == nil {
		return fmt.Errorf("отчет не задан")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	if err := e.writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := writeTableSheet(f, "Типы диалогов", report.DialogTypes.Labels, report.DialogTypes.Data); err != nil {
		return err
	}
	if err := e.writeTopUnreadSheet(f, report); err != nil {
		return err
	}
	if err := e.writeFoldersSheet(f, report); err != nil {
		return err
	}
	if err := writeTableSheet(f, "Воронка прочтения", report.ReadingFunnel.Labels, report.ReadingFunnel.Data); err != nil {
		return err
	}

	// Убираем стандартный пустой лист.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("failed to save excel file: %w", err)
	}

	e.logger.Info("отчет выгружен в excel", slog.String("path", e.path))
	return nil
}

func (e *ExcelExporter) writeSummarySheet(f *excelize.File, report *analytics.Report) error {
	sheetName := "Сводка"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}
	f.SetActiveSheet(index)

	m := report.Metrics
	rows := [][]any{
		{"Сформирован", report.GeneratedAt.Format(time.RFC3339)},
		{"Сводка", report.Summary},
		{"Всего диалогов", m.Total},
		{"Непрочитанных", m.Unread},
		{"Упоминаний", m.Mentions},
		{"Закреплено", m.Pinned},
		{"Заглушено", m.Muted},
		{"В архиве", m.Archived},
		{"Черновиков", m.Drafts},
		{"Администратор", m.Admin},
		{"Создатель", m.Creator},
	}
	for i, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+1), row[1])
	}
	return nil
}

func (e *ExcelExporter) writeTopUnreadSheet(f *excelize.File, report *analytics.Report) error {
	sheetName := "Топ непрочитанных"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}

	headers := []string{"Название", "Тип", "Непрочитанные", "Упоминания", "Реакции"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, entry := range report.TopUnread {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(entry.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), entry.UnreadCount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), entry.UnreadMentions)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), entry.UnreadReactions)
	}
	return nil
}

func (e *ExcelExporter) writeFoldersSheet(f *excelize.File, report *analytics.Report) error {
	sheetName := "Папки"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}

	headers := []string{"Название", "Диалогов", "Непрочитанных"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, stat := range report.FolderDistribution {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), stat.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), stat.Count)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), stat.Unread)
	}
	return nil
}

func writeTableSheet(f *excelize.File, sheetName string, labels []string, values []int) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
	}
	for i, label := range labels {
		row := i + 1
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), values[i])
	}
	return nil
}

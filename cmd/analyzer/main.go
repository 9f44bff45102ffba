// Команда analyzer строит отчет по локальной выгрузке диалогов без запуска
// сервера: файл с диалогами разбирается, нормализуется и выводится в консоль,
// по желанию — в Excel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"telegram-dialog-insights/internal/adapters/exporter"
	"telegram-dialog-insights/internal/adapters/parser"
	"telegram-dialog-insights/internal/adapters/source"
	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/core/services"
	"telegram-dialog-insights/internal/ports"
	"telegram-dialog-insights/internal/store"
)

func main() {
	var dialogsPath string
	var foldersPath string
	var excelPath string
	var listDialogs bool
	flag.StringVar(&dialogsPath, "dialogs", "", "путь к JSON-файлу с диалогами")
	flag.StringVar(&foldersPath, "folders", "", "путь к JSON-файлу с папками (необязательно)")
	flag.StringVar(&excelPath, "excel", "", "путь для выгрузки отчета в xlsx (необязательно)")
	flag.BoolVar(&listDialogs, "list", false, "вывести нормализованный список диалогов")
	flag.Parse()

	if dialogsPath == "" {
		fmt.Fprintln(os.Stderr, "Использование: analyzer -dialogs <файл> [-folders <файл>] [-excel <файл>] [-list]")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(dialogsPath, foldersPath, excelPath, listDialogs); err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(dialogsPath, foldersPath, excelPath string, listDialogs bool) error {
	ctx := context.Background()

	src := source.NewFileSource(dialogsPath, foldersPath)
	jsonParser := parser.NewJsonParser()

	data, err := src.FetchDialogs(ctx, "local", 0, 0)
	if err != nil {
		return fmt.Errorf("не удалось прочитать диалоги: %w", err)
	}
	payload, err := jsonParser.ParseDialogs(data)
	if err != nil {
		return fmt.Errorf("не удалось разобрать диалоги: %w", err)
	}

	rawFolders := payload.Folders
	if foldersPath != "" {
		foldersData, err := src.FetchFolders(ctx, "local")
		if err != nil {
			return fmt.Errorf("не удалось прочитать папки: %w", err)
		}
		parsed, err := jsonParser.ParseFolders(foldersData)
		if err != nil {
			return fmt.Errorf("не удалось разобрать папки: %w", err)
		}
		rawFolders = parsed
	}

	normalizer := services.NewNormalizationService(services.NewFolderService())
	st := store.NewDialogStore(normalizer)
	st.ReplaceAll(payload.Dialogs, rawFolders)

	dialogs, folders := st.Snapshot()
	slog.Info("Коллекция нормализована", "dialogs", len(dialogs), "folders", len(folders))

	if listDialogs {
		for _, d := range dialogs {
			fmt.Printf("%s [%s] непрочитанных: %d, закреплен: %s, заглушен: %s, архив: %s\n",
				d.Title, exporter.TypeLabel(d.Type), d.UnreadCount,
				exporter.YesNo(d.IsPinned), exporter.YesNo(d.Muted), exporter.YesNo(d.IsArchived))
		}
	}

	engine := analytics.NewEngine()
	report := engine.BuildReport(dialogs, folders)

	exporters := []ports.Exporter{exporter.NewConsoleExporter()}
	if excelPath != "" {
		exporters = append(exporters, exporter.NewExcelExporter(excelPath))
	}

	for _, exp := range exporters {
		if err := exp.Export(&report); err != nil {
			return fmt.Errorf("не удалось вывести отчет: %w", err)
		}
	}
	return nil
}

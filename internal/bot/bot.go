package bot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"telegram-dialog-insights/cmd/bot/config"
	"telegram-dialog-insights/internal/analytics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	startCommand   = "start"
	refreshCommand = "refresh"
	reportCommand  = "report"
	excelCommand   = "excel"
)

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          config.BotConfig
	serverClient *ServerClient
	taskStore    *TaskStore
	logger       *slog.Logger
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.BotConfig, serverClient *ServerClient, taskStore *TaskStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:          api,
		cfg:          cfg,
		serverClient: serverClient,
		taskStore:    taskStore,
		logger:       logger,
	}, nil
}

// Start запускает основной цикл обработки обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Ответ на любые другие сообщения
	reply := tgbotapi.NewMessage(msg.Chat.ID, "Я понимаю только команды. Отправьте /start, чтобы увидеть список.")
	b.sendMessage(reply)
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case startCommand:
		replyText := "Добро пожаловать! Я бот аналитики диалогов Telegram.\n\n" +
			"Команды:\n" +
			"• /refresh <аккаунт> — пересобрать коллекцию диалогов и построить свежий отчет.\n" +
			"• /report <аккаунт> — прислать последний отчет текстом.\n" +
			"• /excel <аккаунт> — прислать последний отчет Excel-файлом."
		reply := tgbotapi.NewMessage(msg.Chat.ID, replyText)
		b.sendMessage(reply)
	case refreshCommand:
		b.handleRefresh(ctx, msg)
	case reportCommand:
		b.handleReport(ctx, msg, false)
	case excelCommand:
		b.handleReport(ctx, msg, true)
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Я не знаю такой команды.")
		b.sendMessage(reply)
	}
}

// handleRefresh запускает фоновое обновление аккаунта на сервере.
func (b *Bot) handleRefresh(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(slog.Int64("chat_id", chatID))

	accountID := strings.TrimSpace(msg.CommandArguments())
	if accountID == "" {
		b.sendMessage(tgbotapi.NewMessage(chatID, "Укажите аккаунт: /refresh <аккаунт>"))
		return
	}

	// Проверяем, нет ли уже активной задачи.
	if _, ok := b.taskStore.Get(chatID); ok {
		logger.Warn("user tried to start a new task while another is active")
		reply := tgbotapi.NewMessage(chatID, "Пожалуйста, подождите завершения предыдущей задачи, прежде чем начинать новую.")
		b.sendMessage(reply)
		return
	}

	startResp, err := b.serverClient.StartRefresh(ctx, accountID)
	if err != nil {
		logger.Error("failed to start refresh on backend", slog.String("error", err.Error()))
		reply := tgbotapi.NewMessage(chatID, "Не удалось запустить обновление на сервере. Пожалуйста, попробуйте позже.")
		b.sendMessage(reply)
		return
	}

	taskID := startResp.TaskID
	logger = logger.With(slog.String("task_id", taskID))
	logger.Info("refresh started on backend", slog.String("account_id", accountID))

	// Сохраняем задачу и запускаем опрос.
	b.taskStore.Set(chatID, PendingTask{TaskID: taskID, AccountID: accountID})
	go b.pollTaskStatus(context.Background(), chatID, taskID, accountID) // Используем новый контекст для фоновой задачи

	reply := tgbotapi.NewMessage(chatID, "✅ Обновление запущено. Пришлю отчет, когда он будет готов.")
	b.sendMessage(reply)
}

// handleReport запрашивает последний отчет аккаунта и отправляет его.
func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, asExcel bool) {
	chatID := msg.Chat.ID

	accountID := strings.TrimSpace(msg.CommandArguments())
	if accountID == "" {
		b.sendMessage(tgbotapi.NewMessage(chatID, "Укажите аккаунт: /report <аккаунт>"))
		return
	}

	report, err := b.serverClient.GetReport(ctx, accountID)
	if err != nil {
		b.logger.Error("failed to fetch report", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.sendMessage(tgbotapi.NewMessage(chatID, "Не удалось получить отчет с сервера. Пожалуйста, попробуйте позже."))
		return
	}
	if report == nil {
		b.sendMessage(tgbotapi.NewMessage(chatID, "Отчета для этого аккаунта еще нет. Запустите /refresh."))
		return
	}

	if asExcel {
		b.sendExcelReport(chatID, report)
		return
	}
	b.sendTextReport(chatID, report)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

// pollTaskStatus асинхронно опрашивает статус задачи на бэкенд-сервере.
func (b *Bot) pollTaskStatus(ctx context.Context, chatID int64, taskID, accountID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))
	defer b.taskStore.Delete(chatID) // Гарантированно удаляем задачу по завершении.

	ticker := time.NewTicker(time.Duration(b.cfg.PollingIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Warn("polling cancelled by context")
			return
		case <-ticker.C:
			logger.Debug("polling task status")
			status, err := b.serverClient.GetTaskStatus(ctx, taskID)
			if err != nil {
				logger.Error("failed to get task status", slog.String("error", err.Error()))
				continue
			}

			switch status.Status {
			case "completed":
				logger.Info("task completed")
				b.processCompletedTask(ctx, chatID, accountID)
				return // Завершаем опрос
			case "failed":
				logger.Warn("task failed", slog.String("reason", status.ErrorMessage))
				reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Произошла ошибка при обновлении аккаунта: %s", status.ErrorMessage))
				b.sendMessage(reply)
				return // Завершаем опрос
			case "pending", "processing":
				logger.Debug("task is in progress", slog.String("status", status.Status))
				// Продолжаем опрос
			default:
				logger.Warn("unknown task status", slog.String("status", status.Status))
			}
		}
	}
}

// processCompletedTask забирает готовый отчет и отправляет его пользователю.
func (b *Bot) processCompletedTask(ctx context.Context, chatID int64, accountID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("account_id", accountID))
	logger.Info("fetching report for completed task")

	report, err := b.serverClient.GetReport(ctx, accountID)
	if err != nil || report == nil {
		if err != nil {
			logger.Error("failed to fetch report", slog.String("error", err.Error()))
		}
		reply := tgbotapi.NewMessage(chatID, "Обновление завершилось, но получить отчет не удалось. Попробуйте /report позже.")
		b.sendMessage(reply)
		return
	}

	// Логика ветвления в зависимости от размера коллекции
	if report.Metrics.Total >= b.cfg.ExcelThreshold {
		logger.Info("dialog count is over threshold, sending excel file", slog.Int("total", report.Metrics.Total))
		b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("В коллекции %d диалогов. Формирую Excel-файл...", report.Metrics.Total)))
		b.sendExcelReport(chatID, report)
		return
	}
	b.sendTextReport(chatID, report)
}

// sendTextReport форматирует и отправляет отчет в виде текстового сообщения HTML.
func (b *Bot) sendTextReport(chatID int64, report *analytics.Report) {
	text := b.renderReportText(report)

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML

	// Проверка на максимальную длину сообщения в Telegram (4096 символов)
	if len(text) > 4096 {
		b.logger.Warn("сгенерированный текст слишком длинный, отправка в виде файла", "length", len(text))
		b.sendExcelReport(chatID, report)
		return
	}

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("не удалось отправить текстовый отчет", "error", err.Error())
	}
}

// renderReportText собирает текстовое представление отчета: сводка
// и таблицы ключевых распределений в моноширинном блоке.
func (b *Bot) renderReportText(report *analytics.Report) string {
	var sb strings.Builder
	sb.WriteString(html.EscapeString(report.Summary))
	sb.WriteString("\n<pre><code>")

	b.writeTable(&sb, "Типы диалогов", report.DialogTypes.Labels, report.DialogTypes.Data)
	b.writeTable(&sb, "Воронка прочтения", report.ReadingFunnel.Labels, report.ReadingFunnel.Data)

	if len(report.TopUnread) > 0 {
		labels := make([]string, 0, len(report.TopUnread))
		values := make([]int, 0, len(report.TopUnread))
		for _, entry := range report.TopUnread {
			labels = append(labels, entry.Name)
			values = append(values, entry.UnreadCount)
		}
		b.writeTable(&sb, "Топ непрочитанных", labels, values)
	}

	if len(report.FolderDistribution) > 0 {
		labels := make([]string, 0, len(report.FolderDistribution))
		values := make([]int, 0, len(report.FolderDistribution))
		for _, stat := range report.FolderDistribution {
			labels = append(labels, stat.Name)
			values = append(values, stat.Count)
		}
		b.writeTable(&sb, "Папки", labels, values)
	}

	sb.WriteString("</code></pre>")
	return sb.String()
}

// writeTable печатает таблицу "метка | значение" с переносом длинных меток.
func (b *Bot) writeTable(sb *strings.Builder, title string, labels []string, values []int) {
	labelWidth := b.cfg.Render.Label
	valueWidth := b.cfg.Render.Value

	sb.WriteString("\n")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("|%s|%s|\n", strings.Repeat("-", labelWidth+2), strings.Repeat("-", valueWidth+2)))

	for i, label := range labels {
		clean := strings.ToValidUTF8(label, "")
		clean = html.EscapeString(clean)
		clean = strings.ReplaceAll(clean, "\n", " ")

		labelLines := wrapString(clean, labelWidth)
		for j, part := range labelLines {
			valuePart := ""
			if j == 0 {
				valuePart = fmt.Sprintf("%d", values[i])
			}
			padLabel := generatePadding(part, labelWidth)
			padValue := generatePadding(valuePart, valueWidth)
			sb.WriteString(fmt.Sprintf("| %s%s | %s%s |\n", part, padLabel, valuePart, padValue))
		}
	}
}

// sendExcelReport формирует xlsx-отчет в памяти и отправляет его файлом.
func (b *Bot) sendExcelReport(chatID int64, report *analytics.Report) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			b.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	sheetName := "Сводка"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)

	m := report.Metrics
	rows := [][]any{
		{"Сформирован", report.GeneratedAt.Format(time.RFC3339)},
		{"Сводка", report.Summary},
		{"Всего диалогов", m.Total},
		{"Непрочитанных", m.Unread},
		{"Закреплено", m.Pinned},
		{"Заглушено", m.Muted},
		{"В архиве", m.Archived},
		{"Черновиков", m.Drafts},
	}
	for i, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+1), row[1])
	}

	typesSheet := "Типы диалогов"
	f.NewSheet(typesSheet)
	for i, label := range report.DialogTypes.Labels {
		f.SetCellValue(typesSheet, fmt.Sprintf("A%d", i+1), label)
		f.SetCellValue(typesSheet, fmt.Sprintf("B%d", i+1), report.DialogTypes.Data[i])
	}

	unreadSheet := "Топ непрочитанных"
	f.NewSheet(unreadSheet)
	headers := []string{"Название", "Тип", "Непрочитанные"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(unreadSheet, cell, h)
	}
	for i, entry := range report.TopUnread {
		row := i + 2
		f.SetCellValue(unreadSheet, fmt.Sprintf("A%d", row), entry.Name)
		f.SetCellValue(unreadSheet, fmt.Sprintf("B%d", row), string(entry.Type))
		f.SetCellValue(unreadSheet, fmt.Sprintf("C%d", row), entry.UnreadCount)
	}

	f.DeleteSheet("Sheet1")

	// Запись в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		b.logger.Error("failed to write excel to buffer", slog.String("error", err.Error()))
		b.sendMessage(tgbotapi.NewMessage(chatID, "Не удалось сгенерировать Excel-файл."))
		return
	}

	// Отправка файла
	fileName := fmt.Sprintf("dialog_report_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	fileBytes := tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	}

	msg := tgbotapi.NewDocument(chatID, fileBytes)
	msg.Caption = fmt.Sprintf("Отчет готов. В коллекции %d диалогов.", report.Metrics.Total)
	b.sendMessage(msg)
}

// generatePadding вычисляет отступ для строки с учетом поправки на CJK-символы.
func generatePadding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	// Прагматическая поправка: если в строке есть CJK-символы, добавляем один пробел,
	// чтобы компенсировать ошибку рендеринга в некоторых клиентах.
	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}

// wrapString wraps a given string to a specified width using runewidth.
// It prioritizes wrapping on word boundaries (spaces). If a single word is
// longer than the width, it will be broken mid-word.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	words := strings.Fields(s)

	if len(words) == 0 { // Handles strings with only spaces or empty strings
		runes := []rune(s)
		for len(runes) > 0 {
			i := 0
			currentWidth := 0
			for i < len(runes) {
				runeWidth := runewidth.RuneWidth(runes[i])
				if currentWidth+runeWidth > width {
					break
				}
				currentWidth += runeWidth
				i++
			}
			lines = append(lines, string(runes[:i]))
			runes = runes[i:]
		}
		if len(lines) == 0 {
			return []string{""}
		}
		return lines
	}

	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		// Handle words longer than the entire width
		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}

			runes := []rune(word)
			for len(runes) > 0 {
				i := 0
				currentWidth := 0
				for i < len(runes) {
					runeWidth := runewidth.RuneWidth(runes[i])
					if currentWidth+runeWidth > width {
						break
					}
					currentWidth += runeWidth
					i++
				}
				lines = append(lines, string(runes[:i]))
				runes = runes[i:]
			}
			continue
		}

		// If the word doesn't fit on the current line, start a new one
		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}

package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-dialog-insights/internal/domain"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return testNow }))
}

func timePtr(t time.Time) *time.Time { return &t }

func TestMetrics(t *testing.T) {
	e := newTestEngine()

	t.Run("пустая коллекция дает нулевые счетчики", func(t *testing.T) {
		m := e.Metrics(nil)
		assert.Equal(t, Metrics{}, m)
	})

	t.Run("счетчики считаются по всем признакам", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", Type: domain.TypeUser, UnreadCount: 3, UnreadMentionsCount: 2, Status: "online"},
			{ID: "2", Type: domain.TypeGroup, IsArchived: true, IsPinned: true, Muted: true},
			{ID: "3", Type: domain.TypeChannel, Draft: &domain.Draft{Text: "черновик"}, IsAdmin: true, IsCreator: true},
			{ID: "4", Type: domain.TypeUser, IsPremium: true, IsVerified: true},
		}
		m := e.Metrics(dialogs)

		assert.Equal(t, 4, m.Total)
		assert.Equal(t, 1, m.Unread)
		assert.Equal(t, 2, m.Mentions)
		assert.Equal(t, 1, m.Archived)
		assert.Equal(t, 1, m.Pinned)
		assert.Equal(t, 1, m.Muted)
		assert.Equal(t, 1, m.Drafts)
		assert.Equal(t, 1, m.Admin)
		assert.Equal(t, 1, m.Creator)
		assert.Equal(t, 1, m.Premium)
		assert.Equal(t, 1, m.Verified)
		assert.Equal(t, 1, m.Online)
	})
}

func TestDialogTypes(t *testing.T) {
	e := newTestEngine()

	t.Run("гистограмма имеет фиксированные пять типов", func(t *testing.T) {
		hist := e.DialogTypes(nil)
		assert.Equal(t, []string{"Личные", "Боты", "Группы", "Супергруппы", "Каналы"}, hist.Labels)
		assert.Equal(t, []int{0, 0, 0, 0, 0}, hist.Data)
		assert.Len(t, hist.Colors, 5)
	})

	t.Run("неизвестный тип отбрасывается", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", Type: domain.TypeUser},
			{ID: "2", Type: domain.DialogType("mystery")},
			{ID: "3", Type: domain.TypeChannel},
		}
		hist := e.DialogTypes(dialogs)
		assert.Equal(t, []int{1, 0, 0, 0, 1}, hist.Data)
	})
}

func TestTopUnread(t *testing.T) {
	e := newTestEngine()

	t.Run("сортировка по убыванию с обрезкой до десяти", func(t *testing.T) {
		dialogs := make([]domain.Dialog, 0, 12)
		for i := 0; i < 12; i++ {
			dialogs = append(dialogs, domain.Dialog{
				ID:          string(rune('a' + i)),
				Title:       "Диалог",
				UnreadCount: i + 1,
			})
		}
		top := e.TopUnread(dialogs)

		require.Len(t, top, 10)
		assert.Equal(t, 12, top[0].UnreadCount)
		assert.Equal(t, 3, top[9].UnreadCount)
	})

	t.Run("при равенстве сохраняется исходный порядок", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "first", UnreadCount: 5},
			{ID: "second", UnreadCount: 5},
			{ID: "third", UnreadCount: 7},
		}
		top := e.TopUnread(dialogs)

		require.Len(t, top, 3)
		assert.Equal(t, "third", top[0].ID)
		assert.Equal(t, "first", top[1].ID)
		assert.Equal(t, "second", top[2].ID)
	})

	t.Run("диалоги без непрочитанных не попадают в рейтинг", func(t *testing.T) {
		top := e.TopUnread([]domain.Dialog{{ID: "read"}})
		assert.Empty(t, top)
	})
}

func TestActivityTimeline(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", LastActivityAt: timePtr(testNow.Add(-2 * time.Hour))},
		{ID: "2", LastActivityAt: timePtr(testNow.Add(-2 * time.Hour)), Outgoing: true},
		{ID: "3", LastActivityAt: timePtr(testNow.AddDate(0, 0, -40))},
		{ID: "4"},
	}
	timeline := e.ActivityTimeline(dialogs)

	require.Len(t, timeline.Labels, 30)
	assert.Equal(t, "1.6", timeline.Labels[29])
	assert.Equal(t, 1, timeline.Incoming[29])
	assert.Equal(t, 1, timeline.Outgoing[29])

	totalIn, totalOut := 0, 0
	for i := range timeline.Incoming {
		totalIn += timeline.Incoming[i]
		totalOut += timeline.Outgoing[i]
	}
	assert.Equal(t, 1, totalIn, "активность вне окна отбрасывается")
	assert.Equal(t, 1, totalOut)
}

func TestFolderDistribution(t *testing.T) {
	e := newTestEngine()

	folders := []domain.Folder{
		{ID: 2, Title: "Работа"},
		{ID: 3, Title: "Пустая"},
	}
	dialogs := []domain.Dialog{
		{ID: "1", FolderIDs: []int{2}},
		{ID: "2", FolderIDs: []int{2}, UnreadCount: 4},
		{ID: "3"},
		{ID: "4", IsArchived: true, FolderIDs: []int{domain.ArchiveFolderID}},
		{ID: "5", FolderIDs: []int{9}},
	}
	stats := e.FolderDistribution(dialogs, folders)

	require.Len(t, stats, 4)
	assert.Equal(t, "Работа", stats[0].Name)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 1, stats[0].Unread)
	assert.Equal(t, "Главная", stats[1].Name)
	assert.Nil(t, stats[1].ID)
	assert.Equal(t, "Архив", stats[2].Name)
	assert.Equal(t, "Папка #9", stats[3].Name)

	t.Run("сумма счетчиков равна размеру коллекции", func(t *testing.T) {
		sum := 0
		for _, s := range stats {
			sum += s.Count
		}
		assert.Equal(t, len(dialogs), sum)
	})

	t.Run("архив исключает прочие папки", func(t *testing.T) {
		archived := []domain.Dialog{
			{ID: "1", IsArchived: true, FolderIDs: []int{domain.ArchiveFolderID}},
		}
		stats := e.FolderDistribution(archived, folders)
		require.Len(t, stats, 1)
		assert.Equal(t, "Архив", stats[0].Name)
	})
}

func TestCommunities(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", Title: "Группа", Type: domain.TypeGroup, ParticipantsCount: 10,
			UnreadCount: 200, LastActivityAt: timePtr(testNow.AddDate(0, 0, -3))},
		{ID: "2", Title: "Канал", Type: domain.TypeChannel, ParticipantsCount: 5000, UnreadCount: 1},
		{ID: "3", Title: "Без участников", Type: domain.TypeSupergroup},
		{ID: "4", Title: "Личный", Type: domain.TypeUser, ParticipantsCount: 2},
	}
	points := e.Communities(dialogs)

	require.Len(t, points, 2)
	assert.Equal(t, 10, points[0].X)
	assert.Equal(t, 3, points[0].Y)
	assert.Equal(t, 30.0, points[0].R, "радиус ограничен сверху")
	assert.Equal(t, 5.0, points[1].R, "радиус ограничен снизу")
	assert.Equal(t, 0, points[1].Y, "без даты активности простой равен нулю")
}

func TestGroupsAgeTimeline(t *testing.T) {
	e := newTestEngine()

	t.Run("без датированных сообществ результат пустой", func(t *testing.T) {
		result := e.GroupsAgeTimeline([]domain.Dialog{{ID: "1", Type: domain.TypeGroup}})
		assert.Empty(t, result.Labels)
		assert.Zero(t, result.Total)
	})

	t.Run("годы идут по возрастанию", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", Type: domain.TypeChannel, LastActivityAt: timePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))},
			{ID: "2", Type: domain.TypeGroup, LastActivityAt: timePtr(time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC))},
			{ID: "3", Type: domain.TypeSupergroup, LastActivityAt: timePtr(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))},
		}
		result := e.GroupsAgeTimeline(dialogs)

		assert.Equal(t, []string{"2021", "2023"}, result.Labels)
		assert.Equal(t, []int{1, 0}, result.Groups)
		assert.Equal(t, []int{0, 1}, result.Channels)
		assert.Equal(t, []int{0, 1}, result.Supergroups)
		assert.Equal(t, 3, result.Total)
	})
}

func TestContactsStatus(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", Type: domain.TypeUser, Status: "online"},
		{ID: "2", Type: domain.TypeUser, Status: "recently"},
		{ID: "3", Type: domain.TypeUser, Status: "что-то странное"},
		{ID: "4", Type: domain.TypeUser},
		{ID: "5", Type: domain.TypeBot, Status: "online"},
		{ID: "6", Type: domain.TypeGroup},
	}
	result := e.ContactsStatus(dialogs)

	assert.Equal(t, []string{"Онлайн", "Недавно", "На этой неделе", "В этом месяце", "Давно"}, result.Labels)
	assert.Equal(t, []int{1, 1, 0, 0, 2}, result.Data, "неизвестный статус считается как давно")
}

func TestNotifications(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", Type: domain.TypeUser, NotifyState: domain.NotifyEnabled},
		{ID: "2", Type: domain.TypeBot, NotifyState: domain.NotifyMuted},
		{ID: "3", Type: domain.TypeGroup, NotifyState: domain.NotifySilent},
		{ID: "4", Type: domain.TypeSupergroup, NotifyState: domain.NotifySilent},
		{ID: "5", Type: domain.TypeChannel, NotifyState: domain.NotifyMuted},
		{ID: "6", Type: domain.DialogType("mystery"), NotifyState: domain.NotifyEnabled},
	}
	result := e.Notifications(dialogs)

	assert.Equal(t, []int{1, 0, 0}, result.Enabled)
	assert.Equal(t, []int{0, 2, 0}, result.Silent)
	assert.Equal(t, []int{1, 0, 1}, result.Muted)
	assert.Equal(t, 5, result.Total, "каждый известный диалог учтен ровно один раз")
}

func TestActivityHeatmap(t *testing.T) {
	e := newTestEngine()

	// 3 июня 2024 — понедельник.
	monday := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 2, 23, 0, 0, 0, time.UTC)
	dialogs := []domain.Dialog{
		{ID: "1", LastActivityAt: &monday},
		{ID: "2", LastActivityAt: &monday},
		{ID: "3", LastActivityAt: &sunday},
		{ID: "4"},
	}
	heatmap := e.ActivityHeatmap(dialogs)

	require.Len(t, heatmap.Data, 7)
	require.Len(t, heatmap.Data[0], 24)
	assert.Equal(t, 2, heatmap.Data[0][9], "понедельник в первой строке")
	assert.Equal(t, 1, heatmap.Data[6][23], "воскресенье в последней строке")
	assert.Equal(t, 3, heatmap.TotalMessages)
	assert.Equal(t, 0, heatmap.PeakDay)
	assert.Equal(t, 9, heatmap.PeakHour)
	assert.Equal(t, 2, heatmap.PeakValue)
}

func TestReadingFunnel(t *testing.T) {
	e := newTestEngine()

	t.Run("значения этапов не возрастают на любом входе", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", UnreadCount: 5, UnreadMentionsCount: 1, UnreadReactionsCount: 1},
			{ID: "2", UnreadCount: 3},
			{ID: "3", UnreadReactionsCount: 4},
			{ID: "4"},
		}
		funnel := e.ReadingFunnel(dialogs)

		require.Len(t, funnel.Data, 4)
		for i := 1; i < len(funnel.Data); i++ {
			assert.LessOrEqual(t, funnel.Data[i], funnel.Data[i-1])
		}
		assert.Equal(t, []int{4, 2, 1, 1}, funnel.Data,
			"реакции без непрочитанных не входят в воронку")
	})

	t.Run("проценты и конверсии", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", UnreadCount: 5, UnreadMentionsCount: 1, UnreadReactionsCount: 1},
			{ID: "2", UnreadCount: 3},
			{ID: "3"},
			{ID: "4"},
		}
		funnel := e.ReadingFunnel(dialogs)

		assert.Equal(t, []float64{100, 50, 25, 25}, funnel.PercentagesFromTotal)
		assert.Equal(t, []float64{100, 100, 50, 100}, funnel.ConversionRates)
		assert.Equal(t, 25.0, funnel.TotalConversion)
	})

	t.Run("пустая коллекция", func(t *testing.T) {
		funnel := e.ReadingFunnel(nil)
		assert.Equal(t, []int{0, 0, 0, 0}, funnel.Data)
		assert.Equal(t, 100.0, funnel.PercentagesFromTotal[0])
	})
}

func TestParticipationProfile(t *testing.T) {
	e := newTestEngine()

	t.Run("пустая коллекция дает пустые оси", func(t *testing.T) {
		profile := e.ParticipationProfile(nil)
		assert.Empty(t, profile.Labels)
		assert.Empty(t, profile.Data)
		assert.Empty(t, profile.Percentages)
	})

	t.Run("шесть осей с процентами", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", IsAdmin: true, IsPinned: true},
			{ID: "2", IsCreator: true, Muted: true},
			{ID: "3", IsArchived: true, Draft: &domain.Draft{Text: "..."}},
			{ID: "4"},
		}
		profile := e.ParticipationProfile(dialogs)

		assert.Equal(t, participationLabels, profile.Labels)
		assert.Equal(t, []int{1, 1, 1, 1, 1, 1}, profile.Data)
		assert.Equal(t, []float64{25, 25, 25, 25, 25, 25}, profile.Percentages)
	})
}

func TestNotificationFlow(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", Type: domain.TypeUser, NotifyState: domain.NotifyEnabled, UnreadCount: 2},
		{ID: "2", Type: domain.TypeUser, NotifyState: domain.NotifyEnabled},
		{ID: "3", Type: domain.TypeChannel, NotifyState: domain.NotifyMuted, UnreadCount: 7},
	}
	flow := e.NotificationFlow(dialogs)

	t.Run("узлы идут в фиксированном порядке колонок", func(t *testing.T) {
		require.Len(t, flow.Nodes, 10)
		assert.Equal(t, "Личные", flow.Nodes[0].Name)
		assert.Equal(t, 0, flow.Nodes[0].Column)
		assert.Equal(t, "Включены", flow.Nodes[5].Name)
		assert.Equal(t, 1, flow.Nodes[5].Column)
		assert.Equal(t, "Прочитано", flow.Nodes[8].Name)
		assert.Equal(t, 2, flow.Nodes[8].Column)
	})

	t.Run("значение узла согласовано с ребрами", func(t *testing.T) {
		assert.Equal(t, 2, flow.Nodes[0].Value)
		assert.Equal(t, 2, flow.Nodes[5].Value)
		assert.Equal(t, 1, flow.Nodes[8].Value)
		assert.Equal(t, 2, flow.Nodes[9].Value)
	})

	t.Run("нулевые ребра опускаются", func(t *testing.T) {
		for _, link := range flow.Links {
			assert.Positive(t, link.Value)
		}
	})

	t.Run("повторный вызов дает идентичный результат", func(t *testing.T) {
		again := e.NotificationFlow(dialogs)
		assert.Empty(t, cmp.Diff(flow, again))
	})
}

func TestDraftsTimeline(t *testing.T) {
	e := newTestEngine()

	t.Run("без черновиков результат пустой", func(t *testing.T) {
		result := e.DraftsTimeline([]domain.Dialog{{ID: "1"}})
		assert.Empty(t, result.Labels)
		assert.Zero(t, result.Total)
		assert.Nil(t, result.PeriodStart)
	})

	t.Run("дата черновика с запасным значением из активности", func(t *testing.T) {
		draftDate := testNow.AddDate(0, 0, -2)
		activityDate := testNow.AddDate(0, 0, -5)
		oldDate := testNow.AddDate(0, 0, -60)
		dialogs := []domain.Dialog{
			{ID: "1", Draft: &domain.Draft{Text: "a", Date: &draftDate}},
			{ID: "2", Draft: &domain.Draft{Text: "b"}, LastActivityAt: &activityDate},
			{ID: "3", Draft: &domain.Draft{Text: "c", Date: &oldDate}},
		}
		result := e.DraftsTimeline(dialogs)

		require.Len(t, result.Labels, 30)
		assert.Equal(t, "30.05", result.Labels[27])
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.InRange, "старый черновик вне окна")
		require.NotNil(t, result.Oldest)
		assert.Equal(t, oldDate, *result.Oldest)
		require.NotNil(t, result.Newest)
		assert.Equal(t, draftDate, *result.Newest)
	})
}

func TestCorrelationMatrix(t *testing.T) {
	e := newTestEngine()

	t.Run("пустая коллекция дает nil данные", func(t *testing.T) {
		result := e.CorrelationMatrix(nil)
		assert.Equal(t, correlationLabels, result.Labels)
		assert.Nil(t, result.Data)
	})

	t.Run("матрица симметрична с единичной диагональю", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", UnreadCount: 5, IsPinned: true},
			{ID: "2", Muted: true, IsArchived: true},
			{ID: "3", Draft: &domain.Draft{Text: "..."}},
			{ID: "4", UnreadCount: 1, IsPinned: true, Muted: true},
		}
		result := e.CorrelationMatrix(dialogs)

		require.Len(t, result.Data, 5)
		for i := range result.Data {
			require.Len(t, result.Data[i], 5)
			assert.Equal(t, 1.0, result.Data[i][i])
			for j := range result.Data[i] {
				assert.Equal(t, result.Data[i][j], result.Data[j][i])
				assert.GreaterOrEqual(t, result.Data[i][j], -1.0)
				assert.LessOrEqual(t, result.Data[i][j], 1.0)
			}
		}
	})

	t.Run("нулевая дисперсия дает ноль вместо NaN", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", IsPinned: true},
			{ID: "2", IsPinned: true},
		}
		result := e.CorrelationMatrix(dialogs)
		assert.Equal(t, 0.0, result.Data[0][1])
		assert.Equal(t, 1.0, result.Data[1][1])
	})

	t.Run("полностью совпадающие признаки дают единицу", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", UnreadCount: 2, IsPinned: true},
			{ID: "2"},
			{ID: "3", UnreadCount: 9, IsPinned: true},
		}
		result := e.CorrelationMatrix(dialogs)
		assert.InDelta(t, 1.0, result.Data[0][1], 1e-9)
	})
}

func TestSummary(t *testing.T) {
	e := newTestEngine()

	t.Run("пустая коллекция", func(t *testing.T) {
		assert.Equal(t, "Нет диалогов для анализа", e.Summary(nil))
	})

	t.Run("самый частый тип с долей", func(t *testing.T) {
		dialogs := []domain.Dialog{
			{ID: "1", Type: domain.TypeUser},
			{ID: "2", Type: domain.TypeUser},
			{ID: "3", Type: domain.TypeChannel},
		}
		assert.Equal(t, "У вас 3 диалогов. Больше всего личные - 2 (66.7%)", e.Summary(dialogs))
	})
}

func TestBuildReport(t *testing.T) {
	e := newTestEngine()

	dialogs := []domain.Dialog{
		{ID: "1", Title: "Первый", Type: domain.TypeUser, UnreadCount: 2,
			LastActivityAt: timePtr(testNow.Add(-time.Hour))},
		{ID: "2", Title: "Второй", Type: domain.TypeGroup, ParticipantsCount: 12,
			NotifyState: domain.NotifyMuted, Muted: true},
	}
	folders := []domain.Folder{{ID: 2, Title: "Работа"}}

	report := e.BuildReport(dialogs, folders)

	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Equal(t, 2, report.Metrics.Total)
	assert.NotEmpty(t, report.Summary)

	t.Run("отчет детерминирован", func(t *testing.T) {
		again := e.BuildReport(dialogs, folders)
		assert.Empty(t, cmp.Diff(report, again))
	})

	t.Run("исходная коллекция не мутируется", func(t *testing.T) {
		before := make([]domain.Dialog, len(dialogs))
		copy(before, dialogs)
		_ = e.BuildReport(dialogs, folders)
		assert.Equal(t, before, dialogs)
	})
}

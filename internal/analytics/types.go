package analytics

import (
	"time"

	"telegram-dialog-insights/internal/domain"
)

// Metrics — сводные счетчики по коллекции диалогов.
type Metrics struct {
	Total    int `json:"total"`
	Unread   int `json:"unread"`
	Mentions int `json:"mentions"`
	Archived int `json:"archived"`
	Pinned   int `json:"pinned"`
	Muted    int `json:"muted"`
	Drafts   int `json:"drafts"`
	Admin    int `json:"admin"`
	Creator  int `json:"creator"`
	Premium  int `json:"premium"`
	Verified int `json:"verified"`
	Online   int `json:"online"`
}

// TypesHistogram — распределение диалогов по типам для круговой диаграммы.
type TypesHistogram struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Colors []string `json:"colors"`
}

// TopUnreadEntry — одна строка рейтинга непрочитанных.
type TopUnreadEntry struct {
	Name            string            `json:"name"`
	UnreadCount     int               `json:"unreadCount"`
	UnreadMentions  int               `json:"unreadMentions"`
	UnreadReactions int               `json:"unreadReactions"`
	Type            domain.DialogType `json:"type"`
	ID              string            `json:"id"`
}

// ActivityTimeline — активность за последние 30 дней с разбивкой на
// входящие и исходящие.
type ActivityTimeline struct {
	Labels   []string `json:"labels"`
	Incoming []int    `json:"incoming"`
	Outgoing []int    `json:"outgoing"`
}

// FolderStat — статистика одной папки. ID равен nil для псевдо-папки
// "Главная".
type FolderStat struct {
	ID     *int   `json:"id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Unread int    `json:"unread"`
}

// CommunityPoint — одна точка пузырьковой диаграммы сообществ.
type CommunityPoint struct {
	Name        string            `json:"name"`
	X           int               `json:"x"`
	Y           int               `json:"y"`
	R           float64           `json:"r"`
	UnreadCount int               `json:"unreadCount"`
	Type        domain.DialogType `json:"type"`
	ID          string            `json:"id"`
}

// Notifications — сгруппированные счетчики состояний уведомлений.
// Порядок элементов: личные (с ботами), группы (с супергруппами), каналы.
type Notifications struct {
	Enabled []int `json:"enabled"`
	Silent  []int `json:"silent"`
	Muted   []int `json:"muted"`
	Total   int   `json:"total"`
}

// GroupsAgeTimeline — распределение сообществ по годам последней активности.
type GroupsAgeTimeline struct {
	Labels           []string `json:"labels"`
	Groups           []int    `json:"groups"`
	Channels         []int    `json:"channels"`
	Supergroups      []int    `json:"supergroups"`
	Total            int      `json:"total"`
	TotalGroups      int      `json:"totalGroups"`
	TotalChannels    int      `json:"totalChannels"`
	TotalSupergroups int      `json:"totalSupergroups"`
}

// ContactsStatus — распределение контактов по онлайн-статусам.
type ContactsStatus struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Colors []string `json:"colors"`
}

// ActivityHeatmap — тепловая карта активности 7 дней x 24 часа.
// Строки — дни недели с понедельника, столбцы — часы суток.
type ActivityHeatmap struct {
	DaysLabels    []string `json:"daysLabels"`
	HoursLabels   []string `json:"hoursLabels"`
	Data          [][]int  `json:"data"`
	TotalMessages int      `json:"totalMessages"`
	PeakDay       int      `json:"peakDay"`
	PeakHour      int      `json:"peakHour"`
	PeakValue     int      `json:"peakValue"`
}

// ReadingFunnel — воронка прочтения из четырех вложенных этапов.
type ReadingFunnel struct {
	Labels               []string  `json:"labels"`
	Data                 []int     `json:"data"`
	PercentagesFromTotal []float64 `json:"percentagesFromTotal"`
	ConversionRates      []float64 `json:"conversionRates"`
	TotalConversion      float64   `json:"totalConversion"`
}

// ParticipationProfile — радарный профиль участия.
type ParticipationProfile struct {
	Labels      []string  `json:"labels"`
	Data        []int     `json:"data"`
	Percentages []float64 `json:"percentages"`
}

// SankeyNode — узел диаграммы потока уведомлений.
type SankeyNode struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Column int    `json:"column"`
}

// SankeyLink — агрегированное ребро диаграммы потока.
type SankeyLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// NotificationFlow — поток "тип диалога -> уведомления -> прочтение".
type NotificationFlow struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// DraftsTimeline — распределение черновиков за последние 30 дней.
type DraftsTimeline struct {
	Labels      []string   `json:"labels"`
	Data        []int      `json:"data"`
	Total       int        `json:"total"`
	InRange     int        `json:"inRange"`
	Oldest      *time.Time `json:"oldest,omitempty"`
	Newest      *time.Time `json:"newest,omitempty"`
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `json:"periodEnd,omitempty"`
}

// CorrelationMatrix — матрица корреляций Пирсона между бинарными
// признаками диалогов. Data равна nil на пустой коллекции.
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Data   [][]float64 `json:"data"`
}

// Report объединяет все производные представления в один снимок.
type Report struct {
	GeneratedAt          time.Time            `json:"generatedAt"`
	Metrics              Metrics              `json:"metrics"`
	DialogTypes          TypesHistogram       `json:"dialogTypes"`
	TopUnread            []TopUnreadEntry     `json:"topUnread"`
	ActivityTimeline     ActivityTimeline     `json:"activityTimeline"`
	FolderDistribution   []FolderStat         `json:"folderDistribution"`
	Communities          []CommunityPoint     `json:"communities"`
	Notifications        Notifications        `json:"notifications"`
	GroupsAgeTimeline    GroupsAgeTimeline    `json:"groupsAgeTimeline"`
	ContactsStatus       ContactsStatus       `json:"contactsStatus"`
	ActivityHeatmap      ActivityHeatmap      `json:"activityHeatmap"`
	ReadingFunnel        ReadingFunnel        `json:"readingFunnel"`
	ParticipationProfile ParticipationProfile `json:"participationProfile"`
	NotificationFlow     NotificationFlow     `json:"notificationFlow"`
	DraftsTimeline       DraftsTimeline       `json:"draftsTimeline"`
	CorrelationMatrix    CorrelationMatrix    `json:"correlationMatrix"`
	Summary              string               `json:"summary"`
}

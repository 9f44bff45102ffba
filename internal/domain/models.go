package domain

import (
	"encoding/json"
	"time"
)

// DialogType — канонический тип диалога.
type DialogType string

const (
	TypeUser       DialogType = "user"
	TypeBot        DialogType = "bot"
	TypeGroup      DialogType = "group"
	TypeSupergroup DialogType = "supergroup"
	TypeChannel    DialogType = "channel"
)

// NotifyState — состояние уведомлений диалога.
type NotifyState string

const (
	NotifyEnabled NotifyState = "enabled"
	NotifySilent  NotifyState = "silent"
	NotifyMuted   NotifyState = "muted"
)

// ArchiveFolderID — идентификатор встроенной папки "Архив".
const ArchiveFolderID = 1

// RawDialog представляет один диалог в том виде, в котором его вернул бэкенд.
// Схема менялась между версиями, поэтому почти все поля опциональны, поля
// с нестабильным типом (идентификаторы, даты) хранятся как json.RawMessage,
// а для части признаков существует по два имени.
type RawDialog struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Title string          `json:"title,omitempty"`

	// Новая схема: строковый тип.
	Type string `json:"type,omitempty"`

	// Устаревшая схема: булевы флаги вместо типа.
	IsChannel *bool `json:"isChannel,omitempty"`
	IsGroup   *bool `json:"isGroup,omitempty"`
	IsUser    *bool `json:"isUser,omitempty"`

	Archived   *bool `json:"archived,omitempty"`
	IsArchived *bool `json:"isArchived,omitempty"`
	Pinned     *bool `json:"pinned,omitempty"`
	IsPinned   *bool `json:"isPinned,omitempty"`
	IsMuted    *bool `json:"isMuted,omitempty"`

	UnreadCount          int `json:"unreadCount,omitempty"`
	UnreadMentionsCount  int `json:"unreadMentionsCount,omitempty"`
	UnreadReactionsCount int `json:"unreadReactionsCount,omitempty"`

	FolderID *int `json:"folderId,omitempty"`

	NotifySettings *RawNotifySettings `json:"notifySettings,omitempty"`

	// Устаревшая схема: настройки уведомлений вложены в под-объект dialog.
	Dialog *RawDialogDetails `json:"dialog,omitempty"`

	Date        json.RawMessage `json:"date,omitempty"`
	Draft       *RawDraft       `json:"draft,omitempty"`
	LastMessage *RawLastMessage `json:"lastMessage,omitempty"`
	Entity      *RawEntity      `json:"entity,omitempty"`
}

// RawNotifySettings представляет настройки уведомлений диалога.
// muteUntil — абсолютный момент времени (epoch-секунды), а не длительность.
type RawNotifySettings struct {
	Silent    bool            `json:"silent,omitempty"`
	MuteUntil json.RawMessage `json:"muteUntil,omitempty"`
}

// RawDialogDetails представляет устаревший вложенный под-объект dialog.
type RawDialogDetails struct {
	NotifySettings *RawNotifySettings `json:"notifySettings,omitempty"`
}

// RawDraft представляет черновик. Текст приходит под именем message
// или, в устаревшей схеме, под именем text.
type RawDraft struct {
	Message string          `json:"message,omitempty"`
	Text    string          `json:"text,omitempty"`
	Date    json.RawMessage `json:"date,omitempty"`
}

// RawLastMessage представляет последнее сообщение диалога.
type RawLastMessage struct {
	Out  bool            `json:"out,omitempty"`
	Date json.RawMessage `json:"date,omitempty"`
}

// RawStatus представляет онлайн-статус пользователя.
type RawStatus struct {
	Type string `json:"type,omitempty"`
}

// RawEntity представляет под-объект entity с социальными и административными
// атрибутами диалога.
type RawEntity struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Title     string          `json:"title,omitempty"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Username  string          `json:"username,omitempty"`

	IsBot      *bool `json:"isBot,omitempty"`
	IsAdmin    bool  `json:"isAdmin,omitempty"`
	IsCreator  *bool `json:"isCreator,omitempty"`
	Creator    *bool `json:"creator,omitempty"` // устаревшее имя
	IsPremium  bool  `json:"isPremium,omitempty"`
	IsVerified bool  `json:"isVerified,omitempty"`

	Broadcast   *bool `json:"broadcast,omitempty"` // устаревшее имя
	IsBroadcast *bool `json:"isBroadcast,omitempty"`

	ParticipantsCount int        `json:"participantsCount,omitempty"`
	Status            *RawStatus `json:"status,omitempty"`
}

// RawPeer представляет ссылку на участника папки в устаревшей схеме
// includePeers. Идентификатор лежит в одном из трех полей.
type RawPeer struct {
	ChannelID json.RawMessage `json:"channelId,omitempty"`
	UserID    json.RawMessage `json:"userId,omitempty"`
	ChatID    json.RawMessage `json:"chatId,omitempty"`
}

// RawFolder представляет пользовательскую папку (фильтр чатов) из бэкенда.
// Список участников приходит либо как includedChatIds (массив строк),
// либо, в устаревшей схеме, как includePeers.
type RawFolder struct {
	ID              int               `json:"id"`
	Title           string            `json:"title,omitempty"`
	IsDefault       bool              `json:"isDefault,omitempty"`
	IncludedChatIDs []json.RawMessage `json:"includedChatIds,omitempty"`
	IncludePeers    []RawPeer         `json:"includePeers,omitempty"`
}

// Draft — канонический черновик: непустой текст и опциональная дата.
type Draft struct {
	Text string     `json:"text"`
	Date *time.Time `json:"date,omitempty"`
}

// Dialog — каноническое представление диалога после нормализации.
// Все инварианты (непустые идентификатор и заголовок, согласованные папки,
// вычисленное состояние уведомлений) гарантируются нормализатором.
type Dialog struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Type  DialogType `json:"type"`

	IsArchived bool `json:"isArchived"`
	IsPinned   bool `json:"isPinned"`

	// FolderIDs пуст для диалогов из псевдо-папки "Главная".
	// Для архивных всегда ровно [ArchiveFolderID].
	FolderIDs   []int    `json:"folderIds,omitempty"`
	FolderNames []string `json:"folderNames,omitempty"`

	UnreadCount          int `json:"unreadCount"`
	UnreadMentionsCount  int `json:"unreadMentionsCount"`
	UnreadReactionsCount int `json:"unreadReactionsCount"`

	// Muted = silent ИЛИ muteUntil в будущем на момент нормализации.
	// NotifyState различает "без звука" и "выключено по таймеру".
	Silent      bool        `json:"silent"`
	Muted       bool        `json:"muted"`
	NotifyState NotifyState `json:"notifyState"`

	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	Outgoing       bool       `json:"outgoing"`

	Draft *Draft `json:"draft,omitempty"`

	IsBot      bool `json:"isBot"`
	IsAdmin    bool `json:"isAdmin"`
	IsCreator  bool `json:"isCreator"`
	IsPremium  bool `json:"isPremium"`
	IsVerified bool `json:"isVerified"`

	ParticipantsCount int    `json:"participantsCount"`
	Status            string `json:"status,omitempty"`
}

// HasUnread сообщает, есть ли в диалоге непрочитанные сообщения.
func (d *Dialog) HasUnread() bool {
	return d.UnreadCount > 0
}

// HasDraft сообщает, есть ли в диалоге непустой черновик.
func (d *Dialog) HasDraft() bool {
	return d.Draft != nil
}

// IsCommunity сообщает, является ли диалог группой, супергруппой или каналом.
func (d *Dialog) IsCommunity() bool {
	switch d.Type {
	case TypeGroup, TypeSupergroup, TypeChannel:
		return true
	}
	return false
}

// Folder — каноническая папка: идентификатор, заголовок и упорядоченный
// список идентификаторов диалогов-участников (всегда строки).
type Folder struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	MemberIDs []string `json:"memberIds,omitempty"`
}

// Payload представляет полный ответ внешнего источника данных по аккаунту:
// страница диалогов и список папок.
type Payload struct {
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
	Dialogs []RawDialog `json:"dialogs"`
	Folders []RawFolder `json:"folders"`
}

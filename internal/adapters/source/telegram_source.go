package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gotd/td/tg"

	"telegram-dialog-insights/internal/domain"
	"telegram-dialog-insights/internal/ports"
)

const dialogFetchPageLimit = 100

// TelegramSource реализует интерфейс DialogSource поверх MTProto API.
// Диалоги выгружаются постранично через MessagesGetDialogs и приводятся
// к той же сырой форме, что отдает HTTP-бэкенд, поэтому дальше по
// конвейеру источники неразличимы.
type TelegramSource struct {
	router ports.Router
	logger *slog.Logger
}

// TelegramSourceOption настраивает TelegramSource.
type TelegramSourceOption func(*TelegramSource)

// WithTelegramLogger подменяет логгер.
func WithTelegramLogger(logger *slog.Logger) TelegramSourceOption {
	return func(s *TelegramSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTelegramSource создает новый экземпляр TelegramSource.
func NewTelegramSource(router ports.Router, opts ...TelegramSourceOption) ports.DialogSource {
	s := &TelegramSource{
		router: router,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchDialogs выгружает весь список диалогов аккаунта. Пагинация идет
// по тройке (offset_date, offset_id, offset_peer); параметры limit и
// offset вызывающего игнорируются, потому что MTProto не поддерживает
// числовое смещение.
func (s *TelegramSource) FetchDialogs(ctx context.Context, accountID string, _, offset int) ([]byte, error) {
	if offset > 0 {
		return []byte(`{"dialogs": [], "hasMore": false}`), nil
	}

	client, err := s.router.GetClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram client: %w", err)
	}

	collected := &tg.MessagesDialogs{}
	offsetDate := 0
	offsetID := 0
	var offsetPeer tg.InputPeerClass = &tg.InputPeerEmpty{}

	userHashes := make(map[int64]int64)
	channelHashes := make(map[int64]int64)

	for {
		resp, err := client.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetDate: offsetDate,
			OffsetID:   offsetID,
			OffsetPeer: offsetPeer,
			Limit:      dialogFetchPageLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("MessagesGetDialogs: %w", err)
		}

		batch, done, err := flattenDialogsResponse(resp)
		if err != nil {
			return nil, err
		}
		if done || len(batch.Dialogs) == 0 {
			break
		}

		collected.Dialogs = append(collected.Dialogs, batch.Dialogs...)
		collected.Messages = append(collected.Messages, batch.Messages...)
		collected.Chats = append(collected.Chats, batch.Chats...)
		collected.Users = append(collected.Users, batch.Users...)

		for _, entity := range batch.Users {
			if user, ok := entity.(*tg.User); ok {
				userHashes[user.ID] = user.AccessHash
			}
		}
		for _, entity := range batch.Chats {
			if channel, ok := entity.(*tg.Channel); ok {
				channelHashes[channel.ID] = channel.AccessHash
			}
		}

		last, ok := batch.Dialogs[len(batch.Dialogs)-1].(*tg.Dialog)
		if !ok {
			break
		}
		prevDate, prevID := offsetDate, offsetID
		offsetID = last.TopMessage
		offsetDate = messageDate(batch.Messages, last.TopMessage)
		offsetPeer = dialogPeerToInput(last.Peer, userHashes, channelHashes)
		if offsetDate == 0 {
			offsetDate = prevDate
		}
		if offsetID == 0 {
			offsetID = prevID
		}

		if len(batch.Dialogs) < dialogFetchPageLimit {
			break
		}
	}

	s.logger.Info("диалоги выгружены из telegram",
		"account_id", accountID,
		"dialogs", len(collected.Dialogs),
	)

	rawDialogs := mapDialogs(collected)
	payload := map[string]any{
		"dialogs": rawDialogs,
		"total":   len(rawDialogs),
		"hasMore": false,
	}
	return json.Marshal(payload)
}

// FetchFolders выгружает пользовательские папки аккаунта.
func (s *TelegramSource) FetchFolders(ctx context.Context, accountID string) ([]byte, error) {
	client, err := s.router.GetClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram client: %w", err)
	}

	filters, err := client.MessagesGetDialogFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("MessagesGetDialogFilters: %w", err)
	}

	folders := make([]domain.RawFolder, 0, len(filters.Filters))
	for _, filter := range filters.Filters {
		switch f := filter.(type) {
		case *tg.DialogFilter:
			folders = append(folders, domain.RawFolder{
				ID:           f.ID,
				Title:        f.Title.Text,
				IncludePeers: mapInputPeers(f.IncludePeers),
			})
		case *tg.DialogFilterChatlist:
			folders = append(folders, domain.RawFolder{
				ID:           f.ID,
				Title:        f.Title.Text,
				IncludePeers: mapInputPeers(f.IncludePeers),
			})
		case *tg.DialogFilterDefault:
			folders = append(folders, domain.RawFolder{IsDefault: true})
		}
	}

	s.logger.Info("папки выгружены из telegram", "account_id", accountID, "folders", len(folders))
	return json.Marshal(folders)
}

func mapInputPeers(peers []tg.InputPeerClass) []domain.RawPeer {
	mapped := make([]domain.RawPeer, 0, len(peers))
	for _, peer := range peers {
		switch p := peer.(type) {
		case *tg.InputPeerUser:
			mapped = append(mapped, domain.RawPeer{UserID: jsonNumber(p.UserID)})
		case *tg.InputPeerChat:
			mapped = append(mapped, domain.RawPeer{ChatID: jsonNumber(p.ChatID)})
		case *tg.InputPeerChannel:
			mapped = append(mapped, domain.RawPeer{ChannelID: jsonNumber(p.ChannelID)})
		}
	}
	return mapped
}

func flattenDialogsResponse(resp tg.MessagesDialogsClass) (*tg.MessagesDialogs, bool, error) {
	switch data := resp.(type) {
	case *tg.MessagesDialogs:
		return data, false, nil
	case *tg.MessagesDialogsSlice:
		return &tg.MessagesDialogs{
			Dialogs:  data.Dialogs,
			Messages: data.Messages,
			Chats:    data.Chats,
			Users:    data.Users,
		}, false, nil
	case *tg.MessagesDialogsNotModified:
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unexpected dialogs response: %T", resp)
	}
}

func messageDate(messages []tg.MessageClass, id int) int {
	for _, msg := range messages {
		switch item := msg.(type) {
		case *tg.Message:
			if item.ID == id {
				return item.Date
			}
		case *tg.MessageService:
			if item.ID == id {
				return item.Date
			}
		}
	}
	return 0
}

func dialogPeerToInput(peer tg.PeerClass, userHashes, channelHashes map[int64]int64) tg.InputPeerClass {
	switch entity := peer.(type) {
	case *tg.PeerUser:
		return &tg.InputPeerUser{UserID: entity.UserID, AccessHash: userHashes[entity.UserID]}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: entity.ChatID}
	case *tg.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: entity.ChannelID, AccessHash: channelHashes[entity.ChannelID]}
	default:
		return &tg.InputPeerEmpty{}
	}
}

// mapDialogs приводит ответ MTProto к сырой форме бэкенда.
func mapDialogs(data *tg.MessagesDialogs) []domain.RawDialog {
	users := make(map[int64]*tg.User)
	for _, u := range data.Users {
		if user, ok := u.(*tg.User); ok {
			users[user.ID] = user
		}
	}
	chats := make(map[int64]*tg.Chat)
	channels := make(map[int64]*tg.Channel)
	for _, c := range data.Chats {
		switch v := c.(type) {
		case *tg.Chat:
			chats[v.ID] = v
		case *tg.Channel:
			channels[v.ID] = v
		}
	}
	messages := make(map[int]*tg.Message)
	for _, m := range data.Messages {
		if msg, ok := m.(*tg.Message); ok {
			messages[msg.ID] = msg
		}
	}

	rawDialogs := make([]domain.RawDialog, 0, len(data.Dialogs))
	for _, d := range data.Dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}

		raw := domain.RawDialog{
			UnreadCount:          dialog.UnreadCount,
			UnreadMentionsCount:  dialog.UnreadMentionsCount,
			UnreadReactionsCount: dialog.UnreadReactionsCount,
		}
		if dialog.Pinned {
			pinned := true
			raw.Pinned = &pinned
		}
		if folderID, ok := dialog.GetFolderID(); ok && folderID != 0 {
			raw.FolderID = &folderID
		}

		raw.NotifySettings = mapNotifySettings(dialog.NotifySettings)
		raw.Draft = mapDraft(dialog.Draft)

		switch peer := dialog.Peer.(type) {
		case *tg.PeerUser:
			user, exists := users[peer.UserID]
			if !exists {
				continue
			}
			fillFromUser(&raw, user)
		case *tg.PeerChat:
			chat, exists := chats[peer.ChatID]
			if !exists {
				continue
			}
			fillFromChat(&raw, chat)
		case *tg.PeerChannel:
			channel, exists := channels[peer.ChannelID]
			if !exists {
				continue
			}
			fillFromChannel(&raw, channel)
		default:
			continue
		}

		if msg, exists := messages[dialog.TopMessage]; exists {
			raw.LastMessage = &domain.RawLastMessage{
				Out:  msg.Out,
				Date: jsonNumber(int64(msg.Date)),
			}
			raw.Date = jsonNumber(int64(msg.Date))
		}

		rawDialogs = append(rawDialogs, raw)
	}
	return rawDialogs
}

func fillFromUser(raw *domain.RawDialog, user *tg.User) {
	raw.ID = jsonString(strconv.FormatInt(user.ID, 10))
	if user.Bot {
		raw.Type = "bot"
	} else {
		raw.Type = "user"
	}

	entity := &domain.RawEntity{
		ID:        jsonNumber(user.ID),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		IsPremium: user.Premium,
	}
	if user.Bot {
		isBot := true
		entity.IsBot = &isBot
	}
	if user.Verified {
		entity.IsVerified = true
	}
	if status := mapUserStatus(user.Status); status != "" {
		entity.Status = &domain.RawStatus{Type: status}
	}
	raw.Entity = entity
}

func fillFromChat(raw *domain.RawDialog, chat *tg.Chat) {
	raw.ID = jsonString(strconv.FormatInt(chat.ID, 10))
	raw.Type = "group"

	entity := &domain.RawEntity{
		ID:                jsonNumber(chat.ID),
		Title:             chat.Title,
		ParticipantsCount: chat.ParticipantsCount,
	}
	if chat.Creator {
		creator := true
		entity.IsCreator = &creator
	}
	raw.Entity = entity
}

func fillFromChannel(raw *domain.RawDialog, channel *tg.Channel) {
	raw.ID = jsonString(strconv.FormatInt(channel.ID, 10))
	if channel.Broadcast {
		raw.Type = "channel"
	} else {
		raw.Type = "supergroup"
	}

	entity := &domain.RawEntity{
		ID:         jsonNumber(channel.ID),
		Title:      channel.Title,
		Username:   channel.Username,
		IsVerified: channel.Verified,
	}
	if _, ok := channel.GetAdminRights(); ok {
		entity.IsAdmin = true
	}
	broadcast := channel.Broadcast
	entity.IsBroadcast = &broadcast
	if channel.Creator {
		creator := true
		entity.IsCreator = &creator
	}
	if count, ok := channel.GetParticipantsCount(); ok {
		entity.ParticipantsCount = count
	}
	raw.Entity = entity
}

func mapNotifySettings(settings tg.PeerNotifySettings) *domain.RawNotifySettings {
	raw := &domain.RawNotifySettings{}
	if silent, ok := settings.GetSilent(); ok {
		raw.Silent = silent
	}
	if muteUntil, ok := settings.GetMuteUntil(); ok && muteUntil > 0 {
		raw.MuteUntil = jsonNumber(int64(muteUntil))
	}
	if !raw.Silent && raw.MuteUntil == nil {
		return nil
	}
	return raw
}

func mapDraft(draft tg.DraftMessageClass) *domain.RawDraft {
	msg, ok := draft.(*tg.DraftMessage)
	if !ok || msg.Message == "" {
		return nil
	}
	return &domain.RawDraft{
		Message: msg.Message,
		Date:    jsonNumber(int64(msg.Date)),
	}
}

func mapUserStatus(status tg.UserStatusClass) string {
	switch status.(type) {
	case *tg.UserStatusOnline:
		return "online"
	case *tg.UserStatusRecently:
		return "recently"
	case *tg.UserStatusLastWeek:
		return "lastWeek"
	case *tg.UserStatusLastMonth:
		return "lastMonth"
	case *tg.UserStatusOffline:
		return "offline"
	default:
		return ""
	}
}

func jsonNumber(v int64) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(v, 10))
}

func jsonString(v string) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

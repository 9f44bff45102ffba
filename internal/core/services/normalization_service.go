package services

import (
	"strings"
	"time"

	"telegram-dialog-insights/internal/domain"
	"telegram-dialog-insights/internal/pkg/timeparse"
)

// DeletedAccountTitle — заглушка заголовка, когда ни одно из имен не задано.
const DeletedAccountTitle = "Удаленный аккаунт"

// NormalizationService приводит сырые диалоги любой из известных схем
// к каноническому виду. Сервис тотален: отсутствующие и испорченные поля
// деградируют к значениям по умолчанию, запись никогда не отбрасывается.
type NormalizationService struct {
	folders *FolderService
	clock   func() time.Time
}

// NormalizationOption настраивает сервис нормализации.
type NormalizationOption func(*NormalizationService)

// WithClock подменяет источник текущего времени. Используется в тестах
// и для воспроизводимых прогонов.
func WithClock(clock func() time.Time) NormalizationOption {
	return func(s *NormalizationService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewNormalizationService создает новый экземпляр NormalizationService.
func NewNormalizationService(folders *FolderService, opts ...NormalizationOption) *NormalizationService {
	s := &NormalizationService{
		folders: folders,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeAll строит индекс папок и нормализует весь набор диалогов.
// Предыдущее состояние не учитывается: набор всегда пересобирается целиком.
func (s *NormalizationService) NormalizeAll(rawDialogs []domain.RawDialog, rawFolders []domain.RawFolder) ([]domain.Dialog, *MembershipIndex) {
	idx := s.folders.BuildMembershipIndex(rawFolders)
	dialogs := make([]domain.Dialog, 0, len(rawDialogs))
	for i := range rawDialogs {
		dialogs = append(dialogs, s.NormalizeDialog(&rawDialogs[i], idx))
	}
	return dialogs, idx
}

// NormalizeDialog приводит один сырой диалог к каноническому виду.
func (s *NormalizationService) NormalizeDialog(raw *domain.RawDialog, idx *MembershipIndex) domain.Dialog {
	if raw == nil {
		raw = &domain.RawDialog{}
	}

	now := s.clock()
	entity := raw.Entity

	dialog := domain.Dialog{
		ID:                   resolveID(raw),
		Title:                resolveTitle(raw),
		Type:                 resolveType(raw),
		IsArchived:           IsArchivedDialog(raw),
		IsPinned:             boolOf(raw.Pinned) || boolOf(raw.IsPinned),
		UnreadCount:          nonNegative(raw.UnreadCount),
		UnreadMentionsCount:  nonNegative(raw.UnreadMentionsCount),
		UnreadReactionsCount: nonNegative(raw.UnreadReactionsCount),
		LastActivityAt:       timeparse.Instant(raw.Date),
		Outgoing:             raw.LastMessage != nil && raw.LastMessage.Out,
		Draft:                resolveDraft(raw.Draft),
	}

	dialog.FolderIDs, dialog.FolderNames = s.folders.ResolveFolders(raw, idx)

	dialog.Silent, dialog.Muted, dialog.NotifyState = resolveMute(raw, now)

	if entity != nil {
		dialog.IsBot = boolOf(entity.IsBot)
		dialog.IsAdmin = entity.IsAdmin
		dialog.IsCreator = boolOf(entity.IsCreator) || boolOf(entity.Creator)
		dialog.IsPremium = entity.IsPremium
		dialog.IsVerified = entity.IsVerified
		dialog.ParticipantsCount = nonNegative(entity.ParticipantsCount)
		if entity.Status != nil {
			dialog.Status = entity.Status.Type
		}
	}
	if dialog.Type == domain.TypeBot {
		dialog.IsBot = true
	}

	return dialog
}

// resolveID пробует корневой id, затем entity.id.
func resolveID(raw *domain.RawDialog) string {
	if id := StringID(raw.ID); id != "" {
		return id
	}
	if raw.Entity != nil {
		return StringID(raw.Entity.ID)
	}
	return ""
}

// resolveTitle подбирает отображаемое имя по порядку старшинства:
// name, title, entity.title, "firstName lastName", "@username",
// затем заглушка удаленного аккаунта.
func resolveTitle(raw *domain.RawDialog) string {
	if raw.Name != "" {
		return raw.Name
	}
	if raw.Title != "" {
		return raw.Title
	}
	if entity := raw.Entity; entity != nil {
		if entity.Title != "" {
			return entity.Title
		}
		if entity.FirstName != "" || entity.LastName != "" {
			return strings.TrimSpace(entity.FirstName + " " + entity.LastName)
		}
		if entity.Username != "" {
			return "@" + entity.Username
		}
	}
	return DeletedAccountTitle
}

// resolveType определяет канонический тип диалога. Явный признак бота
// старше любого другого; канал с entity.isBroadcast == false понижается
// до супергруппы. Наличие строкового type отличает новую схему от
// устаревшей флаговой — версию источник о себе не сообщает.
func resolveType(raw *domain.RawDialog) domain.DialogType {
	if isBotDialog(raw) {
		return domain.TypeBot
	}

	if raw.Type != "" {
		switch domain.DialogType(raw.Type) {
		case domain.TypeUser:
			return domain.TypeUser
		case domain.TypeGroup:
			return domain.TypeGroup
		case domain.TypeSupergroup:
			return domain.TypeSupergroup
		case domain.TypeChannel:
			if broadcastDisabled(raw.Entity) {
				return domain.TypeSupergroup
			}
			return domain.TypeChannel
		}
		// Неизвестная строка типа: падаем на флаговую ветку.
	}

	result := domain.TypeUser
	if boolOf(raw.IsChannel) {
		result = domain.TypeChannel
		if broadcastDisabled(raw.Entity) {
			result = domain.TypeSupergroup
		}
	}
	if boolOf(raw.IsGroup) {
		result = domain.TypeGroup
		if boolOf(raw.IsChannel) && broadcastDisabled(raw.Entity) {
			result = domain.TypeSupergroup
		}
	}
	if boolOf(raw.IsUser) {
		result = domain.TypeUser
	}
	return result
}

// resolveMute вычисляет тройку (silent, muted, состояние уведомлений).
// muteUntil — абсолютный момент: заглушка считается действующей, только
// если он строго в будущем на момент нормализации.
func resolveMute(raw *domain.RawDialog, now time.Time) (silent, muted bool, state domain.NotifyState) {
	settings := raw.NotifySettings
	if settings == nil && raw.Dialog != nil {
		settings = raw.Dialog.NotifySettings
	}

	mutedByTimer := boolOf(raw.IsMuted)
	if settings != nil {
		silent = settings.Silent
		if until := timeparse.Instant(settings.MuteUntil); until != nil && until.After(now) {
			mutedByTimer = true
		}
	}

	muted = silent || mutedByTimer

	switch {
	case mutedByTimer:
		state = domain.NotifyMuted
	case silent:
		state = domain.NotifySilent
	default:
		state = domain.NotifyEnabled
	}
	return silent, muted, state
}

// resolveDraft возвращает канонический черновик либо nil. Пустой текст —
// это отсутствие черновика, а не черновик с пустым текстом.
func resolveDraft(raw *domain.RawDraft) *domain.Draft {
	if raw == nil {
		return nil
	}
	text := raw.Message
	if text == "" {
		text = raw.Text
	}
	if text == "" {
		return nil
	}
	return &domain.Draft{
		Text: text,
		Date: timeparse.Instant(raw.Date),
	}
}

func isBotDialog(raw *domain.RawDialog) bool {
	if raw.Type == "bot" {
		return true
	}
	return raw.Entity != nil && boolOf(raw.Entity.IsBot)
}

func broadcastDisabled(entity *domain.RawEntity) bool {
	if entity == nil {
		return false
	}
	if entity.IsBroadcast != nil {
		return !*entity.IsBroadcast
	}
	if entity.Broadcast != nil {
		return !*entity.Broadcast
	}
	return false
}

func boolOf(v *bool) bool {
	return v != nil && *v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

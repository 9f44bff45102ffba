package analytics

import "telegram-dialog-insights/internal/domain"

// ReadingFunnel строит воронку прочтения. Этапы вложены друг в друга,
// поэтому значения не возрастают: всего >= непрочитанные >= упоминания
// >= реакции.
func (e *Engine) ReadingFunnel(dialogs []domain.Dialog) ReadingFunnel {
	total := len(dialogs)
	unread, mentions, reactions := 0, 0, 0

	for i := range dialogs {
		d := &dialogs[i]
		if !d.HasUnread() {
			continue
		}
		unread++
		if d.UnreadMentionsCount <= 0 {
			continue
		}
		mentions++
		if d.UnreadReactionsCount > 0 {
			reactions++
		}
	}

	funnel := ReadingFunnel{
		Labels: funnelLabels,
		Data:   []int{total, unread, mentions, reactions},
		PercentagesFromTotal: []float64{
			100,
			round1(percent(unread, total)),
			round1(percent(mentions, total)),
			round1(percent(reactions, total)),
		},
		ConversionRates: []float64{
			100,
			100,
			round1(percent(mentions, unread)),
			round1(percent(reactions, mentions)),
		},
		TotalConversion: round2(percent(reactions, total)),
	}
	return funnel
}

// ParticipationProfile строит шестиосевой радарный профиль участия.
// На пустой коллекции возвращаются пустые оси.
func (e *Engine) ParticipationProfile(dialogs []domain.Dialog) ParticipationProfile {
	total := len(dialogs)
	if total == 0 {
		return ParticipationProfile{
			Labels:      []string{},
			Data:        []int{},
			Percentages: []float64{},
		}
	}

	admin, creator, pinned, muted, archived, drafts := 0, 0, 0, 0, 0, 0
	for i := range dialogs {
		d := &dialogs[i]
		if d.IsAdmin {
			admin++
		}
		if d.IsCreator {
			creator++
		}
		if d.IsPinned {
			pinned++
		}
		if d.Muted {
			muted++
		}
		if d.IsArchived {
			archived++
		}
		if d.HasDraft() {
			drafts++
		}
	}

	data := []int{admin, creator, pinned, muted, archived, drafts}
	percentages := make([]float64, len(data))
	for i, v := range data {
		percentages[i] = round1(percent(v, total))
	}

	return ParticipationProfile{
		Labels:      participationLabels,
		Data:        data,
		Percentages: percentages,
	}
}

package analytics

import (
	"sort"
	"strconv"

	"telegram-dialog-insights/internal/domain"
)

// Communities строит точки пузырьковой диаграммы сообществ:
// x — число участников, y — дней с последней активности, радиус —
// непрочитанные, ограниченные диапазоном [5, 30]. Сообщества
// с неизвестным числом участников исключаются.
func (e *Engine) Communities(dialogs []domain.Dialog) []CommunityPoint {
	now := e.clock()
	points := make([]CommunityPoint, 0)

	for i := range dialogs {
		d := &dialogs[i]
		if !d.IsCommunity() || d.ParticipantsCount <= 0 {
			continue
		}

		daysInactive := 0
		if d.LastActivityAt != nil {
			diff := now.Sub(*d.LastActivityAt)
			if diff > 0 {
				daysInactive = int(diff.Hours() / 24)
			}
		}

		radius := float64(d.UnreadCount) / 5
		if radius < 5 {
			radius = 5
		}
		if radius > 30 {
			radius = 30
		}

		points = append(points, CommunityPoint{
			Name:        d.Title,
			X:           d.ParticipantsCount,
			Y:           daysInactive,
			R:           radius,
			UnreadCount: d.UnreadCount,
			Type:        d.Type,
			ID:          d.ID,
		})
	}

	return points
}

// GroupsAgeTimeline группирует сообщества по году последней активности.
// Годы отсортированы по возрастанию. Без единого датированного
// сообщества возвращается пустой результат.
func (e *Engine) GroupsAgeTimeline(dialogs []domain.Dialog) GroupsAgeTimeline {
	type yearStat struct {
		groups, channels, supergroups int
	}
	byYear := make(map[int]*yearStat)
	total := 0

	for i := range dialogs {
		d := &dialogs[i]
		if !d.IsCommunity() || d.LastActivityAt == nil {
			continue
		}
		total++

		year := d.LastActivityAt.Year()
		stat, ok := byYear[year]
		if !ok {
			stat = &yearStat{}
			byYear[year] = stat
		}
		switch d.Type {
		case domain.TypeChannel:
			stat.channels++
		case domain.TypeSupergroup:
			stat.supergroups++
		default:
			stat.groups++
		}
	}

	if total == 0 {
		return GroupsAgeTimeline{
			Labels:      []string{},
			Groups:      []int{},
			Channels:    []int{},
			Supergroups: []int{},
		}
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	result := GroupsAgeTimeline{
		Labels:      make([]string, 0, len(years)),
		Groups:      make([]int, 0, len(years)),
		Channels:    make([]int, 0, len(years)),
		Supergroups: make([]int, 0, len(years)),
		Total:       total,
	}
	for _, year := range years {
		stat := byYear[year]
		result.Labels = append(result.Labels, strconv.Itoa(year))
		result.Groups = append(result.Groups, stat.groups)
		result.Channels = append(result.Channels, stat.channels)
		result.Supergroups = append(result.Supergroups, stat.supergroups)
		result.TotalGroups += stat.groups
		result.TotalChannels += stat.channels
		result.TotalSupergroups += stat.supergroups
	}
	return result
}

// ContactsStatus строит распределение онлайн-статусов по личным диалогам
// без ботов. Неизвестный статус считается как "давно".
func (e *Engine) ContactsStatus(dialogs []domain.Dialog) ContactsStatus {
	counts := make(map[string]int, len(contactStatusOrder))

	for i := range dialogs {
		d := &dialogs[i]
		if d.Type != domain.TypeUser || d.IsBot {
			continue
		}
		known := false
		for _, status := range contactStatusOrder {
			if d.Status == status {
				known = true
				break
			}
		}
		if known {
			counts[d.Status]++
		} else {
			counts["offline"]++
		}
	}

	result := ContactsStatus{
		Labels: contactStatusLabels,
		Data:   make([]int, 0, len(contactStatusOrder)),
		Colors: contactStatusColors,
	}
	for _, status := range contactStatusOrder {
		result.Data = append(result.Data, counts[status])
	}
	return result
}

package analytics

import "telegram-dialog-insights/internal/domain"

// notificationRow возвращает индекс строки сгруппированной диаграммы:
// боты объединяются с личными, супергруппы — с группами.
func notificationRow(t domain.DialogType) (int, bool) {
	switch t {
	case domain.TypeUser, domain.TypeBot:
		return 0, true
	case domain.TypeGroup, domain.TypeSupergroup:
		return 1, true
	case domain.TypeChannel:
		return 2, true
	default:
		return 0, false
	}
}

// Notifications считает состояния уведомлений по трем категориям
// диалогов. Диалог учитывается ровно один раз: состояние уже вычислено
// нормализатором по порядку старшинства заглушки.
func (e *Engine) Notifications(dialogs []domain.Dialog) Notifications {
	result := Notifications{
		Enabled: make([]int, 3),
		Silent:  make([]int, 3),
		Muted:   make([]int, 3),
	}

	for i := range dialogs {
		d := &dialogs[i]
		row, ok := notificationRow(d.Type)
		if !ok {
			continue
		}
		switch d.NotifyState {
		case domain.NotifyMuted:
			result.Muted[row]++
		case domain.NotifySilent:
			result.Silent[row]++
		default:
			result.Enabled[row]++
		}
		result.Total++
	}

	return result
}

// NotificationFlow строит диаграмму Санки "тип диалога -> состояние
// уведомлений -> состояние прочтения". Узлы и колонки назначаются в
// фиксированном порядке, ребра агрегируются по паре (источник, цель).
// Значение узла — сумма исходящих ребер для первых двух колонок и
// сумма входящих для последней.
func (e *Engine) NotificationFlow(dialogs []domain.Dialog) NotificationFlow {
	// [тип][состояние] и [состояние][прочтение]; прочтение: 0 — прочитано.
	var typeToNotify [5][3]int
	var notifyToRead [3][2]int

	typeIndex := func(t domain.DialogType) (int, bool) {
		for i, known := range dialogTypeOrder {
			if t == known {
				return i, true
			}
		}
		return 0, false
	}
	notifyIndex := func(s domain.NotifyState) int {
		for i, known := range notifyStateOrder {
			if s == known {
				return i
			}
		}
		return 0
	}

	for i := range dialogs {
		d := &dialogs[i]
		ti, ok := typeIndex(d.Type)
		if !ok {
			continue
		}
		ni := notifyIndex(d.NotifyState)
		ri := 0
		if d.HasUnread() {
			ri = 1
		}
		typeToNotify[ti][ni]++
		notifyToRead[ni][ri]++
	}

	readLabels := []string{readStateRead, readStateUnread}

	flow := NotificationFlow{}
	for ti, t := range dialogTypeOrder {
		for ni, s := range notifyStateOrder {
			if v := typeToNotify[ti][ni]; v > 0 {
				flow.Links = append(flow.Links, SankeyLink{
					Source: dialogTypeLabels[t],
					Target: notifyStateLabels[s],
					Value:  v,
				})
			}
		}
	}
	for ni, s := range notifyStateOrder {
		for ri, label := range readLabels {
			if v := notifyToRead[ni][ri]; v > 0 {
				flow.Links = append(flow.Links, SankeyLink{
					Source: notifyStateLabels[s],
					Target: label,
					Value:  v,
				})
			}
		}
	}

	for ti, t := range dialogTypeOrder {
		value := 0
		for ni := range notifyStateOrder {
			value += typeToNotify[ti][ni]
		}
		flow.Nodes = append(flow.Nodes, SankeyNode{
			Name:   dialogTypeLabels[t],
			Value:  value,
			Column: 0,
		})
	}
	for ni, s := range notifyStateOrder {
		value := 0
		for ri := range readLabels {
			value += notifyToRead[ni][ri]
		}
		flow.Nodes = append(flow.Nodes, SankeyNode{
			Name:   notifyStateLabels[s],
			Value:  value,
			Column: 1,
		})
	}
	for ri, label := range readLabels {
		value := 0
		for ni := range notifyStateOrder {
			value += notifyToRead[ni][ri]
		}
		flow.Nodes = append(flow.Nodes, SankeyNode{
			Name:   label,
			Value:  value,
			Column: 2,
		})
	}

	return flow
}

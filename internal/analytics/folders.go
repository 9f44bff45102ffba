package analytics

import (
	"fmt"

	"telegram-dialog-insights/internal/domain"
)

// Отображаемые имена псевдо-папок в сводке распределения.
const (
	archiveBucketName = "Архив"
	homeBucketName    = "Главная"
	unnamedFolderName = "Без названия"
)

type folderBucket struct {
	id     *int
	name   string
	count  int
	unread int
}

// FolderDistribution считает диалоги и непрочитанные по папкам, включая
// синтетические корзины "Архив" и "Главная". Папки без диалогов
// отбрасываются. Сумма счетчиков равна размеру коллекции, кроме случая
// явной принадлежности одного диалога нескольким папкам.
func (e *Engine) FolderDistribution(dialogs []domain.Dialog, folders []domain.Folder) []FolderStat {
	var order []*folderBucket
	byID := make(map[int]*folderBucket)

	addBucket := func(id *int, name string) *folderBucket {
		b := &folderBucket{id: id, name: name}
		order = append(order, b)
		if id != nil {
			byID[*id] = b
		}
		return b
	}

	for _, f := range folders {
		name := f.Title
		if name == "" {
			name = unnamedFolderName
		}
		id := f.ID
		addBucket(&id, name)
	}

	home := addBucket(nil, homeBucketName)

	var archive *folderBucket
	for i := range dialogs {
		if dialogs[i].IsArchived {
			archiveID := domain.ArchiveFolderID
			archive = addBucket(&archiveID, archiveBucketName)
			break
		}
	}

	count := func(b *folderBucket, d *domain.Dialog) {
		b.count++
		if d.HasUnread() {
			b.unread++
		}
	}

	for i := range dialogs {
		d := &dialogs[i]

		// Архивные диалоги не учитываются ни в одной другой папке.
		if d.IsArchived {
			if archive != nil {
				count(archive, d)
			}
			continue
		}

		if len(d.FolderIDs) == 0 {
			count(home, d)
			continue
		}

		for _, folderID := range d.FolderIDs {
			b, ok := byID[folderID]
			if !ok {
				// Папка известна только по идентификатору.
				b = addBucket(&folderID, fmt.Sprintf("Папка #%d", folderID))
			}
			count(b, d)
		}
	}

	stats := make([]FolderStat, 0, len(order))
	for _, b := range order {
		if b.count == 0 {
			continue
		}
		stats = append(stats, FolderStat{
			ID:     b.id,
			Name:   b.name,
			Count:  b.count,
			Unread: b.unread,
		})
	}
	return stats
}

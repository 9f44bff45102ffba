package services

import (
	"fmt"

	"telegram-dialog-insights/internal/domain"
)

// Отображаемые имена встроенных псевдо-папок.
const (
	ArchiveFolderTitle = "Архив"
	HomeFolderTitle    = "Главная"
)

// MembershipIndex связывает диалоги с папками в обе стороны: канонический
// список папок с упорядоченными участниками и индекс для быстрой проверки
// принадлежности.
type MembershipIndex struct {
	Folders     []domain.Folder
	IDsByFolder map[int]map[string]struct{}
}

// FolderService строит индекс принадлежности и разрешает папки диалога
// по порядку старшинства: архив > явный folderId > поиск по спискам
// участников > псевдо-папка "Главная".
type FolderService struct{}

// NewFolderService создает новый экземпляр FolderService.
func NewFolderService() *FolderService {
	return &FolderService{}
}

// BuildMembershipIndex строит индекс по сырому списку папок.
// Папки с isDefault отбрасываются. Идентификаторы участников берутся
// из includedChatIds как есть либо извлекаются из includePeers
// (channelId, затем userId, затем chatId) и всегда приводятся к строке.
func (s *FolderService) BuildMembershipIndex(raw []domain.RawFolder) *MembershipIndex {
	idx := &MembershipIndex{
		IDsByFolder: make(map[int]map[string]struct{}),
	}

	for _, rf := range raw {
		if rf.IsDefault {
			continue
		}

		folder := domain.Folder{
			ID:    rf.ID,
			Title: rf.Title,
		}

		members := make(map[string]struct{})
		if len(rf.IncludedChatIDs) > 0 {
			for _, rawID := range rf.IncludedChatIDs {
				if id := StringID(rawID); id != "" {
					if _, seen := members[id]; !seen {
						members[id] = struct{}{}
						folder.MemberIDs = append(folder.MemberIDs, id)
					}
				}
			}
		} else {
			for _, peer := range rf.IncludePeers {
				if id := peerID(peer); id != "" {
					if _, seen := members[id]; !seen {
						members[id] = struct{}{}
						folder.MemberIDs = append(folder.MemberIDs, id)
					}
				}
			}
		}

		idx.Folders = append(idx.Folders, folder)
		idx.IDsByFolder[folder.ID] = members
	}

	return idx
}

// ResolveFolders возвращает идентификаторы папок диалога и их отображаемые
// имена. Архивный диалог всегда принадлежит только папке "Архив";
// явный folderId не проверяется по спискам участников; поиск по спискам
// может дать несколько папок.
func (s *FolderService) ResolveFolders(raw *domain.RawDialog, idx *MembershipIndex) (ids []int, names []string) {
	if raw == nil {
		return nil, nil
	}

	if IsArchivedDialog(raw) {
		return []int{domain.ArchiveFolderID}, []string{ArchiveFolderTitle}
	}

	if raw.FolderID != nil {
		id := *raw.FolderID
		return []int{id}, []string{s.folderTitle(idx, id)}
	}

	dialogID := StringID(raw.ID)
	if dialogID == "" && raw.Entity != nil {
		dialogID = StringID(raw.Entity.ID)
	}
	if dialogID == "" || idx == nil {
		return nil, nil
	}

	// Порядок обхода совпадает с порядком папок у источника, чтобы
	// результат был детерминирован.
	for _, folder := range idx.Folders {
		if _, ok := idx.IDsByFolder[folder.ID][dialogID]; ok {
			ids = append(ids, folder.ID)
			names = append(names, s.folderTitle(idx, folder.ID))
		}
	}

	return ids, names
}

// IsArchivedDialog сообщает, архивирован ли сырой диалог. Архивность
// выражается флагом archived, флагом isArchived или устаревшим
// folderId == 1.
func IsArchivedDialog(raw *domain.RawDialog) bool {
	if raw == nil {
		return false
	}
	if raw.Archived != nil && *raw.Archived {
		return true
	}
	if raw.IsArchived != nil && *raw.IsArchived {
		return true
	}
	return raw.FolderID != nil && *raw.FolderID == domain.ArchiveFolderID
}

func (s *FolderService) folderTitle(idx *MembershipIndex, id int) string {
	if id == domain.ArchiveFolderID {
		return ArchiveFolderTitle
	}
	if idx != nil {
		for _, folder := range idx.Folders {
			if folder.ID == id && folder.Title != "" {
				return folder.Title
			}
		}
	}
	// Папка существует, но сам объект папки не был загружен.
	return fmt.Sprintf("Папка #%d", id)
}

func peerID(peer domain.RawPeer) string {
	if id := StringID(peer.ChannelID); id != "" {
		return id
	}
	if id := StringID(peer.UserID); id != "" {
		return id
	}
	return StringID(peer.ChatID)
}

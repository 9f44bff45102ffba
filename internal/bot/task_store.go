package bot

import "sync"

// PendingTask описывает запущенное по команде пользователя обновление.
type PendingTask struct {
	TaskID    string
	AccountID string
}

// TaskStore — это потокобезопасное in-memory хранилище для сопоставления
// идентификатора чата Telegram с запущенной задачей на бэкенд-сервере.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[int64]PendingTask // map[chatID]PendingTask
}

// NewTaskStore создает новый экземпляр TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[int64]PendingTask),
	}
}

// Set сохраняет сопоставление chatID и задачи.
// Если для данного chatID уже существует задача, она будет перезаписана.
func (s *TaskStore) Set(chatID int64, task PendingTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[chatID] = task
}

// Get извлекает задачу для указанного chatID.
// Возвращает задачу и true, если задача найдена, иначе — нулевую задачу и false.
func (s *TaskStore) Get(chatID int64) (PendingTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[chatID]
	return task, ok
}

// Delete удаляет задачу для указанного chatID.
func (s *TaskStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, chatID)
}

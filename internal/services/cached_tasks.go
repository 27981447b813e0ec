package services

import (
	"fmt"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL  = 30 * time.Minute
	listCacheTTL  = 5 * time.Minute
	statsCacheTTL = 10 * time.Minute
)

// CachedTaskService decorates a TaskService with a per-owner redis cache.
// Cache failures fall through to the underlying service and are never
// surfaced to callers.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

type cachedListing struct {
	Tasks      []models.Task `json:"tasks"`
	Pagination Pagination    `json:"pagination"`
}

func taskKey(userID, taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", userID, taskID)
}

func listKey(userID uuid.UUID, f TaskFilter) string {
	return fmt.Sprintf("tasks:%s:p%d:l%d:st%s:pr%s:q%s", userID, f.Page, f.Limit, f.Status, f.Priority, f.Search)
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("task_stats:%s", userID)
}

// invalidateOwner drops every cached view of one owner's tasks after a
// mutation. Other owners' entries are untouched.
func (s *CachedTaskService) invalidateOwner(userID uuid.UUID) {
	s.cache.DeletePattern(fmt.Sprintf("task:%s:*", userID))
	s.cache.DeletePattern(fmt.Sprintf("tasks:%s:*", userID))
	s.cache.Delete(statsKey(userID))
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, Pagination, error) {
	key := listKey(userID, filter)

	var cached cachedListing
	if err := s.cache.Get(key, &cached); err == nil {
		return cached.Tasks, cached.Pagination, nil
	}

	tasks, pagination, err := s.taskService.ListTasks(db, userID, filter)
	if err != nil {
		return tasks, pagination, err
	}

	s.cache.Set(key, cachedListing{Tasks: tasks, Pagination: pagination}, listCacheTTL)

	return tasks, pagination, nil
}

func (s *CachedTaskService) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error) {
	key := taskKey(userID, taskID)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	task, err := s.taskService.GetTask(db, userID, taskID)
	if err != nil {
		return task, err
	}

	s.cache.Set(key, task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, userID, input)
	if err != nil {
		return task, err
	}

	s.invalidateOwner(userID)
	s.cache.Set(taskKey(userID, task.ID), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, userID, taskID, input)
	if err != nil {
		return task, err
	}

	s.invalidateOwner(userID)
	s.cache.Set(taskKey(userID, task.ID), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) ArchiveTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	if err := s.taskService.ArchiveTask(db, userID, taskID); err != nil {
		return err
	}

	s.invalidateOwner(userID)

	return nil
}

func (s *CachedTaskService) SummarizeTasks(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	key := statsKey(userID)

	var cached TaskStats
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	stats, err := s.taskService.SummarizeTasks(db, userID)
	if err != nil {
		return stats, err
	}

	s.cache.Set(key, stats, statsCacheTTL)

	return stats, nil
}

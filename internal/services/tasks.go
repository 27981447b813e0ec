package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxSearchLen      = 100
	maxPageSize       = 100
	DefaultPageSize   = 10
)

// TaskFilter narrows a listing to one owner's active tasks. Zero values mean
// "not filtered"; Page and Limit are expected to be defaulted by the caller.
type TaskFilter struct {
	Page     int
	Limit    int
	Status   string
	Priority string
	Search   string
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// TaskInput is shared between create and update. Pointer fields distinguish
// "absent" from "set to empty" on partial updates.
type TaskInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags"`
}

type TaskStats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	InProgress     int64 `json:"inProgress"`
	Completed      int64 `json:"completed"`
	HighPriority   int64 `json:"highPriority"`
	UrgentPriority int64 `json:"urgentPriority"`
}

type TaskService interface {
	ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, Pagination, error)
	GetTask(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error)
	CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error)
	UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (models.Task, error)
	ArchiveTask(db *gorm.DB, userID, taskID uuid.UUID) error
	SummarizeTasks(db *gorm.DB, userID uuid.UUID) (TaskStats, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func validateFilter(filter TaskFilter) error {
	verr := &ValidationError{}

	if filter.Page < 1 {
		verr.add("page", "page must be a positive integer")
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		verr.add("limit", "limit must be between 1 and 100")
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		verr.add("status", "invalid status")
	}
	if filter.Priority != "" && !models.ValidPriority(filter.Priority) {
		verr.add("priority", "invalid priority")
	}
	if utf8.RuneCountInString(filter.Search) > maxSearchLen {
		verr.add("search", "search must be at most 100 characters")
	}

	return verr.orNil()
}

func listQuery(db *gorm.DB, userID uuid.UUID, filter TaskFilter) *gorm.DB {
	q := db.Model(&models.Task{}).
		Where("user_id = ? AND state = ?", userID, models.StateActive)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	return q
}

// ListTasks returns one page of the owner's active tasks, newest first. The
// page slice and the total count come from two separate store reads without a
// wrapping transaction; under concurrent writes the pagination metadata may
// reflect a slightly different snapshot than the tasks themselves.
func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, Pagination, error) {
	if err := validateFilter(filter); err != nil {
		return nil, Pagination{}, err
	}

	offset := (filter.Page - 1) * filter.Limit

	tasks := []models.Task{}
	err := listQuery(db, userID, filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	var total int64
	if err := listQuery(db, userID, filter).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	pages := 0
	if total > 0 {
		pages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}

	pagination := Pagination{
		Current: filter.Page,
		Pages:   pages,
		Total:   total,
		HasNext: filter.Page < pages,
		HasPrev: filter.Page > 1,
	}

	return tasks, pagination, nil
}

// GetTask does not distinguish a foreign-owned task from a missing one, so a
// non-owner cannot probe for existence. Archived tasks are excluded here the
// same way they are excluded from listings.
func (s *TaskServiceImpl) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ? AND state = ?", taskID, userID, models.StateActive).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error) {
	verr := &ValidationError{}

	title := ""
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		verr.add("title", "title is required and must be between 1 and 200 characters")
	}

	description := ""
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(description) > maxDescriptionLen {
			verr.add("description", "description cannot exceed 1000 characters")
		}
	}

	status := models.StatusPending
	if input.Status != nil && *input.Status != "" {
		if !models.ValidStatus(*input.Status) {
			verr.add("status", "invalid status")
		} else {
			status = *input.Status
		}
	}

	priority := models.PriorityMedium
	if input.Priority != nil && *input.Priority != "" {
		if !models.ValidPriority(*input.Priority) {
			verr.add("priority", "invalid priority")
		} else {
			priority = *input.Priority
		}
	}

	var dueDate *time.Time
	if input.DueDate != nil && *input.DueDate != "" {
		parsed, err := parseDueDate(*input.DueDate)
		if err != nil {
			verr.add("dueDate", "invalid due date format")
		} else {
			dueDate = parsed
		}
	}

	if err := verr.orNil(); err != nil {
		return models.Task{}, err
	}

	taskID, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, err
	}

	now := time.Now()
	task := models.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        input.Tags,
		State:       models.StateActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.GetTask(db, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	verr := &ValidationError{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
			verr.add("title", "title must be between 1 and 200 characters")
		} else {
			task.Title = title
		}
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(description) > maxDescriptionLen {
			verr.add("description", "description cannot exceed 1000 characters")
		} else {
			task.Description = description
		}
	}

	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			verr.add("status", "invalid status")
		} else {
			task.Status = *input.Status
		}
	}

	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			verr.add("priority", "invalid priority")
		} else {
			task.Priority = *input.Priority
		}
	}

	if input.DueDate != nil {
		if *input.DueDate == "" {
			task.DueDate = nil
		} else if parsed, err := parseDueDate(*input.DueDate); err != nil {
			verr.add("dueDate", "invalid due date format")
		} else {
			task.DueDate = parsed
		}
	}

	if input.Tags != nil {
		task.Tags = input.Tags
	}

	if err := verr.orNil(); err != nil {
		return models.Task{}, err
	}

	task.UpdatedAt = time.Now()

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

// ArchiveTask flips the task into the archived lifecycle state. It matches on
// owner and id only, so archiving an already-archived task succeeds.
func (s *TaskServiceImpl) ArchiveTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	result := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(map[string]interface{}{
			"state":      models.StateArchived,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SummarizeTasks computes the dashboard counters over the owner's active tasks
// in a single conditional aggregation. An owner with no tasks gets explicit
// zeroes.
func (s *TaskServiceImpl) SummarizeTasks(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	var stats TaskStats
	err := db.Model(&models.Task{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'in-progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN priority = 'high' THEN 1 ELSE 0 END), 0) AS high_priority,
			COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0) AS urgent_priority`).
		Where("user_id = ? AND state = ?", userID, models.StateActive).
		Scan(&stats).Error
	if err != nil {
		return TaskStats{}, err
	}
	return stats, nil
}

func parseDueDate(value string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, errors.New("unrecognized date format")
}

package services

import (
	"log"

	"taskify/backend/internal/models"
	"taskify/backend/internal/worker"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const reminderQueue = "reminders"

// ReminderTaskService schedules a due-date reminder job whenever a task is
// created or updated with a due date. Scheduling failures are logged and never
// fail the request.
type ReminderTaskService struct {
	TaskService
	queue *worker.JobQueue
}

func NewReminderTaskService(inner TaskService, queue *worker.JobQueue) *ReminderTaskService {
	return &ReminderTaskService{TaskService: inner, queue: queue}
}

func (s *ReminderTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.TaskService.CreateTask(db, userID, input)
	if err != nil {
		return task, err
	}

	s.scheduleReminder(task)

	return task, nil
}

func (s *ReminderTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.TaskService.UpdateTask(db, userID, taskID, input)
	if err != nil {
		return task, err
	}

	if input.DueDate != nil {
		s.scheduleReminder(task)
	}

	return task, nil
}

func (s *ReminderTaskService) scheduleReminder(task models.Task) {
	if task.DueDate == nil {
		return
	}

	payload := map[string]interface{}{
		"task_id": task.ID.String(),
		"user_id": task.UserID.String(),
		"title":   task.Title,
	}

	if err := s.queue.EnqueueAt(reminderQueue, worker.JobTypeDueReminder, payload, *task.DueDate); err != nil {
		log.Printf("failed to schedule due reminder for task %s: %v", task.ID, err)
	}
}

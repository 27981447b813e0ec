package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

// currentUserID reads the owner identity resolved by the auth middleware.
// Handlers never resolve identity themselves.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Invalid user identity"})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *TaskHandler) scopedDB(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	verr := &services.ValidationError{}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "page", Message: "page must be a positive integer"})
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	if err != nil {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if len(verr.Errors) > 0 {
		respondValidationFailed(c, verr)
		return
	}

	filter := services.TaskFilter{
		Page:     page,
		Limit:    limit,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}

	tasks, pagination, err := h.taskService.ListTasks(h.scopedDB(c), userID, filter)
	if err != nil {
		handleTaskError(c, err, "Server error while fetching tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      tasks,
		"pagination": pagination,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID := uuid.FromStringOrNil(c.Param("id"))

	task, err := h.taskService.GetTask(h.scopedDB(c), userID, taskID)
	if err != nil {
		handleTaskError(c, err, "Server error while fetching task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "body", Message: "invalid request body"}},
		})
		return
	}

	task, err := h.taskService.CreateTask(h.scopedDB(c), userID, input)
	if err != nil {
		handleTaskError(c, err, "Server error while creating task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID := uuid.FromStringOrNil(c.Param("id"))

	var input services.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "body", Message: "invalid request body"}},
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.scopedDB(c), userID, taskID, input)
	if err != nil {
		handleTaskError(c, err, "Server error while updating task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// DeleteTask archives the task rather than removing the row.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID := uuid.FromStringOrNil(c.Param("id"))

	if err := h.taskService.ArchiveTask(h.scopedDB(c), userID, taskID); err != nil {
		handleTaskError(c, err, "Server error while deleting task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.taskService.SummarizeTasks(h.scopedDB(c), userID)
	if err != nil {
		handleTaskError(c, err, "Server error while fetching statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func respondValidationFailed(c *gin.Context, verr *services.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Validation failed",
		"errors":  verr.Errors,
	})
}

func handleTaskError(c *gin.Context, err error, serverMessage string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationFailed(c, verr)
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
	default:
		log.Printf("task handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": serverMessage})
	}
}

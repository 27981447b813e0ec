package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskify/backend/internal/handlers"
	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MockTaskService struct {
	shouldReturnError bool
	returnNotFound    bool
	returnInvalid     bool
	tasks             []models.Task
	lastFilter        services.TaskFilter
	archivedIDs       []uuid.UUID
}

func (m *MockTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, filter services.TaskFilter) ([]models.Task, services.Pagination, error) {
	m.lastFilter = filter
	if m.shouldReturnError {
		return nil, services.Pagination{}, gorm.ErrInvalidData
	}
	if m.returnInvalid {
		return nil, services.Pagination{}, &services.ValidationError{
			Errors: []services.FieldError{{Field: "status", Message: "invalid status"}},
		}
	}
	return m.tasks, services.Pagination{
		Current: filter.Page,
		Pages:   1,
		Total:   int64(len(m.tasks)),
		HasPrev: filter.Page > 1,
	}, nil
}

func (m *MockTaskService) GetTask(db *gorm.DB, userID, taskID uuid.UUID) (models.Task, error) {
	if m.shouldReturnError {
		return models.Task{}, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return models.Task{}, services.ErrTaskNotFound
	}
	return models.Task{ID: taskID, UserID: userID, Title: "Test Task", Status: models.StatusPending}, nil
}

func (m *MockTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input services.TaskInput) (models.Task, error) {
	if m.shouldReturnError {
		return models.Task{}, gorm.ErrInvalidData
	}
	if m.returnInvalid {
		return models.Task{}, &services.ValidationError{
			Errors: []services.FieldError{{Field: "title", Message: "title is required and must be between 1 and 200 characters"}},
		}
	}
	task := models.Task{ID: uuid.Must(uuid.NewV4()), UserID: userID, Status: models.StatusPending}
	if input.Title != nil {
		task.Title = *input.Title
	}
	m.tasks = append(m.tasks, task)
	return task, nil
}

func (m *MockTaskService) UpdateTask(db *gorm.DB, userID, taskID uuid.UUID, input services.TaskInput) (models.Task, error) {
	if m.shouldReturnError {
		return models.Task{}, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return models.Task{}, services.ErrTaskNotFound
	}
	return models.Task{ID: taskID, UserID: userID, Title: "Updated Task"}, nil
}

func (m *MockTaskService) ArchiveTask(db *gorm.DB, userID, taskID uuid.UUID) error {
	if m.shouldReturnError {
		return gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return services.ErrTaskNotFound
	}
	m.archivedIDs = append(m.archivedIDs, taskID)
	return nil
}

func (m *MockTaskService) SummarizeTasks(db *gorm.DB, userID uuid.UUID) (services.TaskStats, error) {
	if m.shouldReturnError {
		return services.TaskStats{}, gorm.ErrInvalidData
	}
	return services.TaskStats{Total: 2, Pending: 1, Completed: 1, UrgentPriority: 1}, nil
}

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db
}

func setupTaskHandler(t *testing.T) (*handlers.TaskHandler, *MockTaskService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}
	handler := handlers.NewTaskHandler(testDB(t), mockService)
	router := gin.New()

	// Stand-in for the auth middleware.
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()))
		c.Next()
	})

	return handler, mockService, router
}

func TestGetTasks(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.GET("/tasks", handler.GetTasks)

	mockService.tasks = []models.Task{
		{Title: "Task 1", Status: models.StatusPending},
		{Title: "Task 2", Status: models.StatusCompleted},
	}

	req, _ := http.NewRequest("GET", "/tasks?page=1&limit=10&status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if mockService.lastFilter.Status != "pending" {
		t.Errorf("Expected status filter 'pending', got '%s'", mockService.lastFilter.Status)
	}

	var response struct {
		Tasks      []models.Task       `json:"tasks"`
		Pagination services.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Tasks) != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(response.Tasks))
	}
	if response.Pagination.Total != 2 {
		t.Errorf("Expected pagination total 2, got %d", response.Pagination.Total)
	}
}

func TestGetTasksDefaultsPageAndLimit(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if mockService.lastFilter.Page != 1 {
		t.Errorf("Expected default page 1, got %d", mockService.lastFilter.Page)
	}
	if mockService.lastFilter.Limit != services.DefaultPageSize {
		t.Errorf("Expected default limit %d, got %d", services.DefaultPageSize, mockService.lastFilter.Limit)
	}
}

func TestGetTasksNonNumericPage(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks?page=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetTasksValidationError(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.GET("/tasks", handler.GetTasks)

	mockService.returnInvalid = true

	req, _ := http.NewRequest("GET", "/tasks?status=bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response struct {
		Message string                `json:"message"`
		Errors  []services.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Message != "Validation failed" {
		t.Errorf("Expected message 'Validation failed', got '%s'", response.Message)
	}
	if len(response.Errors) != 1 || response.Errors[0].Field != "status" {
		t.Errorf("Expected a field error on 'status', got %+v", response.Errors)
	}
}

func TestGetTasksUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(testDB(t), &MockTaskService{})
	router := gin.New()
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestCreateTask(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.POST("/tasks", handler.CreateTask)

	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Test Task",
		"priority": "high",
		"tags":     []string{"work"},
	})
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var response struct {
		Message string      `json:"message"`
		Task    models.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Message != "Task created successfully" {
		t.Errorf("Unexpected message: %s", response.Message)
	}
	if response.Task.Title != "Test Task" {
		t.Errorf("Expected title 'Test Task', got '%s'", response.Task.Title)
	}
}

func TestCreateTaskInvalidJSON(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.POST("/tasks", handler.CreateTask)

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateTaskValidationError(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.POST("/tasks", handler.CreateTask)

	mockService.returnInvalid = true

	body, _ := json.Marshal(map[string]string{"title": ""})
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetTaskByID(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.GET("/tasks/:id", handler.GetTaskByID)

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Task models.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Task.Title != "Test Task" {
		t.Errorf("Expected title 'Test Task', got '%s'", response.Task.Title)
	}
}

func TestGetTaskByIDNotFound(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.GET("/tasks/:id", handler.GetTaskByID)

	mockService.returnNotFound = true

	req, _ := http.NewRequest("GET", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["message"] != "Task not found" {
		t.Errorf("Expected message 'Task not found', got '%s'", response["message"])
	}
}

func TestUpdateTask(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.PUT("/tasks/:id", handler.UpdateTask)

	body, _ := json.Marshal(map[string]string{"status": "completed"})
	req, _ := http.NewRequest("PUT", "/tasks/"+uuid.Must(uuid.NewV4()).String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.PUT("/tasks/:id", handler.UpdateTask)

	mockService.returnNotFound = true

	body, _ := json.Marshal(map[string]string{"status": "completed"})
	req, _ := http.NewRequest("PUT", "/tasks/"+uuid.Must(uuid.NewV4()).String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteTaskArchives(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.DELETE("/tasks/:id", handler.DeleteTask)

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("DELETE", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if len(mockService.archivedIDs) != 1 || mockService.archivedIDs[0] != taskID {
		t.Errorf("Expected task %s to be archived, got %v", taskID, mockService.archivedIDs)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["message"] != "Task deleted successfully" {
		t.Errorf("Expected message 'Task deleted successfully', got '%s'", response["message"])
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.DELETE("/tasks/:id", handler.DeleteTask)

	mockService.returnNotFound = true

	req, _ := http.NewRequest("DELETE", "/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetTaskStats(t *testing.T) {
	handler, _, router := setupTaskHandler(t)
	router.GET("/tasks/stats/summary", handler.GetTaskStats)

	req, _ := http.NewRequest("GET", "/tasks/stats/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Stats services.TaskStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Stats.Total != 2 {
		t.Errorf("Expected total 2, got %d", response.Stats.Total)
	}
	if response.Stats.UrgentPriority != 1 {
		t.Errorf("Expected urgentPriority 1, got %d", response.Stats.UrgentPriority)
	}
}

func TestStoreErrorIsGeneric500(t *testing.T) {
	handler, mockService, router := setupTaskHandler(t)
	router.GET("/tasks", handler.GetTasks)

	mockService.shouldReturnError = true

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["message"] != "Server error while fetching tasks" {
		t.Errorf("Internal detail must not leak, got '%s'", response["message"])
	}
}

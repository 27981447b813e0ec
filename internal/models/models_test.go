package models_test

import (
	"testing"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestTask_Validation(t *testing.T) {
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uuid.Must(uuid.NewV4()),
		Title:       "Test Task",
		Description: "Test Description",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		State:       models.StateActive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if task.Title != "Test Task" {
		t.Errorf("Expected title 'Test Task', got '%s'", task.Title)
	}

	if task.Status != "pending" {
		t.Errorf("Expected status 'pending', got '%s'", task.Status)
	}

	if task.IsArchived() {
		t.Error("Expected active task to not be archived")
	}
}

func TestTask_IsArchived(t *testing.T) {
	task := models.Task{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: uuid.Must(uuid.NewV4()),
		Title:  "Archived Task",
		State:  models.StateArchived,
	}

	if !task.IsArchived() {
		t.Error("Expected archived task to report IsArchived")
	}
}

func TestValidStatus(t *testing.T) {
	validStatuses := []string{"pending", "in-progress", "completed", "cancelled"}

	for _, status := range validStatuses {
		if !models.ValidStatus(status) {
			t.Errorf("Expected status '%s' to be valid", status)
		}
	}

	invalidStatuses := []string{"", "done", "in_progress", "Pending"}

	for _, status := range invalidStatuses {
		if models.ValidStatus(status) {
			t.Errorf("Expected status '%s' to be invalid", status)
		}
	}
}

func TestValidPriority(t *testing.T) {
	validPriorities := []string{"low", "medium", "high", "urgent"}

	for _, priority := range validPriorities {
		if !models.ValidPriority(priority) {
			t.Errorf("Expected priority '%s' to be valid", priority)
		}
	}

	invalidPriorities := []string{"", "critical", "Medium"}

	for _, priority := range invalidPriorities {
		if models.ValidPriority(priority) {
			t.Errorf("Expected priority '%s' to be invalid", priority)
		}
	}
}

func TestUser_Validation(t *testing.T) {
	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "testuser",
		Email:    "test@example.com",
		Password: "hashedpassword",
	}

	if user.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", user.Username)
	}

	if user.Password != "hashedpassword" {
		t.Errorf("Expected password 'hashedpassword', got '%s'", user.Password)
	}
}

func TestUser_FullName(t *testing.T) {
	user := models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	if user.FullName() != "Ada Lovelace" {
		t.Errorf("Expected full name 'Ada Lovelace', got '%s'", user.FullName())
	}
}

func TestToken_Validation(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	refreshToken := uuid.Must(uuid.NewV4())
	expiresAt := time.Now().Add(24 * time.Hour)

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserId:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}

	if token.UserId != userID {
		t.Errorf("Expected UserID %s, got %s", userID.String(), token.UserId.String())
	}

	if token.RefreshToken != refreshToken {
		t.Errorf("Expected RefreshToken %s, got %s", refreshToken.String(), token.RefreshToken.String())
	}

	if token.ExpiresAt != expiresAt {
		t.Errorf("Expected ExpiresAt %v, got %v", expiresAt, token.ExpiresAt)
	}
}

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	lastName  string
	email     string
	phone     string
	gender    domain.Gender
	password  string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		firstName: "Test",
		lastName:  fmt.Sprintf("User%s", suffix),
		email:     fmt.Sprintf("testuser_%s@example.com", suffix),
		phone:     fmt.Sprintf("080%s", uuid.New().String()[:8]),
		gender:    domain.GenderMale,
		password:  "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPhone sets the phone number
func (b *UserBuilder) WithPhone(phone string) *UserBuilder {
	b.phone = phone
	return b
}

// WithName sets the first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user and an active credential in the database and
// returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		FirstName: b.firstName,
		LastName:  b.lastName,
		Email:     b.email,
		Phone:     b.phone,
		Gender:    b.gender,
		Status:    domain.StatusActive,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	credential := &domain.Credential{
		ID:     uuid.New(),
		UserID: user.ID,
		Email:  user.Email,
		Digest: string(digest),
		Status: domain.PasswordActive,
	}

	if err := db.Create(credential).Error; err != nil {
		t.Fatalf("failed to create credential: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

// BuildAndAuthenticate creates a user via the API and returns the user
// and a live token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"first_name":       b.firstName,
		"last_name":        b.lastName,
		"email":            b.email,
		"phone":            b.phone,
		"gender":           string(b.gender),
		"new_password":     b.password,
		"confirm_password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/signup"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to sign up user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:    userID,
		Email: authResp.User.Email,
	}

	return user, authResp.Token
}

// GrantRole writes an active privilege row directly to the database
func GrantRole(t *testing.T, db *gorm.DB, userID uuid.UUID, role domain.Role, assignedBy uuid.UUID) *domain.Privilege {
	t.Helper()

	privilege := &domain.Privilege{
		ID:         uuid.New(),
		UserID:     userID,
		Role:       role,
		AssignedBy: assignedBy,
		Status:     domain.StatusActive,
	}

	if err := db.Create(privilege).Error; err != nil {
		t.Fatalf("failed to create privilege: %v", err)
	}

	return privilege
}

// TaskBuilder creates test tasks with a builder pattern
type TaskBuilder struct {
	title      string
	points     domain.TaskPoints
	priority   domain.PriorityLevel
	creator    *domain.User
	assignee   *domain.User
	status     domain.TaskStatus
	expected   time.Time
	noteText   string
	noteMadeBy uuid.UUID
}

// NewTaskBuilder creates a new TaskBuilder with default values
func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{
		title:    fmt.Sprintf("Test task %s", uuid.New().String()[:8]),
		points:   3,
		priority: 3,
		status:   domain.TaskToDo,
		expected: time.Now().Add(7 * 24 * time.Hour),
	}
}

// WithTitle sets the task title
func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.title = title
	return b
}

// WithPoints sets the task points
func (b *TaskBuilder) WithPoints(points domain.TaskPoints) *TaskBuilder {
	b.points = points
	return b
}

// WithPriority sets the priority level
func (b *TaskBuilder) WithPriority(priority domain.PriorityLevel) *TaskBuilder {
	b.priority = priority
	return b
}

// WithCreator sets the creating admin
func (b *TaskBuilder) WithCreator(user *domain.User) *TaskBuilder {
	b.creator = user
	return b
}

// WithAssignee sets the assigned user
func (b *TaskBuilder) WithAssignee(user *domain.User) *TaskBuilder {
	b.assignee = user
	return b
}

// WithStatus sets the task status
func (b *TaskBuilder) WithStatus(status domain.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

// WithExpectedCompletionDate sets the expected completion date
func (b *TaskBuilder) WithExpectedCompletionDate(date time.Time) *TaskBuilder {
	b.expected = date
	return b
}

// WithNote adds an initial note
func (b *TaskBuilder) WithNote(text string, madeBy uuid.UUID) *TaskBuilder {
	b.noteText = text
	b.noteMadeBy = madeBy
	return b
}

// Build creates the task in the database
func (b *TaskBuilder) Build(t *testing.T, db *gorm.DB) *domain.Task {
	t.Helper()

	if b.creator == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.creator = user
	}
	if b.assignee == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.assignee = user
	}

	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  b.title,
		Points:                 b.points,
		Priority:               b.priority,
		CreatedBy:              b.creator.ID,
		AssignedTo:             b.assignee.ID,
		ExpectedCompletionDate: b.expected,
		Notes:                  domain.TaskNotes{},
		Status:                 b.status,
	}
	if b.noteText != "" {
		task.Notes = append(task.Notes, domain.TaskNote{
			Text:   b.noteText,
			MadeBy: b.noteMadeBy,
			Time:   time.Now(),
		})
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

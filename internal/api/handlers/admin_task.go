package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

// AdminTaskHandler serves the administrative task routes. Role checks
// live in the route middleware; these handlers only translate wire
// shapes.
type AdminTaskHandler struct {
	taskService *service.TaskService
}

func NewAdminTaskHandler(taskService *service.TaskService) *AdminTaskHandler {
	return &AdminTaskHandler{taskService: taskService}
}

type CreateTaskRequest struct {
	Title                  string `json:"title"`
	Points                 int    `json:"points"`
	Priority               int    `json:"priority"`
	AssignedTo             string `json:"assigned_to"`
	ExpectedCompletionDate string `json:"expected_completion_date"`
	Status                 string `json:"status"`
	Note                   string `json:"note"`
}

func (h *AdminTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	if req.Title == "" || req.AssignedTo == "" || req.ExpectedCompletionDate == "" {
		respondError(w, domain.BadRequest("title, assigned_to and expected_completion_date are required"))
		return
	}

	assignee, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		respondError(w, domain.InvalidValue("assigned_to"))
		return
	}
	expected, err := time.Parse(dateLayout, req.ExpectedCompletionDate)
	if err != nil {
		respondError(w, domain.InvalidValue("expected_completion_date"))
		return
	}

	points := domain.TaskPoints(req.Points)
	if !points.IsValid() {
		respondError(w, domain.InvalidValue("points"))
		return
	}
	priority := domain.PriorityLevel(req.Priority)
	if !priority.IsValid() {
		respondError(w, domain.InvalidValue("priority"))
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, service.CreateTaskInput{
		Title:                  req.Title,
		Points:                 points,
		Priority:               priority,
		AssignedTo:             assignee,
		ExpectedCompletionDate: expected,
		Note:                   req.Note,
		Status:                 domain.TaskStatus(req.Status),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *AdminTaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := taskFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	tasks, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

func (h *AdminTaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Update applies an administrative change, approval included.
func (h *AdminTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(w, err)
		return
	}

	task, err := h.taskService.AdminUpdate(r.Context(), taskID, userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *AdminTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

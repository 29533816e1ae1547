package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"github.com/nedu/taskhub/internal/service"
)

const dateLayout = "2006-01-02"

// TaskHandler serves the assignee-facing task routes: a user lists
// and progresses the tasks assigned to them.
type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type TaskUpdateRequest struct {
	Title                  *string `json:"title"`
	Points                 *int    `json:"points"`
	Priority               *int    `json:"priority"`
	AssignedTo             *string `json:"assigned_to"`
	ExpectedCompletionDate *string `json:"expected_completion_date"`
	ActualCompletionDate   *string `json:"actual_completion_date"`
	Status                 string  `json:"status"`
	Note                   string  `json:"note"`
}

// toInput converts the wire shape to the service input, validating
// ids and dates on the way.
func (req *TaskUpdateRequest) toInput() (service.UpdateTaskInput, error) {
	input := service.UpdateTaskInput{
		Title:  req.Title,
		Status: domain.TaskStatus(req.Status),
		Note:   req.Note,
	}
	if req.Points != nil {
		points := domain.TaskPoints(*req.Points)
		input.Points = &points
	}
	if req.Priority != nil {
		priority := domain.PriorityLevel(*req.Priority)
		input.Priority = &priority
	}
	if req.AssignedTo != nil {
		id, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return input, domain.InvalidValue("assigned_to")
		}
		input.AssignedTo = &id
	}
	if req.ExpectedCompletionDate != nil {
		date, err := time.Parse(dateLayout, *req.ExpectedCompletionDate)
		if err != nil {
			return input, domain.InvalidValue("expected_completion_date")
		}
		input.ExpectedCompletionDate = &date
	}
	if req.ActualCompletionDate != nil {
		date, err := time.Parse(dateLayout, *req.ActualCompletionDate)
		if err != nil {
			return input, domain.InvalidValue("actual_completion_date")
		}
		input.ActualCompletionDate = &date
	}
	return input, nil
}

// List returns the caller's own tasks, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	filter, err := taskFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	filter.AssignedTo = userID

	tasks, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	task, err := h.taskService.Get(r.Context(), taskID)
	if err != nil {
		respondError(w, err)
		return
	}
	if task.AssignedTo != userID {
		respondError(w, domain.Forbidden("You are not allowed to view this task"))
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Update progresses a task on behalf of its assignee.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	task, err := h.taskService.AssigneeUpdate(r.Context(), taskID, userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// taskFilterFromQuery builds the optional-predicate filter from the
// list query string.
func taskFilterFromQuery(r *http.Request) (repository.TaskFilter, error) {
	q := r.URL.Query()
	filter := repository.TaskFilter{
		Status:        domain.TaskStatus(q.Get("status")),
		TitleContains: q.Get("title"),
	}

	if raw := q.Get("created_by"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.InvalidValue("created_by")
		}
		filter.CreatedBy = id
	}
	if raw := q.Get("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.InvalidValue("assigned_to")
		}
		filter.AssignedTo = id
	}
	if start, end := q.Get("start_date"), q.Get("end_date"); start != "" && end != "" {
		startDate, err := time.Parse(dateLayout, start)
		if err != nil {
			return filter, domain.InvalidValue("start_date")
		}
		// End of day so the range is inclusive of the end date.
		endDate, err := time.Parse(dateLayout, end)
		if err != nil {
			return filter, domain.InvalidValue("end_date")
		}
		endDate = endDate.Add(24*time.Hour - time.Nanosecond)
		filter.StartDate = &startDate
		filter.EndDate = &endDate
	}

	filter.PointsFrom = domain.TaskPoints(intQuery(q.Get("points_from")))
	filter.PointsTo = domain.TaskPoints(intQuery(q.Get("points_to")))
	filter.PriorityFrom = domain.PriorityLevel(intQuery(q.Get("priority_from")))
	filter.PriorityTo = domain.PriorityLevel(intQuery(q.Get("priority_to")))
	filter.Limit = intQuery(q.Get("limit"))
	filter.Page = intQuery(q.Get("page"))

	return filter, nil
}

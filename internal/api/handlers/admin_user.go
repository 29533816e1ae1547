package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"github.com/nedu/taskhub/internal/service"
)

// AdminUserHandler serves user administration and privilege grants.
type AdminUserHandler struct {
	userService      *service.UserService
	privilegeService *service.PrivilegeService
}

func NewAdminUserHandler(userService *service.UserService, privilegeService *service.PrivilegeService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService, privilegeService: privilegeService}
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.UserFilter{
		Status: domain.ItemStatus(q.Get("status")),
		Email:  q.Get("email"),
		Gender: domain.Gender(q.Get("gender")),
		Search: q.Get("search"),
		Limit:  intQuery(q.Get("limit")),
		Page:   intQuery(q.Get("page")),
	}

	users, err := h.userService.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateStatus flips a user between active and deactivated.
func (h *AdminUserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}
	status := domain.ItemStatus(chi.URLParam(r, "status"))

	user, err := h.userService.UpdateStatus(r.Context(), userID, status)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

type AssignPrivilegeRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *AdminUserHandler) AssignPrivilege(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	var req AssignPrivilegeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, domain.InvalidValue("user_id"))
		return
	}
	role := domain.Role(req.Role)
	if !role.IsValid() {
		respondError(w, domain.InvalidValue("role"))
		return
	}

	privilege, err := h.privilegeService.Assign(r.Context(), targetID, role, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, privilege)
}

func (h *AdminUserHandler) RevokePrivilege(w http.ResponseWriter, r *http.Request) {
	privilegeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, domain.InvalidValue("id"))
		return
	}

	if err := h.privilegeService.Revoke(r.Context(), privilegeID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminUserHandler) ListPrivileges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.PrivilegeFilter{
		Role:   domain.Role(q.Get("role")),
		Status: domain.ItemStatus(q.Get("status")),
		Limit:  intQuery(q.Get("limit")),
		Page:   intQuery(q.Get("page")),
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, domain.InvalidValue("user_id"))
			return
		}
		filter.UserID = id
	}

	privileges, err := h.privilegeService.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, privileges)
}

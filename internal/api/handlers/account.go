package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

type AccountHandler struct {
	passwordService *service.PasswordService
}

func NewAccountHandler(passwordService *service.PasswordService) *AccountHandler {
	return &AccountHandler{passwordService: passwordService}
}

type UpdatePasswordRequest struct {
	Password        string `json:"password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UpdatePasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UpdatePassword rotates the caller's credential. On success the old
// token is dead and the response carries its replacement.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	if req.Password == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		respondError(w, domain.BadRequest("password, new_password and confirm_password are required"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondError(w, domain.ErrPasswordMismatch)
		return
	}

	token, err := h.passwordService.RotatePassword(r.Context(), userID, req.Password, req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdatePasswordResponse{
		Message: "Password updated successfully",
		Token:   token,
	})
}

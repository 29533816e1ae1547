package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nedu/taskhub/internal/api/middleware"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type SignupRequest struct {
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" || req.NewPassword == "" {
		respondError(w, domain.BadRequest("first_name, last_name, email, phone and new_password are required"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondError(w, domain.ErrPasswordMismatch)
		return
	}
	gender := domain.Gender(req.Gender)
	if !gender.IsValid() {
		respondError(w, domain.InvalidValue("gender"))
		return
	}

	result, err := h.authService.Signup(r.Context(), service.SignupInput{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Gender:     gender,
		Password:   req.NewPassword,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{User: result.User, Token: result.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.BadRequest("Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, domain.BadRequest("email and password are required"))
		return
	}

	result, err := h.authService.LoginWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: result.User, Token: result.Token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, domain.ErrInvalidToken)
		return
	}

	if _, err := h.authService.Logout(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carddemo/internal/server/admin"
	"carddemo/internal/server/auth/models"
)

// AdminService is the slice of the user management domain the transport needs.
type AdminService interface {
	CreateUser(ctx context.Context, in admin.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, in admin.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type AdminHandler struct {
	admin AdminService
}

func NewAdminHandler(adminService AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

type userRequest struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	UserType  string `json:"userType"`
}

// userResponse never carries the password hash.
type userResponse struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
	CreatedAt string `json:"createdAt"`
	IsActive  bool   `json:"isActive"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		IsActive:  u.IsActive,
	}
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items})
}

func (h *AdminHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.admin.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AdminHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.admin.CreateUser(r.Context(), admin.UserInput{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		UserType:  req.UserType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *AdminHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.admin.UpdateUser(r.Context(), admin.UserInput{
		UserID:    chi.URLParam(r, "userID"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		UserType:  req.UserType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

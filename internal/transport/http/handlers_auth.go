package httptransport

import (
	"context"
	"net/http"
	"strings"

	"carddemo/internal/server/auth"
)

// AuthService is the slice of the auth domain the transport needs.
type AuthService interface {
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginOutput, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Validate(ctx context.Context, accessToken string) *auth.ValidateOutput
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	UserType     string `json:"userType"`
	ExpiresIn    int64  `json:"expiresIn"`
	Message      string `json:"message"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.auth.Login(r.Context(), auth.LoginInput{
		UserID:    req.UserID,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		UserID:       out.UserID,
		FullName:     out.FullName,
		UserType:     out.UserType,
		ExpiresIn:    out.ExpiresIn,
		Message:      "sign-on successful",
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed off"})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accessToken, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId,omitempty"`
}

func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token := req.Token
	if token == "" {
		token = bearerToken(r)
	}

	verdict := h.auth.Validate(r.Context(), token)
	writeJSON(w, http.StatusOK, validateResponse{Valid: verdict.Valid, UserID: verdict.UserID})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return ""
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/identity"
	"finhelp/internal/middleware"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	sessions *identity.Manager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *identity.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProviderRequest carries the federated identity token.
type ProviderRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Register handles user registration. Like the remote provider, a
// successful registration signs the user in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.sessions.SignUp(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusCreated)
}

// Login handles email/password sign-in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.sessions.SignInWithCredentials(c.Request.Context(), req.Email, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK)
}

// Provider handles federated sign-in with an external identity token.
func (h *AuthHandler) Provider(c *gin.Context) {
	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.sessions.SignInWithProvider(c.Request.Context(), req.IDToken); err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK)
}

// Logout clears the session. Always succeeds locally.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.SignOut()
	c.Status(http.StatusNoContent)
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	sess, err := requireSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": sess.Account})
}

// respondWithSession issues a token for the just-established session.
func (h *AuthHandler) respondWithSession(c *gin.Context, status int) {
	sess := h.sessions.Current()
	if !sess.Authenticated() {
		respondWithError(c, apperrors.ErrInternalServer)
		return
	}

	token, err := middleware.GenerateToken(sess.Account)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(status, gin.H{
		"token": token,
		"user":  sess.Account,
	})
}

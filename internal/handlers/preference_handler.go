package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/models"
	"finhelp/internal/prefs"
)

// PreferenceHandler serves the persisted theme preference. Unlike the rest
// of the API it is not auth-scoped: the preference is independent of identity.
type PreferenceHandler struct {
	prefs *prefs.Store
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(store *prefs.Store) *PreferenceHandler {
	return &PreferenceHandler{prefs: store}
}

// ThemeRequest represents the set-theme payload.
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,theme"`
}

// GetTheme returns the persisted theme.
func (h *PreferenceHandler) GetTheme(c *gin.Context) {
	theme, err := h.prefs.Theme()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme persists a theme.
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.prefs.SetTheme(models.Theme(req.Theme)); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

// ToggleTheme flips between light and dark.
func (h *PreferenceHandler) ToggleTheme(c *gin.Context) {
	theme, err := h.prefs.Toggle()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

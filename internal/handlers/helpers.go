package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/identity"
	"finhelp/internal/logger"
)

// getOwnerID extracts the authenticated owner ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getOwnerID(c *gin.Context) (string, error) {
	ownerID, exists := c.Get("ownerID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return ownerID.(string), nil
}

// requireSession checks that the bearer token's owner matches the live
// session. A stale token for a signed-out or replaced session is rejected.
func requireSession(c *gin.Context, sessions *identity.Manager) (identity.Session, error) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		return identity.Session{}, err
	}
	sess := sessions.Current()
	if !sess.Authenticated() || sess.OwnerID() != ownerID {
		return identity.Session{}, apperrors.ErrUnauthorized
	}
	return sess, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

package response

import (
	"errors"
	"net/http"

	"anoa.com/pengaduan/pkg/apperror"
	"anoa.com/pengaduan/pkg/dto"
	"anoa.com/pengaduan/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware.
const (
	ContextUserID  = "user_id"
	ContextTokenID = "token_id"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetTokenID retrieves the id of the bearer token used for this request.
func GetTokenID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(ContextTokenID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	tokenID, ok := v.(uuid.UUID)
	if !ok || tokenID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return tokenID, nil
}

// Success writes {status: true, message}.
func Success(c *gin.Context, code int, message string) {
	c.JSON(code, dto.MessageResponse{Status: true, Message: message})
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	body := gin.H{"status": false, "message": messageFor(code, err)}

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Fields
	}

	// Log internal errors
	if code >= http.StatusInternalServerError {
		logger.Get().Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(code, body)
}

func messageFor(code int, err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	switch code {
	case http.StatusUnauthorized:
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			return "Email/Username atau password salah."
		}
		return "Unauthenticated."
	case http.StatusNotFound:
		return "Data tidak ditemukan."
	case http.StatusTooManyRequests:
		return "Terlalu banyak percobaan. Silakan coba lagi nanti."
	case http.StatusBadRequest:
		return "Permintaan tidak valid."
	}

	if code >= http.StatusInternalServerError {
		if errors.Is(err, apperror.ErrStorage) {
			return "Gagal menyimpan file."
		}
		return "Terjadi kesalahan pada server."
	}

	return err.Error()
}

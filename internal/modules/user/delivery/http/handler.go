package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"anoa.com/pengaduan/internal/modules/user/dto"
	auth "anoa.com/pengaduan/internal/modules/user/service"
	"anoa.com/pengaduan/pkg/ratelimiter"
	"anoa.com/pengaduan/pkg/response"
	"anoa.com/pengaduan/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, validator.FromBindingError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", math.Ceil(rateLimitErr.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": false, "message": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, err := response.GetTokenID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), tokenID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logout berhasil.")
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{Status: true, Data: user})
}

package handler

import (
	"net/http"

	"anoa.com/pengaduan/internal/modules/registry/dto"
	registry "anoa.com/pengaduan/internal/modules/registry/service"
	"anoa.com/pengaduan/pkg/response"
	"anoa.com/pengaduan/pkg/validator"
	"github.com/gin-gonic/gin"
)

type RegistryHandler struct {
	service registry.RegistryService
}

func NewRegistryHandler(service registry.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

func (h *RegistryHandler) GetAllLokasi(c *gin.Context) {
	lokasi, err := h.service.GetAllLokasi(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lokasi)
}

func (h *RegistryHandler) GetAllItems(c *gin.Context) {
	var filter dto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.FromBindingError(err))
		return
	}

	items, err := h.service.GetAllItems(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

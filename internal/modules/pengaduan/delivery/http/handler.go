package handler

import (
	"net/http"
	"strconv"

	pengaduanDto "anoa.com/pengaduan/internal/modules/pengaduan/dto"
	pengaduan "anoa.com/pengaduan/internal/modules/pengaduan/service"
	"anoa.com/pengaduan/pkg/apperror"
	commonDto "anoa.com/pengaduan/pkg/dto"
	"anoa.com/pengaduan/pkg/response"
	"anoa.com/pengaduan/pkg/validator"
	"github.com/gin-gonic/gin"
)

type PengaduanHandler struct {
	service pengaduan.Service
}

func NewPengaduanHandler(service pengaduan.Service) *PengaduanHandler {
	return &PengaduanHandler{service: service}
}

func (h *PengaduanHandler) List(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *PengaduanHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req pengaduanDto.CreatePengaduanRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.FromBindingError(err))
		return
	}

	var foto *commonDto.UploadedFile
	if fileHeader, err := c.FormFile("foto"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			verr := apperror.NewValidationError()
			verr.Add("foto", "Foto gagal diunggah")
			response.ResponseError(c, verr)
			return
		}
		defer file.Close()

		foto = &commonDto.UploadedFile{
			Reader:      file,
			FileName:    fileHeader.Filename,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
		}
	} else if c.PostForm("foto") != "" {
		// a plain text field named foto is not a file
		verr := apperror.NewValidationError()
		verr.Add("foto", "Foto harus berupa gambar")
		response.ResponseError(c, verr)
		return
	}

	res, err := h.service.Create(c.Request.Context(), userID, req, foto)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PengaduanHandler) Show(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Show(c.Request.Context(), userID, parseID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PengaduanHandler) Destroy(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Destroy(c.Request.Context(), userID, parseID(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Pengaduan dihapus")
}

// parseID returns 0 for ids that are not positive integers; the service
// answers 0 with not found.
func parseID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

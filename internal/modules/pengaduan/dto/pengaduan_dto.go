package dto

import (
	"time"

	"anoa.com/pengaduan/internal/entity"
)

// CreatePengaduanRequest binds from multipart/form-data or JSON. An empty
// id_item in a form binds as 0 and is treated as absent.
type CreatePengaduanRequest struct {
	NamaPengaduan string `json:"nama_pengaduan" form:"nama_pengaduan" binding:"required,max=255"`
	Deskripsi     string `json:"deskripsi" form:"deskripsi" binding:"required"`
	IDLokasi      uint   `json:"id_lokasi" form:"id_lokasi" binding:"required"`
	IDItem        *uint  `json:"id_item" form:"id_item"`
}

type PengaduanResponse struct {
	ID            uint                   `json:"id_pengaduan"`
	NamaPengaduan string                 `json:"nama_pengaduan"`
	Deskripsi     string                 `json:"deskripsi"`
	Lokasi        string                 `json:"lokasi"`
	IDItem        *uint                  `json:"id_item"`
	Foto          *string                `json:"foto"`
	FotoURL       *string                `json:"foto_url"`
	IDUser        uint                   `json:"id_user"`
	Status        entity.PengaduanStatus `json:"status"`
	TglPengajuan  time.Time              `json:"tgl_pengajuan"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

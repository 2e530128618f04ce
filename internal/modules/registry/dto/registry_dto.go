package dto

type ItemFilter struct {
	IDLokasi *uint `form:"id_lokasi" binding:"omitempty,gt=0"`
}

type LokasiResponse struct {
	ID         uint   `json:"id_lokasi"`
	NamaLokasi string `json:"nama_lokasi"`
}

type ItemResponse struct {
	ID        uint    `json:"id_item"`
	NamaItem  string  `json:"nama_item"`
	Deskripsi *string `json:"deskripsi"`
	IDLokasi  *uint   `json:"id_lokasi"`
}

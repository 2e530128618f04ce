package entity

import "time"

type PengaduanStatus string

const (
	StatusDiajukan PengaduanStatus = "DIAJUKAN"
	StatusDiproses PengaduanStatus = "DIPROSES"
	StatusSelesai  PengaduanStatus = "SELESAI"
	StatusDitolak  PengaduanStatus = "DITOLAK"
)

// Pengaduan is a complaint. Lokasi holds the location name as it was when
// the complaint was submitted, not a reference to the lokasi table.
type Pengaduan struct {
	ID            uint            `gorm:"column:id_pengaduan;primaryKey" json:"id_pengaduan"`
	NamaPengaduan string          `gorm:"column:nama_pengaduan;size:255;not null" json:"nama_pengaduan"`
	Deskripsi     string          `gorm:"column:deskripsi;type:text;not null" json:"deskripsi"`
	Lokasi        string          `gorm:"column:lokasi;size:100;not null" json:"lokasi"`
	IDItem        *uint           `gorm:"column:id_item" json:"id_item"`
	Item          *Item           `gorm:"foreignKey:IDItem;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Foto          *string         `gorm:"column:foto;type:text" json:"foto"`
	IDUser        uint            `gorm:"column:id_user;index:idx_pengaduan_owner_date,priority:1;not null" json:"id_user"`
	User          *User           `gorm:"foreignKey:IDUser;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status        PengaduanStatus `gorm:"column:status;size:20;not null" json:"status"`
	TglPengajuan  time.Time       `gorm:"column:tgl_pengajuan;index:idx_pengaduan_owner_date,priority:2;not null" json:"tgl_pengajuan"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Pengaduan) TableName() string { return "pengaduan" }

package entity

import "time"

type Lokasi struct {
	ID         uint      `gorm:"column:id_lokasi;primaryKey" json:"id_lokasi"`
	NamaLokasi string    `gorm:"column:nama_lokasi;size:100;not null" json:"nama_lokasi"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lokasi) TableName() string { return "lokasi" }

type Item struct {
	ID        uint      `gorm:"column:id_item;primaryKey" json:"id_item"`
	NamaItem  string    `gorm:"column:nama_item;size:100;not null" json:"nama_item"`
	Deskripsi *string   `gorm:"column:deskripsi;type:text" json:"deskripsi"`
	IDLokasi  *uint     `gorm:"column:id_lokasi;index" json:"id_lokasi"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string { return "items" }

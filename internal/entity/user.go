package entity

import (
	"time"
)

const (
	RoleAdmin    = "admin"
	RolePetugas  = "petugas"
	RolePengguna = "pengguna"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	NamaPengguna string    `gorm:"column:nama_pengguna;size:100;not null" json:"nama_pengguna"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:pengguna" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

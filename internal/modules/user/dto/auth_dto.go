package dto

import "anoa.com/pengaduan/internal/entity"

// LoginInput accepts either an email or a username in Email.
type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UserSummary is the redacted user returned on login.
type UserSummary struct {
	ID           uint   `json:"id"`
	NamaPengguna string `json:"nama_pengguna"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

type LoginResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
	Token   string      `json:"token"`
}

type MeResponse struct {
	Status bool         `json:"status"`
	Data   *entity.User `json:"data"`
}

func NewUserSummary(u *entity.User) UserSummary {
	return UserSummary{
		ID:           u.ID,
		NamaPengguna: u.NamaPengguna,
		Email:        u.Email,
		Username:     u.Username,
		Role:         u.Role,
	}
}

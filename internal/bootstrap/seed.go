package bootstrap

import (
	"fmt"

	"anoa.com/pengaduan/internal/entity"
	"anoa.com/pengaduan/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.AuthToken{},
		&entity.Lokasi{},
		&entity.Item{},
		&entity.Pengaduan{},
	)
}

type seedUser struct {
	nama     string
	email    string
	username string
	password string
	role     string
}

var devUsers = []seedUser{
	{"Administrator", "admin@pengaduan.test", "admin", "admin123", entity.RoleAdmin},
	{"Petugas Sarpras", "petugas@pengaduan.test", "petugas", "petugas123", entity.RolePetugas},
	{"Pengguna Demo", "pengguna@pengaduan.test", "pengguna", "pengguna123", entity.RolePengguna},
}

var devLokasi = map[string][]string{
	"Lobby":         {"Lampu", "Pintu Kaca"},
	"Ruang Kelas A": {"Proyektor", "AC"},
	"Toilet Lt. 1":  {"Wastafel"},
}

// SeedUsers creates the development accounts. Existing emails are skipped.
func SeedUsers(db *gorm.DB) error {
	log := logger.Named("seed")

	for _, u := range devUsers {
		var count int64
		if err := db.Model(&entity.User{}).
			Where("email = ?", u.email).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := entity.User{
			NamaPengguna: u.nama,
			Email:        u.email,
			Username:     u.username,
			PasswordHash: string(hashed),
			Role:         u.role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}

		log.Info("user seeded", zap.String("username", u.username), zap.String("role", u.role))
	}

	return nil
}

// SeedRegistry fills lokasi and items when the lokasi table is empty.
func SeedRegistry(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Lokasi{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for nama, items := range devLokasi {
			lokasi := entity.Lokasi{NamaLokasi: nama}
			if err := tx.Create(&lokasi).Error; err != nil {
				return err
			}

			for _, namaItem := range items {
				item := entity.Item{NamaItem: namaItem, IDLokasi: &lokasi.ID}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}

		logger.Named("seed").Info("registry seeded", zap.Int("lokasi", len(devLokasi)))
		return nil
	})
}

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"anoa.com/pengaduan/internal/bootstrap"
	"anoa.com/pengaduan/internal/entity"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pengaduan.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, bootstrap.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose password is password.
func CreateUser(t *testing.T, db *gorm.DB, username, email, password string) *entity.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		NamaPengguna: username,
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
		Role:         entity.RolePengguna,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateLokasi(t *testing.T, db *gorm.DB, nama string) *entity.Lokasi {
	t.Helper()

	lokasi := &entity.Lokasi{NamaLokasi: nama}
	require.NoError(t, db.Create(lokasi).Error)
	return lokasi
}

func CreateItem(t *testing.T, db *gorm.DB, nama string, lokasiID *uint) *entity.Item {
	t.Helper()

	item := &entity.Item{NamaItem: nama, IDLokasi: lokasiID}
	require.NoError(t, db.Create(item).Error)
	return item
}

// PNG is a minimal image that http.DetectContentType reports as image/png.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

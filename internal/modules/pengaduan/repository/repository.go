package repository

import (
	"context"

	"anoa.com/pengaduan/internal/entity"
	"gorm.io/gorm"
)

// PengaduanRepository only exposes owner-scoped reads and deletes.
type PengaduanRepository interface {
	Create(ctx context.Context, pengaduan *entity.Pengaduan) error
	FindOwnedByID(ctx context.Context, id, userID uint) (*entity.Pengaduan, error)
	ListOwnedOrderedByDate(ctx context.Context, userID uint) ([]*entity.Pengaduan, error)
	DeleteOwned(ctx context.Context, id, userID uint) (int64, error)
}

type pengaduanRepository struct {
	db *gorm.DB
}

func NewPengaduanRepository(db *gorm.DB) PengaduanRepository {
	return &pengaduanRepository{db: db}
}

func (r *pengaduanRepository) Create(ctx context.Context, pengaduan *entity.Pengaduan) error {
	return r.db.WithContext(ctx).Create(pengaduan).Error
}

func (r *pengaduanRepository) FindOwnedByID(ctx context.Context, id, userID uint) (*entity.Pengaduan, error) {
	var pengaduan entity.Pengaduan
	if err := r.db.WithContext(ctx).
		Where("id_pengaduan = ? AND id_user = ?", id, userID).
		First(&pengaduan).Error; err != nil {
		return nil, err
	}
	return &pengaduan, nil
}

func (r *pengaduanRepository) ListOwnedOrderedByDate(ctx context.Context, userID uint) ([]*entity.Pengaduan, error) {
	var list []*entity.Pengaduan
	if err := r.db.WithContext(ctx).
		Where("id_user = ?", userID).
		Order("tgl_pengajuan DESC").
		Order("id_pengaduan DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pengaduanRepository) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id_pengaduan = ? AND id_user = ?", id, userID).
		Delete(&entity.Pengaduan{})
	return res.RowsAffected, res.Error
}

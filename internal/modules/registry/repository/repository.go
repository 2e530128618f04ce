package repository

import (
	"context"

	"anoa.com/pengaduan/internal/entity"
	"gorm.io/gorm"
)

// RegistryRepository reads the lokasi and items lookup tables.
type RegistryRepository interface {
	FindLokasiByID(ctx context.Context, id uint) (*entity.Lokasi, error)
	FindItemByID(ctx context.Context, id uint) (*entity.Item, error)
	FindAllLokasi(ctx context.Context) ([]*entity.Lokasi, error)
	FindAllItems(ctx context.Context, lokasiID *uint) ([]*entity.Item, error)
}

type registryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) RegistryRepository {
	return &registryRepository{db: db}
}

func (r *registryRepository) FindLokasiByID(ctx context.Context, id uint) (*entity.Lokasi, error) {
	var lokasi entity.Lokasi
	if err := r.db.WithContext(ctx).First(&lokasi, "id_lokasi = ?", id).Error; err != nil {
		return nil, err
	}
	return &lokasi, nil
}

func (r *registryRepository) FindItemByID(ctx context.Context, id uint) (*entity.Item, error) {
	var item entity.Item
	if err := r.db.WithContext(ctx).First(&item, "id_item = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *registryRepository) FindAllLokasi(ctx context.Context) ([]*entity.Lokasi, error) {
	var lokasi []*entity.Lokasi
	if err := r.db.WithContext(ctx).Order("nama_lokasi ASC").Find(&lokasi).Error; err != nil {
		return nil, err
	}
	return lokasi, nil
}

func (r *registryRepository) FindAllItems(ctx context.Context, lokasiID *uint) ([]*entity.Item, error) {
	var items []*entity.Item
	query := r.db.WithContext(ctx)

	if lokasiID != nil {
		query = query.Where("id_lokasi = ?", *lokasiID)
	}

	if err := query.Order("nama_item ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

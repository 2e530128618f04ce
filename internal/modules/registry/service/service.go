package registry

import (
	"context"

	"anoa.com/pengaduan/internal/modules/registry/dto"
	"anoa.com/pengaduan/internal/modules/registry/repository"
)

type RegistryService interface {
	GetAllLokasi(ctx context.Context) ([]dto.LokasiResponse, error)
	GetAllItems(ctx context.Context, filter dto.ItemFilter) ([]dto.ItemResponse, error)
}

type registryService struct {
	repo repository.RegistryRepository
}

func NewRegistryService(repo repository.RegistryRepository) RegistryService {
	return &registryService{repo: repo}
}

func (s *registryService) GetAllLokasi(ctx context.Context) ([]dto.LokasiResponse, error) {
	lokasi, err := s.repo.FindAllLokasi(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]dto.LokasiResponse, 0, len(lokasi))
	for _, l := range lokasi {
		res = append(res, dto.LokasiResponse{
			ID:         l.ID,
			NamaLokasi: l.NamaLokasi,
		})
	}
	return res, nil
}

func (s *registryService) GetAllItems(ctx context.Context, filter dto.ItemFilter) ([]dto.ItemResponse, error) {
	items, err := s.repo.FindAllItems(ctx, filter.IDLokasi)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.ItemResponse{
			ID:        it.ID,
			NamaItem:  it.NamaItem,
			Deskripsi: it.Deskripsi,
			IDLokasi:  it.IDLokasi,
		})
	}
	return res, nil
}

package pengaduan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/pengaduan/internal/entity"
	pengaduanDto "anoa.com/pengaduan/internal/modules/pengaduan/dto"
	repo "anoa.com/pengaduan/internal/modules/pengaduan/repository"
	registryRepo "anoa.com/pengaduan/internal/modules/registry/repository"
	"anoa.com/pengaduan/pkg/apperror"
	commonDto "anoa.com/pengaduan/pkg/dto"
	"anoa.com/pengaduan/pkg/logger"
	"anoa.com/pengaduan/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	photoFolder = "pengaduan"

	// DefaultMaxPhotoSize mirrors the 2048 KB upload limit.
	DefaultMaxPhotoSize int64 = 2048 * 1024

	// maxNamaLength matches the nama_pengaduan column size.
	maxNamaLength = 255
)

// allowedPhotoTypes maps sniffed content types to the stored extension.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

var (
	errPengaduanNotFound = apperror.New(http.StatusNotFound, "Pengaduan tidak ditemukan.", apperror.ErrNotFound)
	errLokasiNotFound    = apperror.New(http.StatusNotFound, "Lokasi tidak ditemukan.", apperror.ErrNotFound)
	errItemNotFound      = apperror.New(http.StatusNotFound, "Item tidak ditemukan.", apperror.ErrNotFound)
)

type Service interface {
	List(ctx context.Context, userID uint) ([]pengaduanDto.PengaduanResponse, error)
	Create(ctx context.Context, userID uint, req pengaduanDto.CreatePengaduanRequest, foto *commonDto.UploadedFile) (*pengaduanDto.PengaduanResponse, error)
	Show(ctx context.Context, userID, id uint) (*pengaduanDto.PengaduanResponse, error)
	Destroy(ctx context.Context, userID, id uint) error
}

type service struct {
	repo         repo.PengaduanRepository
	registryRepo registryRepo.RegistryRepository
	fileStorage  storage.ImageStorage
	maxPhotoSize int64
	now          func() time.Time
	log          *zap.Logger
}

func NewService(repo repo.PengaduanRepository, registryRepo registryRepo.RegistryRepository, fileStorage storage.ImageStorage, maxPhotoSize int64) Service {
	if maxPhotoSize <= 0 {
		maxPhotoSize = DefaultMaxPhotoSize
	}

	return &service{
		repo:         repo,
		registryRepo: registryRepo,
		fileStorage:  fileStorage,
		maxPhotoSize: maxPhotoSize,
		now:          time.Now,
		log:          logger.Named("pengaduan"),
	}
}

func (s *service) List(ctx context.Context, userID uint) ([]pengaduanDto.PengaduanResponse, error) {
	list, err := s.repo.ListOwnedOrderedByDate(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]pengaduanDto.PengaduanResponse, 0, len(list))
	for _, p := range list {
		res = append(res, s.buildResponse(p))
	}
	return res, nil
}

func (s *service) Create(ctx context.Context, userID uint, req pengaduanDto.CreatePengaduanRequest, foto *commonDto.UploadedFile) (*pengaduanDto.PengaduanResponse, error) {
	// 1. Field validation, nothing touched yet. Text is stored as submitted.
	nama := strings.TrimSpace(req.NamaPengaduan)
	deskripsi := strings.TrimSpace(req.Deskripsi)

	verr := apperror.NewValidationError()
	switch {
	case nama == "":
		verr.Add("nama_pengaduan", "Nama pengaduan wajib diisi")
	case utf8.RuneCountInString(nama) > maxNamaLength:
		verr.Add("nama_pengaduan", fmt.Sprintf("Nama pengaduan maksimal %d karakter", maxNamaLength))
	}
	if deskripsi == "" {
		verr.Add("deskripsi", "Deskripsi wajib diisi")
	}
	if req.IDLokasi == 0 {
		verr.Add("id_lokasi", "Lokasi wajib diisi")
	}

	var photo []byte
	var photoExt string
	if foto != nil {
		var msg string
		photo, photoExt, msg = s.readPhoto(foto)
		if msg != "" {
			verr.Add("foto", msg)
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	// 2. Registry lookups
	lokasi, err := s.registryRepo.FindLokasiByID(ctx, req.IDLokasi)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLokasiNotFound
		}
		return nil, err
	}

	var itemID *uint
	if req.IDItem != nil && *req.IDItem != 0 {
		item, err := s.registryRepo.FindItemByID(ctx, *req.IDItem)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errItemNotFound
			}
			return nil, err
		}
		itemID = &item.ID
	}

	// 3. Photo upload
	var fotoPath *string
	if photo != nil {
		path, err := s.fileStorage.UploadImage(ctx, bytes.NewReader(photo), photoFolder, "foto"+photoExt)
		if err != nil {
			return nil, apperror.New(http.StatusInternalServerError, "Gagal menyimpan foto.",
				fmt.Errorf("upload foto: %w: %w", apperror.ErrStorage, err))
		}
		fotoPath = &path
	}

	// 4. Insert, removing the blob again if the row cannot be written
	pengaduan := &entity.Pengaduan{
		NamaPengaduan: nama,
		Deskripsi:     deskripsi,
		Lokasi:        lokasi.NamaLokasi,
		IDItem:        itemID,
		Foto:          fotoPath,
		IDUser:        userID,
		Status:        entity.StatusDiajukan,
		TglPengajuan:  s.now(),
	}

	if err := s.repo.Create(ctx, pengaduan); err != nil {
		if fotoPath != nil {
			if delErr := s.fileStorage.DeleteImage(context.WithoutCancel(ctx), *fotoPath); delErr != nil {
				s.log.Error("failed to remove photo after insert failure",
					zap.String("foto", *fotoPath),
					zap.Error(delErr),
				)
			}
		}
		return nil, fmt.Errorf("failed to create pengaduan: %w", err)
	}

	resp := s.buildResponse(pengaduan)
	return &resp, nil
}

func (s *service) Show(ctx context.Context, userID, id uint) (*pengaduanDto.PengaduanResponse, error) {
	pengaduan, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resp := s.buildResponse(pengaduan)
	return &resp, nil
}

// Destroy removes the row, then the photo. A failed photo delete only leaves
// an orphan blob and is logged; a row never points at a deleted file.
func (s *service) Destroy(ctx context.Context, userID, id uint) error {
	pengaduan, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.DeleteOwned(ctx, pengaduan.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete pengaduan: %w", err)
	}
	if affected == 0 {
		return errPengaduanNotFound
	}

	if pengaduan.Foto != nil && *pengaduan.Foto != "" {
		if err := s.fileStorage.DeleteImage(context.WithoutCancel(ctx), *pengaduan.Foto); err != nil {
			s.log.Warn("failed to delete pengaduan photo after record delete",
				zap.Uint("id_pengaduan", pengaduan.ID),
				zap.String("foto", *pengaduan.Foto),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *service) findOwned(ctx context.Context, userID, id uint) (*entity.Pengaduan, error) {
	if id == 0 {
		return nil, errPengaduanNotFound
	}

	pengaduan, err := s.repo.FindOwnedByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPengaduanNotFound
		}
		return nil, err
	}
	return pengaduan, nil
}

// readPhoto buffers the upload and checks size and sniffed type. It returns
// a user-facing message when the photo is rejected.
func (s *service) readPhoto(foto *commonDto.UploadedFile) ([]byte, string, string) {
	sizeMsg := fmt.Sprintf("Foto maksimal %d kilobyte", s.maxPhotoSize/1024)

	if foto.Size > s.maxPhotoSize {
		return nil, "", sizeMsg
	}

	data, err := io.ReadAll(io.LimitReader(foto.Reader, s.maxPhotoSize+1))
	if err != nil {
		return nil, "", "Foto gagal diunggah"
	}
	if int64(len(data)) > s.maxPhotoSize {
		return nil, "", sizeMsg
	}
	if len(data) == 0 {
		return nil, "", "Foto harus berupa gambar"
	}

	ext, ok := allowedPhotoTypes[http.DetectContentType(data)]
	if !ok {
		return nil, "", "Foto harus berupa gambar"
	}
	return data, ext, ""
}

func (s *service) buildResponse(p *entity.Pengaduan) pengaduanDto.PengaduanResponse {
	resp := pengaduanDto.PengaduanResponse{
		ID:            p.ID,
		NamaPengaduan: p.NamaPengaduan,
		Deskripsi:     p.Deskripsi,
		Lokasi:        p.Lokasi,
		IDItem:        p.IDItem,
		Foto:          p.Foto,
		IDUser:        p.IDUser,
		Status:        p.Status,
		TglPengajuan:  p.TglPengajuan,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if p.Foto != nil && *p.Foto != "" && s.fileStorage != nil {
		url := s.fileStorage.URL(*p.Foto)
		resp.FotoURL = &url
	}
	return resp
}

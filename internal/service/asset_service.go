package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/apperrors"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/repository"
)

// AssetService manages asset master data. It also serves as the engine's
// asset lookup during a run.
type AssetService struct {
	repo *repository.AssetRepository
}

func NewAssetService(repo *repository.AssetRepository) *AssetService {
	return &AssetService{repo: repo}
}

func (s *AssetService) CreateAsset(asset model.Asset) (model.Asset, error) {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	if asset.Name == "" {
		return model.Asset{}, fmt.Errorf("%w: name", apperrors.ErrMissingRequiredField)
	}
	if err := s.repo.Create(asset); err != nil {
		return model.Asset{}, err
	}
	return asset, nil
}

func (s *AssetService) UpdateAsset(asset model.Asset) error {
	return s.repo.Update(asset)
}

func (s *AssetService) DeleteAsset(id string) error {
	return s.repo.Delete(id)
}

// GetAsset implements the engine's asset lookup.
func (s *AssetService) GetAsset(id string) (model.Asset, error) {
	return s.repo.GetByID(id)
}

// ListAssets implements the engine's asset lookup.
func (s *AssetService) ListAssets() ([]model.Asset, error) {
	assets, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveAssets, err)
	}
	return assets, nil
}

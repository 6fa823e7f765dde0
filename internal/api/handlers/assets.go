package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/api/response"
	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/service"
	"github.com/mvdbosch/kapgains/internal/validation"
)

// AssetHandler handles asset-related HTTP requests
type AssetHandler struct {
	assetService *service.AssetService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(assetService *service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// List returns all assets.
//
// Endpoint: GET /api/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assetService.ListAssets()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

// Get returns one asset by ID.
//
// Endpoint: GET /api/assets/{uuid}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetService.GetAsset(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// Create stores a new asset.
//
// Endpoint: POST /api/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateCreateAsset(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.assetService.CreateAsset(assetFromRequest(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

// Update replaces an asset's master data.
//
// Endpoint: PUT /api/assets/{uuid}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	existing, err := h.assetService.GetAsset(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req request.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := applyAssetUpdate(existing, req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	if err := h.assetService.UpdateAsset(updated); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes an asset and its events.
//
// Endpoint: DELETE /api/assets/{uuid}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assetService.DeleteAsset(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func assetFromRequest(req request.CreateAssetRequest) model.Asset {
	// Values are already validated; parse errors cannot occur here.
	asset := model.Asset{
		Name:                 req.Name,
		Isin:                 req.Isin,
		Symbol:               req.Symbol,
		Category:             model.AssetCategory(req.Category),
		FundSubtype:          model.FundSubtype(req.FundSubtype),
		SOYCostBasisCurrency: req.SOYCostBasisCurrency,
		Multiplier:           parseOrZero(req.Multiplier),
		SOYQuantity:          parseOrZero(req.SOYQuantity),
		SOYCostBasis:         parseOrZero(req.SOYCostBasis),
		EOYQuantity:          parseOrZero(req.EOYQuantity),
	}
	return asset
}

func applyAssetUpdate(asset model.Asset, req request.UpdateAssetRequest) (model.Asset, error) {
	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Isin != nil {
		asset.Isin = *req.Isin
	}
	if req.Symbol != nil {
		asset.Symbol = *req.Symbol
	}
	if req.Category != nil {
		category, err := model.ParseAssetCategory(*req.Category)
		if err != nil {
			return model.Asset{}, err
		}
		asset.Category = category
	}
	if req.FundSubtype != nil {
		asset.FundSubtype = model.FundSubtype(*req.FundSubtype)
	}
	if req.SOYCostBasisCurrency != nil {
		asset.SOYCostBasisCurrency = *req.SOYCostBasisCurrency
	}

	decimals := []struct {
		dst *decimal.Decimal
		src *string
	}{
		{&asset.Multiplier, req.Multiplier},
		{&asset.SOYQuantity, req.SOYQuantity},
		{&asset.SOYCostBasis, req.SOYCostBasis},
		{&asset.EOYQuantity, req.EOYQuantity},
	}
	for _, d := range decimals {
		if d.src == nil {
			continue
		}
		v, err := decimal.NewFromString(*d.src)
		if err != nil {
			return model.Asset{}, err
		}
		*d.dst = v
	}
	return asset, nil
}

func parseOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

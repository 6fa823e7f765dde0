package validation

import (
	"fmt"
	"strings"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/model"
)

// ValidateCreateAsset validates an asset creation request.
//
// Required fields:
//   - name: Must be non-empty
//   - category: Must be a known asset category
//
// Optional fields are validated for format when present; fundSubtype is
// only meaningful for fund-category assets.
func ValidateCreateAsset(req request.CreateAssetRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	category, err := model.ParseAssetCategory(req.Category)
	if err != nil {
		errors["category"] = err.Error()
	}

	if req.FundSubtype != "" {
		if category != model.CategoryFund {
			errors["fundSubtype"] = "fundSubtype is only valid for fund assets"
		} else if !validFundSubtype(req.FundSubtype) {
			errors["fundSubtype"] = fmt.Sprintf("unknown fund subtype: %s", req.FundSubtype)
		}
	}

	checkDecimal(errors, "multiplier", req.Multiplier)
	checkDecimal(errors, "soyQuantity", req.SOYQuantity)
	checkDecimal(errors, "soyCostBasis", req.SOYCostBasis)
	checkDecimal(errors, "eoyQuantity", req.EOYQuantity)

	if req.SOYCostBasisCurrency != "" && len(req.SOYCostBasisCurrency) != 3 {
		errors["soyCostBasisCurrency"] = "currency must be a 3-letter code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validFundSubtype(s string) bool {
	switch model.FundSubtype(s) {
	case model.FundEquity, model.FundMixed, model.FundDomesticRealEstate,
		model.FundForeignRealEstate, model.FundOther:
		return true
	}
	return false
}

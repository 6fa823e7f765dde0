package request

type CreateAssetRequest struct {
	Name                 string `json:"name"`
	Isin                 string `json:"isin,omitempty"`
	Symbol               string `json:"symbol,omitempty"`
	Category             string `json:"category"`
	Multiplier           string `json:"multiplier,omitempty"`
	FundSubtype          string `json:"fundSubtype,omitempty"`
	SOYQuantity          string `json:"soyQuantity,omitempty"`
	SOYCostBasis         string `json:"soyCostBasis,omitempty"`
	SOYCostBasisCurrency string `json:"soyCostBasisCurrency,omitempty"`
	EOYQuantity          string `json:"eoyQuantity,omitempty"`
}

type UpdateAssetRequest struct {
	Name                 *string `json:"name,omitempty"`
	Isin                 *string `json:"isin,omitempty"`
	Symbol               *string `json:"symbol,omitempty"`
	Category             *string `json:"category,omitempty"`
	Multiplier           *string `json:"multiplier,omitempty"`
	FundSubtype          *string `json:"fundSubtype,omitempty"`
	SOYQuantity          *string `json:"soyQuantity,omitempty"`
	SOYCostBasis         *string `json:"soyCostBasis,omitempty"`
	SOYCostBasisCurrency *string `json:"soyCostBasisCurrency,omitempty"`
	EOYQuantity          *string `json:"eoyQuantity,omitempty"`
}

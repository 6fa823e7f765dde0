package request

type RunTaxYearRequest struct {
	Year int `json:"year"`
}

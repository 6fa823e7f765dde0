package request

type BackfillRatesRequest struct {
	Currencies []string `json:"currencies"`
	From       string   `json:"from"`
	To         string   `json:"to"`
}

package request

type CreateEventRequest struct {
	TransactionID string `json:"transactionId,omitempty"`
	AssetID       string `json:"assetId,omitempty"`
	Date          string `json:"date"`
	Kind          string `json:"kind"`
	Side          string `json:"side,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	UnitPrice     string `json:"unitPrice,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Fees          string `json:"fees,omitempty"`
	Ratio         string `json:"ratio,omitempty"`
	CashPerShare  string `json:"cashPerShare,omitempty"`
	Description   string `json:"description,omitempty"`
}

type ImportEventsRequest struct {
	Events []CreateEventRequest `json:"events"`
}

package validation

import (
	"strings"

	"github.com/mvdbosch/kapgains/internal/api/request"
	"github.com/mvdbosch/kapgains/internal/model"
)

// ValidateCreateEvent validates an event creation request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - kind: Must be a known event kind
//
// Trades additionally require a side and a transaction ID; ledger-bound
// kinds require an asset ID.
func ValidateCreateEvent(req request.CreateEventRequest) error {
	errors := make(map[string]string)

	checkDate(errors, "date", req.Date, true)

	kind, err := model.ParseEventKind(req.Kind)
	if err != nil {
		errors["kind"] = err.Error()
	}

	if kind == model.KindTrade {
		if _, err := model.ParseTradeSide(req.Side); err != nil || req.Side == "" {
			errors["side"] = "trade requires a side: buy, sell, short or cover"
		}
		if strings.TrimSpace(req.TransactionID) == "" {
			errors["transactionId"] = "trade requires a broker transaction ID"
		}
	}

	if kind != "" && !kind.LedgerLess() && strings.TrimSpace(req.AssetID) == "" {
		errors["assetId"] = "assetId is required for this event kind"
	}
	if req.AssetID != "" {
		if err := ValidateUUID(req.AssetID); err != nil {
			errors["assetId"] = err.Error()
		}
	}

	checkDecimal(errors, "quantity", req.Quantity)
	checkDecimal(errors, "unitPrice", req.UnitPrice)
	checkDecimal(errors, "amount", req.Amount)
	checkDecimal(errors, "fees", req.Fees)
	checkDecimal(errors, "ratio", req.Ratio)
	checkDecimal(errors, "cashPerShare", req.CashPerShare)

	if req.Currency != "" && len(req.Currency) != 3 {
		errors["currency"] = "currency must be a 3-letter code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a single long acquisition retaining its original date, quantity and
// cost. Lots are consumed oldest-first on disposal; the (date, source
// transaction ID) pair is the stable FIFO consumption order.
type Lot struct {
	AcquisitionDate time.Time
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	SourceTxID      string
}

// ShortLot is a single short opening retaining its original date, quantity
// and sale proceeds, consumed oldest-first when the short is covered.
type ShortLot struct {
	OpenDate      time.Time
	Quantity      decimal.Decimal
	UnitProceeds  decimal.Decimal
	TotalProceeds decimal.Decimal
	SourceTxID    string
}

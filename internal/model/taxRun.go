package model

import "time"

// TaxRun records one execution of the calculation engine for a tax year.
type TaxRun struct {
	ID            string    `json:"id"`
	Year          int       `json:"year"`
	RanAt         time.Time `json:"ranAt"`
	EventCount    int       `json:"eventCount"`
	RecordCount   int       `json:"recordCount"`
	MismatchCount int       `json:"mismatchCount"`
}

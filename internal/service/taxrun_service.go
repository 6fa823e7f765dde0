package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvdbosch/kapgains/internal/model"
	"github.com/mvdbosch/kapgains/internal/numeric"
	"github.com/mvdbosch/kapgains/internal/offset"
	"github.com/mvdbosch/kapgains/internal/repository"
	"github.com/mvdbosch/kapgains/internal/taxyear"
)

// TaxRunService executes the calculation engine for a tax year and
// persists the outcome.
type TaxRunService struct {
	runs    *repository.TaxRunRepository
	assets  *AssetService
	events  *EventService
	fx      *FxRateService
	numeric numeric.Context
	offset  offset.Config
}

func NewTaxRunService(
	runs *repository.TaxRunRepository,
	assets *AssetService,
	events *EventService,
	fx *FxRateService,
	numericCtx numeric.Context,
	offsetCfg offset.Config,
) *TaxRunService {
	return &TaxRunService{
		runs:    runs,
		assets:  assets,
		events:  events,
		fx:      fx,
		numeric: numericCtx,
		offset:  offsetCfg,
	}
}

// TaxReport bundles everything a run produced.
type TaxReport struct {
	Run     model.TaxRun             `json:"run"`
	Offset  model.OffsetResult       `json:"offset"`
	Records []model.RealizedGainLoss `json:"records"`
}

// RunTaxYear loads all events up to year end, runs the engine, aggregates
// the offsetting result and stores everything as one run.
func (s *TaxRunService) RunTaxYear(year int) (TaxReport, error) {
	events, err := s.events.ListEventsUpTo(year)
	if err != nil {
		return TaxReport{}, err
	}

	orc := taxyear.New(taxyear.Config{Year: year, Numeric: s.numeric}, s.assets, s.fx)
	result, err := orc.Run(events)
	if err != nil {
		return TaxReport{}, fmt.Errorf("tax year %d: %w", year, err)
	}

	offsetResult := offset.Aggregate(result.Records, result.Income, result.Distributions, result.Vorab, s.offset)

	run := model.TaxRun{
		ID:            uuid.New().String(),
		Year:          year,
		RanAt:         time.Now().UTC(),
		EventCount:    len(result.Processed),
		RecordCount:   len(result.Records),
		MismatchCount: result.MismatchCount,
	}
	for i := range result.Records {
		result.Records[i].RunID = run.ID
	}

	if err := s.runs.SaveRun(run, result.Records, offsetResult); err != nil {
		return TaxReport{}, err
	}
	return TaxReport{Run: run, Offset: offsetResult, Records: result.Records}, nil
}

func (s *TaxRunService) GetRun(id string) (model.TaxRun, error) {
	return s.runs.GetRun(id)
}

func (s *TaxRunService) ListRuns() ([]model.TaxRun, error) {
	return s.runs.ListRuns()
}

// GetReport reassembles the stored report of a past run.
func (s *TaxRunService) GetReport(id string) (TaxReport, error) {
	run, err := s.runs.GetRun(id)
	if err != nil {
		return TaxReport{}, err
	}
	offsetResult, err := s.runs.GetOffsetResult(id)
	if err != nil {
		return TaxReport{}, err
	}
	records, err := s.runs.GetRecords(id)
	if err != nil {
		return TaxReport{}, err
	}
	return TaxReport{Run: run, Offset: offsetResult, Records: records}, nil
}

func (s *TaxRunService) DeleteRun(id string) error {
	return s.runs.DeleteRun(id)
}

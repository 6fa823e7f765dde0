package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAssetNotFound indicates that an asset with the given ID does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEventNotFound indicates that an event with the given ID does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrTaxRunNotFound indicates that a tax run with the given ID does not exist.
	ErrTaxRunNotFound = errors.New("tax run not found")

	// ErrExchangeRateNotFound indicates no record for a specific currency and date combination.
	ErrExchangeRateNotFound = errors.New("exchange rate for currency/date not found")

	// ErrBrokerConfigNotFound indicates the broker connection has not been set up.
	ErrBrokerConfigNotFound = errors.New("broker configuration not found")
)

// Engine errors represent failure conditions raised by the calculation engine.
var (
	// ErrInsufficientLots indicates that a disposal or cover event needs more
	// quantity than the ledger holds. Fatal during live-year dispatch; during
	// historical replay the orchestrator treats it as the signal to fall back
	// to synthetic start-of-year seeding.
	ErrInsufficientLots = errors.New("insufficient lots for consumption")

	// ErrUnclassifiedEvent indicates that an event kind has no registered
	// processor. The run continues; the event is logged and skipped.
	ErrUnclassifiedEvent = errors.New("event kind has no processor")

	// ErrMissingLedger indicates a ledger-bound event arrived for an asset
	// that was never seeded.
	ErrMissingLedger = errors.New("no ledger exists for asset")

	// ErrUnresolvableAsset indicates an event references an asset the lookup
	// cannot resolve. Deterministic ordering is impossible, so this is fatal.
	ErrUnresolvableAsset = errors.New("event references unresolvable asset")

	// ErrInvalidTaxYear indicates the tax-year boundary dates could not be
	// derived. Fatal at partition time.
	ErrInvalidTaxYear = errors.New("invalid tax year boundary")

	// ErrSeedingFailed indicates start-of-year ledger seeding failed for an
	// asset. Fatal for the whole run, since FIFO order depends on it.
	ErrSeedingFailed = errors.New("failed to seed ledger")

	// ErrInvalidSplitRatio indicates a split event carried a zero or negative ratio.
	ErrInvalidSplitRatio = errors.New("split ratio must be positive")

	// ErrMissingTransactionID indicates a lot-creating trade carried no broker
	// transaction identifier, which would break the FIFO total order.
	ErrMissingTransactionID = errors.New("trade is missing a source transaction ID")

	// ErrConversionFailed indicates a currency conversion could not be
	// performed. Callers degrade to a zero value and log a warning.
	ErrConversionFailed = errors.New("currency conversion failed")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidCategory indicates an unknown asset category value.
	ErrInvalidCategory = errors.New("invalid asset category")

	// ErrInvalidEventKind indicates an unknown event kind value.
	ErrInvalidEventKind = errors.New("invalid event kind")

	// Validation errors for required fields
	ErrInvalidAssetID  = errors.New("asset ID is required")
	ErrInvalidCurrency = errors.New("currency parameter is required")
	ErrInvalidDate     = errors.New("date parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveAssets  = errors.New("failed to retrieve assets")
	ErrFailedToRetrieveEvents  = errors.New("failed to retrieve events")
	ErrFailedToRetrieveTaxRuns = errors.New("failed to retrieve tax runs")
	ErrFailedToRetrieveRecords = errors.New("failed to retrieve realized gain/loss records")
	ErrFailedToRetrieveRates   = errors.New("failed to retrieve exchange rates")
	ErrFailedToImportEvents    = errors.New("failed to import events")
	ErrFailedToPersistRun      = errors.New("failed to persist tax run")
	ErrFailedToSealToken       = errors.New("failed to seal broker token")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., an event references an asset row that no longer exists).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

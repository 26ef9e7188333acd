package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidCapital       ErrorCode = 101
	ErrCodeUnknownSlippageModel ErrorCode = 102
	ErrCodeInvalidCommission    ErrorCode = 103
	ErrCodeInvalidOrder         ErrorCode = 104
	ErrCodeInvalidParamSpace    ErrorCode = 105
	ErrCodeUnknownParameter     ErrorCode = 106
	ErrCodeInvalidParameter     ErrorCode = 107

	// Data errors (200-299)
	ErrCodeDataAlignment         ErrorCode = 200
	ErrCodeNoData                ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeDataNotFound          ErrorCode = 204
	ErrCodeParseFailed           ErrorCode = 205

	// Strategy errors (300-399)
	ErrCodeStrategyFailed      ErrorCode = 300
	ErrCodeStrategyConfig      ErrorCode = 301
	ErrCodeUnsupportedStrategy ErrorCode = 302
	ErrCodeVersionMismatch     ErrorCode = 303

	// Optimizer errors (400-499)
	ErrCodeTrialFailed    ErrorCode = 400
	ErrCodeUnknownMetric  ErrorCode = 401
	ErrCodeSearchCanceled ErrorCode = 402

	// Results errors (500-599)
	ErrCodeResultsWriteFailed ErrorCode = 500

	// Market data errors (600-699)
	ErrCodeMarketDataFetchFailed ErrorCode = 600
	ErrCodeMarketDataParseFailed ErrorCode = 601
)

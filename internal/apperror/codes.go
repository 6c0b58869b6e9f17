package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Price-resolution error codes
const (
	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"

	// Pool discovery and price extraction errors
	CodePoolLookupFailed      Code = "POOL_LOOKUP_FAILED"
	CodePriceExtractionFailed Code = "PRICE_EXTRACTION_FAILED"

	// Oracle errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"

	// Aggregate resolution error
	CodePriceResolutionFailed Code = "PRICE_RESOLUTION_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

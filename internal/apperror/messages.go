package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidFormat:      "Invalid data format",
	CodeNotFound:           "Resource not found",
	CodeConfigurationError: "Configuration error",
	CodeServiceUnavailable: "Service temporarily unavailable",
	CodeInternalError:      "Internal server error",
	CodeUnknownError:       "An unknown error occurred",

	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeContractCallFailed:       "Smart contract call failed",

	CodePoolLookupFailed:      "Liquidity pool lookup failed",
	CodePriceExtractionFailed: "Failed to extract price from pool",

	CodeOracleUnavailable: "Price oracle unavailable",

	CodePriceResolutionFailed: "Price resolution failed",

	CodeCircuitOpen: "Circuit breaker is open",
}

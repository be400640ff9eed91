package cmd

// Exit codes for the faultline CLI
const (
	// ExitSuccess indicates all cases passed
	ExitSuccess = 0

	// ExitCaseFailure indicates one or more cases failed
	ExitCaseFailure = 1

	// ExitParseError indicates a case file or schema parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

package cli

// Test-only exports
var (
	ImportMonths    = importMonths
	PrintValidation = printValidation
)

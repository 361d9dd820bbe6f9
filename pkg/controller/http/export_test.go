package http

// Test-only exports
var (
	StatusFromError = statusFromError
	GetContentType  = getContentType
)

package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for data access
var (
	ErrMonthNotFound    = goerr.New("month data not found")
	ErrCategoryNotFound = goerr.New("category data not found")
	ErrInvalidMonth     = goerr.New("invalid month")
	ErrUnknownCategory  = goerr.New("unknown data type")
)

// Tags attached to decode failures
var (
	ErrTagMalformed = goerr.NewTag("malformed_data")
)

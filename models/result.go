package models

import "time"

// ResultRecord one reported test run result
type ResultRecord struct {
	// ID result ID, assigned by the store
	ID uint `json:"resultId"`

	// Category test category (e.g. "smoke")
	Category string `json:"category" validate:"required,min=1,max=150"`

	// Testcases number of test cases executed
	Testcases int `json:"testcases"`
	// Passed number of passing test cases
	Passed int `json:"passed"`
	// Failed number of failing test cases
	Failed int `json:"failed"`
	// Skipped number of skipped test cases
	Skipped int `json:"skipped"`
	// PassPercentage pass rate as reported by the submitter
	PassPercentage int `json:"passpercentage"`

	// Environment the environment the run executed against
	Environment string `json:"environment" validate:"required,min=1,max=150"`

	// Datetime when the run happened
	Datetime time.Time `json:"datetime" validate:"required"`

	// Comments free-form submitter comments
	Comments string `json:"comments" validate:"required,min=1,max=200"`
}

// ResultRangeQuery selects results of one category and environment within a time window
type ResultRangeQuery struct {
	// Category exact category match
	Category string
	// Environment exact environment match
	Environment string
	// From start of the window, inclusive
	From time.Time
	// To end of the window, inclusive
	To time.Time
}

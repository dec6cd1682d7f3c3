package report

import "errors"

var (
	// ErrNilRecord is returned when a nil report reaches the repository.
	ErrNilRecord = errors.New("report: nil record")
	// ErrEmptyCountryID is returned when a record has no country key.
	ErrEmptyCountryID = errors.New("report: empty country id")
	// ErrInvalidDate is returned when a record has a zero date.
	ErrInvalidDate = errors.New("report: invalid date")
)

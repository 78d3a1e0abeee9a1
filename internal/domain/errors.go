package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReading matches any *InvalidReadingError.
	ErrInvalidReading = errors.New("invalid reading")
	// ErrEmptyForecast is returned when there are no hours to plan.
	ErrEmptyForecast = errors.New("empty forecast")
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidRequest covers undecodable documents and bad request options.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBulletinNotFound is returned by archives on a miss.
	ErrBulletinNotFound = errors.New("bulletin not found")
)

// InvalidReadingError reports the first hour that failed validation.
// The whole batch is rejected.
type InvalidReadingError struct {
	Index   int
	Field   string
	Value   float64
	Missing bool
	Reason  string
}

func (e *InvalidReadingError) Error() string {
	if e.Missing {
		return fmt.Sprintf("invalid reading at hour %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid reading at hour %d: %s=%v %s", e.Index, e.Field, e.Value, e.Reason)
}

func (e *InvalidReadingError) Is(target error) bool {
	return target == ErrInvalidReading
}

// ConfigurationError reports a static configuration problem, such as a
// schedule table without an entry for Key.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func invalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

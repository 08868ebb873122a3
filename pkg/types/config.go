package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend          string `json:"backend" yaml:"backend"`
	DataDir          string `json:"data_dir" yaml:"data_dir"`
	PageSize         int    `json:"page_size" yaml:"page_size"`
	SearchDebounceMS int    `json:"search_debounce_ms" yaml:"search_debounce_ms"`
	HistoryWindow    int    `json:"history_window" yaml:"history_window"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Defaults applied by Normalize when a Config field is zero.
const (
	DefaultPageSize         = 10
	DefaultSearchDebounceMS = 400
	DefaultHistoryWindow    = 20
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrPageSizeInvalid      = errors.New("page size must be positive")
	ErrDebounceInvalid      = errors.New("search debounce must not be negative")
	ErrHistoryWindowInvalid = errors.New("history window must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.PageSize < 0 {
		return ErrPageSizeInvalid
	}
	if c.SearchDebounceMS < 0 {
		return ErrDebounceInvalid
	}
	if c.HistoryWindow < 0 {
		return ErrHistoryWindowInvalid
	}
	return nil
}

// Normalize returns a copy of the Config with zero-valued tuning fields
// replaced by their defaults. Backend and DataDir are left untouched.
func (c Config) Normalize() Config {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SearchDebounceMS == 0 {
		c.SearchDebounceMS = DefaultSearchDebounceMS
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	return c
}

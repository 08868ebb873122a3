package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "sqlite backend",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:   "memory backend",
			config: Config{Backend: BackendMemory},
		},
		{
			name:    "empty backend",
			config:  Config{},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend",
			config:  Config{Backend: "postgres"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "negative page size",
			config:  Config{Backend: BackendSQLite, PageSize: -1},
			wantErr: ErrPageSizeInvalid,
		},
		{
			name:    "negative debounce",
			config:  Config{Backend: BackendSQLite, SearchDebounceMS: -10},
			wantErr: ErrDebounceInvalid,
		},
		{
			name:    "negative history window",
			config:  Config{Backend: BackendSQLite, HistoryWindow: -1},
			wantErr: ErrHistoryWindowInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	c := Config{Backend: BackendSQLite}.Normalize()
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.Equal(t, DefaultSearchDebounceMS, c.SearchDebounceMS)
	assert.Equal(t, DefaultHistoryWindow, c.HistoryWindow)

	// Explicit values survive.
	c = Config{Backend: BackendSQLite, PageSize: 25, SearchDebounceMS: 100, HistoryWindow: 5}.Normalize()
	assert.Equal(t, 25, c.PageSize)
	assert.Equal(t, 100, c.SearchDebounceMS)
	assert.Equal(t, 5, c.HistoryWindow)
}

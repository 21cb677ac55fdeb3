package repositories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "translated gorm error",
			err:      gorm.ErrDuplicatedKey,
			expected: true,
		},
		{
			name:     "wrapped gorm error",
			err:      errors.Join(errors.New("create failed"), gorm.ErrDuplicatedKey),
			expected: true,
		},
		{
			name:     "raw postgres unique violation",
			err:      errors.New(`ERROR: duplicate key value violates unique constraint "idx_tracks_sha256" (SQLSTATE 23505)`),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDuplicateKey(tt.err))
		})
	}
}

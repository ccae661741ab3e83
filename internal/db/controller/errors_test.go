package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateWriteError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{name: "nil", err: nil},
		{name: "duplicate key", err: gorm.ErrDuplicatedKey, wantConflict: true},
		{name: "foreign key", err: gorm.ErrForeignKeyViolated, wantConflict: true},
		{name: "other", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateWriteError(tc.err)

			if tc.err == nil {
				assert.NoError(t, got)
				return
			}

			assert.ErrorIs(t, got, tc.err)
			assert.Equal(t, tc.wantConflict, errors.Is(got, ErrConflict))
		})
	}
}

package gorm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpkg "gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
	})

	return &buf
}

func TestTrace(t *testing.T) {
	stmt := func() (string, int64) { return "SELECT * FROM `roles`", 3 }

	testCases := []struct {
		name          string
		level         gormlogger.LogLevel
		begin         time.Time
		err           error
		expectedLevel string
	}{
		{name: "failed statement", level: gormlogger.Warn, begin: time.Now(), err: errors.New("syntax"), expectedLevel: "error"},
		{name: "not found is quiet", level: gormlogger.Warn, begin: time.Now(), err: gormpkg.ErrRecordNotFound},
		{name: "slow statement", level: gormlogger.Warn, begin: time.Now().Add(-time.Second), expectedLevel: "warn"},
		{name: "fast statement at warn", level: gormlogger.Warn, begin: time.Now()},
		{name: "fast statement at info", level: gormlogger.Info, begin: time.Now(), expectedLevel: "trace"},
		{name: "silent", level: gormlogger.Silent, begin: time.Now(), err: errors.New("syntax")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureGlobal(t)

			l := New(100 * time.Millisecond).LogMode(tc.level)
			l.Trace(context.Background(), tc.begin, stmt, tc.err)

			if tc.expectedLevel == "" {
				assert.Zero(t, buf.Len(), buf.String())
				return
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.expectedLevel, entry["level"])
			assert.Equal(t, "SELECT * FROM `roles`", entry["sql"])
			assert.InDelta(t, 3, entry["rows"], 0)
		})
	}
}

func TestMessages(t *testing.T) {
	buf := captureGlobal(t)

	l := New(0).LogMode(gormlogger.Warn)
	l.Info(context.Background(), "hidden %d", 1)
	l.Warn(context.Background(), "shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
}

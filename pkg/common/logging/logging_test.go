package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gl "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want hlog.Level
	}{
		{"trace", hlog.LevelTrace},
		{"DEBUG", hlog.LevelDebug},
		{" warn ", hlog.LevelWarn},
		{"warning", hlog.LevelWarn},
		{"error", hlog.LevelError},
		{"", hlog.LevelInfo},
		{"bogus", hlog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestInit_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	closer := Init(Options{Level: "info", File: path, MaxSizeMB: 1})
	t.Cleanup(func() {
		_ = closer.Close()
		hlog.SetOutput(os.Stdout)
	})

	hlog.Infof("account registered id=%d", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "account registered id=42")
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l := NewGormLogger("warn", 0)
	silent := l.LogMode(gl.Silent).(*GormLogger)

	assert.Equal(t, gl.Warn, l.LogLevel)
	assert.Equal(t, gl.Silent, silent.LogLevel)
	assert.True(t, silent.IgnoreRecordNotFoundError)
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gl.Silent, ParseGormLevel("silent"))
	assert.Equal(t, gl.Error, ParseGormLevel("error"))
	assert.Equal(t, gl.Info, ParseGormLevel("info"))
	assert.Equal(t, gl.Warn, ParseGormLevel("whatever"))
}

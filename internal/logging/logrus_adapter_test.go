package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "warn text", level: "warn", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level falls back to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				assert.IsType(t, &logrus.JSONFormatter{}, adapter.logger.Formatter)
			} else {
				assert.IsType(t, &logrus.TextFormatter{}, adapter.logger.Formatter)
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.
		WithField(FieldUserID, "u-1").
		WithFields(Field{Key: FieldStrategy, Value: "StaticRule"}).
		WithError(errors.New("boom")).
		Warn("strategy failed", Field{Key: FieldTerm, Value: "myntra"})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "strategy failed", decoded["msg"])
	assert.Equal(t, "warning", decoded["level"])
	assert.Equal(t, "u-1", decoded[FieldUserID])
	assert.Equal(t, "StaticRule", decoded[FieldStrategy])
	assert.Equal(t, "myntra", decoded[FieldTerm])
	assert.Equal(t, "boom", decoded[FieldError])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Error("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{
		{Key: "k1", Value: "v1"},
		{Key: "k2", Value: 42},
	})
	assert.Len(t, fields, 2)
	assert.Equal(t, 42, fields["k2"])
	assert.Empty(t, convertFields(nil))
}

func TestGetLogger_DefaultAndOverride(t *testing.T) {
	assert.NotNil(t, GetLogger())

	mock := NewMockLogger()
	SetDefault(mock)
	t.Cleanup(func() { SetDefault(NewLogrusAdapter("info", "text")) })

	GetLogger().Info("through default")
	assert.True(t, mock.HasEntry("INFO", "through default"))

	SetDefault(nil)
	assert.Same(t, mock, GetLogger())
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}

package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsSilent(t *testing.T) {
	require.NotNil(t, Default())
	// Must not panic or write anywhere.
	Default().WithField("k", "v").Info("dropped")
}

func TestSetLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	SetLogger(logger)
	defer SetLogger(nil)

	At(SeverityWarning).Warn("careful")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "WARNING", hook.LastEntry().Data["severity"])

	SetLogger(nil)
	At(SeverityDebug).Debug("back to silence")
	assert.Len(t, hook.Entries, 1)
}

func TestSeverityMapping(t *testing.T) {
	assert.Equal(t, logrus.ErrorLevel, SeverityEmerg.Level())
	assert.Equal(t, logrus.ErrorLevel, SeverityCrit.Level())
	assert.Equal(t, logrus.WarnLevel, SeverityWarning.Level())
	assert.Equal(t, logrus.InfoLevel, SeverityNotice.Level())
	assert.Equal(t, logrus.InfoLevel, SeverityInfo.Level())
	assert.Equal(t, logrus.DebugLevel, SeverityDebug.Level())

	assert.Equal(t, "EMERG", SeverityEmerg.String())
	assert.Equal(t, "DEBUG", SeverityDebug.String())
	assert.Equal(t, "INVALID", Severity(99).String())
}

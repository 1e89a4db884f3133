package testhelper

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// NewCapturingLogger creates a logger at debug level that discards its output
// but records every entry in the returned hook.
func NewCapturingLogger(tb testing.TB) (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

package node

import (
	"testing"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/sirupsen/logrus"
)

// ErrorPolicy decides what happens to an error raised after the handshake, by
// decoding a line, running the handler, or writing a reply. Returning the
// error stops the node with it; returning nil drops the offending message and
// resumes the loop with the next line.
type ErrorPolicy func(err error) error

// FailFast is the default ErrorPolicy: every error stops the node.
func FailFast(err error) error {
	return err
}

// Config configures the runtime side of a Node. Handler-specific settings are
// passed to the handler constructor separately.
type Config struct {
	// ErrorPolicy is consulted for every error of the message loop. Nil means
	// FailFast.
	ErrorPolicy ErrorPolicy

	// Logger receives the runtime's diagnostics. It must not write to the
	// node's output stream.
	Logger *logrus.Entry
}

// DefaultConfig returns a fail-fast configuration logging at debug level to
// stderr.
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		ErrorPolicy: FailFast,
		Logger:      logrus.NewEntry(logger),
	}
}

// TestConfig returns a default configuration whose logger writes to t.Log.
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.Logger = common.NewTestEntry(t, common.TestLogLevel)
	return config
}

func (c *Config) policy() ErrorPolicy {
	if c.ErrorPolicy == nil {
		return FailFast
	}
	return c.ErrorPolicy
}

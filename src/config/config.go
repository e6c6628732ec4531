package config

import (
	"io"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultConfigFile is the name, without extension, of the optional
// configuration file looked up in the data directory.
const DefaultConfigFile = "glomers"

// Default configuration values.
const (
	DefaultLogLevel   = "info"
	DefaultLogFile    = ""
	DefaultLogMaxSize = 100
	DefaultIDStrategy = "counter"
)

// Config contains the configuration of a node process. The node itself only
// needs a logger; the rest is read by the commands that start it.
type Config struct {
	// DataDir is the directory where the optional configuration file is
	// looked up.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log entry. The file is
	// rotated once it reaches LogMaxSize megabytes.
	LogFile string `mapstructure:"log-file"`

	// LogMaxSize is the size in megabytes at which LogFile is rotated.
	LogMaxSize int `mapstructure:"log-max-size"`

	// IDStrategy selects how the unique-ids workload builds identifiers:
	// "counter" or "uuid".
	IDStrategy string `mapstructure:"id-strategy"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:    DefaultDataDir(),
		LogLevel:   DefaultLogLevel,
		LogFile:    DefaultLogFile,
		LogMaxSize: DefaultLogMaxSize,
		IDStrategy: DefaultIDStrategy,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	config.logger.Level = level
	return config
}

// Logger returns a formatted logrus Entry, with prefix set to "node". Entries
// go to stderr, since stdout is reserved for protocol messages, and to LogFile
// if one is configured.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Out = os.Stderr
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				levelWriters(c.fileWriter()),
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "node")
}

func (c *Config) fileWriter() io.Writer {
	return &lumberjack.Logger{
		Filename: c.LogFile,
		MaxSize:  c.LogMaxSize,
	}
}

func levelWriters(w io.Writer) lfshook.WriterMap {
	writers := lfshook.WriterMap{}
	for _, l := range logrus.AllLevels {
		writers[l] = w
	}
	return writers
}

// DefaultDataDir return the default directory name for the configuration file
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Glomers")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Glomers")
		} else {
			return filepath.Join(home, ".glomers")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level. Unknown values fall back
// to info.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

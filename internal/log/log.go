package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	// LogTimestampFormat defines the timestamp format in log files
	LogTimestampFormat = "2006-01-02T15:04:05.000Z"
	// LogFileName is the name of the log file written into Config.Dir
	LogFileName = "reftx.log"
)

var (
	defaultLogger = logrus.StandardLogger()

	// Loggers is convenient when you want to apply configuration to all
	// loggers
	Loggers = []*logrus.Logger{defaultLogger}
)

func init() {
	// Standard output carries prepared transactions, so anything logged
	// before the configuration has been loaded goes to stderr.
	for _, l := range Loggers {
		l.Out = os.Stderr
	}
}

// Config contains logging configuration values
type Config struct {
	Dir    string `toml:"dir,omitempty" envconfig:"dir"`
	Format string `toml:"format,omitempty" envconfig:"format"`
	Level  string `toml:"level,omitempty" envconfig:"level"`
}

// Configure sets the format and level on all loggers.
func Configure(loggers []*logrus.Logger, format string, level string) {
	var formatter logrus.Formatter
	switch format {
	case "json":
		formatter = &logrus.JSONFormatter{TimestampFormat: LogTimestampFormat}
	case "text":
		formatter = &logrus.TextFormatter{TimestampFormat: LogTimestampFormat}
	case "":
		// Just stick with the default
	default:
		logrus.WithField("format", format).Fatal("invalid logger format")
	}

	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrusLevel = logrus.InfoLevel
	}

	for _, l := range loggers {
		l.SetLevel(logrusLevel)

		if formatter != nil {
			l.Formatter = formatter
		}
	}
}

// ConfigureFromConfig applies cfg to all loggers. If a log directory is
// configured, the loggers write into LogFileName inside of it.
func ConfigureFromConfig(cfg Config) error {
	Configure(Loggers, cfg.Format, cfg.Level)

	if cfg.Dir == "" {
		return nil
	}

	logFile, err := openLogFile(filepath.Join(cfg.Dir, LogFileName))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	for _, l := range Loggers {
		l.SetOutput(logFile)
	}

	return nil
}

func openLogFile(path string) (*os.File, error) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	runtime.SetFinalizer(logFile, func(f *os.File) {
		f.Close()
	})

	return logFile, nil
}

// Default is the default logrus logger
func Default() *logrus.Entry { return defaultLogger.WithField("pid", os.Getpid()) }

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	ServerType string
	Level      string
	Dir        string
	Console    io.Writer
}

// NewLogger builds the JSON logger for one server process. Entries go to
// <dir>/<server>.log through an async writer and are echoed to the console.
// The returned closer flushes both.
func NewLogger(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	level := opts.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if opts.Dir == "" {
		logger.SetOutput(console)
		return logger, nopCloser{}, nil
	}

	name := opts.ServerType
	if name == "" {
		name = "gateway"
	}
	dir := filepath.Clean(opts.Dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(filepath.Join(dir, name+".log"), 32*1024)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	consoleHook := NewAsyncConsoleHook(console, 1024)
	logger.AddHook(consoleHook)

	return logger, closers{consoleHook, fileWriter}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, cl := range c {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

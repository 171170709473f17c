// Package logging routes the standard logger and Gin's request log to stderr and,
// when configured, to a size-rotated file.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrlokans/storybook/internal/config"
)

// Setup installs the log writers described by cfg. The returned closer flushes the
// rotated file; it is a no-op when file logging is off.
func Setup(cfg config.Log) io.Closer {
	w, closer := Writer(cfg, os.Stderr)
	log.SetOutput(w)
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
	return closer
}

// Writer returns console, or console plus a lumberjack file when cfg.File is set.
func Writer(cfg config.Log, console io.Writer) (io.Writer, io.Closer) {
	if cfg.File == "" {
		return console, nopCloser{}
	}

	file := &lj.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(console, file), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

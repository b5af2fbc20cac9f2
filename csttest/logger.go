// Copyright © 2024 The cstlint authors

package csttest

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// Logger is an io.Writer that forwards complete lines to t.Log.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i]))
		log.buf = log.buf[i+1:]
	}
}

func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}

// Logrus returns a debug level logrus logger writing into the test log.
func Logrus(t testing.TB) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(NewLogger(t))
	l.SetLevel(logrus.DebugLevel)
	return l
}

// CaptureLogrus returns a logger at level that records its output in buf.
func CaptureLogrus(buf *bytes.Buffer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return l
}

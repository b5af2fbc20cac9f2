// Copyright © 2024 The cstlint authors

package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/cstlint/diagnostic"
	"github.com/luthersystems/cstlint/lint"
)

// Output modes accepted by --mode.
const (
	modePlain = "plain"
	modeJSON  = "json"
)

func newHandler(mode string, color diagnostic.ColorMode, w io.Writer) (lint.ErrorHandler, error) {
	switch mode {
	case modePlain:
		return lint.NewPlainHandler(w, color), nil
	case modeJSON:
		return lint.NewJSONHandler(w), nil
	}
	return nil, fmt.Errorf("invalid mode %q: must be plain or json", mode)
}

// newLogger returns the progress logger. Warnings are always shown; each -v
// raises the level by one step.
func newLogger(w io.Writer, verbosity int) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	switch {
	case verbosity >= 2:
		log.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

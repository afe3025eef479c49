// Package log builds the zap logger that is handed to each component.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a sugared logger. Debug selects zap's development config
// (console output, debug level); otherwise the production config is used.
func New(debug bool) (*zap.SugaredLogger, error) {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %v", err)
	}

	return zapLogger.Sugar(), nil
}

// Nop returns a logger that discards everything
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

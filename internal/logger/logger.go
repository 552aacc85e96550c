//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package logger holds the global logger shared by the library and the CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger   *logrus.Logger
	loggerMu sync.Mutex
)

// InitLogger initializes the global logger
func InitLogger(logLevel string, noColor bool) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	// Parse log level
	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel // fallback to info level
	}
	l.SetLevel(level)

	// Configure formatter
	if noColor {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: false,
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   true,
			FullTimestamp: false,
		})
	}

	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// GetLogger returns the configured logger instance
func GetLogger() *logrus.Logger {
	loggerMu.Lock()
	l := logger
	loggerMu.Unlock()
	if l == nil {
		// Initialize with default settings if not already initialized
		InitLogger("info", false)
		return GetLogger()
	}
	return l
}

// SetOutput redirects the global logger, mainly for tests.
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// Info logs an info message
func Info(msg string, fields ...logrus.Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Info(msg)
}

// Debug logs a debug message (only shown when debug level is enabled)
func Debug(msg string, fields ...logrus.Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Debug(msg)
}

// Warn logs a warning message
func Warn(msg string, fields ...logrus.Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Warn(msg)
}

// Error logs an error message
func Error(msg string, fields ...logrus.Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Error(msg)
}

// Success logs a success message as info with success indicator
func Success(msg string, fields ...logrus.Fields) {
	merged := mergeFields(fields...)
	merged["status"] = "success"
	GetLogger().WithFields(merged).Info(msg)
}

// mergeFields merges multiple logrus.Fields into one
func mergeFields(fields ...logrus.Fields) logrus.Fields {
	result := make(logrus.Fields)
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}

//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevels(t *testing.T) {
	tests := []struct {
		input string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			InitLogger(tt.input, true)
			assert.Equal(t, tt.want, GetLogger().GetLevel())
		})
	}
}

func TestHelpersWriteFields(t *testing.T) {
	InitLogger("debug", true)
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hello", logrus.Fields{"a": 1}, logrus.Fields{"b": "two"})
	Debug("dbg")
	Warn("careful")
	Error("boom")
	Success("done")

	out := buf.String()
	require.Contains(t, out, "msg=hello")
	require.Contains(t, out, "a=1")
	require.Contains(t, out, "b=two")
	require.Contains(t, out, "msg=dbg")
	require.Contains(t, out, "msg=careful")
	require.Contains(t, out, "msg=boom")
	require.Contains(t, out, "status=success")
}

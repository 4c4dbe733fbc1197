// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/deep-rent/infuse/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToTextFormatAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := diag.New(diag.WithWriter(&buf))

	log.Debug("hidden")
	log.Info("visible", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "k=v")
}

func TestWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := diag.New(diag.WithWriter(&buf), diag.WithFormat(diag.FormatJSON))

	log.Info("hello")

	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}

func TestWithLevel_AcceptsStringOrLevel(t *testing.T) {
	var buf bytes.Buffer
	log := diag.New(diag.WithWriter(&buf), diag.WithLevel("debug"))
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = diag.New(diag.WithWriter(&buf), diag.WithLevel(slog.LevelWarn))
	log.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseFormat_InvalidReturnsError(t *testing.T) {
	_, err := diag.ParseFormat("xml")
	require.Error(t, err)
}

func TestSilent_DiscardsEverything(t *testing.T) {
	log := diag.Silent()
	assert.NotPanics(t, func() {
		log.Error("should not panic or print anywhere visible")
	})
}

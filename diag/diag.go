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

// Package diag builds the slog.Logger used by a Container's Tracer to
// report resolution steps at TraceVerbose.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Default configuration values for a new logger.
const (
	DefaultLevel     = slog.LevelInfo
	DefaultAddSource = false
	DefaultFormat    = FormatText
)

// Format defines the log output format.
type Format uint8

const (
	FormatText Format = iota // Human-readable text format.
	FormatJSON               // JSON format suitable for machine parsing.
)

// String returns the lower-case string representation of the log format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

// New creates and configures a new slog.Logger. By default, it logs at
// slog.LevelInfo in plain text to os.Stdout, without source information.
func New(opts ...Option) *slog.Logger {
	return slog.New(NewHandler(opts...))
}

// NewHandler creates and configures a new slog.Handler using the same
// defaults as New.
func NewHandler(opts ...Option) slog.Handler {
	c := config{
		Level:     DefaultLevel,
		AddSource: DefaultAddSource,
		Format:    DefaultFormat,
		Writer:    os.Stdout,
	}
	for _, opt := range opts {
		opt(&c)
	}

	o := &slog.HandlerOptions{
		Level:     c.Level,
		AddSource: c.AddSource,
	}

	switch c.Format {
	case FormatJSON:
		return slog.NewJSONHandler(c.Writer, o)
	default:
		return slog.NewTextHandler(c.Writer, o)
	}
}

type config struct {
	Level     slog.Level
	AddSource bool
	Format    Format
	Writer    io.Writer
}

// Option configures a logger built by New or NewHandler.
type Option func(*config)

// WithLevel sets the minimum log level, accepting either a slog.Level or a
// case-insensitive string as handled by ParseLevel.
func WithLevel(v any) Option {
	return func(c *config) {
		switch t := v.(type) {
		case slog.Level:
			c.Level = t
		case string:
			if level, err := ParseLevel(t); err == nil {
				c.Level = level
			}
		}
	}
}

// WithFormat sets the output format, accepting either a Format or a
// case-insensitive string as handled by ParseFormat.
func WithFormat(v any) Option {
	return func(c *config) {
		switch t := v.(type) {
		case Format:
			c.Format = t
		case string:
			if format, err := ParseFormat(t); err == nil {
				c.Format = format
			}
		}
	}
}

// WithAddSource includes the source file and line number in each record.
func WithAddSource(add bool) Option {
	return func(c *config) { c.AddSource = add }
}

// WithWriter sets the output destination. A nil writer is ignored.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.Writer = w
		}
	}
}

// ParseLevel converts a case-insensitive string into a slog.Level.
func ParseLevel(s string) (level slog.Level, err error) {
	if e := level.UnmarshalText([]byte(s)); e != nil {
		err = fmt.Errorf("invalid log level %q", s)
	}
	return
}

// ParseFormat converts a case-insensitive string into a Format.
func ParseFormat(s string) (format Format, err error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	default:
		return format, fmt.Errorf("invalid log format %q", s)
	}
}

// Silent creates a logger that discards all output, for callers that pass it
// to a Container (via di.WithLogger) without caring about trace records. A
// Container does not use it by default.
func Silent() *slog.Logger {
	const levelSilent = slog.Level(100)
	return New(
		WithWriter(io.Discard),
		WithLevel(levelSilent),
	)
}

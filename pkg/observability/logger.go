// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package observability provides logging and metrics.
package observability

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Logger is the structured logger interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field represents a log field.
type Field struct {
	Key   string
	Value any
}

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Name   string
	Level  string // trace, debug, info, warn, error
	Format string // json or text
	Output io.Writer
}

// logger is the default implementation, backed by hclog.
type logger struct {
	hc hclog.Logger
}

// NewLogger creates a new logger.
func NewLogger(opts LoggerOptions) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return &logger{hc: hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      level,
		Output:     out,
		JSONFormat: !strings.EqualFold(opts.Format, "text"),
	})}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &logger{hc: hclog.NewNullLogger()}
}

// HCLog exposes the underlying hclog logger.
func HCLog(l Logger) hclog.Logger {
	if impl, ok := l.(*logger); ok {
		return impl.hc
	}
	return hclog.NewNullLogger()
}

func (l *logger) Debug(msg string, fields ...Field) {
	l.hc.Debug(msg, args(fields)...)
}

func (l *logger) Info(msg string, fields ...Field) {
	l.hc.Info(msg, args(fields)...)
}

func (l *logger) Warn(msg string, fields ...Field) {
	l.hc.Warn(msg, args(fields)...)
}

func (l *logger) Error(msg string, fields ...Field) {
	l.hc.Error(msg, args(fields)...)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{hc: l.hc.With(args(fields)...)}
}

func args(fields []Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

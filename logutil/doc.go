// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the structured logging used across pyhost,
// built on top of log/slog.
//
// # Basic Usage
//
//	logutil.SetupLogger(debug, structured)
//
//	log := logutil.NewLogger("supervisor").WithRole("server")
//	log.Info("role started", "pid", pid)
//	log.Error("failed to kill process", "error", err)
//
// # Debug Mode
//
// Debug logging can be enabled in two ways:
//   - Pass debug=true to SetupLogger
//   - Set PYHOST_DEBUG=true
//
// # Structured Logging
//
// When structured=true, logs are JSON:
//
//	{"time":"2024-01-15T10:30:00Z","level":"INFO","msg":"role started","component":"supervisor","role":"server","pid":4242}
//
// Otherwise a human-readable text format is used:
//
//	time=2024-01-15T10:30:00Z level=INFO msg="role started" component=supervisor role=server pid=4242
package logutil

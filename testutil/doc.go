// Package testutil provides common testing utilities for pyhost.
//
// This package includes helpers for:
//   - Writing fake interpreter scripts (FakeInterpreter, SleepingInterpreter)
//   - Skipping tests that need a POSIX shell (RequirePOSIX)
//   - Reading and listing log files (ReadFile, ListFiles)
//   - Capturing stdout during test execution (CaptureOutput)
//
// All functions use t.Helper() for proper test line reporting.
package testutil

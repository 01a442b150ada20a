// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

// Package logging provides centralized zerolog-based structured logging for Searchgate.
//
// The package provides:
//   - A global zerolog logger configured once from main via Init
//   - JSON output for production, console output for development
//   - Context-aware logging with request and correlation ID propagation
//   - An slog adapter so sutureslog can write through zerolog
//   - A security logger that masks session identifiers and usernames
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("core", name).Msg("Core loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Request failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event is
// never written.
package logging

// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

// Package services adapts process components to suture.Service.
//
// Each wrapper translates its component's lifecycle (ListenAndServe, a
// periodic job) into Serve(ctx) and identifies itself via fmt.Stringer so
// supervisor events name it.
package services

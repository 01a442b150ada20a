// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package supervisor runs the long-lived services of the process under a
suture v4 tree.

	RootSupervisor ("searchgate")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── SessionCleanupService
	│   └── BadgerGCService (badger session store only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing maintenance job restarts with backoff without touching the
listener. Supervisor events are logged through sutureslog onto the zerolog
backend.
*/
package supervisor

// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package search hosts the embedded search engine that the access guard
protects. Full-text indexing and querying are delegated to bleve; this
package owns the lifecycle around it.

# Home directory layout

	<home>/
	    node.yaml                 node configuration
	    <core_root>/<core>/
	        core.yaml             core descriptor
	        conf/                 files served by /{core}/admin/file

node.yaml and core.yaml accept ${name} and ${name:default} placeholders,
resolved from the properties bag passed to Bootstrap. The property
search_home always resolves to the home directory being loaded.

# Bootstrap

Bootstrap loads the configured home. When that home holds an invalid node
configuration (missing file, malformed YAML, failed validation) it retries
exactly once with the fallback home. Any other error, and any failure of the
fallback, is returned to the caller.

# Cores

Every directory under core_root that contains core.yaml is a core. A core
whose index cannot be opened is recorded in InitFailures and left out of the
registry. Cores with load_on_startup: false are registered immediately and
opened on first use. data_dir ":memory:" selects an in-memory index.

# HTTP surface

NewHandler exposes a Solr-flavoured JSON API over the container: core
status, select, update (JSON, CSV and plain-text extract), read-only
replication details, conf file listing and ping.
*/
package search

// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package guard

import "strings"

// Category names a class of guarded request. It labels metrics and logs.
type Category string

const (
	CategoryCore        Category = "core"
	CategoryAdmin       Category = "admin"
	CategoryUpdate      Category = "update"
	CategoryReplication Category = "replication"
	CategoryFile        Category = "file"
	CategoryOther       Category = "other"
)

// Message keys.
const (
	KeyUnauthorisedRequest   = "SearchErrorUnauthorisedRequestForSecurityReason"
	KeyManageLoginFirst      = "SearchErrorManageLoginFirst"
	KeyNoManagePermission    = "SearchErrorNoManagePermission"
	KeyUpdateLoginFirst      = "SearchErrorUpdateLoginFirst"
	KeyNoUpdatePermission    = "SearchErrorNoUpdatePermission"
	KeyReplicateLoginFirst   = "SearchErrorReplicateLoginFirst"
	KeyNoReplicatePermission = "SearchErrorNoReplicatePermission"
	KeyViewFileLoginFirst    = "SearchErrorViewFileLoginFirst"
	KeyNoViewFilePermission  = "SearchErrorNoViewFilePermission"
)

// bodyShape selects the denial body.
type bodyShape int

const (
	shapeHeader bodyShape = iota // {"responseHeader":{...}}
	shapeLogin                   // {"ofbizLogin":true}
)

// rule is what a denial in one category looks like.
type rule struct {
	category      Category
	loginKey      string
	permissionKey string
	shape         bodyShape
}

var (
	coreRule        = rule{CategoryCore, KeyUnauthorisedRequest, KeyUnauthorisedRequest, shapeHeader}
	adminRule       = rule{CategoryAdmin, KeyManageLoginFirst, KeyNoManagePermission, shapeLogin}
	updateRule      = rule{CategoryUpdate, KeyUpdateLoginFirst, KeyNoUpdatePermission, shapeHeader}
	replicationRule = rule{CategoryReplication, KeyReplicateLoginFirst, KeyNoReplicatePermission, shapeHeader}
	fileRule        = rule{CategoryFile, KeyViewFileLoginFirst, KeyNoViewFilePermission, shapeHeader}
)

var updateSuffixes = []string{"/update", "/update/json", "/update/csv", "/update/extract"}

// classify returns the category rule for path, if any. The administrative
// prefix wins over every suffix.
func classify(path string) (rule, bool) {
	if path == "" {
		return rule{}, false
	}
	if strings.HasPrefix(path, "/admin/") {
		return adminRule, true
	}
	for _, suffix := range updateSuffixes {
		if strings.HasSuffix(path, suffix) {
			return updateRule, true
		}
	}
	if strings.HasSuffix(path, "/replication") {
		return replicationRule, true
	}
	if strings.HasSuffix(path, "/file") || strings.HasSuffix(path, "/file/") {
		return fileRule, true
	}
	return rule{}, false
}

// targetsCore reports whether path addresses one of the named cores.
func targetsCore(path string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.HasPrefix(path, "/"+name+"/") {
			return true
		}
	}
	return false
}

var staticSuffixes = []string{".css", ".js", ".ico", ".html", ".png", ".jpg", ".gif"}

// isStatic reports whether path names a static asset. Static assets skip
// request timing and nothing else.
func isStatic(path string) bool {
	for _, suffix := range staticSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package guard

import (
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/searchgate/internal/auth"
	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
)

// Authorizer resolves the caller and checks the base permission.
type Authorizer interface {
	CurrentIdentity(r *http.Request) *auth.Identity
	HasBasePermission(id *auth.Identity, r *http.Request) bool
}

// CoreRegistry lists the engine's registered cores.
type CoreRegistry interface {
	CoreNames() []string
}

// Messages localizes denial text.
type Messages interface {
	Locale(r *http.Request, id *auth.Identity) string
	Message(key, locale string) string
}

// Config holds guard options.
type Config struct {
	// BasePath is stripped from the request path before classification.
	BasePath string

	// Timing enables begin/done logging and duration metrics.
	Timing bool
}

// Guard gates access to the wrapped engine handler.
type Guard struct {
	authz    Authorizer
	cores    CoreRegistry
	messages Messages
	basePath string
	timing   bool
}

// New builds a guard. A nil cores registry disables the core-name check;
// the category rules still apply.
func New(authz Authorizer, cores CoreRegistry, messages Messages, cfg Config) *Guard {
	return &Guard{
		authz:    authz,
		cores:    cores,
		messages: messages,
		basePath: strings.TrimSuffix(cfg.BasePath, "/"),
		timing:   cfg.Timing,
	}
}

// Middleware wraps next with the gate.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, next)
	})
}

// decision evaluates the identity and base permission at most once per
// request.
type decision struct {
	g         *Guard
	r         *http.Request
	id        *auth.Identity
	evaluated bool
	permitted bool
}

// status returns 0 when allowed, otherwise the denial status.
func (d *decision) status() int {
	if d.id == nil {
		return http.StatusUnauthorized
	}
	if !d.evaluated {
		d.permitted = d.g.authz.HasBasePermission(d.id, d.r)
		d.evaluated = true
	}
	if !d.permitted {
		return http.StatusForbidden
	}
	return 0
}

func (g *Guard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	path := g.relativePath(r.URL.Path)
	d := &decision{g: g, r: r, id: g.authz.CurrentIdentity(r)}
	category := CategoryOther

	if g.cores != nil && targetsCore(path, g.cores.CoreNames()) {
		category = CategoryCore
		if status := d.status(); status != 0 {
			g.deny(w, r, coreRule, status, d.id)
			return
		}
	}

	if ru, ok := classify(path); ok {
		category = ru.category
		if status := d.status(); status != 0 {
			g.deny(w, r, ru, status, d.id)
			return
		}
	}

	metrics.RecordGuardAllow(string(category))

	if !g.timing || isStatic(r.URL.Path) {
		next.ServeHTTP(w, r)
		return
	}
	g.timed(w, r, next)
}

func (g *Guard) relativePath(path string) string {
	if g.basePath != "" && strings.HasPrefix(path, g.basePath) {
		rel := path[len(g.basePath):]
		if rel == "" || rel[0] == '/' {
			path = rel
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

func (g *Guard) timed(w http.ResponseWriter, r *http.Request, next http.Handler) {
	resource := strings.TrimPrefix(r.URL.Path, "/")
	domain := requestDomain(r)
	start := time.Now()

	logging.Ctx(r.Context()).Info().
		Str("resource", resource).
		Str("domain", domain).
		Str("encoding", requestCharset(r)).
		Msg("Request begun")

	next.ServeHTTP(w, r)

	elapsed := time.Since(start)
	metrics.EngineRequestDuration.Observe(elapsed.Seconds())
	logging.Ctx(r.Context()).Info().
		Str("resource", resource).
		Str("domain", domain).
		Dur("duration", elapsed).
		Msg("Request done")
}

// headerBody is the denial body for every non-administrative category.
type headerBody struct {
	ResponseHeader responseHeader `json:"responseHeader"`
}

type responseHeader struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// loginBody is the administrative denial body.
type loginBody struct {
	OfbizLogin bool `json:"ofbizLogin"`
}

// marshalJSON is swapped in tests to exercise serialization failures.
var marshalJSON = json.Marshal

// deny writes the denial. Serialization and write failures are logged and
// swallowed; the status line is already sent by then.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, ru rule, status int, id *auth.Identity) {
	metrics.RecordGuardDeny(string(ru.category), status)

	key := ru.permissionKey
	if status == http.StatusUnauthorized {
		key = ru.loginKey
	}
	message := g.messages.Message(key, g.messages.Locale(r, id))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var body any = headerBody{ResponseHeader: responseHeader{Status: status, Message: message}}
	if ru.shape == shapeLogin {
		body = loginBody{OfbizLogin: true}
	}

	log := logging.Ctx(r.Context())
	log.Info().
		Str("resource", strings.TrimPrefix(r.URL.Path, "/")).
		Str("domain", requestDomain(r)).
		Str("category", string(ru.category)).
		Int("status", status).
		Str("reason", message).
		Msg("Request denied")

	data, err := marshalJSON(body)
	if err != nil {
		log.Error().Err(err).Str("category", string(ru.category)).Msg("Failed to serialize denial response")
		return
	}
	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Str("category", string(ru.category)).Msg("Failed to write denial response")
	}
}

// requestDomain renders scheme://host without the port.
func requestDomain(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return scheme + "://" + host
}

// requestCharset returns the charset parameter of the request Content-Type,
// or an empty string.
func requestCharset(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

// Package i18n resolves the caller's locale and looks up localized messages.
//
// Labels are embedded from labels/SearchUiLabels.yaml (key -> locale -> text)
// and loaded into go-playground universal-translator translators. A locale is
// chosen from the identity's preference, then Accept-Language, then the
// configured default.
package i18n

import (
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/it"
	"github.com/go-playground/locales/nl"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/searchgate/internal/auth"
)

//go:embed labels/SearchUiLabels.yaml
var defaultLabels []byte

// supportedTranslators lists every locale with a language pack.
func supportedTranslators() []locales.Translator {
	return []locales.Translator{en.New(), de.New(), fr.New(), es.New(), it.New(), nl.New()}
}

// Catalog holds translated labels. It is read-only after construction and
// safe for concurrent use.
type Catalog struct {
	uni           *ut.UniversalTranslator
	matcher       language.Matcher
	names         []string // index-aligned with the matcher's supported tags
	defaultLocale string
}

// New loads the embedded labels with defaultLocale as the fallback.
func New(defaultLocale string) (*Catalog, error) {
	return NewFromYAML(defaultLabels, defaultLocale)
}

// NewFromYAML loads labels from YAML data shaped as key -> locale -> text.
func NewFromYAML(data []byte, defaultLocale string) (*Catalog, error) {
	defaultLocale = normalize(defaultLocale)

	var fallback locales.Translator
	translators := supportedTranslators()
	for _, t := range translators {
		if t.Locale() == defaultLocale {
			fallback = t
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("default locale %q is not supported", defaultLocale)
	}

	c := &Catalog{
		uni:           ut.New(fallback, translators...),
		defaultLocale: defaultLocale,
	}

	// The matcher treats its first tag as the fallback.
	c.names = append(c.names, defaultLocale)
	for _, t := range translators {
		if t.Locale() != defaultLocale {
			c.names = append(c.names, t.Locale())
		}
	}
	tags := make([]language.Tag, len(c.names))
	for i, name := range c.names {
		tags[i] = language.Make(name)
	}
	c.matcher = language.NewMatcher(tags)

	if err := c.load(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load(data []byte) error {
	var labels map[string]map[string]string
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("parse labels: %w", err)
	}

	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for loc, text := range labels[key] {
			trans, found := c.uni.GetTranslator(normalize(loc))
			if !found {
				return fmt.Errorf("label %s: unsupported locale %q", key, loc)
			}
			if err := trans.Add(key, text, false); err != nil {
				return fmt.Errorf("label %s/%s: %w", key, loc, err)
			}
		}
	}
	return nil
}

// Locale picks the response locale for a request: the identity's stored
// locale, then the best Accept-Language match, then the default.
func (c *Catalog) Locale(r *http.Request, id *auth.Identity) string {
	if id != nil && id.Locale != "" {
		if loc, ok := c.match(language.Make(normalize(id.Locale))); ok {
			return loc
		}
	}

	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			if loc, ok := c.match(tags...); ok {
				return loc
			}
		}
	}

	return c.defaultLocale
}

func (c *Catalog) match(tags ...language.Tag) (string, bool) {
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return c.names[idx], true
}

// Message returns the text for key in locale. Unknown locales and missing
// translations fall back to the default locale, then to the key itself.
func (c *Catalog) Message(key, locale string) string {
	if trans, found := c.uni.GetTranslator(normalize(locale)); found {
		if text, err := trans.T(key); err == nil {
			return text
		}
	}
	if text, err := c.uni.GetFallback().T(key); err == nil {
		return text
	}
	return key
}

// DefaultLocale returns the configured fallback locale.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// normalize maps "fr-FR", "fr_FR" and "FR" to the base language "fr".
func normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

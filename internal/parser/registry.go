// Package parser turns short chat messages into event intents. Each supported
// language is a Locale; the Registry picks one by its code.
package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guilherme-santos/calbot/internal"
)

// Locale parses messages written in one language.
type Locale interface {
	Code() string
	// Parse returns false when text doesn't follow the grammar. now is the
	// reference instant for relative dates such as "today".
	Parse(now time.Time, text string) (internal.Intent, bool)
	// FormatDate and FormatTime render t for a human reading this language,
	// without and with the time of day.
	FormatDate(t time.Time) string
	FormatTime(t time.Time) string
}

type Registry struct {
	mu      sync.Mutex
	locales map[string]Locale
}

func NewRegistry() *Registry {
	return &Registry{
		locales: make(map[string]Locale),
	}
}

// Default returns a registry holding every built-in locale.
func Default(opts Options) *Registry {
	r := NewRegistry()
	r.Register(NewSpanish(opts))
	return r
}

func (r *Registry) Get(code string) (Locale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locales[code]
	if !ok {
		return nil, fmt.Errorf("locale %q is not implemented (available: %s)", code, strings.Join(r.codes(), ", "))
	}
	return l, nil
}

// Register panics if the code is already taken.
func (r *Registry) Register(l Locale) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locales[l.Code()]; ok {
		panic(fmt.Sprintf("parser: locale %q registered twice", l.Code()))
	}
	r.locales[l.Code()] = l
}

func (r *Registry) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.codes()
}

func (r *Registry) codes() []string {
	codes := make([]string, 0, len(r.locales))
	for c := range r.locales {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

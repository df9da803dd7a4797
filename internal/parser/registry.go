package parser

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNoCompatibleParser is returned when no registered parser detects a page.
var ErrNoCompatibleParser = errors.New("no compatible parser")

// Registry holds parsers in priority order: the most specific firmware
// families first, generic fallbacks last.
type Registry struct {
	parsers []Parser
	log     zerolog.Logger
}

// NewRegistry returns a registry that tries parsers in the given order.
func NewRegistry(log zerolog.Logger, parsers ...Parser) *Registry {
	return &Registry{parsers: parsers, log: log}
}

// DefaultRegistry returns every built-in parser in detection priority order.
func DefaultRegistry(log zerolog.Logger) *Registry {
	return NewRegistry(log,
		&Arris{},
		&Technicolor{},
		&Motorola{},
	)
}

// Parsers returns the registered parsers in detection order.
func (r *Registry) Parsers() []Parser {
	return append([]Parser(nil), r.parsers...)
}

// Detect returns the first parser whose Detect matches page. A parser whose
// detector panics is logged and treated as not matching.
func (r *Registry) Detect(page Page) (Parser, error) {
	for _, p := range r.parsers {
		ok, err := safeDetect(p, page)
		if err != nil {
			r.log.Error().Err(err).Str("parser", p.Name()).Msg("Parser detection failed")
			continue
		}
		if ok {
			r.log.Info().Str("parser", p.Name()).Str("url", page.URL).Msg("Detected modem")
			return p, nil
		}
	}

	title := page.Title()
	if title == "" {
		title = "(no title)"
	}
	r.log.Warn().Str("url", page.URL).Str("title", title).Int("parsers", len(r.parsers)).
		Msg("No compatible parser for modem page")
	return nil, fmt.Errorf("%w (page title %q)", ErrNoCompatibleParser, title)
}

func safeDetect(p Parser, page Page) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("detect panicked: %v", rec)
		}
	}()
	return p.Detect(page), nil
}

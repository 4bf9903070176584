package common

import (
	"errors"
	"strings"
)

var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named module is administratively paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects calls into a paused module. A nil view never pauses.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// PauseSet is a static PauseView backed by a set of module names, typically
// loaded from configuration.
type PauseSet map[string]struct{}

// NewPauseSet builds a PauseSet from the supplied module names. Names are
// trimmed and lowercased; empty names are dropped.
func NewPauseSet(modules []string) PauseSet {
	set := make(PauseSet, len(modules))
	for _, m := range modules {
		normalized := strings.ToLower(strings.TrimSpace(m))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// IsPaused implements PauseView.
func (s PauseSet) IsPaused(module string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(strings.TrimSpace(module))]
	return ok
}

// Package json persists the set of open previews so a host can restore
// them on the next start.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/esteban-rocha/svgview"
)

// State is the persisted preview state.
type State struct {
	// Previews are preview URIs. Each carries its source in the query, so no
	// side table is needed to reopen it.
	Previews []svgview.URI
	// Active is the source URI of the focused preview, if any.
	Active  *svgview.URI
	SavedAt time.Time
}

// envelope is the v1 wire format for persisted state.
type envelope struct {
	Version  int       `json:"version"`
	SavedAt  time.Time `json:"saved_at"`
	Previews []string  `json:"previews"`
	Active   *string   `json:"active,omitempty"`
}

// StateFromSurfaces builds a State from manager snapshots.
func StateFromSurfaces(surfaces []svgview.SurfaceInfo, now time.Time) State {
	st := State{SavedAt: now}
	for _, s := range surfaces {
		st.Previews = append(st.Previews, svgview.PreviewURI(s.URI))
		if s.Active {
			active := s.URI
			st.Active = &active
		}
	}
	return st
}

// MarshalState serializes a State to JSON in v1 envelope format.
func MarshalState(st State) ([]byte, error) {
	env := envelope{
		Version:  1,
		SavedAt:  st.SavedAt,
		Previews: make([]string, len(st.Previews)),
	}
	for i, u := range st.Previews {
		env.Previews[i] = u.String()
	}
	if st.Active != nil {
		s := st.Active.String()
		env.Active = &s
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalState deserializes a State from JSON in v1 envelope format.
func UnmarshalState(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return State{}, fmt.Errorf("unsupported state version: %d", env.Version)
	}
	st := State{SavedAt: env.SavedAt}
	for i, s := range env.Previews {
		u, err := svgview.ParseURI(s)
		if err != nil {
			return State{}, fmt.Errorf("preview %d: %w", i, err)
		}
		st.Previews = append(st.Previews, u)
	}
	if env.Active != nil {
		u, err := svgview.ParseURI(*env.Active)
		if err != nil {
			return State{}, fmt.Errorf("active: %w", err)
		}
		st.Active = &u
	}
	return st, nil
}

// Save writes a State to a JSON file, replacing it atomically.
func Save(path string, st State) error {
	data, err := MarshalState(st)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a State from a JSON file.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalState(data)
}

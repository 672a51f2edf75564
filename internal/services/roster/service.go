package roster

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/chinquiz/internal/model"
)

//go:embed roster.yaml
var defaultRoster []byte

// Service holds the fixed set of guessable identities. It is immutable once
// constructed and safe for concurrent use.
type Service struct {
	entries []model.RosterEntry
}

type rosterFile struct {
	Entries []model.RosterEntry `yaml:"entries"`
}

// Default returns the built-in roster
func Default() *Service {
	s, err := Parse(defaultRoster)
	if err != nil {
		panic(fmt.Sprintf("embedded roster is invalid: %v", err))
	}
	return s
}

// LoadFromFile reads a roster from a YAML file
func LoadFromFile(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a roster from YAML
func Parse(data []byte) (*Service, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRoster, err)
	}
	return New(file.Entries)
}

// New builds a roster from entries, rejecting empty rosters and duplicates
func New(entries []model.RosterEntry) (*Service, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", model.ErrInvalidRoster)
	}

	ids := make(map[int]struct{}, len(entries))
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", model.ErrInvalidRoster, e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", model.ErrInvalidRoster, e.ID)
		}
		key := strings.ToLower(name)
		if _, dup := names[key]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", model.ErrInvalidRoster, name)
		}
		ids[e.ID] = struct{}{}
		names[key] = struct{}{}
	}

	copied := make([]model.RosterEntry, len(entries))
	copy(copied, entries)
	return &Service{entries: copied}, nil
}

// Entries returns a copy of the roster in declaration order
func (s *Service) Entries() []model.RosterEntry {
	result := make([]model.RosterEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Len returns the number of entries
func (s *Service) Len() int {
	return len(s.entries)
}

// Names returns every entry name in declaration order
func (s *Service) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

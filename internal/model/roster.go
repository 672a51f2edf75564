package model

// RosterEntry is one guessable identity
type RosterEntry struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ImageRef string `json:"image" yaml:"image"`
}

package identity

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/chinquiz/internal/dependencies/random"
	"github.com/mcoot/chinquiz/internal/model"
)

// MaxDisplayNameLength is the longest display name kept, in runes
const MaxDisplayNameLength = 40

// Service issues and serializes client-held player identities. Identities are
// not authenticated; a player may present any user id.
type Service struct {
	random random.Random
}

// New creates a new identity Service
func New(random random.Random) *Service {
	return &Service{random: random}
}

// New issues a fresh identity with a newly generated user id
func (s *Service) New(displayName string) (model.PlayerIdentity, error) {
	return s.Resolve(nil, displayName)
}

// Resolve returns an identity for displayName, keeping the user id of existing
// when there is one so that leaderboard entries stay attached to the player
func (s *Service) Resolve(existing *model.PlayerIdentity, displayName string) (model.PlayerIdentity, error) {
	name := CleanName(displayName)
	if name == "" {
		return model.PlayerIdentity{}, fmt.Errorf("%w: display name is required", model.ErrMissingIdentity)
	}

	userID := model.UserID(s.random.UUID())
	if existing != nil && strings.TrimSpace(string(existing.UserID)) != "" {
		userID = existing.UserID
	}
	return model.PlayerIdentity{UserID: userID, DisplayName: name}, nil
}

// Encode serializes an identity for storage in a cookie
func Encode(identity model.PlayerIdentity) (string, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a value produced by Encode. Anything unreadable or without a
// user id is reported as a missing identity.
func Decode(value string) (model.PlayerIdentity, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return model.PlayerIdentity{}, fmt.Errorf("%w: %v", model.ErrMissingIdentity, err)
	}

	var identity model.PlayerIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return model.PlayerIdentity{}, fmt.Errorf("%w: %v", model.ErrMissingIdentity, err)
	}
	if strings.TrimSpace(string(identity.UserID)) == "" {
		return model.PlayerIdentity{}, fmt.Errorf("%w: no user id", model.ErrMissingIdentity)
	}
	identity.DisplayName = CleanName(identity.DisplayName)
	return identity, nil
}

// CleanName trims a display name, collapses whitespace and bounds its length
func CleanName(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	runes := []rune(cleaned)
	if len(runes) > MaxDisplayNameLength {
		cleaned = strings.TrimSpace(string(runes[:MaxDisplayNameLength]))
	}
	return cleaned
}

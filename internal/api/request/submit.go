package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
)

// maxExactInt is the largest integer a JSON number holds without losing precision
const maxExactInt = 1 << 53

// ParseSubmitScore type-checks a raw leaderboard submission. userId must be a
// string, totalTime and penalties must be integral JSON numbers, and
// displayName, when present, must be a string. Range checks are left to the
// leaderboard service.
func ParseSubmitScore(body []byte) (leaderboard.SubmitInput, error) {
	var input leaderboard.SubmitInput

	if !gjson.ValidBytes(body) {
		return input, fmt.Errorf("%w: body is not valid JSON", model.ErrInvalidInput)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return input, fmt.Errorf("%w: body must be a JSON object", model.ErrInvalidInput)
	}

	userID := root.Get("userId")
	if userID.Type != gjson.String || strings.TrimSpace(userID.Str) == "" {
		return input, fmt.Errorf("%w: userId must be a non-empty string", model.ErrInvalidInput)
	}
	input.UserID = model.UserID(userID.Str)

	totalTime, err := integer(root, "totalTime")
	if err != nil {
		return input, err
	}
	input.TotalTimeMs = &totalTime

	penalties, err := integer(root, "penalties")
	if err != nil {
		return input, err
	}
	input.Penalties = &penalties

	switch name := root.Get("displayName"); name.Type {
	case gjson.Null:
	case gjson.String:
		input.DisplayName = name.Str
	default:
		return input, fmt.Errorf("%w: displayName must be a string", model.ErrInvalidInput)
	}

	return input, nil
}

func integer(root gjson.Result, field string) (int64, error) {
	value := root.Get(field)
	if value.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s must be a number", model.ErrInvalidInput, field)
	}
	f := value.Num
	if math.Trunc(f) != f || math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("%w: %s must be a whole number", model.ErrInvalidInput, field)
	}
	return int64(f), nil
}

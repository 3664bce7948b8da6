package zambara

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
)

const (
	MinPlayers = 3
	MaxPlayers = 6
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// ValidMobile reports whether s is 10 to 15 ASCII digits.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// PlayerInput is a player as it arrives over the wire: either a bare legacy
// name ("Asha") or an object ({"name": "Asha", "mobile": "9876543210"}).
type PlayerInput struct {
	legacy string
	named  *Player
}

// LegacyPlayer builds a PlayerInput carrying only a name.
func LegacyPlayer(name string) PlayerInput {
	return PlayerInput{legacy: name}
}

// NamedPlayer builds a PlayerInput carrying a name and a mobile number.
func NamedPlayer(name, mobile string) PlayerInput {
	return PlayerInput{named: &Player{Name: name, Mobile: mobile}}
}

func (p *PlayerInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = LegacyPlayer(name)
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var named playerFields
		if err := json.Unmarshal(data, &named); err != nil {
			return err
		}
		*p = PlayerInput{named: (*Player)(&named)}
		return nil
	}
	return errors.New("player must be a string or an object with name and mobile")
}

// playerFields decodes the object form without recursing into
// Player.UnmarshalJSON.
type playerFields Player

// UnmarshalJSON accepts the stored object form and the legacy bare name, so
// games written before mobiles were collected still decode.
func (p *Player) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var in PlayerInput
	if err := in.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = in.Normalize()
	return nil
}

func (p PlayerInput) MarshalJSON() ([]byte, error) {
	if p.named != nil {
		return json.Marshal(p.named)
	}
	return json.Marshal(p.legacy)
}

// Normalize returns the structured form with surrounding whitespace removed.
func (p PlayerInput) Normalize() Player {
	if p.named != nil {
		return Player{
			Name:   strings.TrimSpace(p.named.Name),
			Mobile: strings.TrimSpace(p.named.Mobile),
		}
	}
	return Player{Name: strings.TrimSpace(p.legacy)}
}

// NormalizePlayers converts wire players to their structured form.
func NormalizePlayers(in []PlayerInput) []Player {
	out := make([]Player, len(in))
	for i, p := range in {
		out[i] = p.Normalize()
	}
	return out
}

// ValidatePlayers checks the player count and every player's name and mobile.
func ValidatePlayers(players []Player) error {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return invalid("players", "players must contain between %d and %d entries, got %d", MinPlayers, MaxPlayers, len(players))
	}
	for i, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return invalid("players", "players[%d].name is required", i)
		}
		if !ValidMobile(p.Mobile) {
			return invalid("players", "players[%d].mobile must be 10 to 15 digits", i)
		}
	}
	return nil
}

// ValidateTime checks a completion time in seconds.
func ValidateTime(t *float64) error {
	if t == nil {
		return invalid("time", "time is required")
	}
	if math.IsNaN(*t) || math.IsInf(*t, 0) {
		return invalid("time", "time must be a finite number")
	}
	if *t < 0 {
		return invalid("time", "time must not be negative")
	}
	return nil
}

// Required returns a ValidationError naming field when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "%s is required", field)
	}
	return nil
}

// WinnerRef is a parsed winner identifier.
type WinnerRef struct {
	Name   string
	Mobile string
}

// ParseWinner splits a winner identifier. "name_mobile" yields both parts when
// the text after the first underscore is a valid mobile; anything else is a
// bare legacy name.
func ParseWinner(id string) WinnerRef {
	id = strings.TrimSpace(id)
	if name, mobile, ok := strings.Cut(id, "_"); ok && name != "" && ValidMobile(mobile) {
		return WinnerRef{Name: name, Mobile: mobile}
	}
	return WinnerRef{Name: id}
}

// Resolve fills in a missing mobile from the game's players when exactly one
// player carries the winner's name.
func (w WinnerRef) Resolve(players []Player) WinnerRef {
	if w.Mobile != "" {
		return w
	}
	var match *Player
	for i := range players {
		if players[i].Name == w.Name {
			if match != nil {
				return w
			}
			match = &players[i]
		}
	}
	if match != nil {
		w.Mobile = match.Mobile
	}
	return w
}

// ID returns the composite identifier for the winner.
func (w WinnerRef) ID() string {
	return Player{Name: w.Name, Mobile: w.Mobile}.ID()
}

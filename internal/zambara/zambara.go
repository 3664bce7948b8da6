// Package zambara defines the core domain types shared by the game lifecycle,
// completion records and rankings. It has no external dependencies.
package zambara

import "time"

// Collection names in the document store.
const (
	CollectionGames  = "games"
	CollectionScores = "scores"
	CollectionEvents = "events"
	CollectionHosts  = "hosts"
)

type GameStatus string

const (
	GameStatusRunning   GameStatus = "running"
	GameStatusCompleted GameStatus = "completed"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Player is the structured, normalised form of a game participant.
type Player struct {
	Name   string `json:"name" firestore:"name"`
	Mobile string `json:"mobile" firestore:"mobile"`
}

// ID returns the composite name_mobile identifier, or the bare name when the
// mobile is unknown.
func (p Player) ID() string {
	if p.Mobile == "" {
		return p.Name
	}
	return p.Name + "_" + p.Mobile
}

type Game struct {
	ID           string     `json:"id,omitempty" firestore:"-"`
	Name         string     `json:"name,omitempty" firestore:"name,omitempty"`
	Difficulty   Difficulty `json:"difficulty,omitempty" firestore:"difficulty,omitempty"`
	Players      []Player   `json:"players" firestore:"players"`
	EventID      string     `json:"eventId" firestore:"eventId"`
	HostID       string     `json:"hostId" firestore:"hostId"`
	Status       GameStatus `json:"status" firestore:"status"`
	StartTime    *time.Time `json:"startTime,omitempty" firestore:"startTime,omitempty"`
	Winner       string     `json:"winner,omitempty" firestore:"winner,omitempty"`
	WinnerID     string     `json:"winnerId,omitempty" firestore:"winnerId,omitempty"`
	WinnerMobile string     `json:"winnerMobile,omitempty" firestore:"winnerMobile,omitempty"`
	WinnerTime   *int64     `json:"winnerTime,omitempty" firestore:"winnerTime,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// DisplayName is the name shown next to ranking entries.
func (g Game) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return "Game " + shortID(g.ID)
}

// Score is a completion record. Time is nullable on read so that legacy
// records without a time still take part in rankings.
type Score struct {
	ID           string    `json:"id,omitempty" firestore:"-"`
	PlayerName   string    `json:"playerName" firestore:"playerName"`
	PlayerMobile string    `json:"playerMobile,omitempty" firestore:"playerMobile,omitempty"`
	PlayerID     string    `json:"playerId,omitempty" firestore:"playerId,omitempty"`
	GameID       string    `json:"gameId" firestore:"gameId"`
	Time         *float64  `json:"time" firestore:"time"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

type Event struct {
	ID   string `json:"id,omitempty" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

type Host struct {
	ID   string `json:"id,omitempty" firestore:"-"`
	Name string `json:"name" firestore:"name"`
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

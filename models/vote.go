package models

import "time"

// Vote rows are hard-deleted by resets; no soft-delete column, otherwise
// a tombstone would keep tripping the unique (game, voter) index.
type Vote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GameID    uint      `json:"game_id" gorm:"not null;uniqueIndex:idx_game_voter"`
	VoterName string    `json:"voter_name" gorm:"not null"`
	VoterKey  string    `json:"-" gorm:"not null;uniqueIndex:idx_game_voter"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Game Game `json:"game,omitempty"`
}

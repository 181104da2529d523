package models

import "time"

// VoterLogEntry feeds the recent-activity panel. Entries are denormalized
// on purpose: deleting them never touches votes or counters, so the feed
// and the authoritative counts can be reset independently.
type VoterLogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GameID    uint      `json:"game_id" gorm:"not null;index"`
	GameName  string    `json:"game_name" gorm:"not null"`
	VoterName string    `json:"voter_name" gorm:"not null"`
	Device    string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

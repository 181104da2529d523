package services

import (
	"errors"

	"reelvote/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyVoted = errors.New("already voted for this game from this device")
	ErrGameNotFound = errors.New("game not found")
)

type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

type CastVoteRequest struct {
	VoterName string `json:"voter_name"`
}

// CastVote records one vote for a game: the vote row, the live-log entry
// and the counter increment commit in a single transaction, so a failure
// anywhere leaves no partial state. The duplicate check rides inside the
// same transaction.
func (s *VoteService) CastVote(gameID uint, voterName, deviceToken string) (*models.VoterLogEntry, error) {
	if voterName == "" {
		voterName = "Anonymous"
	}

	var entry models.VoterLogEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}

		var existing models.Vote
		err := tx.Where("game_id = ? AND voter_key = ?", gameID, deviceToken).First(&existing).Error
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		vote := models.Vote{
			GameID:    gameID,
			VoterName: voterName,
			VoterKey:  deviceToken,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		entry = models.VoterLogEntry{
			GameID:    gameID,
			GameName:  game.Name,
			VoterName: voterName,
			Device:    deviceToken,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.Game{}).Where("id = ?", gameID).
			Update("count", gorm.Expr("count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// RecentFeed returns the newest log entries for the activity panel.
func (s *VoteService) RecentFeed(limit int) ([]models.VoterLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.VoterLogEntry
	if err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"reelvote/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrResetInProgress = errors.New("another reset is already running")

const (
	resetBatchSize   = 400
	resetLockKey     = "reset:lock"
	resetLockTTL     = 10 * time.Minute
	resetProgressTTL = 24 * time.Hour
)

// ResetProgress is the per-batch checkpoint a reset writes to Redis. An
// interrupted run leaves it behind, so the operator can see where it
// stopped and a retry skips games that already finished.
type ResetProgress struct {
	Kind           string    `json:"kind"` // selected, votes, live
	CompletedGames []uint    `json:"completed_games,omitempty"`
	DeletedRows    int       `json:"deleted_rows"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ResetService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewResetService(db *gorm.DB, redis *redis.Client) *ResetService {
	return &ResetService{
		db:    db,
		redis: redis,
	}
}

// ResetSelected wipes the chosen games: their vote rows, their counters
// and their live-log entries. Other games are untouched.
func (s *ResetService) ResetSelected(ids []uint) error {
	return s.withLock("selected", func(progress *ResetProgress) error {
		done := make(map[uint]bool, len(progress.CompletedGames))
		for _, id := range progress.CompletedGames {
			done[id] = true
		}

		for _, id := range ids {
			if done[id] {
				continue
			}
			if err := s.resetGameVotes(id, progress); err != nil {
				return err
			}
			if err := s.deleteLogBatches(progress, "game_id = ?", id); err != nil {
				return err
			}
			progress.CompletedGames = append(progress.CompletedGames, id)
			s.checkpoint(progress)
		}
		return nil
	})
}

// ResetAllVotes zeroes every game's votes and counter. The live log is
// deliberately kept intact.
func (s *ResetService) ResetAllVotes() error {
	return s.withLock("votes", func(progress *ResetProgress) error {
		var ids []uint
		if err := s.db.Model(&models.Game{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
			return err
		}

		done := make(map[uint]bool, len(progress.CompletedGames))
		for _, id := range progress.CompletedGames {
			done[id] = true
		}

		for _, id := range ids {
			if done[id] {
				continue
			}
			if err := s.resetGameVotes(id, progress); err != nil {
				return err
			}
			progress.CompletedGames = append(progress.CompletedGames, id)
			s.checkpoint(progress)
		}
		return nil
	})
}

// ResetLiveLog clears the whole activity feed without touching votes or
// counters.
func (s *ResetService) ResetLiveLog() error {
	return s.withLock("live", func(progress *ResetProgress) error {
		return s.deleteLogBatches(progress, "")
	})
}

// Progress reports the checkpoint of the last interrupted run for a kind,
// or nil when none is pending.
func (s *ResetService) Progress(kind string) (*ResetProgress, error) {
	data, err := s.redis.Get(context.Background(), "reset:progress:"+kind).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress ResetProgress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// withLock serializes resets behind a Redis SetNX lock, resumes from any
// prior checkpoint of the same kind, and clears the checkpoint only on
// full completion.
func (s *ResetService) withLock(kind string, fn func(*ResetProgress) error) error {
	ctx := context.Background()

	ok, err := s.redis.SetNX(ctx, resetLockKey, kind, resetLockTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetInProgress
	}
	defer func() {
		if err := s.redis.Del(ctx, resetLockKey).Err(); err != nil {
			log.Printf("Failed to release reset lock: %v", err)
		}
	}()

	progress, err := s.Progress(kind)
	if err != nil {
		log.Printf("Failed to load reset progress for %s: %v", kind, err)
	}
	if progress == nil {
		progress = &ResetProgress{Kind: kind, StartedAt: time.Now()}
	} else {
		log.Printf("Resuming %s reset: %d games already done, %d rows deleted so far",
			kind, len(progress.CompletedGames), progress.DeletedRows)
	}

	if err := fn(progress); err != nil {
		s.checkpoint(progress)
		return err
	}

	if err := s.redis.Del(ctx, "reset:progress:"+kind).Err(); err != nil {
		log.Printf("Failed to clear reset progress for %s: %v", kind, err)
	}
	return nil
}

// resetGameVotes deletes one game's vote rows in batches, then zeroes its
// counter.
func (s *ResetService) resetGameVotes(gameID uint, progress *ResetProgress) error {
	for {
		var batch []uint
		if err := s.db.Model(&models.Vote{}).Where("game_id = ?", gameID).
			Order("id ASC").Limit(resetBatchSize).Pluck("id", &batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		if err := s.db.Where("id IN ?", batch).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		progress.DeletedRows += len(batch)
		s.checkpoint(progress)
	}

	return s.db.Model(&models.Game{}).Where("id = ?", gameID).Update("count", 0).Error
}

// deleteLogBatches drains voter-log rows matching the condition (all rows
// when the condition is empty), resetBatchSize at a time.
func (s *ResetService) deleteLogBatches(progress *ResetProgress, query string, args ...interface{}) error {
	for {
		q := s.db.Model(&models.VoterLogEntry{})
		if query != "" {
			q = q.Where(query, args...)
		}

		var batch []uint
		if err := q.Order("id ASC").Limit(resetBatchSize).Pluck("id", &batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := s.db.Where("id IN ?", batch).Delete(&models.VoterLogEntry{}).Error; err != nil {
			return err
		}
		progress.DeletedRows += len(batch)
		s.checkpoint(progress)
	}
}

func (s *ResetService) checkpoint(progress *ResetProgress) {
	progress.UpdatedAt = time.Now()
	data, err := json.Marshal(progress)
	if err != nil {
		log.Printf("Failed to marshal reset progress: %v", err)
		return
	}
	if err := s.redis.Set(context.Background(), "reset:progress:"+progress.Kind, data, resetProgressTTL).Err(); err != nil {
		log.Printf("Failed to checkpoint reset progress: %v", err)
	}
}

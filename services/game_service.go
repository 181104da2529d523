package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reelvote/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrDuplicateName = errors.New("a game with this name already exists")

const boardSnapshotKey = "board:snapshot"

type GameService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewGameService(db *gorm.DB, redis *redis.Client) *GameService {
	return &GameService{
		db:    db,
		redis: redis,
	}
}

type CreateGameRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

type GameImport struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GameView is a Game plus the embed hint the widget needs to render it.
type GameView struct {
	models.Game
	Link LinkMeta `json:"link"`
}

// ListGames returns every game in creation order. Creation order is the
// stable input the leaderboard's tie-break rests on.
func (s *GameService) ListGames() ([]models.Game, error) {
	var games []models.Game
	if err := s.db.Order("id ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// VisibleGames lists games for a viewer, leaderboard-ordered and with
// embed hints attached.
func (s *GameService) VisibleGames(isAdmin bool) ([]GameView, error) {
	games, err := s.ListGames()
	if err != nil {
		return nil, err
	}

	visible := FilterVisible(games, isAdmin)
	board := BuildBoard(visible)

	byID := make(map[uint]models.Game, len(visible))
	for _, g := range visible {
		byID[g.ID] = g
	}

	views := make([]GameView, 0, len(board))
	for _, entry := range board {
		g := byID[entry.GameID]
		views = append(views, GameView{Game: g, Link: ParseLink(g.URL)})
	}
	return views, nil
}

func (s *GameService) CreateGame(req *CreateGameRequest) (*models.Game, error) {
	var existing models.Game
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	game := models.Game{
		Name:     req.Name,
		URL:      req.URL,
		Count:    0,
		Featured: false,
	}

	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}

	if err := s.RefreshBoardCache(); err != nil {
		log.Printf("Failed to refresh board cache after create: %v", err)
	}

	return &game, nil
}

// ImportGames bulk-creates the given games, skipping names that already
// exist. Returns how many were created and how many skipped.
func (s *GameService) ImportGames(items []GameImport) (created, skipped int, err error) {
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Untitled"
		}

		var existing models.Game
		lookupErr := s.db.Where("name = ?", name).First(&existing).Error
		if lookupErr == nil {
			skipped++
			continue
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return created, skipped, lookupErr
		}

		game := models.Game{Name: name, URL: item.URL}
		if createErr := s.db.Create(&game).Error; createErr != nil {
			return created, skipped, createErr
		}
		created++
	}

	if err := s.RefreshBoardCache(); err != nil {
		log.Printf("Failed to refresh board cache after import: %v", err)
	}

	return created, skipped, nil
}

// SaveFeatured makes exactly the listed games visible to end users:
// featured is set true for the ids and false for everything else, in one
// transaction.
func (s *GameService) SaveFeatured(ids []uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Game{}).Where("1 = 1").Update("featured", false).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.Game{}).Where("id IN ?", ids).Update("featured", true).Error
	})
	if err != nil {
		return err
	}

	if err := s.RefreshBoardCache(); err != nil {
		log.Printf("Failed to refresh board cache after featured save: %v", err)
	}
	return nil
}

// PublicBoard returns the end-user leaderboard, serving the Redis snapshot
// when present and rebuilding it from the database otherwise.
func (s *GameService) PublicBoard() ([]BoardEntry, error) {
	data, err := s.redis.Get(context.Background(), boardSnapshotKey).Result()
	if err == nil {
		var entries []BoardEntry
		if err := json.Unmarshal([]byte(data), &entries); err == nil {
			return entries, nil
		}
		log.Printf("Failed to unmarshal board snapshot, rebuilding: %v", err)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("Redis error reading board snapshot: %v", err)
	}

	entries, err := s.buildPublicBoard()
	if err != nil {
		return nil, err
	}
	if err := s.storeBoardSnapshot(entries); err != nil {
		log.Printf("Failed to store board snapshot: %v", err)
	}
	return entries, nil
}

// RefreshBoardCache rebuilds the public board snapshot after any write
// that can change it.
func (s *GameService) RefreshBoardCache() error {
	entries, err := s.buildPublicBoard()
	if err != nil {
		return err
	}
	return s.storeBoardSnapshot(entries)
}

// AdminBoard is the unfiltered leaderboard, never cached: admins are few
// and always want fresh counts.
func (s *GameService) AdminBoard() ([]BoardEntry, error) {
	games, err := s.ListGames()
	if err != nil {
		return nil, err
	}
	return BuildBoard(games), nil
}

func (s *GameService) buildPublicBoard() ([]BoardEntry, error) {
	games, err := s.ListGames()
	if err != nil {
		return nil, err
	}
	return BuildBoard(FilterVisible(games, false)), nil
}

func (s *GameService) storeBoardSnapshot(entries []BoardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal board snapshot: %v", err)
	}
	if err := s.redis.Set(context.Background(), boardSnapshotKey, data, 2*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %v", err)
	}
	return nil
}

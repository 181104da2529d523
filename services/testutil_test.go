package services

import (
	"context"
	"fmt"
	"os"
	"testing"

	"reelvote/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens the dev database, migrates the schema and truncates
// all tables. Tests are skipped when no database is reachable.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = "host=localhost user=reelvote password=reelvote123 dbname=reelvote_test port=5432 sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	if err := db.AutoMigrate(&models.Game{}, &models.Vote{}, &models.VoterLogEntry{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	for _, table := range []string{"voter_log_entries", "votes", "games"} {
		if err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			t.Fatalf("Failed to truncate %s: %v", table, err)
		}
	}

	return db
}

// setupTestRedis connects to the dev Redis and flushes it. Tests are
// skipped when Redis is not reachable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("test redis not available: %v", err)
	}
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush test redis: %v", err)
	}

	return client
}

// seedGame inserts a game with a given vote count worth of votes and
// matching log entries.
func seedGame(t *testing.T, db *gorm.DB, name string, featured bool, votes int) models.Game {
	t.Helper()

	game := models.Game{Name: name, URL: "https://youtu.be/" + name, Featured: featured, Count: votes}
	if err := db.Create(&game).Error; err != nil {
		t.Fatalf("Failed to seed game %s: %v", name, err)
	}

	for i := 0; i < votes; i++ {
		device := fmt.Sprintf("device-%s-%d", name, i)
		vote := models.Vote{GameID: game.ID, VoterName: "Voter", VoterKey: device}
		if err := db.Create(&vote).Error; err != nil {
			t.Fatalf("Failed to seed vote for %s: %v", name, err)
		}
		entry := models.VoterLogEntry{GameID: game.ID, GameName: name, VoterName: "Voter", Device: device}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("Failed to seed log entry for %s: %v", name, err)
		}
	}

	return game
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelvote/models"
)

func TestResetSelectedLeavesOthersAlone(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewResetService(db, rdb)

	a := seedGame(t, db, "alpha", true, 3)
	b := seedGame(t, db, "beta", true, 2)
	c := seedGame(t, db, "gamma", false, 4)

	if err := svc.ResetSelected([]uint{a.ID, b.ID}); err != nil {
		t.Fatalf("ResetSelected: %v", err)
	}

	for _, id := range []uint{a.ID, b.ID} {
		var game models.Game
		if err := db.First(&game, id).Error; err != nil {
			t.Fatalf("reload game %d: %v", id, err)
		}
		if game.Count != 0 {
			t.Errorf("game %d count = %d, want 0", id, game.Count)
		}
		if n := countRows(t, db, &models.Vote{}, "game_id = ?", id); n != 0 {
			t.Errorf("game %d has %d vote rows, want 0", id, n)
		}
		if n := countRows(t, db, &models.VoterLogEntry{}, "game_id = ?", id); n != 0 {
			t.Errorf("game %d has %d log rows, want 0", id, n)
		}
	}

	var untouched models.Game
	if err := db.First(&untouched, c.ID).Error; err != nil {
		t.Fatalf("reload game %d: %v", c.ID, err)
	}
	if untouched.Count != 4 {
		t.Errorf("untouched game count = %d, want 4", untouched.Count)
	}
	if n := countRows(t, db, &models.Vote{}, "game_id = ?", c.ID); n != 4 {
		t.Errorf("untouched game has %d vote rows, want 4", n)
	}
	if n := countRows(t, db, &models.VoterLogEntry{}, "game_id = ?", c.ID); n != 4 {
		t.Errorf("untouched game has %d log rows, want 4", n)
	}

	// Completed run leaves no pending checkpoint.
	progress, err := svc.Progress("selected")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress != nil {
		t.Errorf("expected no pending progress after completion, got %+v", progress)
	}
}

func TestResetAllVotesKeepsLiveLog(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewResetService(db, rdb)

	seedGame(t, db, "alpha", true, 3)
	seedGame(t, db, "beta", false, 2)

	if err := svc.ResetAllVotes(); err != nil {
		t.Fatalf("ResetAllVotes: %v", err)
	}

	if n := countRows(t, db, &models.Vote{}, ""); n != 0 {
		t.Errorf("%d vote rows remain, want 0", n)
	}

	var games []models.Game
	if err := db.Find(&games).Error; err != nil {
		t.Fatalf("list games: %v", err)
	}
	for _, g := range games {
		if g.Count != 0 {
			t.Errorf("game %s count = %d, want 0", g.Name, g.Count)
		}
	}

	if n := countRows(t, db, &models.VoterLogEntry{}, ""); n != 5 {
		t.Errorf("%d log rows remain, want 5 (live log is kept)", n)
	}
}

func TestResetLiveLogKeepsVotes(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewResetService(db, rdb)

	game := seedGame(t, db, "alpha", true, 3)

	if err := svc.ResetLiveLog(); err != nil {
		t.Fatalf("ResetLiveLog: %v", err)
	}

	if n := countRows(t, db, &models.VoterLogEntry{}, ""); n != 0 {
		t.Errorf("%d log rows remain, want 0", n)
	}
	if n := countRows(t, db, &models.Vote{}, ""); n != 3 {
		t.Errorf("%d vote rows remain, want 3", n)
	}

	var fresh models.Game
	if err := db.First(&fresh, game.ID).Error; err != nil {
		t.Fatalf("reload game: %v", err)
	}
	if fresh.Count != 3 {
		t.Errorf("count = %d, want 3", fresh.Count)
	}
}

func TestResetRefusedWhileAnotherRuns(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewResetService(db, rdb)

	if err := rdb.Set(context.Background(), resetLockKey, "votes", time.Minute).Err(); err != nil {
		t.Fatalf("take lock: %v", err)
	}

	err := svc.ResetLiveLog()
	if !errors.Is(err, ErrResetInProgress) {
		t.Fatalf("got %v, want ErrResetInProgress", err)
	}
}

func TestResetSelectedSkipsCheckpointedGames(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewResetService(db, rdb)

	a := seedGame(t, db, "alpha", true, 2)
	b := seedGame(t, db, "beta", true, 2)

	// Pretend a prior run finished alpha before dying: the retry must not
	// touch it again even though its data is still there.
	prior := &ResetProgress{Kind: "selected", CompletedGames: []uint{a.ID}, StartedAt: time.Now()}
	svc.checkpoint(prior)

	if err := svc.ResetSelected([]uint{a.ID, b.ID}); err != nil {
		t.Fatalf("ResetSelected: %v", err)
	}

	if n := countRows(t, db, &models.Vote{}, "game_id = ?", a.ID); n != 2 {
		t.Errorf("checkpointed game was reprocessed: %d vote rows, want 2", n)
	}
	if n := countRows(t, db, &models.Vote{}, "game_id = ?", b.ID); n != 0 {
		t.Errorf("remaining game not reset: %d vote rows, want 0", n)
	}
}

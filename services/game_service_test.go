package services

import (
	"errors"
	"testing"

	"reelvote/models"
)

func TestCreateGameRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewGameService(db, rdb)

	if _, err := svc.CreateGame(&CreateGameRequest{Name: "alpha", URL: "https://youtu.be/a"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateGame(&CreateGameRequest{Name: "alpha", URL: "https://youtu.be/b"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate create: got %v, want ErrDuplicateName", err)
	}

	if n := countRows(t, db, &models.Game{}, "name = ?", "alpha"); n != 1 {
		t.Errorf("%d games named alpha, want 1", n)
	}
}

func TestImportGamesSkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewGameService(db, rdb)

	seedGame(t, db, "alpha", false, 0)

	created, skipped, err := svc.ImportGames([]GameImport{
		{Name: "alpha", URL: "https://youtu.be/a"},
		{Name: "beta", URL: "https://youtu.be/b"},
		{URL: "https://youtu.be/c"}, // no name -> Untitled
	})
	if err != nil {
		t.Fatalf("ImportGames: %v", err)
	}
	if created != 2 || skipped != 1 {
		t.Errorf("created=%d skipped=%d, want 2 and 1", created, skipped)
	}

	if n := countRows(t, db, &models.Game{}, "name = ?", "Untitled"); n != 1 {
		t.Errorf("%d Untitled games, want 1", n)
	}
}

func TestSaveFeaturedReplacesSelection(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewGameService(db, rdb)

	a := seedGame(t, db, "alpha", true, 0)
	b := seedGame(t, db, "beta", false, 0)
	c := seedGame(t, db, "gamma", true, 0)

	if err := svc.SaveFeatured([]uint{b.ID}); err != nil {
		t.Fatalf("SaveFeatured: %v", err)
	}

	var games []models.Game
	if err := db.Order("id ASC").Find(&games).Error; err != nil {
		t.Fatalf("list games: %v", err)
	}
	want := map[uint]bool{a.ID: false, b.ID: true, c.ID: false}
	for _, g := range games {
		if g.Featured != want[g.ID] {
			t.Errorf("game %s featured = %t, want %t", g.Name, g.Featured, want[g.ID])
		}
	}
}

func TestVisibleGamesFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	svc := NewGameService(db, rdb)

	seedGame(t, db, "alpha", true, 2)
	seedGame(t, db, "beta", false, 9)
	seedGame(t, db, "gamma", true, 5)

	public, err := svc.VisibleGames(false)
	if err != nil {
		t.Fatalf("VisibleGames(false): %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("public sees %d games, want 2", len(public))
	}
	if public[0].Name != "gamma" || public[1].Name != "alpha" {
		t.Errorf("public order = [%s %s], want [gamma alpha]", public[0].Name, public[1].Name)
	}
	if public[0].Link.Kind != LinkVideo {
		t.Errorf("embed hint kind = %q, want video", public[0].Link.Kind)
	}

	all, err := svc.VisibleGames(true)
	if err != nil {
		t.Fatalf("VisibleGames(true): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin sees %d games, want 3", len(all))
	}
	if all[0].Name != "beta" {
		t.Errorf("admin board top = %s, want beta", all[0].Name)
	}
}

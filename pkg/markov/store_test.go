package markov

import (
	"context"
	"errors"
	"testing"
)

func TestSetupSchemaIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM markov_vocabulary").Scan(&count); err != nil {
		t.Fatalf("failed to count vocabulary: %v", err)
	}
	if count != 2 {
		t.Errorf("vocabulary has %d rows after setup, want 2", count)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	testCases := []struct {
		name  string
		order int
	}{
		{name: "Unigram", order: 1},
		{name: "Bigram", order: 2},
		{name: "Trigram", order: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, s := setupTestDB(t)
			ctx := context.Background()
			m := fitTestModel(t, tc.order)

			info, err := s.SaveModel(ctx, "episodes", m)
			if err != nil {
				t.Fatalf("SaveModel() failed: %v", err)
			}
			if info.Name != "episodes" || info.Order != tc.order {
				t.Errorf("SaveModel() info = %+v", info)
			}

			loaded, err := s.LoadModel(ctx, "episodes")
			if err != nil {
				t.Fatalf("LoadModel() failed: %v", err)
			}
			if loaded.Stats() != m.Stats() {
				t.Errorf("loaded stats = %+v, want %+v", loaded.Stats(), m.Stats())
			}
			for seed := uint64(0); seed < 20; seed++ {
				want := m.Generate(newTestRand(seed))
				if got := loaded.Generate(newTestRand(seed)); got != want {
					t.Errorf("seed %d: loaded model generated %q, original %q", seed, got, want)
				}
			}
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	if _, err := s.SaveModel(ctx, "episodes", fitTestModel(t, 3)); err != nil {
		t.Fatalf("first SaveModel() failed: %v", err)
	}
	replacement, _ := NewModel(2)
	replacement.Fit([]string{"Band Geeks"})
	if _, err := s.SaveModel(ctx, "episodes", replacement); err != nil {
		t.Fatalf("second SaveModel() failed: %v", err)
	}

	loaded, err := s.LoadModel(ctx, "episodes")
	if err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	if loaded.Order() != 2 || loaded.Stats() != replacement.Stats() {
		t.Errorf("loaded stats = %+v, want %+v", loaded.Stats(), replacement.Stats())
	}

	infos, err := s.ModelInfos(ctx)
	if err != nil {
		t.Fatalf("ModelInfos() failed: %v", err)
	}
	if len(infos) != 1 || infos["episodes"].Order != 2 {
		t.Errorf("ModelInfos() = %+v", infos)
	}
}

func TestStoreRemoveModel(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	if _, err := s.SaveModel(ctx, "episodes", fitTestModel(t, 2)); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}
	if _, err := s.SaveModel(ctx, "keep", fitTestModel(t, 2)); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}
	if err := s.RemoveModel(ctx, "episodes"); err != nil {
		t.Fatalf("RemoveModel() failed: %v", err)
	}

	if _, err := s.LoadModel(ctx, "episodes"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("LoadModel() after removal error = %v, want ErrModelNotFound", err)
	}
	if err := s.RemoveModel(ctx, "episodes"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("second RemoveModel() error = %v, want ErrModelNotFound", err)
	}
	if _, err := s.LoadModel(ctx, "keep"); err != nil {
		t.Errorf("unrelated model was affected: %v", err)
	}
}

func TestStorePruneModel(t *testing.T) {
	_, s := setupTestDB(t)
	ctx := context.Background()

	m, _ := NewModel(2)
	m.Fit([]string{"Band Geeks", "Band Geeks", "Band Camp"})
	if _, err := s.SaveModel(ctx, "episodes", m); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}

	removed, err := s.PruneModel(ctx, "episodes", 1)
	if err != nil {
		t.Fatalf("PruneModel() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("PruneModel() removed %d links, want 2", removed)
	}

	loaded, err := s.LoadModel(ctx, "episodes")
	if err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	if stats := loaded.Stats(); stats.TotalChains != 3 || stats.TotalFrequency != 7 {
		t.Errorf("pruned stats = %+v, want 3 links with total frequency 7", stats)
	}
	for seed := uint64(0); seed < 10; seed++ {
		if out := loaded.Generate(newTestRand(seed)); out != "Band Geeks" {
			t.Errorf("seed %d: pruned model generated %q", seed, out)
		}
	}

	if _, err := s.PruneModel(ctx, "missing", 1); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("PruneModel() on missing model error = %v, want ErrModelNotFound", err)
	}
}

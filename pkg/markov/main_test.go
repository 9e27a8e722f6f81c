package markov

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var testTitles = []string{
	"Help Wanted",
	"Reef Blower",
	"Tea at the Treedome",
	"Bubblestand",
	"Jellyfishing",
	"Plankton's Army",
	"The Secret Box",
	"Band Geeks",
	"Krusty Krab Training Video",
	"The Krusty Sponge",
}

// setupTestDB creates a new on-disk SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-4000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// fitTestModel is a convenience helper that fits a model of the given order
// on testTitles.
func fitTestModel(t testing.TB, order int) *Model {
	m, err := NewModel(order)
	if err != nil {
		t.Fatalf("setup: NewModel(%d) failed: %v", order, err)
	}
	m.Fit(testTitles)
	return m
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus builds a few thousand synthetic titles by combining
// the test titles with each other.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		for i, a := range testTitles {
			for j, b := range testTitles {
				if i == j {
					continue
				}
				benchmarkCorpus = append(benchmarkCorpus,
					fmt.Sprintf("%s and %s", a, b),
					fmt.Sprintf("%s: %s", a, b),
				)
			}
		}
	})
	return benchmarkCorpus
}

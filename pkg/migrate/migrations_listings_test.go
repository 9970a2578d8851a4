package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListingsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_listings.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no listings migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS listings",
		"status listing_status NOT NULL DEFAULT 'active'",
		"CHECK (asking_price > 0)",
		"CHECK (percent_remaining IS NULL OR (percent_remaining >= 0 AND percent_remaining <= 100))",
		"DROP TABLE IF EXISTS listings",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

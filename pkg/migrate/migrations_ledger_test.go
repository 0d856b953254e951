package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hninyuwai/boutiquepos-backend/pkg/migrate"
)

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_ledger.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ledger migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CHECK (store_qty >= 0)",
		"CHECK (warehouse_qty >= 0)",
		"PRIMARY KEY (article_id, size_code)",
		"CREATE UNIQUE INDEX idx_movements_variant_seq",
		"REFERENCES articles(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS stock_movements",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}

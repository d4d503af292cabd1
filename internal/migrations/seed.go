package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/condo-care/backend/internal/domain"
)

// Fixed accounts created on first startup so the system is usable before
// anyone registers. Password for all three is "1234".
var seedAccounts = []struct {
	username string
	role     string
}{
	{"admin", domain.RoleAdmin},
	{"tech", domain.RoleTech},
	{"resident", domain.RoleUser},
}

const seedPassword = "1234"

// Seed upserts the default accounts. The insert is idempotent; existing
// rows are left untouched.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, acct := range seedAccounts {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, role)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (username) DO NOTHING`,
			acct.username,
			acct.username+"@condocare.local",
			string(hash),
			acct.role,
		)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", acct.username, err)
		}
	}

	logger.Info("default accounts ensured", slog.Int("count", len(seedAccounts)))
	return nil
}

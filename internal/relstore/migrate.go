// migrate.go implements the fixed user_version migration ladder shared by
// every collection kind (§6: "user_version... migrations are a fixed
// ladder 1 → 2 → 3 → 4 → 5, each step a set of ALTER TABLE / CREATE INDEX
// statements; user_version greater than the highest known is a hard fail").
package relstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/areggiori/dupin-go/internal/validate"
)

// Step is one rung of a collection kind's migration ladder: the statements
// that take the schema from version N-1 to version N.
type Step struct {
	Version int
	Stmts   []string
}

// Migrate brings db's schema up to the highest version in steps, starting
// from whatever user_version currently records. Steps must be supplied in
// ascending, contiguous Version order starting at 1; Migrate does not sort
// them. A user_version beyond the last step is CorruptMetadata (the file
// was written by a newer build).
func Migrate(ctx context.Context, db *sql.DB, steps []Step) error {
	var current int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("relstore: read user_version: %w", err)
	}

	highest := 0
	for _, s := range steps {
		if s.Version > highest {
			highest = s.Version
		}
	}
	if current > highest {
		return fmt.Errorf("%w: user_version %d exceeds known schema %d", validate.ErrCorruptMetadata, current, highest)
	}

	for _, step := range steps {
		if step.Version <= current {
			continue
		}
		err := func() error {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback() }()

			for _, stmt := range step.Stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration step %d: %w", step.Version, err)
				}
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version=%d`, step.Version)); err != nil {
				return err
			}
			return tx.Commit()
		}()
		if err != nil {
			return fmt.Errorf("relstore: migrate to %d: %w", step.Version, err)
		}
	}
	return nil
}

package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// CLI renders migration operations for the schemaflow migrate subcommands.
// All output goes through a single writer so tests can capture it.
type CLI struct {
	migrator Migrator
	output   io.Writer
}

// NewCLI creates a CLI writing to stdout.
func NewCLI(migrator Migrator) *CLI {
	return &CLI{
		migrator: migrator,
		output:   os.Stdout,
	}
}

// SetOutput redirects CLI output, used by tests.
func (c *CLI) SetOutput(w io.Writer) {
	c.output = w
}

// RunUp applies all pending migrations and reports how many were applied.
func (c *CLI) RunUp(ctx context.Context) error {
	before, err := c.migrator.Info(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.output, "Applying pending migrations...")
	if err := c.migrator.Up(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	after, err := c.migrator.Info(ctx)
	if err != nil {
		return err
	}

	applied := after.AppliedMigrations - before.AppliedMigrations
	if applied <= 0 {
		fmt.Fprintf(c.output, "Already up to date. Current version: %d\n", after.CurrentVersion)
		return nil
	}
	fmt.Fprintf(c.output, "Applied %d migration(s). Current version: %d\n", applied, after.CurrentVersion)
	return nil
}

// RunDown rolls back the most recent migration.
func (c *CLI) RunDown(ctx context.Context) error {
	fmt.Fprintln(c.output, "Rolling back last migration...")
	if err := c.migrator.Down(ctx); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	info, err := c.migrator.Info(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "Rollback complete. Current version: %d\n", info.CurrentVersion)
	return nil
}

// RunForce overwrites the recorded version without running migrations.
// This is the recovery path out of a dirty state.
func (c *CLI) RunForce(ctx context.Context, version int) error {
	fmt.Fprintf(c.output, "Forcing version to %d...\n", version)
	if err := c.migrator.Force(ctx, version); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}
	fmt.Fprintf(c.output, "Version forced to %d\n", version)
	return nil
}

// RunVersion prints the current schema version.
func (c *CLI) RunVersion(ctx context.Context) error {
	version, dirty, err := c.migrator.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	if version == 0 {
		fmt.Fprintln(c.output, "No migrations applied yet.")
		return nil
	}

	if dirty {
		fmt.Fprintf(c.output, "Current version: %d (dirty)\n", version)
		fmt.Fprintln(c.output, "Schema is in a dirty state. Recover with: schemaflow migrate force <version>")
		return nil
	}
	fmt.Fprintf(c.output, "Current version: %d\n", version)
	return nil
}

// RunStatus prints a per-migration table followed by totals.
func (c *CLI) RunStatus(ctx context.Context) error {
	statuses, err := c.migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if len(statuses) == 0 {
		fmt.Fprintln(c.output, "No migrations found.")
		return nil
	}

	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		fmt.Fprintf(w, "%06d\t%s\t%s\t%s\n", s.Version, s.Name, statusLabel(s), appliedAtLabel(s))
	}
	w.Flush()

	info, err := c.migrator.Info(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "\nTotal: %d, Applied: %d, Pending: %d\n",
		info.TotalMigrations, info.AppliedMigrations, info.PendingMigrations)
	return nil
}

// RunInfo prints the full migration state summary.
func (c *CLI) RunInfo(ctx context.Context) error {
	info, err := c.migrator.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get info: %w", err)
	}

	fmt.Fprintln(c.output, "Migration state:")
	fmt.Fprintf(c.output, "  Current version:  %d\n", info.CurrentVersion)
	fmt.Fprintf(c.output, "  Dirty:            %v\n", info.Dirty)
	fmt.Fprintf(c.output, "  Total:            %d\n", info.TotalMigrations)
	fmt.Fprintf(c.output, "  Applied:          %d\n", info.AppliedMigrations)
	fmt.Fprintf(c.output, "  Pending:          %d\n", info.PendingMigrations)
	if info.Dirty {
		fmt.Fprintln(c.output, "\nSchema is in a dirty state. Recover with: schemaflow migrate force <version>")
	}
	return nil
}

func statusLabel(s MigrationStatus) string {
	switch {
	case s.Dirty:
		return "Dirty"
	case s.Applied:
		return "Applied"
	default:
		return "Pending"
	}
}

func appliedAtLabel(s MigrationStatus) string {
	if s.AppliedAt == nil {
		return "-"
	}
	return s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
}

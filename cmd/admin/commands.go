// cmd/admin/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"waste-docket-api-server/config"
	"waste-docket-api-server/internal/app"
	"waste-docket-api-server/internal/logger"
	"waste-docket-api-server/internal/resolvers"

	"github.com/spf13/cobra"
)

// Jobs are the maintenance operations the CLI runs.
type Jobs interface {
	DeleteUsers(ctx context.Context, emails []string, dryRun bool) (resolvers.DeleteUsersReport, error)
	CleanupInvitations(ctx context.Context, olderThan time.Duration) (int64, error)
}

// openJobs builds the application; tests replace it.
var openJobs = func(ctx context.Context) (Jobs, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = a.Close(context.Background())
		_ = log.Sync()
	}
	return a.Resolver, closeFn, nil
}

func deleteUsersCmd() *cobra.Command {
	var (
		emails []string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "delete-users",
		Short: "Delete users, the fleets they own and their memberships",
		Example: `  admin delete-users --email a@example.com --email b@example.com
  admin delete-users --email a@example.com --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaned := normalizeEmails(emails)
			if len(cleaned) == 0 {
				return errors.New("at least one --email is required")
			}
			jobs, closeFn, err := openJobs(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			rep, err := jobs.DeleteUsers(cmd.Context(), cleaned, dryRun)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep, dryRun)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&emails, "email", nil, "email of a user to delete (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be deleted without writing")
	return cmd
}

func cleanupInvitationsCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup-invitations",
		Short: "Delete answered invitations older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			jobs, closeFn, err := openJobs(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := jobs.CleanupInvitations(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d invitations\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 720*time.Hour, "minimum age of an answered invitation")
	return cmd
}

func normalizeEmails(raw []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

func printReport(w io.Writer, rep resolvers.DeleteUsersReport, dryRun bool) {
	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(w, "%s %d users (%d owned fleets)\n", verb, len(rep.Deleted), rep.OwnedFleets)
	for _, e := range rep.Deleted {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	if len(rep.Missing) > 0 {
		fmt.Fprintf(w, "Not found: %s\n", strings.Join(rep.Missing, ", "))
	}
}

// internal/resolvers/jobs.go
package resolvers

import (
	"context"
	"fmt"
	"time"

	"waste-docket-api-server/internal/auditlog"

	"go.uber.org/zap"
)

// DeleteUsersReport describes a bulk user deletion.
type DeleteUsersReport struct {
	Deleted     []string
	Missing     []string
	OwnedFleets int
}

// DeleteUsers removes each user, the fleets they own (full cascade) and
// their membership entries. With dryRun nothing is written.
func (r *Resolver) DeleteUsers(ctx context.Context, emails []string, dryRun bool) (DeleteUsersReport, error) {
	var rep DeleteUsersReport
	err := r.track(ctx, auditlog.CronJobStart, auditlog.CronJobEnd, "deleteUsers",
		[]auditlog.Param{auditlog.P("emails", emails), auditlog.P("dryRun", dryRun)},
		func() (string, error) {
			for _, email := range emails {
				user, err := r.Users.FindByEmail(ctx, email)
				if isNotFound(err) {
					rep.Missing = append(rep.Missing, email)
					continue
				}
				if err != nil {
					return "", err
				}
				owned, err := r.Fleets.ListOwnedBy(ctx, email)
				if err != nil {
					return "", err
				}
				rep.OwnedFleets += len(owned)
				if !dryRun {
					if err := r.removeUser(ctx, user, true); err != nil {
						return "", fmt.Errorf("delete %s: %w", email, err)
					}
					r.Log.Info("user deleted", zap.String("email", email), zap.Int("ownedFleets", len(owned)))
				}
				rep.Deleted = append(rep.Deleted, email)
			}
			return fmt.Sprintf("deleted %d users, %d fleets, %d missing, dry run %t",
				len(rep.Deleted), rep.OwnedFleets, len(rep.Missing), dryRun), nil
		})
	return rep, err
}

// CleanupInvitations deletes non-pending invitations last touched before
// now minus olderThan.
func (r *Resolver) CleanupInvitations(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := r.now().Add(-olderThan)
	var n int64
	err := r.track(ctx, auditlog.CronJobStart, auditlog.CronJobEnd, "cleanupInvitations",
		[]auditlog.Param{auditlog.P("cutoff", cutoff.UTC().Format(time.RFC3339))},
		func() (string, error) {
			var err error
			n, err = r.Invitations.DeleteResolvedBefore(ctx, cutoff)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %d invitations", n), nil
		})
	return n, err
}

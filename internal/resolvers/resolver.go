// internal/resolvers/resolver.go
package resolvers

import (
	"time"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/upload"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options are the tunables read from configuration.
type Options struct {
	TokenTTL             time.Duration
	InvitationTemplateID string
	AppBaseURL           string
}

// Deps is everything a Resolver talks to. Collaborators may be nil when
// not configured; operations that need them then fail with 500.
type Deps struct {
	Users         UserStore
	Fleets        FleetStore
	Dockets       DocketStore
	Customers     CustomerStore
	Facilities    FacilityStore
	Invitations   InvitationStore
	Permits       PermitStore
	Suggestions   SuggestionStore
	AppVersions   AppVersionStore
	Subscriptions SubscriptionStore
	ApiLogs       ApiLogStore
	Chunks        map[models.ChunkKind]*upload.Accumulator

	Mailer    Mailer
	SMS       SMS
	Storage   ObjectStorage
	Billing   Billing
	Notifier  Notifier
	RenderPDF PDFRenderer
	Secrets   SecretSource
	Audit     *auditlog.Writer

	Options Options
	Log     *zap.Logger
}

type Resolver struct {
	Deps

	validate *validator.Validate
	ops      map[string]*Operation
	now      func() time.Time
}

func New(deps Deps) *Resolver {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Options.TokenTTL <= 0 {
		deps.Options.TokenTTL = 720 * time.Hour
	}
	r := &Resolver{
		Deps:     deps,
		validate: newValidator(),
		ops:      map[string]*Operation{},
		now:      time.Now,
	}
	for _, group := range [][]*Operation{
		r.userOperations(),
		r.fleetOperations(),
		r.invitationOperations(),
		r.customerOperations(),
		r.facilityOperations(),
		r.docketOperations(),
		r.uploadOperations(),
		r.permitOperations(),
		r.recordOperations(),
		r.auditOperations(),
	} {
		for _, op := range group {
			r.ops[op.Name] = op
		}
	}
	return r
}

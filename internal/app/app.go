// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"waste-docket-api-server/config"
	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/billing"
	"waste-docket-api-server/internal/database"
	"waste-docket-api-server/internal/mailer"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/pdf"
	"waste-docket-api-server/internal/repository"
	"waste-docket-api-server/internal/resolvers"
	"waste-docket-api-server/internal/s3"
	"waste-docket-api-server/internal/secrets"
	"waste-docket-api-server/internal/sms"
	"waste-docket-api-server/internal/socket"
	"waste-docket-api-server/internal/upload"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// CurrentAppVersion is seeded when no app version record exists.
const CurrentAppVersion = "1.0.0"

// App is the wired process shared by the API server and the admin CLI.
type App struct {
	Config   config.Config
	Log      *zap.Logger
	Client   *mongo.Client
	DB       *mongo.Database
	Secrets  *secrets.Provider
	Hub      *socket.Hub
	Resolver *resolvers.Resolver
}

// Build connects to Mongo, resolves the secret bundle and wires every
// collaborator that has credentials. Collaborators without credentials stay
// nil and the operations needing them fail at call time.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	provider, err := newSecrets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	bundle, err := provider.GetInstance(ctx)
	if err != nil {
		return nil, err
	}

	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, Client: client, DB: db, Secrets: provider, Hub: socket.NewHub(log)}

	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	if err := database.SeedAdmin(ctx, db, cfg.Admin.SeedEmail, log); err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if err := database.SeedAppVersion(ctx, db, CurrentAppVersion, log); err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("seed app version: %w", err)
	}

	deps, err := a.deps(ctx, bundle)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	a.Resolver = resolvers.New(deps)
	return a, nil
}

func newSecrets(ctx context.Context, cfg config.Config) (*secrets.Provider, error) {
	fallback := secrets.Bundle{
		JWTSecret:        cfg.JWT.Secret,
		BackendAPIKey:    cfg.Backend.APIKey,
		SendGridAPIKey:   cfg.SendGrid.APIKey,
		TwilioAccountSID: cfg.Twilio.AccountSID,
		TwilioAuthToken:  cfg.Twilio.AuthToken,
		StripeSecretKey:  cfg.Stripe.SecretKey,
		S3Bucket:         cfg.S3.Bucket,
	}
	if cfg.Secrets.SecretID == "" {
		return secrets.NewStatic(fallback), nil
	}
	fetcher, err := secrets.NewSecretsManagerFetcher(ctx, cfg.Secrets.Region)
	if err != nil {
		return nil, err
	}
	return secrets.NewProvider(fetcher, cfg.Secrets.SecretID, fallback), nil
}

func (a *App) deps(ctx context.Context, bundle *secrets.Bundle) (resolvers.Deps, error) {
	cfg, log, db := a.Config, a.Log, a.DB

	types, err := auditlog.ParseTypes(cfg.AuditLog.Types)
	if err != nil {
		return resolvers.Deps{}, fmt.Errorf("auditLog.types: %w", err)
	}
	levels, err := auditlog.ParseLevels(cfg.AuditLog.Levels)
	if err != nil {
		return resolvers.Deps{}, fmt.Errorf("auditLog.levels: %w", err)
	}
	apiLogs := repository.NewApiLogRepository(db)

	chunks := map[models.ChunkKind]*upload.Accumulator{}
	for _, kind := range []models.ChunkKind{
		models.ChunkDriverSignature,
		models.ChunkCustomerSignature,
		models.ChunkWasteFacilityRepSignature,
		models.ChunkPdf,
	} {
		store, err := repository.NewChunkRepository(db, kind)
		if err != nil {
			return resolvers.Deps{}, err
		}
		chunks[kind] = upload.NewAccumulator(store, cfg.Uploads.ChunkTTL, func(err error) bool {
			return errors.Is(err, repository.ErrNotFound)
		})
	}

	deps := resolvers.Deps{
		Users:         repository.NewUserRepository(db),
		Fleets:        repository.NewFleetRepository(db),
		Dockets:       repository.NewDocketRepository(db),
		Customers:     repository.NewCustomerRepository(db),
		Facilities:    repository.NewFacilityRepository(db),
		Invitations:   repository.NewInvitationRepository(db),
		Permits:       repository.NewPermitRepository(db),
		Suggestions:   repository.NewSuggestionRepository(db),
		AppVersions:   repository.NewAppVersionRepository(db),
		Subscriptions: repository.NewSubscriptionRepository(db),
		ApiLogs:       apiLogs,
		Chunks:        chunks,
		Notifier:      a.Hub,
		RenderPDF:     pdf.RenderDocket,
		Secrets:       a.Secrets,
		Audit:         auditlog.NewWriter(apiLogs, auditlog.NewFilter(types, levels), cfg.AuditLog.TTL, log),
		Options: resolvers.Options{
			TokenTTL:             cfg.JWT.Expiration,
			InvitationTemplateID: cfg.SendGrid.InvitationTemplate,
			AppBaseURL:           cfg.App.BaseURL,
		},
		Log: log,
	}

	if m, err := mailer.NewSendGrid(bundle.SendGridAPIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, log); err == nil {
		deps.Mailer = m
	} else {
		log.Warn("email delivery disabled", zap.Error(err))
	}
	if t, err := sms.NewTwilio(bundle.TwilioAccountSID, bundle.TwilioAuthToken, cfg.Twilio.FromNumber, log); err == nil {
		deps.SMS = t
	} else {
		log.Warn("sms delivery disabled", zap.Error(err))
	}
	if s, err := billing.NewStripe(bundle.StripeSecretKey, log); err == nil {
		deps.Billing = s
	} else {
		log.Warn("billing disabled", zap.Error(err))
	}
	if bundle.S3Bucket != "" {
		u, err := s3.NewUploader(ctx, cfg.S3, bundle.S3Bucket, log)
		if err != nil {
			return resolvers.Deps{}, err
		}
		deps.Storage = u
	} else {
		log.Warn("object storage disabled: no bucket configured")
	}
	return deps, nil
}

// Ping checks the primary is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.Client.Ping(ctx, readpref.Primary())
}

func (a *App) Close(ctx context.Context) error {
	if a.Client == nil {
		return nil
	}
	return a.Client.Disconnect(ctx)
}

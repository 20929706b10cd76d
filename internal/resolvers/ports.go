// internal/resolvers/ports.go
package resolvers

import (
	"context"
	"io"
	"time"

	"waste-docket-api-server/internal/billing"
	"waste-docket-api-server/internal/mailer"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/repository"
	"waste-docket-api-server/internal/search"
	"waste-docket-api-server/internal/secrets"
	"waste-docket-api-server/internal/socket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks waste-docket-api-server/internal/resolvers Mailer,SMS,ObjectStorage

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	SetSelectedFleet(ctx context.Context, userID primitive.ObjectID, fleetID *primitive.ObjectID) error
	AddFleet(ctx context.Context, userID, fleetID primitive.ObjectID, selectIt bool) error
	RemoveFleet(ctx context.Context, userID, fleetID primitive.ObjectID) error
	DetachFleet(ctx context.Context, fleetID primitive.ObjectID) error
	AddInvitation(ctx context.Context, userID, invitationID primitive.ObjectID) error
	SetAccountType(ctx context.Context, userID primitive.ObjectID, t models.AccountType) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, q search.Query) ([]models.User, int64, error)
}

type FleetStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fleet, error)
	FindForMember(ctx context.Context, id primitive.ObjectID, email string) (*models.Fleet, error)
	ListForMember(ctx context.Context, email string) ([]models.Fleet, error)
	ListOwnedBy(ctx context.Context, email string) ([]models.Fleet, error)
	OwnerHasFleetNamed(ctx context.Context, ownerEmail, name string) (bool, error)
	Create(ctx context.Context, fleet *models.Fleet) error
	UpdateDetails(ctx context.Context, id primitive.ObjectID, details models.FleetDetails) error
	SetDocketNumber(ctx context.Context, id primitive.ObjectID, n int64) error
	AddMember(ctx context.Context, id primitive.ObjectID, email string) error
	RemoveMember(ctx context.Context, id primitive.ObjectID, email string) error
	RemoveMemberEverywhere(ctx context.Context, email string) error
	AddInvitation(ctx context.Context, id, invitationID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, q search.Query) ([]models.Fleet, int64, error)
}

type DocketStore interface {
	Create(ctx context.Context, docket *models.Docket) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Docket, error)
	FindView(ctx context.Context, id primitive.ObjectID) (*models.DocketView, error)
	Update(ctx context.Context, docket *models.Docket) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error)
	Search(ctx context.Context, q search.Query) ([]models.DocketView, int64, error)
}

type CustomerStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CustomerContact, error)
	FindByName(ctx context.Context, fleetID primitive.ObjectID, name string) (*models.CustomerContact, error)
	NamesInFleet(ctx context.Context, fleetID primitive.ObjectID) ([]string, error)
	Create(ctx context.Context, c *models.CustomerContact) error
	Update(ctx context.Context, c *models.CustomerContact) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error)
	Search(ctx context.Context, q search.Query) ([]models.CustomerContact, int64, error)
}

type FacilityStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DestinationFacility, error)
	FindByExternalID(ctx context.Context, fleetID primitive.ObjectID, externalID string) (*models.DestinationFacility, error)
	List(ctx context.Context, fleetID primitive.ObjectID, term, externalID string) ([]models.DestinationFacility, error)
	Create(ctx context.Context, f *models.DestinationFacility) error
	Update(ctx context.Context, f *models.DestinationFacility) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error)
}

type InvitationStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FleetInvitation, error)
	HasPending(ctx context.Context, fleetID primitive.ObjectID, email string) (bool, error)
	Create(ctx context.Context, inv *models.FleetInvitation) error
	ListByInvitee(ctx context.Context, email string, status models.InvitationStatus) ([]models.FleetInvitation, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus) error
	MarkFleetDeleted(ctx context.Context, fleetID primitive.ObjectID) (int64, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PermitStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WasteCollectionPermitDocument, error)
	ListByFleet(ctx context.Context, fleetID primitive.ObjectID) ([]models.WasteCollectionPermitDocument, error)
	Create(ctx context.Context, p *models.WasteCollectionPermitDocument) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFleet(ctx context.Context, fleetID primitive.ObjectID) (int64, error)
}

type SuggestionStore interface {
	Create(ctx context.Context, s *models.Suggestion) error
	List(ctx context.Context, page search.Page) ([]models.Suggestion, int64, error)
}

type AppVersionStore interface {
	Get(ctx context.Context) (*models.AppVersion, error)
	Upsert(ctx context.Context, v *models.AppVersion) error
}

type SubscriptionStore interface {
	FindByFleet(ctx context.Context, fleetID primitive.ObjectID) (*models.Subscription, error)
}

type ApiLogStore interface {
	List(ctx context.Context, f repository.ApiLogFilter, page search.Page) ([]models.ApiLog, int64, error)
}

// --- Collaborators ---

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type SMS interface {
	Send(body, to string) error
}

type ObjectStorage interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
	GenerateDownloadLink(ctx context.Context, objectRef, contentType string) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

type Billing interface {
	Customers(c billing.Cursor) (billing.Page[billing.Customer], error)
	Subscriptions(customerID string, c billing.Cursor) (billing.Page[billing.Subscription], error)
}

type Notifier interface {
	Notify(email string, event socket.Event) error
}

type SecretSource interface {
	GetInstance(ctx context.Context) (*secrets.Bundle, error)
}

// PDFRenderer lays out a docket as a PDF document.
type PDFRenderer func(fleet *models.Fleet, docket *models.DocketView) ([]byte, error)

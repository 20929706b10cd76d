// internal/resolvers/fakes_test.go
package resolvers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/auth"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/repository"
	"waste-docket-api-server/internal/search"
	"waste-docket-api-server/internal/secrets"
	"waste-docket-api-server/internal/socket"
	"waste-docket-api-server/internal/upload"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testSecret = "test-secret"
	testAPIKey = "backend-key"
)

// scopedFleet pulls the fleetId constraint out of a query scope.
func scopedFleet(q search.Query) (primitive.ObjectID, bool) {
	for _, e := range q.Scope {
		if e.Key == "fleetId" {
			id, ok := e.Value.(primitive.ObjectID)
			return id, ok
		}
	}
	return primitive.NilObjectID, false
}

func window[T any](items []T, p search.Page) []T {
	lo, hi := p.Window(len(items))
	return append([]T{}, items[lo:hi]...)
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.PersonalDetails.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = primitive.NewObjectID()
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUsers) with(id primitive.ObjectID, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user *models.User) error {
	return f.with(user.ID, func(u *models.User) {
		u.PersonalDetails, u.AccountSubType, u.SignUpCompleted = user.PersonalDetails, user.AccountSubType, user.SignUpCompleted
	})
}

func (f *fakeUsers) SetSelectedFleet(_ context.Context, id primitive.ObjectID, fleetID *primitive.ObjectID) error {
	return f.with(id, func(u *models.User) { u.SelectedFleet = fleetID })
}

func (f *fakeUsers) AddFleet(_ context.Context, id, fleetID primitive.ObjectID, selectIt bool) error {
	return f.with(id, func(u *models.User) {
		u.Fleets = append(u.Fleets, fleetID)
		if selectIt {
			u.SelectedFleet = &fleetID
		}
	})
}

func (f *fakeUsers) RemoveFleet(_ context.Context, id, fleetID primitive.ObjectID) error {
	return f.with(id, func(u *models.User) { u.Fleets = removeID(u.Fleets, fleetID) })
}

func (f *fakeUsers) DetachFleet(_ context.Context, fleetID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		u.Fleets = removeID(u.Fleets, fleetID)
		if u.SelectedFleet != nil && *u.SelectedFleet == fleetID {
			u.SelectedFleet = nil
		}
	}
	return nil
}

func (f *fakeUsers) AddInvitation(_ context.Context, id, invID primitive.ObjectID) error {
	return f.with(id, func(u *models.User) { u.Invitations = append(u.Invitations, invID) })
}

func (f *fakeUsers) SetAccountType(_ context.Context, id primitive.ObjectID, t models.AccountType) error {
	return f.with(id, func(u *models.User) { u.AccountType = t })
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) Search(_ context.Context, q search.Query) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.User
	for _, u := range f.byID {
		all = append(all, *u)
	}
	return window(all, q.Page), int64(len(all)), nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type fakeFleets struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Fleet
}

func (f *fakeFleets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Fleet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *fl
	c.MembersEmails = append([]string{}, fl.MembersEmails...)
	return &c, nil
}

func (f *fakeFleets) FindForMember(ctx context.Context, id primitive.ObjectID, email string) (*models.Fleet, error) {
	fl, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fl.OwnerEmail != email && !containsString(fl.MembersEmails, email) {
		return nil, repository.ErrNotFound
	}
	return fl, nil
}

func (f *fakeFleets) list(keep func(*models.Fleet) bool) []models.Fleet {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Fleet{}
	for _, fl := range f.byID {
		if keep(fl) {
			out = append(out, *fl)
		}
	}
	return out
}

func (f *fakeFleets) ListForMember(_ context.Context, email string) ([]models.Fleet, error) {
	return f.list(func(fl *models.Fleet) bool {
		return fl.OwnerEmail == email || containsString(fl.MembersEmails, email)
	}), nil
}

func (f *fakeFleets) ListOwnedBy(_ context.Context, email string) ([]models.Fleet, error) {
	return f.list(func(fl *models.Fleet) bool { return fl.OwnerEmail == email }), nil
}

func (f *fakeFleets) OwnerHasFleetNamed(_ context.Context, owner, name string) (bool, error) {
	return len(f.list(func(fl *models.Fleet) bool {
		return fl.OwnerEmail == owner && strings.EqualFold(fl.Name, name)
	})) > 0, nil
}

func (f *fakeFleets) Create(_ context.Context, fl *models.Fleet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl.ID = primitive.NewObjectID()
	c := *fl
	f.byID[fl.ID] = &c
	return nil
}

func (f *fakeFleets) with(id primitive.ObjectID, fn func(*models.Fleet)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(fl)
	return nil
}

func (f *fakeFleets) UpdateDetails(_ context.Context, id primitive.ObjectID, d models.FleetDetails) error {
	return f.with(id, func(fl *models.Fleet) { fl.FleetDetails = d })
}

func (f *fakeFleets) SetDocketNumber(_ context.Context, id primitive.ObjectID, n int64) error {
	return f.with(id, func(fl *models.Fleet) { fl.DocketNumber = n })
}

func (f *fakeFleets) AddMember(_ context.Context, id primitive.ObjectID, email string) error {
	return f.with(id, func(fl *models.Fleet) { fl.MembersEmails = append(fl.MembersEmails, email) })
}

func (f *fakeFleets) RemoveMember(_ context.Context, id primitive.ObjectID, email string) error {
	return f.with(id, func(fl *models.Fleet) { fl.MembersEmails = removeString(fl.MembersEmails, email) })
}

func (f *fakeFleets) RemoveMemberEverywhere(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range f.byID {
		fl.MembersEmails = removeString(fl.MembersEmails, email)
	}
	return nil
}

func (f *fakeFleets) AddInvitation(_ context.Context, id, invID primitive.ObjectID) error {
	return f.with(id, func(fl *models.Fleet) { fl.Invitations = append(fl.Invitations, invID) })
}

func (f *fakeFleets) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFleets) Search(_ context.Context, q search.Query) ([]models.Fleet, int64, error) {
	all := f.list(func(*models.Fleet) bool { return true })
	return window(all, q.Page), int64(len(all)), nil
}

type fakeDockets struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*models.Docket
	order     []primitive.ObjectID
	customers *fakeCustomers
}

func (f *fakeDockets) Create(_ context.Context, d *models.Docket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = primitive.NewObjectID()
	c := *d
	f.byID[d.ID] = &c
	f.order = append(f.order, d.ID)
	return nil
}

func (f *fakeDockets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Docket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDockets) view(d models.Docket) models.DocketView {
	v := models.DocketView{Docket: d}
	if d.CustomerContactID != nil && f.customers != nil {
		if c, err := f.customers.FindByID(context.Background(), *d.CustomerContactID); err == nil {
			v.CustomerContact = c
		}
	}
	return v
}

func (f *fakeDockets) FindView(ctx context.Context, id primitive.ObjectID) (*models.DocketView, error) {
	d, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := f.view(*d)
	return &v, nil
}

func (f *fakeDockets) Update(_ context.Context, d *models.Docket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.DocketData, cur.CustomerContactID, cur.DestinationFacilityID = d.DocketData, d.CustomerContactID, d.DestinationFacilityID
	return nil
}

func (f *fakeDockets) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDockets) DeleteByFleet(_ context.Context, fleetID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, d := range f.byID {
		if d.FleetID == fleetID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeDockets) Search(_ context.Context, q search.Query) ([]models.DocketView, int64, error) {
	fleetID, scoped := scopedFleet(q)
	f.mu.Lock()
	var matched []models.Docket
	for _, id := range f.order {
		d, ok := f.byID[id]
		if ok && (!scoped || d.FleetID == fleetID) {
			matched = append(matched, *d)
		}
	}
	f.mu.Unlock()
	views := make([]models.DocketView, 0, len(matched))
	for _, d := range matched {
		views = append(views, f.view(d))
	}
	return window(views, q.Page), int64(len(views)), nil
}

type fakeCustomers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.CustomerContact
}

func (f *fakeCustomers) FindByID(_ context.Context, id primitive.ObjectID) (*models.CustomerContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) FindByName(_ context.Context, fleetID primitive.ObjectID, name string) (*models.CustomerContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.FleetID == fleetID && strings.EqualFold(c.CustomerName, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCustomers) NamesInFleet(_ context.Context, fleetID primitive.ObjectID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.byID {
		if c.FleetID == fleetID {
			names = append(names, c.CustomerName)
		}
	}
	return names, nil
}

func (f *fakeCustomers) Create(_ context.Context, c *models.CustomerContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) Update(_ context.Context, c *models.CustomerContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCustomers) DeleteByFleet(_ context.Context, fleetID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, c := range f.byID {
		if c.FleetID == fleetID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCustomers) Search(_ context.Context, q search.Query) ([]models.CustomerContact, int64, error) {
	fleetID, scoped := scopedFleet(q)
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.CustomerContact
	for _, c := range f.byID {
		if !scoped || c.FleetID == fleetID {
			all = append(all, *c)
		}
	}
	return window(all, q.Page), int64(len(all)), nil
}

func (f *fakeCustomers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeFacilities struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.DestinationFacility
}

func (f *fakeFacilities) FindByID(_ context.Context, id primitive.ObjectID) (*models.DestinationFacility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fa, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *fa
	return &c, nil
}

func (f *fakeFacilities) FindByExternalID(ctx context.Context, fleetID primitive.ObjectID, ext string) (*models.DestinationFacility, error) {
	list, _ := f.List(ctx, fleetID, "", ext)
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (f *fakeFacilities) List(_ context.Context, fleetID primitive.ObjectID, term, ext string) ([]models.DestinationFacility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.DestinationFacility{}
	for _, fa := range f.byID {
		d := fa.DestinationFacilityData
		if fa.FleetID != fleetID || (ext != "" && d.DestinationFacilityID != ext) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(d.DestinationFacilityName), strings.ToLower(term)) {
			continue
		}
		out = append(out, *fa)
	}
	return out, nil
}

func (f *fakeFacilities) Create(_ context.Context, fa *models.DestinationFacility) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fa.ID = primitive.NewObjectID()
	c := *fa
	f.byID[fa.ID] = &c
	return nil
}

func (f *fakeFacilities) Update(_ context.Context, fa *models.DestinationFacility) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[fa.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *fa
	f.byID[fa.ID] = &c
	return nil
}

func (f *fakeFacilities) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFacilities) DeleteByFleet(_ context.Context, fleetID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, fa := range f.byID {
		if fa.FleetID == fleetID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeInvitations struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.FleetInvitation
}

func (f *fakeInvitations) FindByID(_ context.Context, id primitive.ObjectID) (*models.FleetInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *inv
	return &c, nil
}

func (f *fakeInvitations) HasPending(_ context.Context, fleetID primitive.ObjectID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byID {
		if inv.FleetID == fleetID && inv.InviteeEmail == email && inv.Status == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitations) Create(_ context.Context, inv *models.FleetInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = primitive.NewObjectID()
	c := *inv
	f.byID[inv.ID] = &c
	return nil
}

func (f *fakeInvitations) ListByInvitee(_ context.Context, email string, status models.InvitationStatus) ([]models.FleetInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.FleetInvitation{}
	for _, inv := range f.byID {
		if inv.InviteeEmail == email && (status == "" || inv.Status == status) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitations) SetStatus(_ context.Context, id primitive.ObjectID, status models.InvitationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeInvitations) MarkFleetDeleted(_ context.Context, fleetID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, inv := range f.byID {
		if inv.FleetID == fleetID && inv.Status == models.InvitationPending {
			inv.Status = models.InvitationFleetDeleted
			n++
		}
	}
	return n, nil
}

func (f *fakeInvitations) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, inv := range f.byID {
		if inv.Status != models.InvitationPending && inv.UpdatedAt.Before(cutoff) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakePermits struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.WasteCollectionPermitDocument
}

func (f *fakePermits) FindByID(_ context.Context, id primitive.ObjectID) (*models.WasteCollectionPermitDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePermits) ListByFleet(_ context.Context, fleetID primitive.ObjectID) ([]models.WasteCollectionPermitDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WasteCollectionPermitDocument{}
	for _, p := range f.byID {
		if p.FleetID == fleetID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePermits) Create(_ context.Context, p *models.WasteCollectionPermitDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakePermits) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePermits) DeleteByFleet(_ context.Context, fleetID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, p := range f.byID {
		if p.FleetID == fleetID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeChunks struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.ChunkedUpload
}

func (f *fakeChunks) FindByID(_ context.Context, id primitive.ObjectID) (*models.ChunkedUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, upload.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChunks) Create(_ context.Context, c *models.ChunkedUpload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeChunks) SetPayload(_ context.Context, id primitive.ObjectID, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return upload.ErrNotFound
	}
	c.Payload = payload
	return nil
}

func (f *fakeChunks) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeApiLogs struct {
	mu      sync.Mutex
	records []models.ApiLog
}

func (f *fakeApiLogs) Insert(_ context.Context, rec *models.ApiLog) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = primitive.NewObjectID()
	f.records = append(f.records, *rec)
	return rec.ID.Hex(), nil
}

func (f *fakeApiLogs) List(_ context.Context, flt repository.ApiLogFilter, p search.Page) ([]models.ApiLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ApiLog
	for _, rec := range f.records {
		if (flt.Type == "" || rec.Type == flt.Type) && (flt.Level == "" || rec.Level == flt.Level) &&
			(flt.FunctionName == "" || rec.FunctionName == flt.FunctionName) {
			out = append(out, rec)
		}
	}
	return window(out, p), int64(len(out)), nil
}

func (f *fakeApiLogs) byType(t auditlog.Type) []models.ApiLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ApiLog
	for _, rec := range f.records {
		if rec.Type == string(t) {
			out = append(out, rec)
		}
	}
	return out
}

type fakeSuggestions struct {
	mu    sync.Mutex
	items []models.Suggestion
}

func (f *fakeSuggestions) Create(_ context.Context, s *models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = primitive.NewObjectID()
	f.items = append(f.items, *s)
	return nil
}

func (f *fakeSuggestions) List(_ context.Context, p search.Page) ([]models.Suggestion, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return window(f.items, p), int64(len(f.items)), nil
}

type fakeAppVersions struct {
	current *models.AppVersion
}

func (f *fakeAppVersions) Get(context.Context) (*models.AppVersion, error) {
	if f.current == nil {
		return nil, repository.ErrNotFound
	}
	c := *f.current
	return &c, nil
}

func (f *fakeAppVersions) Upsert(_ context.Context, v *models.AppVersion) error {
	c := *v
	f.current = &c
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events map[string][]socket.Event
}

func (f *fakeNotifier) Notify(email string, e socket.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[email] = append(f.events[email], e)
	return nil
}

func (f *fakeNotifier) sent(email string) []socket.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[email]
}

// env is a resolver over in-memory stores.
type env struct {
	r           *Resolver
	users       *fakeUsers
	fleets      *fakeFleets
	dockets     *fakeDockets
	customers   *fakeCustomers
	facilities  *fakeFacilities
	invitations *fakeInvitations
	permits     *fakePermits
	suggestions *fakeSuggestions
	versions    *fakeAppVersions
	chunks      map[models.ChunkKind]*fakeChunks
	logs        *fakeApiLogs
	notifier    *fakeNotifier
}

func newEnv(t *testing.T, with func(*Deps)) *env {
	t.Helper()
	e := &env{
		users:       &fakeUsers{byID: map[primitive.ObjectID]*models.User{}},
		fleets:      &fakeFleets{byID: map[primitive.ObjectID]*models.Fleet{}},
		customers:   &fakeCustomers{byID: map[primitive.ObjectID]*models.CustomerContact{}},
		facilities:  &fakeFacilities{byID: map[primitive.ObjectID]*models.DestinationFacility{}},
		invitations: &fakeInvitations{byID: map[primitive.ObjectID]*models.FleetInvitation{}},
		permits:     &fakePermits{byID: map[primitive.ObjectID]*models.WasteCollectionPermitDocument{}},
		suggestions: &fakeSuggestions{},
		versions:    &fakeAppVersions{},
		chunks:      map[models.ChunkKind]*fakeChunks{},
		logs:        &fakeApiLogs{},
		notifier:    &fakeNotifier{events: map[string][]socket.Event{}},
	}
	e.dockets = &fakeDockets{byID: map[primitive.ObjectID]*models.Docket{}, customers: e.customers}

	accs := map[models.ChunkKind]*upload.Accumulator{}
	for _, k := range []models.ChunkKind{models.ChunkDriverSignature, models.ChunkCustomerSignature, models.ChunkWasteFacilityRepSignature, models.ChunkPdf} {
		e.chunks[k] = &fakeChunks{byID: map[primitive.ObjectID]*models.ChunkedUpload{}}
		accs[k] = upload.NewAccumulator(e.chunks[k], time.Hour, nil)
	}

	filter := auditlog.NewFilter(
		[]auditlog.Type{auditlog.QueryStart, auditlog.QueryEnd, auditlog.MutationStart, auditlog.MutationEnd,
			auditlog.CronJobStart, auditlog.CronJobEnd, auditlog.APIProcessingStart, auditlog.APIProcessingEnd},
		[]auditlog.Level{auditlog.Info, auditlog.Error},
	)
	deps := Deps{
		Users:       e.users,
		Fleets:      e.fleets,
		Dockets:     e.dockets,
		Customers:   e.customers,
		Facilities:  e.facilities,
		Invitations: e.invitations,
		Permits:     e.permits,
		Suggestions: e.suggestions,
		AppVersions: e.versions,
		ApiLogs:     e.logs,
		Chunks:      accs,
		Notifier:    e.notifier,
		Secrets:     secrets.NewStatic(secrets.Bundle{JWTSecret: testSecret, BackendAPIKey: testAPIKey}),
		Audit:       auditlog.NewWriter(e.logs, filter, time.Hour, nil),
	}
	if with != nil {
		with(&deps)
	}
	e.r = New(deps)
	return e
}

func (e *env) user(t *testing.T, email string, admin bool) (*models.User, Credentials) {
	t.Helper()
	u := &models.User{
		PersonalDetails: models.PersonalDetails{Name: strings.Split(email, "@")[0], Email: email},
		AccountType:     models.AccountTypeUser,
	}
	if admin {
		u.AccountType = models.AccountTypeAdmin
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := auth.GenerateJWT(testSecret, u.ID.Hex(), email, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return u, Credentials{Token: token}
}

func (e *env) fleet(t *testing.T, owner *models.User, prefix string, number int64, members ...string) *models.Fleet {
	t.Helper()
	f := &models.Fleet{
		OwnerEmail:    owner.PersonalDetails.Email,
		FleetDetails:  models.FleetDetails{Name: "Fleet " + prefix, PrefixDocketNumber: prefix},
		DocketNumber:  number,
		MembersEmails: members,
	}
	if err := e.fleets.Create(context.Background(), f); err != nil {
		t.Fatalf("create fleet: %v", err)
	}
	return f
}

// call runs an operation and fails the test if it is unknown.
func (e *env) call(t *testing.T, creds Credentials, name string, input any) Enveloped {
	t.Helper()
	out, known := e.r.Invoke(context.Background(), name, creds, input)
	if !known {
		t.Fatalf("operation %s is not registered", name)
	}
	return out
}

func status(out Enveloped) int { return out.Envelope().Status }

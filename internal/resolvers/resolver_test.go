// internal/resolvers/resolver_test.go
package resolvers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/auth"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
	"waste-docket-api-server/internal/secrets"
)

func TestUnknownOperation(t *testing.T) {
	e := newEnv(t, nil)
	out, known := e.r.Execute(context.Background(), "dropDatabase", Credentials{}, nil)
	if known {
		t.Fatal("dropDatabase should not be known")
	}
	if status(out) != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status(out))
	}
}

type panickingSecrets struct{}

func (panickingSecrets) GetInstance(context.Context) (*secrets.Bundle, error) {
	panic("secret store exploded")
}

func TestPanickingOperationIsKnownAndFails500(t *testing.T) {
	e := newEnv(t, func(d *Deps) { d.Secrets = panickingSecrets{} })
	out, known := e.r.Execute(context.Background(), "getUser", Credentials{Token: "x"}, nil)
	if !known {
		t.Fatal("getUser should be known after a panic")
	}
	if status(out) != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status(out))
	}
}

func TestBadTokensYield401WithoutWrites(t *testing.T) {
	e := newEnv(t, nil)
	owner, _ := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	expired, err := auth.GenerateJWT(testSecret, owner.ID.Hex(), owner.PersonalDetails.Email, -time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	forged, err := auth.GenerateJWT("other-secret", owner.ID.Hex(), owner.PersonalDetails.Email, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	for name, token := range map[string]string{"expired": expired, "forged": forged, "garbage": "not.a.jwt", "missing": ""} {
		t.Run(name, func(t *testing.T) {
			out := e.call(t, Credentials{Token: token}, "addCustomerInFleet", AddCustomerInput{
				FleetID:  fleet.ID.Hex(),
				Customer: CustomerInput{CustomerName: "Acme"},
			})
			if status(out) != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", status(out))
			}
			if out.Envelope().Message != "Not Authenticated" {
				t.Fatalf("message = %q", out.Envelope().Message)
			}
		})
	}
	if n := e.customers.count(); n != 0 {
		t.Fatalf("%d customers written", n)
	}
}

func TestGuardStatuses(t *testing.T) {
	e := newEnv(t, nil)
	_, user := e.user(t, "driver@fleet.ie", false)
	_, admin := e.user(t, "admin@fleet.ie", true)

	cases := []struct {
		name  string
		creds Credentials
		op    string
		in    any
		want  int
	}{
		{"admin list as user", user, "getAllFleetsForAdmin", SearchInput{}, http.StatusUnauthorized},
		{"account type as user", user, "changeUserAccountTypeByAdmin", ChangeAccountTypeInput{UserID: "x", AccountType: models.AccountTypeAdmin}, http.StatusForbidden},
		{"log filter as user", user, "getLogFilter", nil, http.StatusForbidden},
		{"admin list as admin", admin, "getAllFleetsForAdmin", SearchInput{}, http.StatusOK},
		{"sign in without key", Credentials{}, "signIn", SignInInput{Email: "new@fleet.ie"}, http.StatusUnauthorized},
		{"sign in wrong key", Credentials{APIKey: "nope"}, "signIn", SignInInput{Email: "new@fleet.ie"}, http.StatusUnauthorized},
		{"missing field", user, "getFleetById", FleetIDInput{}, http.StatusBadRequest},
		{"bad id", user, "getFleetById", FleetIDInput{FleetID: "zzz"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := status(e.call(t, tc.creds, tc.op, tc.in)); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSignInCreatesUserAndIssuesToken(t *testing.T) {
	e := newEnv(t, nil)
	out := e.call(t, Credentials{APIKey: testAPIKey}, "signIn", SignInInput{Email: "new@fleet.ie", Name: "New"})
	res, ok := out.(SignInResult)
	if !ok || res.Status != http.StatusOK {
		t.Fatalf("signIn = %+v", out)
	}
	if res.User.AccountType != models.AccountTypeUser || res.User.SignUpCompleted {
		t.Fatalf("unexpected new user %+v", res.User)
	}
	me := e.call(t, Credentials{Token: res.Token}, "getUser", nil).(UserResult)
	if me.User == nil || me.User.ID != res.User.ID {
		t.Fatalf("getUser with issued token = %+v", me)
	}

	again := e.call(t, Credentials{APIKey: testAPIKey}, "signIn", SignInInput{Email: "new@fleet.ie"}).(SignInResult)
	if again.User.ID != res.User.ID {
		t.Fatal("second sign in should find the same user")
	}
}

func TestDuplicateCustomerNameConflicts(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	first := e.call(t, creds, "addCustomerInFleet", AddCustomerInput{FleetID: fleet.ID.Hex(), Customer: CustomerInput{CustomerName: "Acme"}})
	if status(first) != http.StatusOK {
		t.Fatalf("first add = %+v", first)
	}
	dup := e.call(t, creds, "addCustomerInFleet", AddCustomerInput{FleetID: fleet.ID.Hex(), Customer: CustomerInput{CustomerName: "ACME"}})
	if status(dup) != http.StatusConflict {
		t.Fatalf("duplicate add status = %d, want 409", status(dup))
	}
	if n := e.customers.count(); n != 1 {
		t.Fatalf("%d customers, want 1", n)
	}

	partial := e.call(t, creds, "addCustomerInFleet", AddCustomerInput{FleetID: fleet.ID.Hex(), Customer: CustomerInput{CustomerName: "Acme Waste"}})
	if status(partial) != http.StatusOK {
		t.Fatalf("substring names must not conflict, got %d", status(partial))
	}
}

func TestRenameConflictChecks(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	t.Run("customer", func(t *testing.T) {
		acme := e.call(t, creds, "addCustomerInFleet", AddCustomerInput{FleetID: fleet.ID.Hex(), Customer: CustomerInput{CustomerName: "Acme"}}).(CustomerResult)
		e.call(t, creds, "addCustomerInFleet", AddCustomerInput{FleetID: fleet.ID.Hex(), Customer: CustomerInput{CustomerName: "Bolt"}})

		out := e.call(t, creds, "updateCustomerInFleet", UpdateCustomerInput{CustomerID: acme.Customer.ID.Hex(), CustomerName: patch.SetTo("ACME")})
		if status(out) != http.StatusOK {
			t.Fatalf("case-only rename = %+v", out.Envelope())
		}
		out = e.call(t, creds, "updateCustomerInFleet", UpdateCustomerInput{CustomerID: acme.Customer.ID.Hex(), CustomerName: patch.SetTo("bolt")})
		if status(out) != http.StatusConflict {
			t.Fatalf("rename onto another customer status = %d, want 409", status(out))
		}
	})

	t.Run("facility", func(t *testing.T) {
		add := func(ext string) *models.DestinationFacility {
			out := e.call(t, creds, "addDestinationFacility", AddFacilityInput{FleetID: fleet.ID.Hex(), Facility: models.DestinationFacilityData{DestinationFacilityID: ext, DestinationFacilityName: ext}})
			return out.(FacilityResult).Facility
		}
		first, _ := add("W-1"), add("W-2")

		out := e.call(t, creds, "updateDestinationFacility", UpdateFacilityInput{ID: first.ID.Hex(), DestinationFacilityID: patch.SetTo(" W-1 ")})
		if status(out) != http.StatusOK {
			t.Fatalf("unchanged id = %+v", out.Envelope())
		}
		out = e.call(t, creds, "updateDestinationFacility", UpdateFacilityInput{ID: first.ID.Hex(), DestinationFacilityID: patch.SetTo("W-2")})
		if status(out) != http.StatusConflict {
			t.Fatalf("taken id status = %d, want 409", status(out))
		}
	})
}

func TestCustomerAccessIsDeniedWith401(t *testing.T) {
	e := newEnv(t, nil)
	owner, _ := e.user(t, "owner@fleet.ie", false)
	_, stranger := e.user(t, "stranger@else.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	out := e.call(t, stranger, "getCustomersInFleet", FleetSearchInput{FleetID: fleet.ID.Hex()})
	if status(out) != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status(out))
	}
}

func TestDocketNumbering(t *testing.T) {
	e := newEnv(t, nil)
	owner, _ := e.user(t, "owner@fleet.ie", false)
	_, member := e.user(t, "driver@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 5, "driver@fleet.ie")

	var got []string
	for i := 0; i < 2; i++ {
		out := e.call(t, member, "addDocket", AddDocketInput{
			FleetID:    fleet.ID.Hex(),
			DocketData: models.DocketData{Date: "2024-03-01", JobID: "J-1"},
			Customer:   &DocketCustomerInput{CustomerName: "Acme"},
		})
		res, ok := out.(DocketResult)
		if !ok || res.Status != http.StatusOK {
			t.Fatalf("addDocket #%d = %+v", i+1, out)
		}
		got = append(got, res.Docket.DocketData.IndividualDocketNumber)
	}
	if got[0] != "A-6" || got[1] != "A-7" {
		t.Fatalf("numbers = %v, want [A-6 A-7]", got)
	}
	stored, _ := e.fleets.FindByID(context.Background(), fleet.ID)
	if stored.DocketNumber != 7 {
		t.Fatalf("fleet docketNumber = %d, want 7", stored.DocketNumber)
	}
	if n := e.customers.count(); n != 1 {
		t.Fatalf("customer should be resolved on the second docket, got %d customers", n)
	}
}

func TestAddDocketRejectsNonMembers(t *testing.T) {
	e := newEnv(t, nil)
	owner, _ := e.user(t, "owner@fleet.ie", false)
	_, stranger := e.user(t, "stranger@else.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	out := e.call(t, stranger, "addDocket", AddDocketInput{FleetID: fleet.ID.Hex()})
	if status(out) != http.StatusNotFound || out.Envelope().Message != "Fleet not found" {
		t.Fatalf("addDocket by stranger = %+v", out.Envelope())
	}
}

func TestDocketWithBlankCustomerIsAccepted(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "C-", 0)

	vars := `{"fleetId":"` + fleet.ID.Hex() + `","customer":{}}`
	out, _ := e.r.Execute(context.Background(), "addDocket", creds, json.RawMessage(vars))
	created, ok := out.(DocketResult)
	if !ok || created.Status != http.StatusOK {
		t.Fatalf("addDocket = %+v", out)
	}

	t.Run("update", func(t *testing.T) {
		vars := `{"docketId":"` + created.Docket.ID.Hex() + `","customer":{}}`
		out, _ := e.r.Execute(context.Background(), "updateDocketById", creds, json.RawMessage(vars))
		if status(out) != http.StatusOK {
			t.Fatalf("updateDocketById = %+v", out.Envelope())
		}
	})

	if n := e.customers.count(); n != 0 {
		t.Fatalf("blank customer created %d contacts", n)
	}
}

func TestChunksAccumulateInOrder(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	id := ""
	for _, chunk := range []string{"AB", "CD", "EF"} {
		res := e.call(t, creds, "uploadDriverSignatureChunk", ChunkInput{ID: id, Chunk: chunk, FleetID: fleet.ID.Hex()}).(ChunkResult)
		if res.Status != http.StatusOK {
			t.Fatalf("chunk %q: %+v", chunk, res)
		}
		if id != "" && res.ID != id {
			t.Fatalf("id changed from %s to %s", id, res.ID)
		}
		id = res.ID
	}

	store := e.chunks[models.ChunkDriverSignature]
	if len(store.byID) != 1 {
		t.Fatalf("%d uploads stored, want 1", len(store.byID))
	}
	for _, doc := range store.byID {
		if doc.Payload != "ABCDEF" {
			t.Fatalf("payload = %q", doc.Payload)
		}
	}
	if len(e.chunks[models.ChunkCustomerSignature].byID) != 0 {
		t.Fatal("kinds must not share storage")
	}

	empty := e.call(t, creds, "uploadPdfChunk", ChunkInput{FleetID: fleet.ID.Hex()})
	if status(empty) != http.StatusBadRequest {
		t.Fatalf("empty chunk status = %d", status(empty))
	}
}

func TestFacilityRoundTrip(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	data := models.DestinationFacilityData{
		DestinationFacilityID:      "W0123-01",
		DestinationFacilityName:    "Ballymount Recycling",
		DestinationFacilityLicense: "LIC-9",
		DestinationFacilityAddress: models.Address{Town: "Dublin", Country: "Ireland"},
	}
	if out := e.call(t, creds, "addDestinationFacility", AddFacilityInput{FleetID: fleet.ID.Hex(), Facility: data}); status(out) != http.StatusOK {
		t.Fatalf("add = %+v", out)
	}
	if out := e.call(t, creds, "addDestinationFacility", AddFacilityInput{FleetID: fleet.ID.Hex(), Facility: data}); status(out) != http.StatusConflict {
		t.Fatalf("duplicate external id status = %d, want 409", status(out))
	}
	other := models.DestinationFacilityData{DestinationFacilityID: "W9999", DestinationFacilityName: "Other"}
	e.call(t, creds, "addDestinationFacility", AddFacilityInput{FleetID: fleet.ID.Hex(), Facility: other})

	res := e.call(t, creds, "getDestinationFacilities", GetFacilitiesInput{FleetID: fleet.ID.Hex(), DestinationFacilityID: "W0123-01"}).(FacilitiesResult)
	if len(res.Facilities) != 1 {
		t.Fatalf("got %d facilities, want 1", len(res.Facilities))
	}
	if got := res.Facilities[0].DestinationFacilityData; got != data {
		t.Fatalf("facility = %+v, want %+v", got, data)
	}
}

func TestCsvImportCounts(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)

	file := "customerName,customerEmail\nAcme,a@acme.ie\n,blank@acme.ie\nAcme,again@acme.ie\n"
	res := e.call(t, creds, "importCustomersFromCsv", ImportCustomersInput{FleetID: fleet.ID.Hex(), File: []byte(file)}).(ImportResult)
	if res.Status != http.StatusOK {
		t.Fatalf("import = %+v", res)
	}
	if res.ImportedCount != 1 || res.SkippedCount != 2 {
		t.Fatalf("imported %d skipped %d, want 1 and 2", res.ImportedCount, res.SkippedCount)
	}
	c, err := e.customers.FindByName(context.Background(), fleet.ID, "acme")
	if err != nil || !c.IsAutoImported || c.CustomerEmail != "a@acme.ie" {
		t.Fatalf("imported customer = %+v, %v", c, err)
	}
}

func TestDocketSearchPagination(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0)
	for i := 0; i < 25; i++ {
		e.call(t, creds, "addDocket", AddDocketInput{FleetID: fleet.ID.Hex()})
	}

	page, size := int64(3), int64(10)
	res := e.call(t, creds, "getDocketsForFleet", FleetDocketsInput{
		FleetID:           fleet.ID.Hex(),
		DocketSearchInput: DocketSearchInput{SearchInput: SearchInput{PageNumber: &page, ResultsPerPage: &size}},
	}).(PageResult[models.DocketView])
	if len(res.Items) != 5 || res.TotalCount != 25 {
		t.Fatalf("got %d items, total %d; want 5 and 25", len(res.Items), res.TotalCount)
	}

	all := e.call(t, creds, "getDocketsForFleet", FleetDocketsInput{FleetID: fleet.ID.Hex()}).(PageResult[models.DocketView])
	if len(all.Items) != 25 {
		t.Fatalf("unpaginated result has %d items", len(all.Items))
	}
}

func TestUpdateDocketThreeStateMerge(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)
	fleet := e.fleet(t, owner, "B-", 0)
	created := e.call(t, creds, "addDocket", AddDocketInput{
		FleetID:    fleet.ID.Hex(),
		DocketData: models.DocketData{JobID: "J-1", DriverName: "Sam", VehicleRegistration: "241-D-1"},
	}).(DocketResult)

	vars := `{"docketId":"` + created.Docket.ID.Hex() + `","jobId":"clear","driverName":"Pat","individualDocketNumber":"X-1"}`
	out, _ := e.r.Execute(context.Background(), "updateDocketById", creds, json.RawMessage(vars))
	res, ok := out.(DocketResult)
	if !ok || res.Status != http.StatusOK {
		t.Fatalf("update = %+v", out)
	}
	d := res.Docket.DocketData
	if d.JobID != "" || d.DriverName != "Pat" || d.VehicleRegistration != "241-D-1" {
		t.Fatalf("merged data = %+v", d)
	}
	if d.IndividualDocketNumber != "B-1" {
		t.Fatalf("docket number changed to %q", d.IndividualDocketNumber)
	}
}

func TestAuditRecordsBracketOperations(t *testing.T) {
	e := newEnv(t, nil)
	_, creds := e.user(t, "owner@fleet.ie", false)

	e.call(t, creds, "getFleetById", FleetIDInput{FleetID: "000000000000000000000000"})

	starts, ends := e.logs.byType(auditlog.QueryStart), e.logs.byType(auditlog.QueryEnd)
	if len(starts) != 1 || len(ends) != 1 {
		t.Fatalf("got %d starts and %d ends", len(starts), len(ends))
	}
	if ends[0].StartLogID != starts[0].ID.Hex() {
		t.Fatal("end record must point at its start record")
	}
	if ends[0].Level != string(auditlog.Error) || ends[0].AdditionalMessage != "Fleet not found" {
		t.Fatalf("end record = %+v", ends[0])
	}
}

func TestLogFilterSuppressesRecords(t *testing.T) {
	e := newEnv(t, nil)
	_, admin := e.user(t, "admin@fleet.ie", true)

	out := e.call(t, admin, "updateLogFilter", LogFilterInput{Types: []string{"QUERY_START", "QUERY_END"}, Levels: []string{"INFO"}})
	if status(out) != http.StatusOK {
		t.Fatalf("updateLogFilter = %+v", out.Envelope())
	}
	before := len(e.logs.byType(auditlog.MutationStart))
	e.call(t, admin, "addSuggestion", SuggestionInput{Text: "dark mode"})
	if after := len(e.logs.byType(auditlog.MutationStart)); after != before {
		t.Fatalf("suppressed type written: %d -> %d", before, after)
	}

	bad := e.call(t, admin, "updateLogFilter", LogFilterInput{Types: []string{"EVERYTHING"}})
	if status(bad) != http.StatusBadRequest {
		t.Fatalf("unknown type status = %d", status(bad))
	}
	got := e.call(t, admin, "getLogFilter", nil).(LogFilterResult)
	if len(got.Types) != 2 || len(got.Levels) != 1 {
		t.Fatalf("filter = %+v", got)
	}
}

func TestLeaveFleet(t *testing.T) {
	e := newEnv(t, nil)
	owner, ownerCreds := e.user(t, "owner@fleet.ie", false)
	driver, driverCreds := e.user(t, "driver@fleet.ie", false)
	fleet := e.fleet(t, owner, "A-", 0, "driver@fleet.ie")
	_ = e.users.AddFleet(context.Background(), driver.ID, fleet.ID, true)

	if out := e.call(t, ownerCreds, "leaveFleet", FleetIDInput{FleetID: fleet.ID.Hex()}); status(out) != http.StatusBadRequest {
		t.Fatalf("owner leave status = %d, want 400", status(out))
	}
	if out := e.call(t, driverCreds, "leaveFleet", FleetIDInput{FleetID: fleet.ID.Hex()}); status(out) != http.StatusOK {
		t.Fatalf("member leave = %+v", out.Envelope())
	}
	if out := e.call(t, driverCreds, "leaveFleet", FleetIDInput{FleetID: fleet.ID.Hex()}); status(out) != http.StatusNotFound {
		t.Fatalf("second leave status = %d, want 404", status(out))
	}
	u, _ := e.users.FindByID(context.Background(), driver.ID)
	if models.ContainsID(u.Fleets, fleet.ID) {
		t.Fatal("fleet ref should be removed from the user")
	}
}

func TestFleetNamesAreUniquePerOwner(t *testing.T) {
	e := newEnv(t, nil)
	owner, creds := e.user(t, "owner@fleet.ie", false)

	res := e.call(t, creds, "addFleet", AddFleetInput{FleetDetails: models.FleetDetails{Name: "North"}}).(FleetResult)
	if res.Status != http.StatusOK || res.Fleet.DocketNumber != 0 {
		t.Fatalf("addFleet = %+v", res)
	}
	if out := e.call(t, creds, "addFleet", AddFleetInput{FleetDetails: models.FleetDetails{Name: "north"}}); status(out) != http.StatusConflict {
		t.Fatalf("duplicate fleet status = %d", status(out))
	}
	u, _ := e.users.FindByID(context.Background(), owner.ID)
	if u.SelectedFleet == nil || *u.SelectedFleet != res.Fleet.ID {
		t.Fatal("new fleet should be selected")
	}

	renamed := e.call(t, creds, "updateFleet", UpdateFleetInput{FleetID: res.Fleet.ID.Hex()})
	if status(renamed) != http.StatusOK {
		t.Fatalf("no-op update = %+v", renamed.Envelope())
	}
	if !strings.EqualFold(renamed.(FleetResult).Fleet.Name, "North") {
		t.Fatal("omitted name must be kept")
	}
}

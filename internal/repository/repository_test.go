// internal/repository/repository_test.go
package repository

import (
	"context"
	"errors"
	"testing"

	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserFindByEmail(t *testing.T) {
	mt := newMock(t)

	mt.Run("not found maps to ErrNotFound", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByEmail(context.Background(), "nobody@example.com")
		if !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "personalDetails", Value: bson.D{{Key: "email", Value: "a@example.com"}, {Key: "name", Value: "Ann"}}},
			{Key: "accountType", Value: "USER"},
		}))

		u, err := NewUserRepository(mt.DB).FindByEmail(context.Background(), "a@example.com")
		if err != nil {
			mt.Fatalf("FindByEmail: %v", err)
		}
		if u.ID != id || u.PersonalDetails.Name != "Ann" || u.AccountType != models.AccountTypeUser {
			mt.Fatalf("decoded %+v", u)
		}

		evt := mt.GetStartedEvent()
		if got := evt.Command.Lookup("filter", "personalDetails.email").StringValue(); got != "a@example.com" {
			mt.Fatalf("filter email = %q", got)
		}
	})
}

func TestCreateAssignsID(t *testing.T) {
	mt := newMock(t)

	mt.Run("user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{PersonalDetails: models.PersonalDetails{Email: "a@example.com"}}
		if err := NewUserRepository(mt.DB).Create(context.Background(), u); err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if u.ID.IsZero() {
			mt.Fatal("expected generated id")
		}
		if u.Fleets == nil || u.Invitations == nil {
			mt.Fatal("expected empty reference lists, not nil")
		}
	})
}

func TestUpdateAndDeleteMissReportNotFound(t *testing.T) {
	mt := newMock(t)

	mt.Run("update", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := NewFleetRepository(mt.DB).SetDocketNumber(context.Background(), primitive.NewObjectID(), 6)
		if !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewDocketRepository(mt.DB).Delete(context.Background(), primitive.NewObjectID())
		if !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCustomerFindByNameIsWholeStringCaseInsensitive(t *testing.T) {
	mt := newMock(t)

	mt.Run("regex", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.customerContacts", mtest.FirstBatch))

		_, err := NewCustomerRepository(mt.DB).FindByName(context.Background(), primitive.NewObjectID(), "Acme (Ltd)")
		if !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}

		evt := mt.GetStartedEvent()
		pattern, opts := evt.Command.Lookup("filter", "customerName").Regex()
		if pattern != `^Acme \(Ltd\)$` || opts != "i" {
			mt.Fatalf("regex = /%s/%s", pattern, opts)
		}
	})
}

func TestDocketSearch(t *testing.T) {
	mt := newMock(t)

	mt.Run("items and count", func(mt *mtest.T) {
		fleetID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "db.dockets", mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "fleetId", Value: fleetID},
					{Key: "docketData", Value: bson.D{{Key: "individualDocketNumber", Value: "A-6"}}},
					{Key: "customerContact", Value: bson.D{{Key: "customerName", Value: "Acme"}}},
				},
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "fleetId", Value: fleetID},
					{Key: "docketData", Value: bson.D{{Key: "individualDocketNumber", Value: "A-7"}}},
				},
			),
			mtest.CreateCursorResponse(0, "db.dockets", mtest.FirstBatch, bson.D{{Key: "totalCount", Value: int64(25)}}),
		)

		size, number := int64(10), int64(3)
		q := search.Query{
			Scope:  bson.D{{Key: "fleetId", Value: fleetID}},
			Term:   "acme",
			Fields: search.DocketFieldsForFleet,
			Sort:   search.Sort(search.DocketSortColumns, "", ""),
			Page:   search.NewPage(&number, &size),
		}
		items, total, err := NewDocketRepository(mt.DB).Search(context.Background(), q)
		if err != nil {
			mt.Fatalf("Search: %v", err)
		}
		if total != 25 || len(items) != 2 {
			mt.Fatalf("got %d items, total %d", len(items), total)
		}
		if items[0].CustomerContact == nil || items[0].CustomerContact.CustomerName != "Acme" {
			mt.Fatalf("joined customer not decoded: %+v", items[0].CustomerContact)
		}
		if items[1].CustomerContact != nil {
			mt.Fatal("docket without a customer should keep a nil join")
		}

		evt := mt.GetStartedEvent()
		if evt.CommandName != "aggregate" {
			mt.Fatalf("first command = %s", evt.CommandName)
		}
		if got := evt.Command.Lookup("collation", "locale").StringValue(); got != "en" {
			mt.Fatalf("collation locale = %q", got)
		}
	})

	mt.Run("empty count", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "db.dockets", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "db.dockets", mtest.FirstBatch),
		)
		items, total, err := NewDocketRepository(mt.DB).Search(context.Background(), search.Query{})
		if err != nil {
			mt.Fatalf("Search: %v", err)
		}
		if total != 0 || len(items) != 0 {
			mt.Fatalf("got %v items, total %d", items, total)
		}
	})
}

func TestDocketFindViewMissing(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.dockets", mtest.FirstBatch))

		_, err := NewDocketRepository(mt.DB).FindView(context.Background(), primitive.NewObjectID())
		if !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestChunkRepositoryKinds(t *testing.T) {
	mt := newMock(t)

	mt.Run("unknown kind", func(mt *mtest.T) {
		if _, err := NewChunkRepository(mt.DB, models.ChunkKind("video")); err == nil {
			mt.Fatal("expected error for unknown kind")
		}
	})

	mt.Run("kinds map to distinct collections", func(mt *mtest.T) {
		seen := map[string]bool{}
		for _, k := range []models.ChunkKind{
			models.ChunkDriverSignature, models.ChunkCustomerSignature,
			models.ChunkWasteFacilityRepSignature, models.ChunkPdf,
		} {
			name, ok := ChunkCollectionFor(k)
			if !ok || seen[name] {
				mt.Fatalf("kind %s -> %q", k, name)
			}
			seen[name] = true
		}
	})
}

func TestInvitationMarkFleetDeleted(t *testing.T) {
	mt := newMock(t)

	mt.Run("only pending", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))

		n, err := NewInvitationRepository(mt.DB).MarkFleetDeleted(context.Background(), primitive.NewObjectID())
		if err != nil || n != 2 {
			mt.Fatalf("n = %d, err = %v", n, err)
		}

		evt := mt.GetStartedEvent()
		status := evt.Command.Lookup("updates").Array().Index(0).Document().Lookup("q", "status").StringValue()
		if status != string(models.InvitationPending) {
			mt.Fatalf("filter status = %q", status)
		}
	})
}

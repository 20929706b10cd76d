// internal/resolvers/customers.go
package resolvers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"waste-docket-api-server/internal/csvimport"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/patch"
	"waste-docket-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (r *Resolver) customerOperations() []*Operation {
	return []*Operation{
		mutation("addCustomerInFleet", signed, r.addCustomerInFleet),
		query("getCustomersInFleet", signed, r.getCustomersInFleet),
		mutation("updateCustomerInFleet", signed, r.updateCustomerInFleet),
		mutation("deleteCustomerInFleet", signed, r.deleteCustomerInFleet),
		mutation("importCustomersFromCsv", signed, r.importCustomersFromCsv),
	}
}

type CustomerResult struct {
	Customer *models.CustomerContact `json:"customer"`
	Response `json:"response"`
}

type CustomerInput struct {
	CustomerName    string         `json:"customerName" validate:"required"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	CustomerAddress models.Address `json:"customerAddress"`
}

type AddCustomerInput struct {
	FleetID  string        `json:"fleetId" validate:"required"`
	Customer CustomerInput `json:"customer"`
}

func (r *Resolver) addCustomerInFleet(ctx context.Context, call *Call, in AddCustomerInput) CustomerResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr401)
	if denied != nil {
		return CustomerResult{Response: *denied}
	}
	c, resp := r.createCustomer(ctx, fleet, models.CustomerContact{
		CustomerName:    in.Customer.CustomerName,
		CustomerEmail:   in.Customer.CustomerEmail,
		CustomerPhone:   in.Customer.CustomerPhone,
		CustomerAddress: in.Customer.CustomerAddress,
	})
	return CustomerResult{Customer: c, Response: resp}
}

// createCustomer inserts c into fleet unless the name is taken. The check
// and the insert are separate calls, so concurrent creates can both pass.
func (r *Resolver) createCustomer(ctx context.Context, fleet *models.Fleet, c models.CustomerContact) (*models.CustomerContact, Response) {
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	if c.CustomerName == "" {
		return nil, badRequest("Customer name is required")
	}
	if _, err := r.Customers.FindByName(ctx, fleet.ID, c.CustomerName); err == nil {
		return nil, fail(http.StatusConflict, "Customer with this name already exists")
	} else if !isNotFound(err) {
		return nil, internal(err)
	}
	now := r.now()
	c.FleetID = fleet.ID
	c.CreatedAt, c.UpdatedAt = now, now
	if err := r.Customers.Create(ctx, &c); err != nil {
		return nil, internal(err)
	}
	return &c, ok("Customer created")
}

type FleetSearchInput struct {
	FleetID string `json:"fleetId" validate:"required"`
	SearchInput
}

func (r *Resolver) getCustomersInFleet(ctx context.Context, call *Call, in FleetSearchInput) PageResult[models.CustomerContact] {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr401)
	if denied != nil {
		return PageResult[models.CustomerContact]{Response: *denied}
	}
	items, total, err := r.Customers.Search(ctx, search.Query{
		Scope:  bson.D{{Key: "fleetId", Value: fleet.ID}},
		Term:   in.Search,
		Fields: search.CustomerFieldsForFleet,
		Sort:   search.Sort(search.CustomerSortColumns, in.SortColumn, in.SortDirection),
		Page:   in.page(),
	})
	if err != nil {
		return PageResult[models.CustomerContact]{Response: internal(err)}
	}
	return PageResult[models.CustomerContact]{Items: items, TotalCount: total, Response: ok("Customers found")}
}

type UpdateCustomerInput struct {
	CustomerID      string                      `json:"customerId" validate:"required"`
	CustomerName    patch.Field[string]         `json:"customerName"`
	CustomerEmail   patch.Field[string]         `json:"customerEmail"`
	CustomerPhone   patch.Field[string]         `json:"customerPhone"`
	CustomerAddress patch.Field[models.Address] `json:"customerAddress"`
}

// customerInFleet loads a customer and checks the caller against its fleet.
func (r *Resolver) customerInFleet(ctx context.Context, call *Call, rawID string) (*models.CustomerContact, *models.Fleet, *Response) {
	id, bad := parseID(rawID, "customer")
	if bad != nil {
		return nil, nil, bad
	}
	c, err := r.Customers.FindByID(ctx, id)
	if err != nil {
		resp := lookup(err, "Customer not found")
		return nil, nil, &resp
	}
	fleet, denied := r.fleetByID(ctx, call, c.FleetID, memberOr401)
	if denied != nil {
		return nil, nil, denied
	}
	return c, fleet, nil
}

func (r *Resolver) updateCustomerInFleet(ctx context.Context, call *Call, in UpdateCustomerInput) CustomerResult {
	c, fleet, denied := r.customerInFleet(ctx, call, in.CustomerID)
	if denied != nil {
		return CustomerResult{Response: *denied}
	}
	if in.CustomerName.State == patch.Clear || (in.CustomerName.State == patch.Set && strings.TrimSpace(in.CustomerName.Value) == "") {
		return CustomerResult{Response: badRequest("Customer name is required")}
	}
	if in.CustomerName.State == patch.Set {
		in.CustomerName.Value = strings.TrimSpace(in.CustomerName.Value)
		if patch.ChangesFold(in.CustomerName, c.CustomerName) {
			if other, err := r.Customers.FindByName(ctx, fleet.ID, in.CustomerName.Value); err == nil && other.ID != c.ID {
				return CustomerResult{Response: fail(http.StatusConflict, "Customer with this name already exists")}
			} else if err != nil && !isNotFound(err) {
				return CustomerResult{Response: internal(err)}
			}
		}
	}
	in.CustomerName.Apply(&c.CustomerName)
	in.CustomerEmail.Apply(&c.CustomerEmail)
	in.CustomerPhone.Apply(&c.CustomerPhone)
	in.CustomerAddress.Apply(&c.CustomerAddress)
	if err := r.Customers.Update(ctx, c); err != nil {
		return CustomerResult{Response: lookup(err, "Customer not found")}
	}
	return CustomerResult{Customer: c, Response: ok("Customer updated")}
}

type CustomerIDInput struct {
	CustomerID string `json:"customerId" validate:"required"`
}

func (r *Resolver) deleteCustomerInFleet(ctx context.Context, call *Call, in CustomerIDInput) DeleteResult {
	c, _, denied := r.customerInFleet(ctx, call, in.CustomerID)
	if denied != nil {
		return DeleteResult{Response: *denied}
	}
	if err := r.Customers.Delete(ctx, c.ID); err != nil {
		return DeleteResult{Response: lookup(err, "Customer not found")}
	}
	return DeleteResult{ID: c.ID.Hex(), Response: ok("Customer deleted")}
}

type ImportCustomersInput struct {
	FleetID string `json:"fleetId" validate:"required"`
	File    []byte `json:"file" validate:"required"` // base64 on the wire
}

type ImportResult struct {
	ImportedCount int `json:"importedCount"`
	SkippedCount  int `json:"skippedCount"`
	Response      `json:"response"`
}

// importCustomersFromCsv creates every new contact concurrently with no cap.
// Rows whose insert fails are counted as skipped.
func (r *Resolver) importCustomersFromCsv(ctx context.Context, call *Call, in ImportCustomersInput) ImportResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, memberOr401)
	if denied != nil {
		return ImportResult{Response: *denied}
	}
	records, err := csvimport.Parse(bytes.NewReader(in.File))
	if err != nil {
		return ImportResult{Response: badRequest("Invalid CSV file: " + err.Error())}
	}
	existing, err := r.Customers.NamesInFleet(ctx, fleet.ID)
	if err != nil {
		return ImportResult{Response: internal(err)}
	}
	create, skipped := csvimport.Plan(records, existing)

	var imported atomic.Int64
	var g errgroup.Group
	now := r.now()
	for i := range create {
		c := create[i]
		c.FleetID = fleet.ID
		c.CreatedAt, c.UpdatedAt = now, now
		g.Go(func() error {
			if err := r.Customers.Create(ctx, &c); err != nil {
				r.Log.Warn("csv row not imported", zap.String("customerName", c.CustomerName), zap.Error(err))
				return nil
			}
			imported.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(imported.Load())
	skipped += len(create) - n
	return ImportResult{ImportedCount: n, SkippedCount: skipped, Response: ok("Customers imported")}
}

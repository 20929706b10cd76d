// internal/billing/billing.go
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("stripe secret key is not configured")

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Cursor selects one page. StartingAfter pages forward, EndingBefore pages
// backward; at most one of them should be set.
type Cursor struct {
	Limit         int64
	StartingAfter string
	EndingBefore  string
}

func (c Cursor) listParams() stripe.ListParams {
	limit := c.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	p := stripe.ListParams{Limit: stripe.Int64(limit), Single: true}
	if c.StartingAfter != "" {
		p.StartingAfter = stripe.String(c.StartingAfter)
	}
	if c.EndingBefore != "" {
		p.EndingBefore = stripe.String(c.EndingBefore)
	}
	return p
}

type Page[T any] struct {
	Items   []T    `json:"items"`
	HasMore bool   `json:"hasMore"`
	FirstID string `json:"firstId"`
	LastID  string `json:"lastId"`
}

type Customer struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

type Subscription struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customerId"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
	Created          time.Time `json:"created"`
}

// Stripe lists customers and subscriptions one page at a time.
type Stripe struct {
	api *client.API
	log *zap.Logger
}

func NewStripe(secretKey string, log *zap.Logger) (*Stripe, error) {
	if secretKey == "" {
		return nil, ErrNotConfigured
	}
	return newStripe(secretKey, nil, log), nil
}

func newStripe(secretKey string, backends *stripe.Backends, log *zap.Logger) *Stripe {
	if log == nil {
		log = zap.NewNop()
	}
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &Stripe{api: sc, log: log.With(zap.String("component", "billing"))}
}

func (s *Stripe) Customers(c Cursor) (Page[Customer], error) {
	params := &stripe.CustomerListParams{ListParams: c.listParams()}
	it := s.api.Customers.List(params)

	page := Page[Customer]{Items: []Customer{}}
	for it.Next() {
		cu := it.Customer()
		page.Items = append(page.Items, Customer{
			ID:      cu.ID,
			Email:   cu.Email,
			Name:    cu.Name,
			Created: time.Unix(cu.Created, 0).UTC(),
		})
	}
	if err := it.Err(); err != nil {
		s.log.Error("list customers failed", zap.Error(err))
		return Page[Customer]{}, fmt.Errorf("stripe customers: %w", err)
	}
	if list := it.CustomerList(); list != nil {
		page.HasMore = list.HasMore
	}
	page.FirstID, page.LastID = bounds(page.Items, func(c Customer) string { return c.ID })
	return page, nil
}

// Subscriptions lists every status, optionally for one customer.
func (s *Stripe) Subscriptions(customerID string, c Cursor) (Page[Subscription], error) {
	params := &stripe.SubscriptionListParams{ListParams: c.listParams(), Status: stripe.String("all")}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	it := s.api.Subscriptions.List(params)

	page := Page[Subscription]{Items: []Subscription{}}
	for it.Next() {
		sub := it.Subscription()
		out := Subscription{
			ID:               sub.ID,
			Status:           string(sub.Status),
			CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
			Created:          time.Unix(sub.Created, 0).UTC(),
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		page.Items = append(page.Items, out)
	}
	if err := it.Err(); err != nil {
		s.log.Error("list subscriptions failed", zap.Error(err))
		return Page[Subscription]{}, fmt.Errorf("stripe subscriptions: %w", err)
	}
	if list := it.SubscriptionList(); list != nil {
		page.HasMore = list.HasMore
	}
	page.FirstID, page.LastID = bounds(page.Items, func(s Subscription) string { return s.ID })
	return page, nil
}

func bounds[T any](items []T, id func(T) string) (string, string) {
	if len(items) == 0 {
		return "", ""
	}
	return id(items[0]), id(items[len(items)-1])
}

// internal/resolvers/records.go
package resolvers

import (
	"context"
	"errors"
	"strings"

	"waste-docket-api-server/internal/billing"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/search"
)

func (r *Resolver) recordOperations() []*Operation {
	return []*Operation{
		mutation("addSuggestion", signed, r.addSuggestion),
		query("getSuggestionsForAdmin", admin401, r.getSuggestionsForAdmin),
		query("getAppVersion", public, r.getAppVersion),
		mutation("updateAppVersion", apiKey, r.updateAppVersion),
		query("getFleetSubscription", signed, r.getFleetSubscription),
		query("getBillingCustomersForAdmin", admin401, r.getBillingCustomersForAdmin),
		query("getBillingSubscriptionsForAdmin", admin401, r.getBillingSubscriptionsForAdmin),
	}
}

type SuggestionInput struct {
	Text string `json:"text" validate:"required"`
}

type SuggestionResult struct {
	Suggestion *models.Suggestion `json:"suggestion"`
	Response   `json:"response"`
}

func (r *Resolver) addSuggestion(ctx context.Context, call *Call, in SuggestionInput) SuggestionResult {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return SuggestionResult{Response: badRequest("Suggestion text is required")}
	}
	s := &models.Suggestion{
		UserID:    call.User.ID,
		Email:     call.User.PersonalDetails.Email,
		Text:      text,
		CreatedAt: r.now(),
	}
	if err := r.Suggestions.Create(ctx, s); err != nil {
		return SuggestionResult{Response: internal(err)}
	}
	return SuggestionResult{Suggestion: s, Response: ok("Suggestion added")}
}

type PageInput struct {
	PageNumber     *int64 `json:"pageNumber"`
	ResultsPerPage *int64 `json:"resultsPerPage"`
}

func (p PageInput) page() search.Page { return search.NewPage(p.PageNumber, p.ResultsPerPage) }

func (r *Resolver) getSuggestionsForAdmin(ctx context.Context, _ *Call, in PageInput) PageResult[models.Suggestion] {
	items, total, err := r.Suggestions.List(ctx, in.page())
	if err != nil {
		return PageResult[models.Suggestion]{Response: internal(err)}
	}
	return PageResult[models.Suggestion]{Items: items, TotalCount: total, Response: ok("Suggestions found")}
}

type AppVersionResult struct {
	AppVersion *models.AppVersion `json:"appVersion"`
	Response   `json:"response"`
}

func (r *Resolver) getAppVersion(ctx context.Context, _ *Call, _ struct{}) AppVersionResult {
	v, err := r.AppVersions.Get(ctx)
	if err != nil {
		return AppVersionResult{Response: lookup(err, "App version not found")}
	}
	return AppVersionResult{AppVersion: v, Response: ok("App version found")}
}

type AppVersionInput struct {
	Version        string `json:"version" validate:"required"`
	MinimumVersion string `json:"minimumVersion"`
}

func (r *Resolver) updateAppVersion(ctx context.Context, _ *Call, in AppVersionInput) AppVersionResult {
	v := &models.AppVersion{Version: strings.TrimSpace(in.Version), MinimumVersion: strings.TrimSpace(in.MinimumVersion)}
	if err := r.AppVersions.Upsert(ctx, v); err != nil {
		return AppVersionResult{Response: internal(err)}
	}
	return AppVersionResult{AppVersion: v, Response: ok("App version updated")}
}

type SubscriptionResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Response     `json:"response"`
}

func (r *Resolver) getFleetSubscription(ctx context.Context, call *Call, in FleetIDInput) SubscriptionResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return SubscriptionResult{Response: *denied}
	}
	sub, err := r.Subscriptions.FindByFleet(ctx, fleet.ID)
	if err != nil {
		return SubscriptionResult{Response: lookup(err, "Subscription not found")}
	}
	return SubscriptionResult{Subscription: sub, Response: ok("Subscription found")}
}

type BillingCursorInput struct {
	Limit         int64  `json:"limit" validate:"omitempty,min=1,max=100"`
	StartingAfter string `json:"startingAfter"`
	EndingBefore  string `json:"endingBefore"`
}

func (in BillingCursorInput) cursor() (billing.Cursor, *Response) {
	if in.StartingAfter != "" && in.EndingBefore != "" {
		resp := badRequest("Only one of startingAfter and endingBefore may be set")
		return billing.Cursor{}, &resp
	}
	return billing.Cursor{Limit: in.Limit, StartingAfter: in.StartingAfter, EndingBefore: in.EndingBefore}, nil
}

type BillingCustomersResult struct {
	billing.Page[billing.Customer]
	Response `json:"response"`
}

type BillingSubscriptionsResult struct {
	billing.Page[billing.Subscription]
	Response `json:"response"`
}

var errBillingNotConfigured = errors.New("billing is not configured")

func (r *Resolver) getBillingCustomersForAdmin(_ context.Context, _ *Call, in BillingCursorInput) BillingCustomersResult {
	c, bad := in.cursor()
	if bad != nil {
		return BillingCustomersResult{Response: *bad}
	}
	if r.Billing == nil {
		return BillingCustomersResult{Response: internal(errBillingNotConfigured)}
	}
	page, err := r.Billing.Customers(c)
	if err != nil {
		return BillingCustomersResult{Response: internal(err)}
	}
	return BillingCustomersResult{Page: page, Response: ok("Customers found")}
}

type BillingSubscriptionsInput struct {
	CustomerID string `json:"customerId"`
	BillingCursorInput
}

func (r *Resolver) getBillingSubscriptionsForAdmin(_ context.Context, _ *Call, in BillingSubscriptionsInput) BillingSubscriptionsResult {
	c, bad := in.cursor()
	if bad != nil {
		return BillingSubscriptionsResult{Response: *bad}
	}
	if r.Billing == nil {
		return BillingSubscriptionsResult{Response: internal(errBillingNotConfigured)}
	}
	page, err := r.Billing.Subscriptions(strings.TrimSpace(in.CustomerID), c)
	if err != nil {
		return BillingSubscriptionsResult{Response: internal(err)}
	}
	return BillingSubscriptionsResult{Page: page, Response: ok("Subscriptions found")}
}

// internal/resolvers/invitations.go
package resolvers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"waste-docket-api-server/internal/mailer"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/socket"

	"go.uber.org/zap"
)

func (r *Resolver) invitationOperations() []*Operation {
	return []*Operation{
		mutation("sendFleetInvitation", signed, r.sendFleetInvitation),
		query("getMyInvitations", signed, r.getMyInvitations),
		mutation("respondToFleetInvitation", signed, r.respondToFleetInvitation),
	}
}

type InvitationResult struct {
	Invitation *models.FleetInvitation `json:"invitation"`
	Response   `json:"response"`
}

type InvitationsResult struct {
	Invitations []models.FleetInvitation `json:"invitations"`
	Response    `json:"response"`
}

type SendInvitationInput struct {
	FleetID     string `json:"fleetId" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (r *Resolver) sendFleetInvitation(ctx context.Context, call *Call, in SendInvitationInput) InvitationResult {
	fleet, denied := r.fleet(ctx, call, in.FleetID, ownerOr403)
	if denied != nil {
		return InvitationResult{Response: *denied}
	}
	email := strings.TrimSpace(in.Email)
	switch {
	case email == fleet.OwnerEmail:
		return InvitationResult{Response: fail(http.StatusConflict, "User is the owner of this fleet")}
	case containsString(fleet.MembersEmails, email):
		return InvitationResult{Response: fail(http.StatusConflict, "User is already a member of this fleet")}
	}
	pending, err := r.Invitations.HasPending(ctx, fleet.ID, email)
	if err != nil {
		return InvitationResult{Response: internal(err)}
	}
	if pending {
		return InvitationResult{Response: fail(http.StatusConflict, "User already has a pending invitation")}
	}

	now := r.now()
	inv := &models.FleetInvitation{
		FleetID:      fleet.ID,
		FleetName:    fleet.Name,
		InviterEmail: call.User.PersonalDetails.Email,
		InviteeEmail: email,
		Status:       models.InvitationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Invitations.Create(ctx, inv); err != nil {
		return InvitationResult{Response: internal(err)}
	}
	if err := r.Fleets.AddInvitation(ctx, fleet.ID, inv.ID); err != nil {
		return InvitationResult{Invitation: inv, Response: internal(err)}
	}
	if invitee, err := r.Users.FindByEmail(ctx, email); err == nil {
		if err := r.Users.AddInvitation(ctx, invitee.ID, inv.ID); err != nil {
			return InvitationResult{Invitation: inv, Response: internal(err)}
		}
	} else if !errors.Is(err, errNotFound) {
		return InvitationResult{Invitation: inv, Response: internal(err)}
	}

	r.notify(email, socket.EventInvitationReceived, inv)

	var undelivered []string
	if err := r.mailInvitation(ctx, inv, call.User); err != nil {
		r.Log.Warn("invitation email not sent", zap.String("invitee", email), zap.Error(err))
		undelivered = append(undelivered, "email")
	}
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		if err := r.textInvitation(inv, phone); err != nil {
			r.Log.Warn("invitation sms not sent", zap.String("invitee", email), zap.Error(err))
			undelivered = append(undelivered, "sms")
		}
	}
	if len(undelivered) > 0 {
		return InvitationResult{Invitation: inv, Response: ok("Invitation sent, but " + strings.Join(undelivered, " and ") + " delivery failed")}
	}
	return InvitationResult{Invitation: inv, Response: ok("Invitation sent")}
}

func (r *Resolver) mailInvitation(ctx context.Context, inv *models.FleetInvitation, inviter *models.User) error {
	if r.Mailer == nil {
		return mailer.ErrNotConfigured
	}
	inviterName := inviter.PersonalDetails.Name
	if inviterName == "" {
		inviterName = inviter.PersonalDetails.Email
	}
	msg := mailer.Message{To: []string{inv.InviteeEmail}}
	if id := r.Options.InvitationTemplateID; id != "" {
		msg.TemplateID = id
		msg.TemplateData = map[string]any{
			"fleetName":    inv.FleetName,
			"inviterName":  inviterName,
			"inviterEmail": inv.InviterEmail,
			"appUrl":       r.Options.AppBaseURL,
		}
	} else {
		msg.Subject = fmt.Sprintf("You have been invited to join %s", inv.FleetName)
		msg.Text = fmt.Sprintf("%s invited you to join the fleet %s. Sign in to accept: %s", inviterName, inv.FleetName, r.Options.AppBaseURL)
		msg.HTML = fmt.Sprintf("<p>%s invited you to join the fleet <strong>%s</strong>.</p><p><a href=%q>Sign in to accept</a></p>", inviterName, inv.FleetName, r.Options.AppBaseURL)
	}
	return r.Mailer.Send(ctx, msg)
}

func (r *Resolver) textInvitation(inv *models.FleetInvitation, phone string) error {
	if r.SMS == nil {
		return errors.New("sms is not configured")
	}
	body := fmt.Sprintf("You have been invited to join the fleet %s. Sign in to accept: %s", inv.FleetName, r.Options.AppBaseURL)
	return r.SMS.Send(body, phone)
}

type MyInvitationsInput struct {
	Status models.InvitationStatus `json:"status" validate:"omitempty,oneof=PENDING ACCEPTED REJECTED FLEET_DELETED"`
}

func (r *Resolver) getMyInvitations(ctx context.Context, call *Call, in MyInvitationsInput) InvitationsResult {
	invs, err := r.Invitations.ListByInvitee(ctx, call.User.PersonalDetails.Email, in.Status)
	if err != nil {
		return InvitationsResult{Response: internal(err)}
	}
	return InvitationsResult{Invitations: invs, Response: ok("Invitations found")}
}

type RespondInvitationInput struct {
	InvitationID string `json:"invitationId" validate:"required"`
	Accept       bool   `json:"accept"`
}

func (r *Resolver) respondToFleetInvitation(ctx context.Context, call *Call, in RespondInvitationInput) InvitationResult {
	id, bad := parseID(in.InvitationID, "invitation")
	if bad != nil {
		return InvitationResult{Response: *bad}
	}
	inv, err := r.Invitations.FindByID(ctx, id)
	if err != nil {
		return InvitationResult{Response: lookup(err, "Invitation not found")}
	}
	email := call.User.PersonalDetails.Email
	if inv.InviteeEmail != email {
		return InvitationResult{Response: fail(http.StatusForbidden, "This invitation is not addressed to you")}
	}
	if inv.Status != models.InvitationPending {
		return InvitationResult{Response: fail(http.StatusConflict, "Invitation has already been "+strings.ToLower(string(inv.Status)))}
	}

	status := models.InvitationRejected
	if in.Accept {
		status = models.InvitationAccepted
		fleet, err := r.Fleets.FindByID(ctx, inv.FleetID)
		if err != nil {
			return InvitationResult{Response: lookup(err, "Fleet not found")}
		}
		if !containsString(fleet.MembersEmails, email) {
			if err := r.Fleets.AddMember(ctx, fleet.ID, email); err != nil {
				return InvitationResult{Response: internal(err)}
			}
		}
		if !models.ContainsID(call.User.Fleets, fleet.ID) {
			if err := r.Users.AddFleet(ctx, call.User.ID, fleet.ID, call.User.SelectedFleet == nil); err != nil {
				return InvitationResult{Response: internal(err)}
			}
		}
	}
	if err := r.Invitations.SetStatus(ctx, id, status); err != nil {
		return InvitationResult{Response: lookup(err, "Invitation not found")}
	}
	inv.Status = status
	inv.UpdatedAt = r.now()

	r.notify(inv.InviterEmail, socket.EventInvitationResponded, inv)
	if in.Accept {
		return InvitationResult{Invitation: inv, Response: ok("Invitation accepted")}
	}
	return InvitationResult{Invitation: inv, Response: ok("Invitation rejected")}
}

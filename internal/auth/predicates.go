// internal/auth/predicates.go
package auth

import "waste-docket-api-server/internal/models"

// IsOwner compares the fleet owner email with the user's email, exactly.
func IsOwner(fleet *models.Fleet, user *models.User) bool {
	if fleet == nil || user == nil {
		return false
	}
	return fleet.OwnerEmail == user.PersonalDetails.Email
}

// IsOwnerOrMember adds an exact match against the fleet member list.
func IsOwnerOrMember(fleet *models.Fleet, user *models.User) bool {
	if IsOwner(fleet, user) {
		return true
	}
	if fleet == nil || user == nil {
		return false
	}
	for _, email := range fleet.MembersEmails {
		if email == user.PersonalDetails.Email {
			return true
		}
	}
	return false
}

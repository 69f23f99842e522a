package service

import (
	"context"

	"inkwell/internal/models"
)

// adminCheck resolves whether a user holds the admin role.
type adminCheck func(ctx context.Context, userID uint) (bool, error)

// CanAct is the single ownership rule for resource mutations: the owner may
// always act, an admin may act when the operation grants admin override.
func CanAct(callerID uint, isAdmin bool, ownerID uint) bool {
	return callerID == ownerID || isAdmin
}

// requireOwner returns a forbidden error unless the caller owns the resource.
func requireOwner(callerID, ownerID uint) error {
	if !CanAct(callerID, false, ownerID) {
		return models.NewForbiddenError("You are not allowed, only the user himself")
	}
	return nil
}

// requireOwnerOrAdmin returns a forbidden error unless the caller owns the
// resource or holds the admin role. The admin flag is resolved lazily so the
// lookup only happens for non-owners.
func requireOwnerOrAdmin(ctx context.Context, callerID, ownerID uint, isAdmin adminCheck) error {
	if CanAct(callerID, false, ownerID) {
		return nil
	}

	admin := false
	if isAdmin != nil {
		var err error
		admin, err = isAdmin(ctx, callerID)
		if err != nil {
			return err
		}
	}
	if !CanAct(callerID, admin, ownerID) {
		return models.NewForbiddenError("You are not allowed, only the user himself or admin")
	}
	return nil
}

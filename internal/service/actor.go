// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"

	"github.com/olegiv/agencyhub/internal/model"
)

// Actor is the caller of a service operation: the business it acts for and
// the trust it carries. Every store query is filtered on OrgID.
type Actor struct {
	OrgID    int64
	UserID   int64
	Role     model.Role
	Elevated bool
	APIKeyID int64
}

// UserActor builds an actor for a signed-in member of orgID.
func UserActor(orgID, userID int64, role model.Role) Actor {
	return Actor{OrgID: orgID, UserID: userID, Role: role}
}

// ServiceActor builds an elevated actor for automation acting on orgID,
// such as an API key or a background job.
func ServiceActor(orgID int64) Actor {
	return Actor{OrgID: orgID, Role: model.RoleOwner, Elevated: true}
}

// Can reports whether the actor may perform action.
func (a Actor) Can(action model.Action) bool {
	if a.Elevated {
		return true
	}
	return model.Can(a.Role, action)
}

func (a Actor) require(action model.Action) error {
	if a.OrgID == 0 || !a.Can(action) {
		return ErrForbidden
	}
	return nil
}

func (a Actor) nullUserID() sql.NullInt64 {
	return sql.NullInt64{Int64: a.UserID, Valid: a.UserID != 0}
}

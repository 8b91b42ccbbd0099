// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Role is a membership role inside one business.
type Role string

// Action is something a role may be allowed to do.
type Action string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionPublish Action = "publish"
	ActionAdmin   Action = "admin"
)

// Can reports whether role is allowed to perform action.
func Can(role Role, action Action) bool {
	switch role {
	case RoleOwner, RoleAdmin:
		return true
	case RoleEditor:
		return action == ActionRead || action == ActionWrite || action == ActionPublish
	case RoleViewer:
		return action == ActionRead
	default:
		return false
	}
}

// NormalizeRole maps unknown role strings to viewer.
func NormalizeRole(role string) Role {
	switch Role(role) {
	case RoleViewer, RoleEditor, RoleAdmin, RoleOwner:
		return Role(role)
	default:
		return RoleViewer
	}
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleViewer, RoleEditor, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

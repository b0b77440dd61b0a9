// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"github.com/olegiv/lingocms/internal/model"
)

// DenialKind distinguishes a missing identity from an insufficient one.
type DenialKind string

// Denial kinds.
const (
	DenialUnauthenticated DenialKind = "unauthenticated"
	DenialForbidden       DenialKind = "forbidden"
)

// Denial is returned when the gate refuses a request.
type Denial struct {
	Kind   DenialKind
	Reason string
}

func (d *Denial) Error() string {
	if d.Reason == "" {
		return string(d.Kind)
	}
	return string(d.Kind) + ": " + d.Reason
}

// Forbidden builds a forbidden Denial.
func Forbidden(reason string) *Denial {
	return &Denial{Kind: DenialForbidden, Reason: reason}
}

// Identity is the caller as seen by the gate.
type Identity struct {
	ID   string
	Role string
}

// Authorize checks that id is present and holds at least minRole.
func Authorize(id *Identity, minRole string) error {
	if id == nil || id.ID == "" {
		return &Denial{Kind: DenialUnauthenticated, Reason: "authentication required"}
	}
	if model.RoleLevel(id.Role) < model.RoleLevel(minRole) {
		return Forbidden("insufficient role")
	}
	return nil
}

// CheckRoleChange guards role updates. Only superadmins change roles, and a
// superadmin cannot move itself off superadmin.
func CheckRoleChange(actor, target Identity, newRole string) error {
	if actor.Role != model.RoleSuperadmin {
		return Forbidden("superadmin role required")
	}
	if actor.ID == target.ID && newRole != model.RoleSuperadmin {
		return Forbidden("cannot change own superadmin role")
	}
	return nil
}

// CheckStatusChange guards deactivation and reactivation. Nobody changes
// their own status, and only a superadmin may act on an admin or superadmin.
func CheckStatusChange(actor, target Identity) error {
	if !model.IsAdminRole(actor.Role) {
		return Forbidden("admin role required")
	}
	if actor.ID == target.ID {
		return Forbidden("cannot change own account status")
	}
	if model.IsAdminRole(target.Role) && actor.Role != model.RoleSuperadmin {
		return Forbidden("only a superadmin can change the status of an admin")
	}
	return nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and value types shared across
// the application: account roles, event levels and event categories.
package model

// Account roles. Every account holds exactly one.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRoles contains all valid account roles, lowest first.
var ValidRoles = []string{RoleUser, RoleAdmin, RoleSuperadmin}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	return RoleLevel(role) > 0
}

// RoleLevel returns a numeric level for the role hierarchy.
// Higher level = more capabilities. Unknown roles have level 0.
func RoleLevel(role string) int {
	switch role {
	case RoleSuperadmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// IsAdminRole returns true for admin and superadmin.
func IsAdminRole(role string) bool {
	return RoleLevel(role) >= RoleLevel(RoleAdmin)
}

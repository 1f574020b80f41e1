package permission

import "assetcat/internal/model"

// Capability is a named permission unit an actor may hold, independent of role.
type Capability string

const (
	EditAllFields   Capability = "EDIT_ALL_FIELDS"
	EditDescription Capability = "EDIT_DESCRIPTION"
	EditSphere      Capability = "EDIT_SPHERE"
	EditScreenshots Capability = "EDIT_SCREENSHOTS"
	Delete          Capability = "DELETE"
	ApproveDelete   Capability = "APPROVE_DELETE"
)

// roleGrants is the static role→capability table, fixed at process start.
// Per-user grants are unioned on top at evaluation time; the server only ever adds
// capabilities, never revokes below these defaults.
var roleGrants = map[model.Role][]Capability{
	model.RoleAdmin: {
		EditAllFields, EditDescription, EditSphere, EditScreenshots,
		Delete, ApproveDelete,
	},
	model.RoleEditor: {
		EditDescription, EditSphere, EditScreenshots, Delete,
	},
	model.RoleViewer: {},
}

// Effective returns the user's full capability set: role defaults unioned with
// explicit grants, then expanded once so that EDIT_ALL_FIELDS also covers the
// subordinate field capabilities. APPROVE_DELETE is implicit for admins regardless
// of explicit grants.
func Effective(u *model.User) map[Capability]bool {
	set := make(map[Capability]bool)
	for _, c := range roleGrants[u.Role] {
		set[c] = true
	}
	for _, c := range u.Capabilities {
		set[Capability(c)] = true
	}
	if u.Role == model.RoleAdmin {
		set[ApproveDelete] = true
	}
	if set[EditAllFields] {
		set[EditDescription] = true
		set[EditScreenshots] = true
	}
	return set
}

// Can reports whether the user holds the capability.
func Can(u *model.User, c Capability) bool {
	return Effective(u)[c]
}

// Missing returns the subset of caps the user does not hold, in the order given.
// Used to name the offending capability in authorization errors.
func Missing(u *model.User, caps ...Capability) []Capability {
	eff := Effective(u)
	var out []Capability
	for _, c := range caps {
		if !eff[c] {
			out = append(out, c)
		}
	}
	return out
}

package model

// Role is the single role a user holds. Capabilities beyond the role defaults are
// granted per user via User.Capabilities.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Sentinel author names. These exist as reserved user rows so that assets whose real
// author is unknown or outside the organization still carry a resolvable reference.
const (
	AuthorUnknown  = "unknown"
	AuthorExternal = "external"
)

// User is an acting user of the catalog.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         Role     `json:"role"`
	Capabilities []string `json:"capabilities"` // explicit grants on top of role defaults
}

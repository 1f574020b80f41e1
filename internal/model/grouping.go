package model

// Project is a named grouping of assets; many-to-many with Asset. Project membership
// is mirrored onto the asset's storage folder as tags.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sphere is a named domain-of-use attached to assets (e.g. an industry category).
// The name "Other" is reserved as the default category and cannot be created by users.
type Sphere struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SphereOther is the reserved default sphere name.
const SphereOther = "Other"

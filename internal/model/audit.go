package model

import "time"

// AuditLogEntry is one immutable action record. AssetID is nil either when the action
// never concerned an asset or after the referenced asset was purged; audit history
// outlives the asset it describes.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	AssetID   *string   `json:"asset_id"`
	CreatedAt time.Time `json:"created_at"`
}

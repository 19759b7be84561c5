package entity

import "time"

// Lookup entities are simple name-keyed reference tables. Their values
// are copied onto claims and history entries at write time so the audit
// trail reflects the project context as it was, not a live join.

// Department groups claims for coordinator-stage visibility.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Head string `json:"head,omitempty"`
}

// Project is upserted by external project ID when first referenced.
type Project struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	SiteName    string    `json:"site_name,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransportMode is free text upserted by name on every submit/edit.
type TransportMode struct {
	ID       int64  `json:"id"`
	ModeName string `json:"mode_name"`
}

package models

// Snapshot is the full authoritative state the local editor pushes to the
// host in one sync operation. Applying the same snapshot twice converges on
// the same host state (overwrite semantics, no incremental patching).
type Snapshot struct {
	Config    SnapshotConfig     `json:"config"`
	Customers []SnapshotCustomer `json:"customers"`
	// Rotate is the one-shot rotation directive. It is consumed during the
	// apply and never stored.
	Rotate bool `json:"rotate"`
}

// SnapshotConfig is the portion of the editor's configuration the host needs
// to operate. It lands in the settings table so it survives restarts.
type SnapshotConfig struct {
	StaticRedirectURL string `json:"static_redirect_url"`
	PublicBaseURL     string `json:"public_base_url,omitempty"`
}

// SnapshotCustomer carries the full record including the secret: the push
// travels editor→host under the shared admin credential, and the host is a
// replica of effect, not a peer editor.
type SnapshotCustomer struct {
	PublicID string          `json:"public_id"`
	Secret   string          `json:"secret"`
	Name     string          `json:"name"`
	Phone    string          `json:"phone"`
	Plate    string          `json:"plate"`
	Visits   []SnapshotVisit `json:"visits,omitempty"`
}

type SnapshotVisit struct {
	Source     string              `json:"source"`
	VisitDate  string              `json:"visit_date"`
	Km         string              `json:"km,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	Operations []SnapshotOperation `json:"operations,omitempty"`
}

type SnapshotOperation struct {
	Text  string `json:"text"`
	Price string `json:"price,omitempty"`
}

// SyncResult is the host's acknowledgement for an applied snapshot. Token is
// the effective current token after the apply so the editor can regenerate
// the printed QR code, whether or not this push rotated it.
type SyncResult struct {
	Applied   bool   `json:"applied"`
	ApplyID   string `json:"apply_id"`
	Customers int    `json:"customers"`
	Rotated   bool   `json:"rotated"`
	Token     string `json:"token,omitempty"`
}

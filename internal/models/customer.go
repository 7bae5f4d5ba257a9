package models

import "time"

// Visit sources. Scan visits are appended by the customer-facing path, one
// per successful access; service visits come from the admin surface and carry
// workshop data (km, notes, operations).
const (
	VisitSourceScan    = "scan"
	VisitSourceService = "service"
)

// Customer is one registry record. PublicID is printed inside the QR payload
// and is public; Secret is the access-granting half and is only ever exposed
// on the admin issuance path.
type Customer struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"public_id"`
	Secret    string    `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Visit struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"-"`
	Source     string      `json:"source"`
	VisitDate  string      `json:"visit_date"`
	Km         string      `json:"km,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	Operations []Operation `json:"operations,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Operation struct {
	ID      int64  `json:"id"`
	VisitID int64  `json:"-"`
	Text    string `json:"text"`
	Price   string `json:"price,omitempty"`
}

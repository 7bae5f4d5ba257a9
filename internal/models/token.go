package models

import "time"

// TokenState classifies a presented redirect token value.
type TokenState int

const (
	// TokenUnknown means the value was never issued.
	TokenUnknown TokenState = iota
	// TokenCurrent means the value is the one token currently honored.
	TokenCurrent
	// TokenSuperseded means the value was issued once and later retired by a
	// rotation. Terminal: a superseded token never becomes current again.
	TokenSuperseded
)

func (s TokenState) String() string {
	switch s {
	case TokenCurrent:
		return "current"
	case TokenSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// TokenRecord is one minted redirect token. Records are never deleted;
// SupersededBy points at the value that replaced this one, and is empty for
// the single current token.
type TokenRecord struct {
	ID           int64     `json:"id"`
	Value        string    `json:"value"`
	IssuedAt     time.Time `json:"issued_at"`
	SupersededBy string    `json:"superseded_by,omitempty"`
}

// IsCurrent reports whether this record is the active token.
func (t *TokenRecord) IsCurrent() bool {
	return t.SupersededBy == ""
}

package models

import "github.com/shopspring/decimal"

// Account holds the credit balance for one user. The balance is an
// internal ledger value, not real currency, and must never go negative.
type Account struct {
	ID      int64
	Balance decimal.Decimal
}

// Identity is the authenticated caller of a core operation, passed in
// explicitly by the HTTP layer. Services never read session state.
type Identity struct {
	AccountID int64
	Role      string
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

func (i Identity) IsModerator() bool { return i.Role == RoleModerator }

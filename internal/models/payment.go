package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies who paid and how the amount is shared.
// The numeric values are persisted; do not reorder.
type PaymentType int

const (
	// PaymentUser is the user's own spending, nothing is shared.
	PaymentUser PaymentType = iota
	// PaymentUserSplit: the user paid and the friend owes half.
	PaymentUserSplit
	// PaymentFriendSplit: the friend paid and the user owes half.
	PaymentFriendSplit
	// PaymentUserPaysFriend: the user paid on the friend's behalf.
	PaymentUserPaysFriend
	// PaymentFriendPaysUser: the friend settled money with the user.
	PaymentFriendPaysUser
	// PaymentDebtToFriend: the user borrowed from the friend.
	PaymentDebtToFriend
	// PaymentDebtToUser: the friend borrowed from the user.
	PaymentDebtToUser
)

// TypeInfo is the static description of a PaymentType.
type TypeInfo struct {
	Name  string
	Label string
	Color string

	// SpendFactor and DebtFactor multiply the amount to give the record's
	// contribution to total spent and total debt. Positive debt means the
	// user owes the friend.
	SpendFactor decimal.Decimal
	DebtFactor  decimal.Decimal
}

var (
	one     = decimal.NewFromInt(1)
	minus   = decimal.NewFromInt(-1)
	half    = decimal.RequireFromString("0.5")
	minHalf = decimal.RequireFromString("-0.5")
)

// paymentTypes is indexed by PaymentType.
var paymentTypes = [...]TypeInfo{
	PaymentUser:           {Name: "USER", Label: "Paid by me", Color: "#0c2806", SpendFactor: one, DebtFactor: decimal.Zero},
	PaymentUserSplit:      {Name: "USER_SPLIT", Label: "I paid, split in half", Color: "#06281f", SpendFactor: decimal.Zero, DebtFactor: minHalf},
	PaymentFriendSplit:    {Name: "FRIEND_SPLIT", Label: "Friend paid, split in half", Color: "#280606", SpendFactor: decimal.Zero, DebtFactor: half},
	PaymentUserPaysFriend: {Name: "USER_PAYS_FRIEND", Label: "I paid for my friend", Color: "#1c0628", SpendFactor: one, DebtFactor: minus},
	PaymentFriendPaysUser: {Name: "FRIEND_PAYS_USER", Label: "Friend paid me back", Color: "#282206", SpendFactor: decimal.Zero, DebtFactor: minus},
	PaymentDebtToFriend:   {Name: "DEBT_TO_FRIEND", Label: "I owe my friend", Color: "#281306", SpendFactor: decimal.Zero, DebtFactor: one},
	PaymentDebtToUser:     {Name: "DEBT_TO_USER", Label: "My friend owes me", Color: "#061a28", SpendFactor: decimal.Zero, DebtFactor: minus},
}

// PaymentTypes returns every valid PaymentType in persisted order.
func PaymentTypes() []PaymentType {
	types := make([]PaymentType, len(paymentTypes))
	for i := range paymentTypes {
		types[i] = PaymentType(i)
	}
	return types
}

// Valid reports whether t is one of the seven known types.
func (t PaymentType) Valid() bool {
	return t >= 0 && int(t) < len(paymentTypes)
}

// Info returns the static table entry for t. Invalid types yield a zero
// TypeInfo, which contributes nothing to any total.
func (t PaymentType) Info() TypeInfo {
	if !t.Valid() {
		return TypeInfo{}
	}
	return paymentTypes[t]
}

func (t PaymentType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("PaymentType(%d)", int(t))
	}
	return paymentTypes[t].Name
}

// ParsePaymentType accepts the canonical names (USER, USER_SPLIT, ...) in any case.
func ParsePaymentType(s string) (PaymentType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, info := range paymentTypes {
		if info.Name == name {
			return PaymentType(i), nil
		}
	}
	return 0, NewValidationError("type", fmt.Sprintf("unknown payment type %q", s))
}

// PaymentRecord is one persisted ledger entry.
type PaymentRecord struct {
	// ID is assigned by the store on creation and never changes.
	ID int64

	Title string

	// Amount is in home-currency units and always positive.
	Amount decimal.Decimal

	Type PaymentType

	// OccurredAt is supplied by the client. Storage keeps millisecond precision.
	OccurredAt time.Time
}

// Validate checks the record invariants: non-empty title, positive amount,
// known type and a set timestamp.
func (p PaymentRecord) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if !p.Amount.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if !p.Type.Valid() {
		return NewValidationError("type", fmt.Sprintf("unknown payment type %d", int(p.Type)))
	}
	if p.OccurredAt.IsZero() {
		return NewValidationError("occurred_at", "must be set")
	}
	return nil
}

// ParseAmount parses a decimal amount. Both "12.34" and "12,34" are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "must not be empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", fmt.Sprintf("%q is not a number", s))
	}
	if !d.IsPositive() {
		return decimal.Zero, NewValidationError("amount", "must be greater than zero")
	}
	return d, nil
}

// AmountFromFloat converts a float amount, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, NewValidationError("amount", "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

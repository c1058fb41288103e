// Package calculator holds the pure arithmetic of the ledger: folding payment
// records into totals and converting between currency units.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/models"
)

// DisplayPlaces is the number of fractional digits shown to users.
const DisplayPlaces = 2

// Totals is the result of folding a set of payment records.
type Totals struct {
	// Spent is what the user consumed personally.
	Spent decimal.Decimal

	// Debt is the signed balance between the parties.
	// Positive = user owes friend, negative = friend owes user.
	Debt decimal.Decimal
}

// Aggregate computes total spent and net debt for the given records.
//
// Each record contributes amount × factor from its type's table entry:
//
//	USER             spend +a   debt  0
//	USER_SPLIT       spend  0   debt -a/2
//	FRIEND_SPLIT     spend  0   debt +a/2
//	DEBT_TO_FRIEND   spend  0   debt +a
//	DEBT_TO_USER     spend  0   debt -a
//	USER_PAYS_FRIEND spend +a   debt -a
//	FRIEND_PAYS_USER spend  0   debt -a
//
// Accumulation is exact decimal addition, so the result does not depend on
// record order. Nothing is rounded here; see Display.
func Aggregate(records []models.PaymentRecord) Totals {
	spent := decimal.Zero
	debt := decimal.Zero
	for _, r := range records {
		info := r.Type.Info()
		spent = spent.Add(r.Amount.Mul(info.SpendFactor))
		debt = debt.Add(r.Amount.Mul(info.DebtFactor))
	}
	return Totals{Spent: spent, Debt: debt}
}

// DisplayTotals is Totals rendered for presentation.
type DisplayTotals struct {
	Spent string
	Debt  string
}

// Display rounds both totals to DisplayPlaces.
func (t Totals) Display() DisplayTotals {
	return DisplayTotals{Spent: Display(t.Spent), Debt: Display(t.Debt)}
}

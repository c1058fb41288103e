// Package models defines the core domain models for duoledger.
//
// # Models
//
//   - PaymentRecord: one entry in the shared ledger between the user and the friend
//   - PaymentType: closed set of seven payment kinds, each with a fixed spend/debt contribution
//
// Exactly two parties exist: "user" (the owner of the ledger) and "friend" (the counterpart).
// Amounts are held as decimals in the home currency; conversion to the foreign
// currency happens at presentation time.
//
// # Taxonomy history
//
// The first schema recorded only whether the user paid ("paid_by_user"). That
// three-way model is superseded by the seven PaymentType values and is not mapped onto them;
// the migration that introduces PaymentType recreates the payment table.
package models

package models

import (
	"github.com/shopspring/decimal"
)

// TxType is the kind of ledger event.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxDispute    TxType = "dispute"
	TxResolve    TxType = "resolve"
	TxChargeback TxType = "chargeback"
)

// Event is a single ledger event as read from the input feed.
// Amount is nil for dispute, resolve and chargeback, which take the
// amount from the referenced deposit instead.
type Event struct {
	Type   TxType           `json:"type" validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client ClientID         `json:"client"`
	Tx     TxID             `json:"tx"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// HasAmount reports whether the event carried an amount.
func (e Event) HasAmount() bool {
	return e.Amount != nil
}

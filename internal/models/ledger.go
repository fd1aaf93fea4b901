package models

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits amounts are rendered with.
const AmountScale = 4

// ClientID identifies the owner of an account.
type ClientID uint16

// TxID identifies a transaction. Deposit ids share one global space across clients.
type TxID uint32

// Account is the running balance of one client.
// Total always equals Available + Held.
type Account struct {
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}

// DepositRecord remembers who made a deposit and how much, so a later
// dispute, resolve or chargeback can find it again.
type DepositRecord struct {
	Client ClientID        `json:"client"`
	Amount decimal.Decimal `json:"amount"`
}

// AccountRow is one line of the final snapshot.
type AccountRow struct {
	Client ClientID `json:"client" db:"client_id"`
	Account
}

// Fields renders the row the way the snapshot consumers expect it:
// client, available, held, total, locked.
func (r AccountRow) Fields() []string {
	return []string{
		strconv.FormatUint(uint64(r.Client), 10),
		FormatAmount(r.Available),
		FormatAmount(r.Held),
		FormatAmount(r.Total),
		strconv.FormatBool(r.Locked),
	}
}

func (r AccountRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Client    ClientID `json:"client"`
		Available string   `json:"available"`
		Held      string   `json:"held"`
		Total     string   `json:"total"`
		Locked    bool     `json:"locked"`
	}{
		Client:    r.Client,
		Available: FormatAmount(r.Available),
		Held:      FormatAmount(r.Held),
		Total:     FormatAmount(r.Total),
		Locked:    r.Locked,
	})
}

// FormatAmount prints an amount with exactly AmountScale fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

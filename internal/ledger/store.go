// Package ledger holds the account and deposit state the event processor
// works on. It is plain storage: callers are responsible for validation and
// for serializing access.
package ledger

import (
	"sort"

	"github.com/ruralpay/payengine/internal/models"
)

type Store struct {
	accounts map[models.ClientID]*models.Account
	deposits map[models.TxID]models.DepositRecord
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[models.ClientID]*models.Account),
		deposits: make(map[models.TxID]models.DepositRecord),
	}
}

// Account returns the account for client, creating a zeroed one on first use.
func (s *Store) Account(client models.ClientID) *models.Account {
	a, ok := s.accounts[client]
	if !ok {
		a = &models.Account{}
		s.accounts[client] = a
	}
	return a
}

// Lookup returns the account for client without creating it.
func (s *Store) Lookup(client models.ClientID) (models.Account, bool) {
	a, ok := s.accounts[client]
	if !ok {
		return models.Account{}, false
	}
	return *a, true
}

// InsertDeposit records tx as a disputable deposit, replacing any earlier
// record with the same id.
func (s *Store) InsertDeposit(tx models.TxID, rec models.DepositRecord) {
	s.deposits[tx] = rec
}

func (s *Store) Deposit(tx models.TxID) (models.DepositRecord, bool) {
	rec, ok := s.deposits[tx]
	return rec, ok
}

func (s *Store) RemoveDeposit(tx models.TxID) {
	delete(s.deposits, tx)
}

// Accounts copies every account into a snapshot ordered by client id.
func (s *Store) Accounts() []models.AccountRow {
	rows := make([]models.AccountRow, 0, len(s.accounts))
	for client, a := range s.accounts {
		rows = append(rows, models.AccountRow{Client: client, Account: *a})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Client < rows[j].Client })
	return rows
}

// Len returns the number of accounts and tracked deposits.
func (s *Store) Len() (accounts, deposits int) {
	return len(s.accounts), len(s.deposits)
}

package services

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ruralpay/payengine/internal/ledger"
	"github.com/ruralpay/payengine/internal/models"
)

// Outcome describes what applying one event did to the ledger.
// Everything except OutcomeApplied leaves the state untouched.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeLocked
	OutcomeMissingAmount
	OutcomeInsufficientFunds
	OutcomeUnknownTx
	OutcomeClientMismatch
	OutcomeUnsupported
	numOutcomes
)

var outcomeNames = [numOutcomes]string{
	OutcomeApplied:           "applied",
	OutcomeLocked:            "account_locked",
	OutcomeMissingAmount:     "missing_amount",
	OutcomeInsufficientFunds: "insufficient_funds",
	OutcomeUnknownTx:         "unknown_tx",
	OutcomeClientMismatch:    "client_mismatch",
	OutcomeUnsupported:       "unsupported_type",
}

func (o Outcome) String() string {
	if o < 0 || o >= numOutcomes {
		return "unknown"
	}
	return outcomeNames[o]
}

// Processor applies ledger events to an in-memory store. Apply is the only
// way to mutate the store; one mutex covers both the account map and the
// deposit map so an event is applied as a single step.
type Processor struct {
	mu     sync.Mutex
	store  *ledger.Store
	log    *zap.Logger
	counts [numOutcomes]uint64
}

func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store: ledger.NewStore(),
		log:   logger,
	}
}

// Apply applies ev and reports the outcome. Rejected events are not errors:
// they are logged at debug level and otherwise have no effect.
func (p *Processor) Apply(ev models.Event) Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.apply(ev)
	p.counts[out]++
	if out != OutcomeApplied {
		p.log.Debug("event ignored",
			zap.String("type", string(ev.Type)),
			zap.Uint16("client", uint16(ev.Client)),
			zap.Uint32("tx", uint32(ev.Tx)),
			zap.Stringer("outcome", out),
		)
	}
	return out
}

func (p *Processor) apply(ev models.Event) Outcome {
	acct := p.store.Account(ev.Client)
	if acct.Locked {
		return OutcomeLocked
	}

	switch ev.Type {
	case models.TxDeposit:
		if !ev.HasAmount() {
			return OutcomeMissingAmount
		}
		amt := *ev.Amount
		acct.Available = acct.Available.Add(amt)
		acct.Total = acct.Total.Add(amt)
		p.store.InsertDeposit(ev.Tx, models.DepositRecord{Client: ev.Client, Amount: amt})
		return OutcomeApplied

	case models.TxWithdrawal:
		if !ev.HasAmount() {
			return OutcomeMissingAmount
		}
		amt := *ev.Amount
		if acct.Available.LessThan(amt) {
			return OutcomeInsufficientFunds
		}
		acct.Available = acct.Available.Sub(amt)
		acct.Total = acct.Total.Sub(amt)
		return OutcomeApplied

	case models.TxDispute, models.TxResolve, models.TxChargeback:
		rec, ok := p.store.Deposit(ev.Tx)
		if !ok {
			return OutcomeUnknownTx
		}
		if rec.Client != ev.Client {
			return OutcomeClientMismatch
		}
		switch ev.Type {
		case models.TxDispute:
			acct.Available = acct.Available.Sub(rec.Amount)
			acct.Held = acct.Held.Add(rec.Amount)
		case models.TxResolve:
			acct.Held = acct.Held.Sub(rec.Amount)
			acct.Available = acct.Available.Add(rec.Amount)
			p.store.RemoveDeposit(ev.Tx)
		case models.TxChargeback:
			acct.Held = acct.Held.Sub(rec.Amount)
			acct.Total = acct.Total.Sub(rec.Amount)
			acct.Locked = true
			p.store.RemoveDeposit(ev.Tx)
		}
		return OutcomeApplied
	}

	return OutcomeUnsupported
}

// Account returns a copy of the account for client, if it has been seen.
func (p *Processor) Account(client models.ClientID) (models.Account, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Lookup(client)
}

// Snapshot returns every account ordered by client id.
func (p *Processor) Snapshot() []models.AccountRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Accounts()
}

// Stats summarizes how many events ended in each outcome, plus the current
// size of the store.
type Stats struct {
	Outcomes map[string]uint64 `json:"outcomes"`
	Events   uint64            `json:"events"`
	Accounts int               `json:"accounts"`
	Deposits int               `json:"openDeposits"`
}

func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Stats{Outcomes: make(map[string]uint64, numOutcomes)}
	for o, n := range p.counts {
		st.Outcomes[Outcome(o).String()] = n
		st.Events += n
	}
	st.Accounts, st.Deposits = p.store.Len()
	return st
}

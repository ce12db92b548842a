// internal/economy/ledger.go
package economy

import (
	"go-power-towers/internal/event"
)

// Ledger tracks the player's gold.
type Ledger struct {
	gold        int
	totalEarned int
	totalSpent  int
	starting    int
	dispatcher  *event.Dispatcher
}

// NewLedger creates a ledger holding starting gold.
func NewLedger(starting int, d *event.Dispatcher) *Ledger {
	return &Ledger{gold: starting, starting: starting, dispatcher: d}
}

func (l *Ledger) Gold() int {
	return l.gold
}

func (l *Ledger) TotalEarned() int {
	return l.totalEarned
}

func (l *Ledger) TotalSpent() int {
	return l.totalSpent
}

// CanAfford reports whether amount can be spent.
func (l *Ledger) CanAfford(amount int) bool {
	return amount <= l.gold
}

// Spend deducts amount and reports whether there was enough gold.
func (l *Ledger) Spend(amount int) bool {
	if amount < 0 || !l.CanAfford(amount) {
		return false
	}
	l.gold -= amount
	l.totalSpent += amount
	l.emitUpdate()
	return true
}

// Earn adds amount.
func (l *Ledger) Earn(amount int) {
	if amount <= 0 {
		return
	}
	l.gold += amount
	l.totalEarned += amount
	l.emitUpdate()
}

// Reset restores the starting balance.
func (l *Ledger) Reset() {
	l.gold = l.starting
	l.totalEarned = 0
	l.totalSpent = 0
	l.emitUpdate()
}

func (l *Ledger) emitUpdate() {
	l.dispatcher.Dispatch(event.Event{Type: event.GoldChanged, Data: l.gold})
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrNoActiveEvent     = errors.New("no active event to resolve")
)

// Dice is the source of randomness for adverse events. *rand.Rand from
// math/rand/v2 satisfies it.
type Dice interface {
	Float64() float64
	IntN(n int) int
}

// Env is what a transition may observe besides the state itself.
type Env struct {
	Now  time.Time
	Dice Dice
}

// Command is a player-initiated mutation.
type Command interface {
	apply(e *Economy, env Env) error
	Name() string
}

// Apply runs cmd against a copy of state. On rejection the input state is
// returned untouched together with the reason.
func Apply(state Economy, cmd Command, env Env) (Economy, error) {
	next := state.Clone()
	if err := cmd.apply(&next, env); err != nil {
		return state, err
	}
	next.presentEligibleNarrative()
	return next, nil
}

type Work struct{}

func (Work) Name() string { return "work" }

func (Work) apply(e *Economy, env Env) error {
	earned := decimal.NewFromInt(e.ClickYield)
	e.credit(earned)
	e.notify(NoteIncome, "+"+earned.String(), env.Now)
	e.addExperience(1, env.Now)
	return nil
}

type BuyUpgrade struct {
	ID string
}

func (BuyUpgrade) Name() string { return "buy_upgrade" }

func (c BuyUpgrade) apply(e *Economy, env Env) error {
	def, ok := e.catalog.Upgrade(c.ID)
	if !ok {
		return fmt.Errorf("upgrade %q: %w", c.ID, ErrInvalidReference)
	}
	cost := e.catalog.PriceOf(def, e.Owned[c.ID])
	if !e.CanAfford(cost) {
		return fmt.Errorf("upgrade %s costs %s: %w", c.ID, cost, ErrInsufficientFunds)
	}
	e.deduct(cost)
	e.Owned[c.ID]++
	e.IncomeRate += def.IncomePerUnit
	e.ClickYield += def.ClickPerUnit
	e.notify(NotePurchase, fmt.Sprintf("Bought %s!", def.Name), env.Now)
	return nil
}

type BuyTaxModifier struct {
	ID string
}

func (BuyTaxModifier) Name() string { return "buy_tax_modifier" }

func (c BuyTaxModifier) apply(e *Economy, env Env) error {
	def, ok := e.catalog.TaxModifier(c.ID)
	if !ok {
		return fmt.Errorf("tax modifier %q: %w", c.ID, ErrInvalidReference)
	}
	cost := decimal.NewFromInt(def.Cost)
	if !e.CanAfford(cost) {
		return fmt.Errorf("tax modifier %s costs %s: %w", c.ID, cost, ErrInsufficientFunds)
	}
	e.deduct(cost)
	e.Modifiers = append(e.Modifiers, ActiveModifier{
		ID:        def.ID,
		Magnitude: def.ReductionPercent,
		ExpiresAt: env.Now.Add(def.Duration),
	})
	e.notify(NotePurchase, fmt.Sprintf("Tax reduced by %d%%!", def.ReductionPercent), env.Now)
	return nil
}

type PayOffLoan struct{}

func (PayOffLoan) Name() string { return "pay_off_loan" }

func (PayOffLoan) apply(e *Economy, env Env) error {
	if !e.LoanBalance.IsPositive() {
		return fmt.Errorf("no outstanding loan: %w", ErrInvalidReference)
	}
	if !e.CanAfford(e.LoanBalance) {
		return fmt.Errorf("loan of %s: %w", e.LoanBalance.StringFixed(2), ErrInsufficientFunds)
	}
	paid := e.LoanBalance
	e.deduct(paid)
	e.LoanBalance = decimal.Zero
	e.notify(NoteLoan, fmt.Sprintf("Loan paid off! -%s", paid.Floor()), env.Now)
	return nil
}

type Choose struct {
	EventID string
	Index   int
}

func (Choose) Name() string { return "choose" }

func (c Choose) apply(e *Economy, env Env) error {
	return e.resolveNarrative(c.EventID, c.Index, env.Now)
}

type AcknowledgeAdverse struct{}

func (AcknowledgeAdverse) Name() string { return "acknowledge_adverse" }

func (AcknowledgeAdverse) apply(e *Economy, env Env) error {
	return e.acknowledgeAdverse(env.Now)
}

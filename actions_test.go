package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, state Economy, cmd Command, now time.Time) Economy {
	t.Helper()
	next, err := Apply(state, cmd, Env{Now: now, Dice: &fakeDice{}})
	require.NoError(t, err, cmd.Name())
	return next
}

func TestWorkThenBuyFirstUpgrade(t *testing.T) {
	state := newTestEconomy(t)
	for i := 0; i < 15; i++ {
		state = mustApply(t, state, Work{}, sessionStart)
	}
	requireCoins(t, 15, state.Currency)
	assert.Equal(t, int64(15), state.Experience)

	state = mustApply(t, state, BuyUpgrade{ID: "pickaxe"}, sessionStart)
	requireCoins(t, 0, state.Currency)
	assert.Equal(t, 1, state.Owned["pickaxe"])
	assert.Equal(t, int64(2), state.ClickYield)

	price, ok := state.Price("pickaxe")
	require.True(t, ok)
	requireCoins(t, 17, price)
	assert.Contains(t, noteTexts(state.Notifications), "Bought Rusty Pickaxe!")
}

func TestWorkNotifiesEarnings(t *testing.T) {
	state := newTestEconomy(t)
	state.ClickYield = 7
	state = mustApply(t, state, Work{}, sessionStart)

	require.Len(t, state.Notifications, 1)
	assert.Equal(t, NoteIncome, state.Notifications[0].Kind)
	assert.Equal(t, "+7", state.Notifications[0].Text)
	assert.Equal(t, sessionStart, state.Notifications[0].CreatedAt)
}

func TestBuyUpgradeAddsIncome(t *testing.T) {
	state := newTestEconomy(t)
	state.Currency = coins(250)

	state = mustApply(t, state, BuyUpgrade{ID: "boots"}, sessionStart)
	requireCoins(t, 150, state.Currency)
	assert.Equal(t, int64(1), state.IncomeRate)
	assert.Equal(t, int64(1), state.ClickYield)

	state = mustApply(t, state, BuyUpgrade{ID: "boots"}, sessionStart)
	requireCoins(t, 35, state.Currency)
	assert.Equal(t, int64(2), state.IncomeRate)
	assert.Equal(t, 2, state.Owned["boots"])
}

func TestRejectedCommandsLeaveStateUnchanged(t *testing.T) {
	base := newTestEconomy(t)
	base.Currency = coins(10)

	cases := []struct {
		name string
		cmd  Command
		want error
	}{
		{"unaffordable upgrade", BuyUpgrade{ID: "pickaxe"}, ErrInsufficientFunds},
		{"unknown upgrade", BuyUpgrade{ID: "jetpack"}, ErrInvalidReference},
		{"unaffordable lawyer", BuyTaxModifier{ID: "lawyer1"}, ErrInsufficientFunds},
		{"unknown lawyer", BuyTaxModifier{ID: "lawyer9"}, ErrInvalidReference},
		{"no loan", PayOffLoan{}, ErrInvalidReference},
		{"no narrative", Choose{EventID: "pete_encounter", Index: 0}, ErrNoActiveEvent},
		{"no adverse event", AcknowledgeAdverse{}, ErrNoActiveEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Apply(base, tc.cmd, Env{Now: sessionStart, Dice: &fakeDice{}})
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, base, next)
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	base := newTestEconomy(t)
	base.Currency = coins(1000)
	snapshot := base.Clone()

	_ = mustApply(t, base, BuyUpgrade{ID: "boots"}, sessionStart)
	_ = mustApply(t, base, BuyTaxModifier{ID: "lawyer1"}, sessionStart)

	assert.Equal(t, snapshot, base)
}

func TestBuyTaxModifier(t *testing.T) {
	state := newTestEconomy(t)
	state.Currency = coins(1500)

	state = mustApply(t, state, BuyTaxModifier{ID: "lawyer1"}, sessionStart)
	requireCoins(t, 500, state.Currency)
	require.Len(t, state.Modifiers, 1)
	assert.Equal(t, ActiveModifier{ID: "lawyer1", Magnitude: 5, ExpiresAt: sessionStart.Add(30 * time.Second)}, state.Modifiers[0])
	assert.Equal(t, 30, state.EffectiveTaxRate(sessionStart))
	assert.Contains(t, noteTexts(state.Notifications), "Tax reduced by 5%!")
}

func TestStackedModifiersExpireIndependently(t *testing.T) {
	state := newTestEconomy(t)
	state.Currency = coins(20_000)
	sched := NewScheduler(state.Catalog(), nil)

	state = mustApply(t, state, BuyTaxModifier{ID: "lawyer2"}, sessionStart)
	state = mustApply(t, state, BuyTaxModifier{ID: "lawyer3"}, sessionStart.Add(15*time.Second))
	requireCoins(t, 0, state.Currency)
	sched.Reconcile(&state, sessionStart.Add(15*time.Second))

	assert.Equal(t, 10, state.EffectiveTaxRate(sessionStart.Add(20*time.Second)))

	sched.Advance(&state, Env{Now: sessionStart.Add(31 * time.Second), Dice: &fakeDice{}})
	require.Len(t, state.Modifiers, 1)
	assert.Equal(t, "lawyer3", state.Modifiers[0].ID)
	assert.Equal(t, 20, state.EffectiveTaxRate(sessionStart.Add(31*time.Second)))

	sched.Advance(&state, Env{Now: sessionStart.Add(46 * time.Second), Dice: &fakeDice{}})
	assert.Empty(t, state.Modifiers)
	assert.False(t, sched.Subscribed("expiry"))
}

func TestPayOffLoan(t *testing.T) {
	state := newTestEconomy(t)
	state.LoanBalance = coins(1000).Add(coins(4).Shift(-2))

	state.Currency = coins(1000)
	_, err := Apply(state, PayOffLoan{}, Env{Now: sessionStart})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	state.Currency = coins(1500)
	state = mustApply(t, state, PayOffLoan{}, sessionStart)
	assert.True(t, state.LoanBalance.IsZero())
	assert.Equal(t, "499.96", state.Currency.StringFixed(2))
	assert.Contains(t, noteTexts(state.Notifications), "Loan paid off! -1000")
}

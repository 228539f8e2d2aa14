package ledger

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestRegisterBuyInAccumulates(t *testing.T) {
	l := New()
	l.RegisterBuyIn("1", "alice", dec("100"))
	v := l.RegisterBuyIn("1", "alice", dec("50"))

	assertDecimal(t, "150", v.BuyIn)
	assert.Equal(t, 1, l.Len())
}

func TestRegisterBuyInAllowsCorrections(t *testing.T) {
	l := New()
	l.RegisterBuyIn("1", "alice", dec("100"))
	v := l.RegisterBuyIn("1", "alice", dec("-20"))
	assertDecimal(t, "80", v.BuyIn)
}

func TestApplyTransferRecordsBothSides(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))

	require.NoError(t, l.ApplyTransfer("a", "b", dec("30")))

	a, _ := l.Player("a")
	b, _ := l.Player("b")
	require.Len(t, a.Transfers, 1)
	require.Len(t, b.Transfers, 1)
	assert.Equal(t, Send, a.Transfers[0].Kind)
	assert.Equal(t, Receive, b.Transfers[0].Kind)
	assert.True(t, a.Transfers[0].Amount.Equal(b.Transfers[0].Amount))
	assert.Equal(t, "b", a.Transfers[0].Counterparty)
	assert.Equal(t, "a", b.Transfers[0].Counterparty)

	// buy-in is not touched by transfers; the log is the only record
	assertDecimal(t, "100", a.BuyIn)
	assertDecimal(t, "70", a.EffectiveBuyIn)
	assertDecimal(t, "130", b.EffectiveBuyIn)
}

func TestApplyTransferRejectsWithoutSideEffects(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		amount  string
		wantErr error
	}{
		{name: "self transfer", from: "a", to: "a", amount: "10", wantErr: ErrInvalidSelection},
		{name: "unknown recipient", from: "a", to: "zz", amount: "10", wantErr: ErrUnknownPlayer},
		{name: "unknown sender", from: "zz", to: "b", amount: "10", wantErr: ErrUnknownPlayer},
		{name: "zero amount", from: "a", to: "b", amount: "0", wantErr: ErrParse},
		{name: "negative amount", from: "a", to: "b", amount: "-5", wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			l.RegisterBuyIn("a", "A", dec("100"))
			l.RegisterBuyIn("b", "B", dec("100"))
			before := l.Snapshot()

			err := l.ApplyTransfer(tt.from, tt.to, dec(tt.amount))

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, l.Snapshot())
		})
	}
}

func TestApplyTransferInRoundRejectsStaleRound(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))
	round := l.Round()

	l.Reset()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))

	err := l.ApplyTransferInRound(round, "a", "b", dec("10"))
	require.ErrorIs(t, err, ErrInvalidSelection)

	a, _ := l.Player("a")
	assert.Empty(t, a.Transfers)
	require.NoError(t, l.ApplyTransferInRound(l.Round(), "a", "b", dec("10")))
}

func TestSetFinalChips(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))

	require.ErrorIs(t, l.SetFinalChips("zz", dec("10")), ErrUnknownPlayer)
	require.ErrorIs(t, l.SetFinalChips("a", dec("-1")), ErrParse)

	require.NoError(t, l.SetFinalChips("a", dec("80")))
	require.NoError(t, l.SetFinalChips("a", dec("90")))
	a, _ := l.Player("a")
	require.NotNil(t, a.FinalChips)
	assertDecimal(t, "90", *a.FinalChips)
}

func TestComputeSettlementIncomplete(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))
	require.NoError(t, l.SetFinalChips("a", dec("80")))

	_, err := l.ComputeSettlement()
	require.ErrorIs(t, err, ErrIncompleteData)
	var incomplete *IncompleteDataError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"B"}, incomplete.Missing)

	_, err = l.SettleAndReset()
	require.ErrorIs(t, err, ErrIncompleteData)
	assert.Equal(t, 2, l.Len())
}

func TestSettlementWithoutTransfers(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))
	require.NoError(t, l.SetFinalChips("a", dec("80")))
	require.NoError(t, l.SetFinalChips("b", dec("120")))

	balances, err := l.ComputeSettlement()
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "A", balances[0].Name)
	assertDecimal(t, "-20", balances[0].Amount)
	assert.True(t, balances[0].Owes())
	assert.Equal(t, "B", balances[1].Name)
	assertDecimal(t, "20", balances[1].Amount)

	neg, pos := TotalOwedVsReceived(balances)
	assertDecimal(t, "-20", neg)
	assertDecimal(t, "20", pos)
	assert.True(t, ZeroSumHolds(neg, pos))

	// pure computation
	assert.Equal(t, 2, l.Len())
}

func TestSettlementWithTransfer(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("100"))
	l.RegisterBuyIn("b", "B", dec("100"))
	require.NoError(t, l.ApplyTransfer("a", "b", dec("30")))
	require.NoError(t, l.SetFinalChips("a", dec("70")))
	require.NoError(t, l.SetFinalChips("b", dec("130")))

	effA, err := l.EffectiveBuyIn("a")
	require.NoError(t, err)
	assertDecimal(t, "70", effA)
	effB, err := l.EffectiveBuyIn("b")
	require.NoError(t, err)
	assertDecimal(t, "130", effB)

	balances, err := l.SettleAndReset()
	require.NoError(t, err)
	assertDecimal(t, "0", balances[0].Amount)
	assertDecimal(t, "0", balances[1].Amount)
	assert.False(t, balances[0].Owes())

	assert.Zero(t, l.Len())
	assert.Empty(t, l.Snapshot())
}

func TestEffectiveBuyInIsOrderIndependent(t *testing.T) {
	p := &Player{
		BuyIn: dec("100"),
		Transfers: []Transfer{
			{Kind: Send, Amount: dec("10.5")},
			{Kind: Receive, Amount: dec("3")},
			{Kind: Send, Amount: dec("7.25")},
			{Kind: Receive, Amount: dec("40")},
		},
	}
	want := p.EffectiveBuyIn()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		r.Shuffle(len(p.Transfers), func(i, j int) {
			p.Transfers[i], p.Transfers[j] = p.Transfers[j], p.Transfers[i]
		})
		assert.True(t, want.Equal(p.EffectiveBuyIn()))
	}
	assertDecimal(t, "125.25", want)
}

func TestTransfersConserveChips(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e"}

	for trial := 0; trial < 50; trial++ {
		l := New()
		registered := decimal.Zero
		for step := 0; step < 40; step++ {
			if r.Intn(3) == 0 || l.Len() < 2 {
				id := ids[r.Intn(len(ids))]
				amt := decimal.New(int64(r.Intn(500)), -1)
				l.RegisterBuyIn(id, id, amt)
				registered = registered.Add(amt)
				continue
			}
			from, to := ids[r.Intn(len(ids))], ids[r.Intn(len(ids))]
			_ = l.ApplyTransfer(from, to, decimal.New(int64(r.Intn(100)+1), 0))
		}

		total := decimal.Zero
		sends, receives := 0, 0
		for _, p := range l.Snapshot() {
			total = total.Add(p.EffectiveBuyIn)
			for _, tr := range p.Transfers {
				if tr.Kind == Send {
					sends++
				} else {
					receives++
				}
			}
		}
		assert.True(t, registered.Equal(total), "trial %d: registered %s, effective %s", trial, registered, total)
		assert.Equal(t, sends, receives)
	}
}

func TestConcurrentWrites(t *testing.T) {
	l := New()
	l.RegisterBuyIn("a", "A", dec("0"))
	l.RegisterBuyIn("b", "B", dec("0"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.RegisterBuyIn("a", "A", dec("1"))
		}()
		go func() {
			defer wg.Done()
			_ = l.ApplyTransfer("a", "b", dec("1"))
		}()
	}
	wg.Wait()

	a, _ := l.Player("a")
	b, _ := l.Player("b")
	assertDecimal(t, "50", a.BuyIn)
	assert.Len(t, a.Transfers, 50)
	assert.Len(t, b.Transfers, 50)
	assert.True(t, a.EffectiveBuyIn.Add(b.EffectiveBuyIn).Equal(dec("50")))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "100", want: "100"},
		{in: " 12.50 ", want: "12.5"},
		{in: "$30", want: "30"},
		{in: "1,000", want: "1000"},
		{in: "-5", want: "-5"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "12abc", wantErr: true},
		{in: "0.5", want: "0.5"},
		{in: "999999999999.99", want: "999999999999.99"},
		{in: "1e3", wantErr: true},
		{in: "1e5000000", wantErr: true},
		{in: "1e-5000000", wantErr: true},
		{in: "1E2", wantErr: true},
		{in: "1234567890123", wantErr: true},
		{in: "0.123456789", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: ".", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}

	_, err := ParsePositiveAmount("0")
	require.ErrorIs(t, err, ErrParse)
	_, err = ParseNonNegativeAmount("-1")
	require.ErrorIs(t, err, ErrParse)
	z, err := ParseNonNegativeAmount("0")
	require.NoError(t, err)
	assert.True(t, z.IsZero())
}

func TestZeroSumTolerance(t *testing.T) {
	assert.True(t, ZeroSumHolds(dec("-10.001"), dec("10")))
	assert.False(t, ZeroSumHolds(dec("-10.5"), dec("10")))
	assert.Equal(t, "20.00", FormatMoney(dec("20")))
	assert.Equal(t, "0.33", FormatMoney(dec("0.333")))
}

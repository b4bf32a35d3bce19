package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stackDescriptor() DecisionDescriptor {
	return DecisionDescriptor{
		Kind:          DecisionSelectSpellStack,
		Min:           1,
		Max:           1,
		Scope:         ScopeSelf,
		AllowedColors: []Color{Red, Green},
	}
}

func newTestArbiter() *Arbiter {
	logger, _ := test.NewNullLogger()
	return NewArbiter(logger)
}

type requestOutcome struct {
	results []DecisionResult
	err     error
}

func startRequest(a *Arbiter, ctx context.Context, reqs []DecisionRequest, timeout time.Duration, onTimeout func(Side) DecisionPayload) <-chan requestOutcome {
	out := make(chan requestOutcome, 1)
	go func() {
		res, err := a.Request(ctx, reqs, timeout, onTimeout, nil)
		out <- requestOutcome{res, err}
	}()
	return out
}

func waitPending(t *testing.T, a *Arbiter, side Side) *PendingDecision {
	t.Helper()
	require.Eventually(t, func() bool { return a.Pending(side) != nil }, time.Second, time.Millisecond)
	return a.Pending(side)
}

func TestSubmitBeforeTimeout(t *testing.T) {
	a := newTestArbiter()
	noTimeout := func(Side) DecisionPayload {
		t.Error("timeout handler ran for a decision submitted in time")
		return DecisionPayload{}
	}
	done := startRequest(a, context.Background(), []DecisionRequest{{Side: SideA, Descriptor: stackDescriptor()}}, time.Minute, noTimeout)
	pd := waitPending(t, a, SideA)

	require.NoError(t, a.Submit(SideA, DecisionPayload{Colors: []Color{Green}}))
	out := <-done
	require.NoError(t, out.err)
	require.Len(t, out.results, 1)
	assert.False(t, out.results[0].TimedOut)
	assert.Equal(t, []Color{Green}, out.results[0].Payload.Colors)
	assert.Equal(t, DecisionFulfilled, pd.State())
	assert.Nil(t, a.Pending(SideA), "slot is cleared after resolution")
}

func TestTimeoutUsesFallback(t *testing.T) {
	a := newTestArbiter()
	fallback := func(side Side) DecisionPayload {
		assert.Equal(t, SideB, side)
		return DecisionPayload{Colors: []Color{Red}}
	}
	done := startRequest(a, context.Background(), []DecisionRequest{{Side: SideB, Descriptor: stackDescriptor()}}, 10*time.Millisecond, fallback)

	out := <-done
	require.NoError(t, out.err)
	require.Len(t, out.results, 1)
	assert.True(t, out.results[0].TimedOut)
	assert.Equal(t, []Color{Red}, out.results[0].Payload.Colors)
	assert.Nil(t, a.Pending(SideB))

	assert.ErrorIs(t, a.Submit(SideB, DecisionPayload{Colors: []Color{Green}}), ErrNoPendingDecision, "late submissions are rejected")
}

func TestOneSideTimingOutLeavesOtherAlone(t *testing.T) {
	a := newTestArbiter()
	reqs := []DecisionRequest{
		{Side: SideA, Descriptor: stackDescriptor()},
		{Side: SideB, Descriptor: stackDescriptor()},
	}
	done := startRequest(a, context.Background(), reqs, 50*time.Millisecond, func(Side) DecisionPayload {
		return DecisionPayload{Colors: []Color{Green}}
	})
	waitPending(t, a, SideA)
	require.NoError(t, a.Submit(SideA, DecisionPayload{Colors: []Color{Red}}))

	out := <-done
	require.NoError(t, out.err)
	require.Len(t, out.results, 2)
	bySide := map[Side]DecisionResult{}
	for _, r := range out.results {
		bySide[r.Side] = r
	}
	assert.False(t, bySide[SideA].TimedOut)
	assert.Equal(t, []Color{Red}, bySide[SideA].Payload.Colors)
	assert.True(t, bySide[SideB].TimedOut)
	assert.Equal(t, []Color{Green}, bySide[SideB].Payload.Colors)
}

func TestInvalidSubmissionKeepsDecisionOpen(t *testing.T) {
	a := newTestArbiter()
	done := startRequest(a, context.Background(), []DecisionRequest{{Side: SideA, Descriptor: stackDescriptor()}}, time.Minute, nil)
	waitPending(t, a, SideA)

	cases := []DecisionPayload{
		{},
		{Colors: []Color{Red, Green}},
		{Colors: []Color{Blue}},
		{Colors: []Color{ColorNone}},
	}
	for _, p := range cases {
		err := a.Submit(SideA, p)
		var invalid *InvalidDecisionError
		require.True(t, errors.As(err, &invalid), "payload %+v", p)
		assert.Equal(t, SideA, invalid.Side)
		assert.NotNil(t, a.Pending(SideA))
	}

	assert.ErrorIs(t, a.Submit(SideB, DecisionPayload{Colors: []Color{Red}}), ErrNoPendingDecision)
	require.NoError(t, a.Submit(SideA, DecisionPayload{Colors: []Color{Red}}))
	require.NoError(t, (<-done).err)
}

func TestHandSelectionValidation(t *testing.T) {
	d := DecisionDescriptor{
		Kind:         DecisionSelectFromHand,
		Min:          1,
		Max:          2,
		AllowedKinds: []CardKind{KindSpell},
		Options: []DecisionOption{
			{Key: 1, Kind: KindSpell, Colors: []Color{Red}},
			{Key: 2, Kind: KindSpell},
			{Key: 3, Kind: KindField},
		},
	}
	assert.NoError(t, d.Validate(SideA, DecisionPayload{Cards: []int{1, 2}}))
	assert.Error(t, d.Validate(SideA, DecisionPayload{Cards: []int{1, 1}}), "duplicates")
	assert.Error(t, d.Validate(SideA, DecisionPayload{Cards: []int{4}}), "not an option")
	assert.Error(t, d.Validate(SideA, DecisionPayload{Cards: []int{3}}), "wrong kind")
	assert.Error(t, d.Validate(SideA, DecisionPayload{Cards: []int{1, 2, 3}}), "too many")

	d.AllowedColors = []Color{Blue}
	assert.Error(t, d.Validate(SideA, DecisionPayload{Cards: []int{1}}), "red spell not allowed")
	assert.NoError(t, d.Validate(SideA, DecisionPayload{Cards: []int{2}}), "colorless spells pass the color filter")
}

func TestCancelledRequestEmptiesSlots(t *testing.T) {
	a := newTestArbiter()
	ctx, cancel := context.WithCancel(context.Background())
	done := startRequest(a, ctx, []DecisionRequest{
		{Side: SideA, Descriptor: stackDescriptor()},
		{Side: SideB, Descriptor: stackDescriptor()},
	}, time.Minute, nil)
	pd := waitPending(t, a, SideB)

	cancel()
	out := <-done
	assert.ErrorIs(t, out.err, context.Canceled)
	assert.Nil(t, a.Pending(SideA))
	assert.Nil(t, a.Pending(SideB))
	assert.Equal(t, DecisionCancelled, pd.State())
}

func TestStaleClearLeavesNewerDecision(t *testing.T) {
	a := newTestArbiter()
	done := make(chan *PendingDecision, 2)
	req := DecisionRequest{Side: SideA, Descriptor: stackDescriptor()}

	older := a.open(req, time.Minute, done)
	newer := a.open(req, time.Minute, done)
	require.Same(t, newer, a.Pending(SideA))

	require.True(t, older.finish(DecisionFulfilled, DecisionResult{Side: SideA}))
	a.clear(older)
	assert.Equal(t, 1, a.StaleClears())
	assert.Same(t, newer, a.Pending(SideA))

	assert.False(t, older.finish(DecisionTimedOut, DecisionResult{}), "a decision resolves once")
	newer.finish(DecisionCancelled, DecisionResult{})
}

func TestResolvedDecisionIsNotLiveBeforeCollection(t *testing.T) {
	a := newTestArbiter()
	done := make(chan *PendingDecision, 1)
	pd := a.open(DecisionRequest{Side: SideB, Descriptor: stackDescriptor()}, time.Minute, done)

	require.NoError(t, a.Submit(SideB, DecisionPayload{Colors: []Color{Red}}))
	assert.Nil(t, a.Pending(SideB), "a fulfilled decision is gone before Request collects it")
	assert.ErrorIs(t, a.Submit(SideB, DecisionPayload{}), ErrNoPendingDecision)
	assert.ErrorIs(t, a.Submit(SideB, DecisionPayload{Colors: []Color{Green}}), ErrNoPendingDecision)

	assert.Same(t, pd, <-done)
	a.clear(pd)
	assert.Equal(t, 0, a.StaleClears())
}

func TestNestedDecisionFromResolve(t *testing.T) {
	a := newTestArbiter()
	var nested []DecisionResult
	go func() {
		assert.Eventually(t, func() bool { return a.Pending(SideA) != nil }, time.Second, time.Millisecond)
		_ = a.Submit(SideA, DecisionPayload{Colors: []Color{Red}})
	}()

	results, err := a.Request(context.Background(), []DecisionRequest{{Side: SideA, Descriptor: stackDescriptor()}}, time.Minute, nil,
		func(res DecisionResult) error {
			go func() {
				assert.Eventually(t, func() bool {
					pd := a.Pending(SideA)
					return pd != nil && pd.Descriptor.Max == 2
				}, time.Second, time.Millisecond)
				_ = a.Submit(SideA, DecisionPayload{Colors: []Color{Red, Green}})
			}()
			desc := stackDescriptor()
			desc.Max = 2
			var err error
			nested, err = a.Request(context.Background(), []DecisionRequest{{Side: SideA, Descriptor: desc}}, time.Minute, nil, nil)
			return err
		})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, nested, 1)
	assert.Equal(t, []Color{Red, Green}, nested[0].Payload.Colors)
	assert.Equal(t, 0, a.StaleClears())
}

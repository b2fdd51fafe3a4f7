package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

func TestSweeper_ExpiresIdleLoneOwnerOnce(t *testing.T) {
	req := require.New(t)
	h := newHarness("ABC123", "DEF456")
	a := h.connect("A")
	h.orch.CreateSession("A")
	a.reset()
	sw := &Sweeper{Orch: h.orch, Timeout: 30 * time.Minute}

	// Given the session is idle for exactly the timeout, nothing happens
	h.clock.Advance(30 * time.Minute)
	req.Zero(sw.Sweep())

	// When it goes past the timeout
	h.clock.Advance(time.Second)
	req.Equal(1, sw.Sweep())
	req.Zero(sw.Sweep())

	// Then the owner hears about it once and is free to start over
	req.Equal([]string{core.EvSessionExpired}, a.types())
	req.Zero(h.orch.ActiveSessions())
	role, _, _ := h.orch.Registry.StateOf("A")
	req.Equal(domain.Unbound, role)

	h.orch.CreateSession("A")
	req.Equal(map[string]any{"type": "session-created", "code": "DEF456"}, a.last())
}

func TestSweeper_NotifiesBothMembersAndLeaveAfterwardsIsSilent(t *testing.T) {
	req := require.New(t)
	h := newHarness()
	a, b, code := h.pair(t, "A", "B")
	sw := &Sweeper{Orch: h.orch, Timeout: 30 * time.Minute}

	h.clock.Advance(31 * time.Minute)
	req.Equal(1, sw.Sweep())

	h.orch.LeaveSession("A")
	h.orch.OnDisconnect("B")

	req.Equal([]string{core.EvSessionExpired}, a.types())
	req.Equal([]string{core.EvSessionExpired}, b.types())
	_, ok := h.orch.Store.Get(code)
	req.False(ok)
}

func TestSweeper_ActivityKeepsSessionAlive(t *testing.T) {
	req := require.New(t)
	h := newHarness()
	h.pair(t, "A", "B")
	sw := &Sweeper{Orch: h.orch, Timeout: 30 * time.Minute}

	h.clock.Advance(20 * time.Minute)
	h.orch.Relay("B", core.KindText, core.TextPayload{Text: "still here"})
	h.clock.Advance(20 * time.Minute)

	req.Zero(sw.Sweep())
	req.Equal(1, h.orch.ActiveSessions())
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	req := require.New(t)
	h := newHarness()
	a := h.connect("A")
	h.orch.CreateSession("A")
	a.reset()
	h.clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	sw := &Sweeper{Orch: h.orch, Interval: 5 * time.Millisecond, Timeout: time.Minute}
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	req.Eventually(func() bool { return h.orch.ActiveSessions() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("sweeper did not stop")
	}
	req.Equal([]string{core.EvSessionExpired}, a.types())
}

func TestSweeper_SweepDuringJoin(t *testing.T) {
	req := require.New(t)
	h := newHarness()
	a, b := h.connect("A"), h.connect("B")
	h.orch.CreateSession("A")
	a.reset()
	h.clock.Advance(31 * time.Minute)

	// Given the sweeper runs while B's join is reading the clock
	swept := false
	h.orch.Clock = func() time.Time {
		if !swept {
			swept = true
			h.orch.ExpireIdle(30 * time.Minute)
		}
		return h.clock.Now()
	}

	// When B joins
	h.orch.JoinSession("B", "ABC123")

	// Then the session is gone and B is not bound to it
	_, ok := h.orch.Store.Get("ABC123")
	req.False(ok)
	role, code, _ := h.orch.Registry.StateOf("B")
	req.Equal(domain.Unbound, role)
	req.Empty(code)
	req.Equal([]map[string]any{{"type": "join-error", "reason": "Session not found or expired"}}, b.events())
	req.Equal([]string{core.EvSessionExpired}, a.types())

	// And B can still start a fresh session
	h.orch.Clock = h.clock.Now
	h.orch.CreateSession("B")
	req.Equal(core.EvSessionCreated, b.last()["type"])
}

func TestSweeper_SkipsMemberThatAlreadyLeft(t *testing.T) {
	req := require.New(t)
	h := newHarness()
	a, b, code := h.pair(t, "A", "B")
	sw := &Sweeper{Orch: h.orch, Timeout: 30 * time.Minute}

	// Given A has detached but its teardown has not reached the store yet
	_, _, ok := h.orch.Registry.Detach("A")
	req.True(ok)
	h.clock.Advance(31 * time.Minute)

	// When the sweep removes the session
	req.Equal(1, sw.Sweep())

	// Then only B is told
	req.Empty(a.events())
	req.Equal([]string{core.EvSessionExpired}, b.types())
	_, ok = h.orch.Store.Get(code)
	req.False(ok)
}

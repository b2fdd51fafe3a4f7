package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// recConn records every frame queued for one connection.
type recConn struct {
	mu     sync.Mutex
	frames []map[string]any
	closed bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	var m map[string]any
	if err := json.Unmarshal(f, &m); err != nil {
		return err
	}
	c.frames = append(c.frames, m)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recConn) events() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *recConn) types() []string {
	var out []string
	for _, e := range c.events() {
		out = append(out, e["type"].(string))
	}
	return out
}

func (c *recConn) last() map[string]any {
	evs := c.events()
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

func (c *recConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// seqCodes hands out codes in order, repeating the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []domain.Code
	i     int
}

func (g *seqCodes) Generate() (domain.Code, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.codes[min(g.i, len(g.codes)-1)]
	g.i++
	return c, nil
}

type harness struct {
	orch  *Orchestrator
	clock *fakeClock
	conns map[domain.ConnID]*recConn
}

func newHarness(codes ...domain.Code) *harness {
	if len(codes) == 0 {
		codes = []domain.Code{"ABC123"}
	}
	clock := newFakeClock()
	o := NewOrchestrator()
	o.Codes = &seqCodes{codes: codes}
	o.Clock = clock.Now
	return &harness{orch: o, clock: clock, conns: make(map[domain.ConnID]*recConn)}
}

func (h *harness) connect(id domain.ConnID) *recConn {
	c := &recConn{}
	h.conns[id] = c
	h.orch.Connect(id, "client-"+string(id), c, nil)
	return c
}

// pair creates a session from a and joins b, then clears both recordings.
func (h *harness) pair(t *testing.T, a, b domain.ConnID) (*recConn, *recConn, domain.Code) {
	t.Helper()
	ca, cb := h.connect(a), h.connect(b)
	h.orch.CreateSession(a)
	created := ca.last()
	require.NotNil(t, created)
	require.Equal(t, core.EvSessionCreated, created["type"])
	code := domain.Code(created["code"].(string))
	h.orch.JoinSession(b, string(code))
	require.Equal(t, core.EvUserJoined, cb.last()["type"])
	ca.reset()
	cb.reset()
	return ca, cb, code
}

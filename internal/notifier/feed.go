package notifier

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long an idle session keeps its feed. Dropping a feed
// is safe: the session's next poll re-arms silently instead of replaying old
// grants.
const DefaultTTL = time.Hour

// Notification is one transient toast for a newly unlocked achievement.
type Notification struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// GrantView is the slice of a grant the feed cares about.
type GrantView struct {
	GrantID     uint
	Name        string
	Description string
	Points      int
}

// Notifier turns an observed grant list into the notifications a client
// should display.
type Notifier interface {
	Observe(grants []GrantView) []Notification
}

// Feed is presentation state, not business logic: it remembers the grant set
// a client last saw and reports only the grants that appeared since. The
// first observation is historical state, not fresh unlocks, so it arms the
// feed silently.
type Feed struct {
	mu    sync.Mutex
	armed bool
	seen  map[uint]struct{}
}

func NewFeed() *Feed {
	return &Feed{seen: make(map[uint]struct{})}
}

func (f *Feed) Observe(grants []GrantView) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.armed {
		f.armed = true
		for _, g := range grants {
			f.seen[g.GrantID] = struct{}{}
		}
		return nil
	}

	var out []Notification
	for _, g := range grants {
		if _, ok := f.seen[g.GrantID]; ok {
			continue
		}
		f.seen[g.GrantID] = struct{}{}
		out = append(out, Notification{
			Name:        g.Name,
			Description: g.Description,
			Points:      g.Points,
		})
	}
	return out
}

type hubEntry struct {
	feed     *Feed
	lastSeen time.Time
}

// Hub hands out one feed per client session. Session keys are minted per
// sign-in, so the map is time-bounded the same way the session cache is:
// entries idle past the TTL are dropped by Sweep.
type Hub struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	feeds map[string]*hubEntry
}

func NewHub(ttl time.Duration, now func() time.Time) *Hub {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Hub{
		ttl:   ttl,
		now:   now,
		feeds: make(map[string]*hubEntry),
	}
}

func (h *Hub) Feed(sessionKey string) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.feeds[sessionKey]
	if !ok {
		e = &hubEntry{feed: NewFeed()}
		h.feeds[sessionKey] = e
	}
	e.lastSeen = h.now()
	return e.feed
}

// Sweep drops every feed idle past the TTL and returns how many were
// dropped. The server runs this on the same schedule as the session-cache
// sweep.
func (h *Hub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-h.ttl)
	dropped := 0
	for key, e := range h.feeds {
		if e.lastSeen.Before(cutoff) {
			delete(h.feeds, key)
			dropped++
		}
	}
	return dropped
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

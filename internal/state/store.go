// Package state holds the canonical stack collection. All mutation paths
// (polling fetches, push deltas, optimistic local writes) converge here under
// one lock, so every reader sees a consistent ordering of changes.
package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/restackd/restack/internal/stackd"
)

// UpdateStatus classifies a stack against its upstream images.
type UpdateStatus string

const (
	StatusCurrent UpdateStatus = "current"
	StatusStale   UpdateStatus = "stale"
	StatusUnknown UpdateStatus = "unknown"
)

// ParseUpdateStatus normalizes a wire status value.
func ParseUpdateStatus(value string) UpdateStatus {
	switch UpdateStatus(value) {
	case StatusCurrent, StatusStale:
		return UpdateStatus(value)
	default:
		return StatusUnknown
	}
}

// Stack is the converged, locally-authoritative view of one deployable stack.
type Stack struct {
	ID               string
	Name             string
	UpdateStatus     UpdateStatus
	Redeploying      bool
	RedeployDisabled bool
	DuplicateName    bool
}

// Eligible reports whether the stack may be selected or redeployed.
// Disabled stacks are off-limits and up-to-date stacks have nothing to do.
func (s Stack) Eligible() bool {
	return !s.RedeployDisabled && s.UpdateStatus != StatusCurrent
}

// Snapshot represents the latest collection data available to the UI.
type Snapshot struct {
	Stacks              []Stack
	Rev                 uint64 // bumps on every collection mutation
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the canonical stack collection and serializes mutations from
// the poller, the push listener, and optimistic local writes.
type Store struct {
	mu       sync.RWMutex
	stacks   []Stack
	seq      uint64            // bumps on local redeploying/status mutations
	changed  map[string]uint64 // id -> seq of last local mutation
	rev      uint64
	updated  time.Time
	lastErr  error
	failures int
	confirm  chan struct{}
	coll     *collate.Collator
}

// NewStore returns a ready Store.
func NewStore() *Store {
	return &Store{
		changed: make(map[string]uint64),
		confirm: make(chan struct{}, 1),
		coll:    collate.New(language.Und, collate.Loose),
	}
}

// Seq returns the current local mutation sequence. Callers pass it back to
// ReplaceAll so fetches started before a delta cannot regress that delta.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// ConfirmRequests delivers a signal whenever a finished redeploy needs a
// confirmatory fetch. The channel is buffered; coalesced signals are fine.
func (s *Store) ConfirmRequests() <-chan struct{} {
	return s.confirm
}

// ReplaceAll merges a full fetch into the collection. asOf is the value of
// Seq() captured before the fetch was issued.
//
// Merge rules, per field:
//   - redeploying / updateStatus: the payload wins unless the stack was
//     mutated locally after asOf, in which case local knowledge is newer
//     than anything the fetch can carry.
//   - redeployDisabled / duplicateName: incoming value wins when asserted,
//     else fall back to the previously known value.
//
// Stacks absent from the payload are removed. The result is sorted by name
// with locale-aware collation, ties broken by natural string order then ID.
func (s *Store) ReplaceAll(incoming []stackd.Stack, asOf uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]Stack, len(s.stacks))
	for _, st := range s.stacks {
		prev[st.ID] = st
	}

	next := make([]Stack, 0, len(incoming))
	for _, in := range incoming {
		st := Stack{
			ID:           in.ID,
			Name:         in.Name,
			UpdateStatus: ParseUpdateStatus(in.UpdateStatus),
		}
		old, known := prev[in.ID]
		locallyNewer := known && s.changed[in.ID] > asOf

		switch {
		case locallyNewer:
			st.Redeploying = old.Redeploying
			st.UpdateStatus = old.UpdateStatus
		case in.Redeploying != nil:
			st.Redeploying = *in.Redeploying
		case known:
			st.Redeploying = old.Redeploying
		}

		if in.RedeployDisabled != nil {
			st.RedeployDisabled = *in.RedeployDisabled
		} else if known {
			st.RedeployDisabled = old.RedeployDisabled
		}
		if in.DuplicateName != nil {
			st.DuplicateName = *in.DuplicateName
		} else if known {
			st.DuplicateName = old.DuplicateName
		}

		next = append(next, st)
	}

	s.sortStacks(next)
	s.stacks = next

	// Drop mutation bookkeeping for stacks that no longer exist.
	alive := make(map[string]struct{}, len(next))
	for _, st := range next {
		alive[st.ID] = struct{}{}
	}
	for id := range s.changed {
		if _, ok := alive[id]; !ok {
			delete(s.changed, id)
		}
	}

	s.rev++
	s.updated = time.Now()
	s.lastErr = nil
	s.failures = 0
}

// RecordError notes a failed fetch. Existing data is kept; stale-but-present
// beats empty.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = err
	s.updated = time.Now()
	s.failures++
}

// ApplyDelta applies a push-delivered redeploy status change. Unknown ids are
// ignored. A finishing delta (redeploying=false) speculatively marks the
// stack current and requests a confirmatory fetch, at most once per
// transition so repeated deltas stay idempotent.
func (s *Store) ApplyDelta(id string, redeploying bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return false
	}

	st := &s.stacks[i]
	wasRedeploying := st.Redeploying
	mutated := wasRedeploying != redeploying

	st.Redeploying = redeploying
	if !redeploying {
		if st.UpdateStatus != StatusCurrent {
			st.UpdateStatus = StatusCurrent
			mutated = true
		}
		if wasRedeploying {
			s.requestConfirm()
		}
	}

	if mutated {
		s.seq++
		s.changed[id] = s.seq
		s.rev++
	}
	return true
}

// SetOptimistic flips the local redeploying flag ahead of (or after a failed)
// remote call. It never touches UpdateStatus. Returns true when the flag
// actually changed, so callers know what to revert.
func (s *Store) SetOptimistic(id string, redeploying bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return false
	}
	st := &s.stacks[i]
	if st.Redeploying == redeploying {
		return false
	}
	st.Redeploying = redeploying
	s.seq++
	s.changed[id] = s.seq
	s.rev++
	return true
}

// Snapshot returns a copy of the current collection state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Stacks:              cloneStacks(s.stacks),
		Rev:                 s.rev,
		LastUpdated:         s.updated,
		ConsecutiveFailures: s.failures,
	}
	if s.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", s.lastErr)
	}
	return snap
}

// Get returns the stack with the given id from the current collection.
func (s *Store) Get(id string) (Stack, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.find(id)
	if i < 0 {
		return Stack{}, false
	}
	return s.stacks[i], true
}

func (s *Store) find(id string) int {
	for i := range s.stacks {
		if s.stacks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) requestConfirm() {
	select {
	case s.confirm <- struct{}{}:
	default:
	}
}

func (s *Store) sortStacks(stacks []Stack) {
	sort.SliceStable(stacks, func(i, j int) bool {
		if c := s.coll.CompareString(stacks[i].Name, stacks[j].Name); c != 0 {
			return c < 0
		}
		if stacks[i].Name != stacks[j].Name {
			return stacks[i].Name < stacks[j].Name
		}
		return stacks[i].ID < stacks[j].ID
	})
}

func cloneStacks(stacks []Stack) []Stack {
	if len(stacks) == 0 {
		return nil
	}
	dup := make([]Stack, len(stacks))
	copy(dup, stacks)
	return dup
}

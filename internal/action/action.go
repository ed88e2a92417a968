// Package action coordinates redeploy requests: eligibility, the cheapest
// remote call shape, optimistic flips, and rollback on failure.
package action

import (
	"context"
	"fmt"

	"github.com/restackd/restack/internal/logging"
	"github.com/restackd/restack/internal/stackd"
	"github.com/restackd/restack/internal/state"
)

// Coordinator runs redeploy sagas against the store and the daemon.
type Coordinator struct {
	store *state.Store
	api   stackd.API
}

// NewCoordinator wires a Coordinator.
func NewCoordinator(store *state.Store, api stackd.API) *Coordinator {
	return &Coordinator{store: store, api: api}
}

// SinglePlan records one in-flight single redeploy.
type SinglePlan struct {
	ID      string
	flipped bool
}

// BeginSingle applies the optimistic flip for one stack. Returns false for
// ineligible or already-redeploying stacks.
func (c *Coordinator) BeginSingle(st state.Stack) (SinglePlan, bool) {
	if !st.Eligible() || st.Redeploying {
		return SinglePlan{}, false
	}
	flipped := c.store.SetOptimistic(st.ID, true)
	return SinglePlan{ID: st.ID, flipped: flipped}, true
}

// RunSingle invokes the remote call for a begun plan, reverting the
// optimistic flip on failure. Completion confirmation arrives later via the
// push-delta path, not this call's response.
func (c *Coordinator) RunSingle(ctx context.Context, plan SinglePlan) error {
	if err := c.api.RedeployStack(ctx, plan.ID); err != nil {
		if plan.flipped {
			c.store.SetOptimistic(plan.ID, false)
		}
		logging.WithComponent("action").Warn("redeploy failed", "stack", plan.ID, "error", err)
		return fmt.Errorf("redeploy %s: %w", plan.ID, err)
	}
	return nil
}

// BulkPlan records the target set of a bulk redeploy and whether the "act on
// everything" remote path applies.
type BulkPlan struct {
	Targets []string
	All     bool
	flipped []string
}

// PlanBulk computes the bulk target set. Scope is the selection when
// non-empty, else the current page; bulk acts on what the user can see,
// not the entire filtered set. The All route applies exactly
// when the targets cover every eligible stack of the whole filtered set.
func PlanBulk(selected, page []state.Stack, eligibleTotal int) BulkPlan {
	scope := selected
	if len(scope) == 0 {
		scope = page
	}

	var targets []string
	for _, st := range scope {
		if st.Eligible() {
			targets = append(targets, st.ID)
		}
	}

	return BulkPlan{
		Targets: targets,
		All:     len(targets) > 0 && len(targets) == eligibleTotal,
	}
}

// CanBulk reports whether a bulk trigger would do anything: at least one
// target that is not already redeploying.
func CanBulk(selected, page []state.Stack) bool {
	scope := selected
	if len(scope) == 0 {
		scope = page
	}
	for _, st := range scope {
		if st.Eligible() && !st.Redeploying {
			return true
		}
	}
	return false
}

// BeginBulk applies optimistic flips for every target, recording which flags
// actually changed so a failed call reverts exactly those.
func (c *Coordinator) BeginBulk(plan BulkPlan) BulkPlan {
	plan.flipped = plan.flipped[:0]
	for _, id := range plan.Targets {
		if c.store.SetOptimistic(id, true) {
			plan.flipped = append(plan.flipped, id)
		}
	}
	return plan
}

// RunBulk invokes the cheapest remote call for the plan. On failure every
// optimistically flipped flag reverts; the selection is untouched because
// acted ids only leave it on success.
func (c *Coordinator) RunBulk(ctx context.Context, plan BulkPlan) error {
	if len(plan.Targets) == 0 {
		return nil
	}

	var err error
	if plan.All {
		err = c.api.RedeployAll(ctx)
	} else {
		err = c.api.RedeploySubset(ctx, plan.Targets)
	}
	if err != nil {
		for _, id := range plan.flipped {
			c.store.SetOptimistic(id, false)
		}
		logging.WithComponent("action").Warn("bulk redeploy failed",
			"targets", len(plan.Targets), "all", plan.All, "error", err)
		return fmt.Errorf("bulk redeploy: %w", err)
	}
	return nil
}

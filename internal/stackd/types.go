// Package stackd provides the HTTP client and WebSocket event listener for
// the stackd daemon API.
package stackd

// StackListResponse mirrors /api/stacks.
type StackListResponse struct {
	Stacks []Stack `json:"stacks"`
}

// Stack describes one deployable stack in transport-friendly form.
//
// The redeploying/redeployDisabled/duplicateName fields are pointers because
// the daemon omits them when it has nothing to assert; the store falls back to
// locally-known values so a fetch racing a push delta cannot clobber an
// in-flight redeploy.
type Stack struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	UpdateStatus     string `json:"updateStatus"`
	Redeploying      *bool  `json:"redeploying,omitempty"`
	RedeployDisabled *bool  `json:"redeployDisabled,omitempty"`
	DuplicateName    *bool  `json:"duplicateName,omitempty"`
}

// RedeploySubsetRequest is the body for POST /api/redeploy.
type RedeploySubsetRequest struct {
	IDs []string `json:"ids"`
}

// StatusEvent is a push-delivered partial update for a single stack.
type StatusEvent struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Redeploying bool   `json:"redeploying"`
}

// EventStackStatus is the event type carrying per-stack redeploy deltas.
const EventStackStatus = "stack_status"

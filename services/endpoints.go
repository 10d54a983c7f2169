package services

import (
	"fmt"

	"github.com/lborres/arena/core"
)

var (
	authenticated = []core.GuardName{core.GuardAuthenticate, core.GuardSession}
	adminOnly     = []core.GuardName{core.GuardAuthenticate, core.GuardAdmin, core.GuardSession}
)

// BaseEndpoints returns framework-agnostic endpoint definitions for the
// users surface. Static paths come before parameterised ones so routers that
// match in registration order never shadow them.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:        "/leaderboard",
			Method:      "GET",
			OperationID: "getLeaderboard",
			Description: "Get users ranked by score",
		},
		{
			Path:        "/",
			Method:      "GET",
			OperationID: "getUsers",
			Description: "List all users",
		},
		{
			Path:        "/createUser",
			Method:      "POST",
			OperationID: "createUser",
			Description: "Register a user and issue session credentials",
		},
		{
			Path:        "/refresh",
			Method:      "POST",
			OperationID: "refreshSession",
			Description: "Rotate the session using the refresh token",
		},
		{
			Path:        "/:id",
			Method:      "GET",
			OperationID: "getUser",
			Description: "Get a single user",
			Guards:      authenticated,
		},
		{
			Path:        "/:id",
			Method:      "PATCH",
			OperationID: "updateUser",
			Description: "Update a user's name or email",
			Guards:      authenticated,
		},
		{
			Path:        "/:id/submission",
			Method:      "PATCH",
			OperationID: "addSubmission",
			Description: "Record a problem submission",
			Guards:      authenticated,
		},
		{
			Path:        "/:id/update-score",
			Method:      "PATCH",
			OperationID: "updateScore",
			Description: "Award points for a solved problem",
			Guards:      authenticated,
		},
		{
			Path:        "/:id/:userId",
			Method:      "DELETE",
			OperationID: "deleteUser",
			Description: "Delete a user and all of its sessions",
			Guards:      adminOnly,
		},
	}
}

// EndpointRegistry keeps endpoints in registration order and rejects
// duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	endpoints []core.Endpoint
	index     map[string]int
}

// NewEndpointRegistry creates a registry with all base endpoints registered
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{index: make(map[string]int)}
	// BaseEndpoints has no duplicates
	_ = reg.Register(BaseEndpoints()...)
	return reg
}

func endpointKey(ep core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// Register adds endpoints to the registry. If any endpoint conflicts with an
// existing one or with another in the same batch, nothing is registered.
func (r *EndpointRegistry) Register(endpoints ...core.Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		key := endpointKey(ep)
		if _, exists := r.index[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for _, ep := range endpoints {
		r.index[endpointKey(ep)] = len(r.endpoints)
		r.endpoints = append(r.endpoints, ep)
	}
	return nil
}

// Lookup returns the endpoint registered for method and path
func (r *EndpointRegistry) Lookup(method, path string) (core.Endpoint, bool) {
	i, ok := r.index[method+":"+path]
	if !ok {
		return core.Endpoint{}, false
	}
	return r.endpoints[i], true
}

// Endpoints returns a copy of all registered endpoints in order
func (r *EndpointRegistry) Endpoints() []core.Endpoint {
	out := make([]core.Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

package fiber

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/metrics"
)

const (
	localsPrincipal = "principal"
	localsSession   = "session"

	// HeaderSessionToken carries the session token for clients without cookies
	HeaderSessionToken = "X-Session-Token"
)

// guardMiddleware runs chain against the request and answers with a failure
// envelope at the first rejection. On success the principal and session are
// stored in the context for downstream handlers.
func guardMiddleware(chain core.GuardChain) fiber.Handler {
	return func(c fiber.Ctx) error {
		req := &core.GuardRequest{
			AccessToken:  extractAccessToken(c),
			SessionToken: extractSessionToken(c),
		}

		decision, guard := chain.Run(c.Context(), req)
		if !decision.Allowed {
			metrics.GuardRejections.WithLabelValues(string(guard)).Inc()
			return c.Status(guardStatus(decision.Reason)).JSON(core.Failure(decision.Reason.Error()))
		}

		if req.Principal != nil {
			c.Locals(localsPrincipal, req.Principal)
		}
		if req.Session != nil {
			c.Locals(localsSession, req.Session)
		}
		return c.Next()
	}
}

func guardStatus(reason error) int {
	if errors.Is(reason, core.ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// PrincipalFrom returns the caller established by the authenticate guard
func PrincipalFrom(c fiber.Ctx) *core.Principal {
	p, _ := c.Locals(localsPrincipal).(*core.Principal)
	return p
}

// SessionFrom returns the session established by the session guard
func SessionFrom(c fiber.Ctx) *core.Session {
	s, _ := c.Locals(localsSession).(*core.Session)
	return s
}

// extractAccessToken checks the Authorization header (Bearer token) first,
// then falls back to the access-token cookie.
func extractAccessToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}
	return c.Cookies(core.CookieAccessToken)
}

func extractSessionToken(c fiber.Ctx) string {
	if token := c.Get(HeaderSessionToken); token != "" {
		return token
	}
	return c.Cookies(core.CookieSessionToken)
}

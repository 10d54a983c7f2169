package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/metrics"
)

func toFiberCookie(cr core.Credential) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cr.CrossSite == core.CrossSiteNone {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	return &fiber.Cookie{
		Name:     cr.Name,
		Value:    cr.Value,
		Path:     cr.Path,
		Domain:   cr.Domain,
		MaxAge:   int(cr.MaxAge / time.Second),
		Secure:   cr.SecureOnly,
		HTTPOnly: cr.ScriptInaccessible,
		SameSite: sameSite,
	}
}

// setCredentials attaches every credential to the response. It must run
// before the body is written.
func setCredentials(c fiber.Ctx, credentials []core.Credential) {
	for _, cr := range credentials {
		c.Cookie(toFiberCookie(cr))
		metrics.CredentialsIssued.WithLabelValues(cr.Name).Inc()
	}
}

package fiber

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/lborres/arena/core"
	"github.com/lborres/arena/pkg/metrics"
)

type Adapter struct {
	app *fiber.App
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes mounts every endpoint of arena under its base path. Each
// endpoint is served by the handler matching its operation id, behind the
// guard chain it declares.
func (a *Adapter) RegisterRoutes(arena *core.Arena) error {
	if arena.Accounts == nil {
		return errors.New("account service is required")
	}
	if arena.Issuer == nil {
		return errors.New("credential issuer is required")
	}

	logger := arena.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{
		accounts: arena.Accounts,
		issuer:   arena.Issuer,
		logger:   logger,
	}
	operations := h.operations()

	api := a.app.Group(arena.BasePath)
	for _, ep := range arena.Endpoints {
		handler, ok := operations[ep.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %q (%s %s)", ep.OperationID, ep.Method, ep.Path)
		}

		chain, err := arena.Chain(ep.Guards)
		if err != nil {
			return fmt.Errorf("%s %s: %w", ep.Method, ep.Path, err)
		}

		instrument := instrumentMiddleware(ep.OperationID)
		if len(chain) == 0 {
			api.Add([]string{ep.Method}, ep.Path, instrument, handler)
			continue
		}
		api.Add([]string{ep.Method}, ep.Path, instrument, guardMiddleware(chain), handler)
	}

	return nil
}

// MountMetrics exposes the Prometheus registry at path
func (a *Adapter) MountMetrics(path string) {
	a.app.Get(path, adaptor.HTTPHandler(metrics.Handler()))
}

func instrumentMiddleware(operation string) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := strconv.Itoa(c.Response().StatusCode())
		metrics.RequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
		return err
	}
}

package fiber

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/arena/core"
)

type handlers struct {
	accounts core.AccountService
	issuer   *core.CredentialIssuer
	logger   *slog.Logger
}

// operations maps endpoint operation ids to their fiber handlers
func (h *handlers) operations() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"getLeaderboard": h.getLeaderboard,
		"getUsers":       h.getUsers,
		"createUser":     h.createUser,
		"refreshSession": h.refreshSession,
		"getUser":        h.getUser,
		"updateUser":     h.updateUser,
		"addSubmission":  h.addSubmission,
		"updateScore":    h.updateScore,
		"deleteUser":     h.deleteUser,
	}
}

func (h *handlers) getLeaderboard(c fiber.Ctx) error {
	entries, err := h.accounts.GetLeaderboard(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Success(entries, "Leaderboard fetched successfully"))
}

func (h *handlers) getUsers(c fiber.Ctx) error {
	users, err := h.accounts.GetAllUsers(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Success(users, "Users fetched successfully"))
}

func (h *handlers) createUser(c fiber.Ctx) error {
	var input core.CreateUserInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}
	if err := input.Validate(); err != nil {
		return h.fail(c, err)
	}

	result, err := h.accounts.CreateUser(c.Context(), input, clientMeta(c))
	if err != nil {
		return h.fail(c, err)
	}

	status := http.StatusCreated
	if result.IsInformational() {
		status = http.StatusOK
	}
	return h.issue(c, status, result)
}

type refreshInput struct {
	RefreshToken string `json:"refreshtoken"`
}

func (h *handlers) refreshSession(c fiber.Ctx) error {
	token := c.Cookies(core.CookieRefreshToken)
	if token == "" {
		var input refreshInput
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&input); err != nil {
				return badRequest(c)
			}
		}
		token = input.RefreshToken
	}
	if token == "" {
		return h.fail(c, core.ErrInvalidRefreshToken)
	}

	result, err := h.accounts.RefreshSession(c.Context(), token, clientMeta(c))
	if err != nil {
		return h.fail(c, err)
	}
	return h.issue(c, http.StatusOK, result)
}

// issue runs the credential issuer and writes cookies before the body
func (h *handlers) issue(c fiber.Ctx, status int, result core.CreationResult) error {
	issuance, err := h.issuer.Issue(result)
	if err != nil {
		return h.fail(c, err)
	}

	setCredentials(c, issuance.Credentials)
	return c.Status(status).JSON(issuance.Body)
}

func (h *handlers) getUser(c fiber.Ctx) error {
	user, err := h.accounts.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		h.logFailure(c, http.StatusNotFound, err)
		return c.Status(http.StatusNotFound).JSON(core.Failure(err.Error()))
	}
	return c.Status(http.StatusOK).JSON(core.Success(user, ""))
}

func (h *handlers) updateUser(c fiber.Ctx) error {
	var input core.UpdateUserInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	user, err := h.accounts.UpdateUser(c.Context(), c.Params("id"), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Success(user, "User updated successfully"))
}

func (h *handlers) addSubmission(c fiber.Ctx) error {
	var input core.SubmissionInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	submission, err := h.accounts.AddSubmission(c.Context(), c.Params("id"), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Success(submission, "Submission added successfully"))
}

func (h *handlers) updateScore(c fiber.Ctx) error {
	var input core.ScoreInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	user, err := h.accounts.UpdateScore(c.Context(), c.Params("id"), input.Points())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(core.Success(user, "Score updated successfully"))
}

func (h *handlers) deleteUser(c fiber.Ctx) error {
	if err := h.accounts.DeleteUser(c.Context(), c.Params("id")); err != nil {
		h.logFailure(c, http.StatusNotFound, err)
		return c.Status(http.StatusNotFound).JSON(core.Failure(err.Error()))
	}
	return c.Status(http.StatusOK).JSON(core.Success(nil, "User deleted successfully"))
}

func clientMeta(c fiber.Ctx) core.ClientMeta {
	return core.ClientMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func badRequest(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(core.Failure("invalid request body"))
}

// fail maps err to a status code and answers with a failure envelope.
// Internal errors are logged and replaced by a generic message.
func (h *handlers) fail(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	h.logFailure(c, status, err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	return c.Status(status).JSON(core.Failure(message))
}

func (h *handlers) logFailure(c fiber.Ctx, status int, err error) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(c.Context(), level, "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"error", err,
	)
}

// mapErrorToStatus maps arena error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrMissingAccessToken),
		errors.Is(err, core.ErrInvalidAccessToken),
		errors.Is(err, core.ErrMissingSessionToken),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrSessionMismatch),
		errors.Is(err, core.ErrInvalidRefreshToken),
		errors.Is(err, core.ErrRefreshExpired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrUserExists):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

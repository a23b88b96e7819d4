package fiber

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/lumenapp/server/core"
)

const localUserID = "userID"

// requireAuth gates a route behind a valid bearer token and stashes the
// subject for the handler.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return a.fail(c, err)
	}

	id, err := a.services.Sessions.Verify(token)
	if err != nil {
		return a.fail(c, err)
	}

	c.Locals(localUserID, id)
	return c.Next()
}

func extractToken(c fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return "", core.ErrMissingAuthHeader
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", core.ErrMissingAuthHeader
	}
	return token, nil
}

// userID reads the subject stored by requireAuth. Only valid on routes
// behind that middleware.
func userID(c fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// requestLogger emits one structured line per request.
func (a *Adapter) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	reqID := uuid.NewString()
	c.Locals("requestID", reqID)

	err := c.Next()

	status := c.Response().StatusCode()
	evt := a.opts.Logger.Info()
	if status >= http.StatusInternalServerError {
		evt = a.opts.Logger.Error()
	}
	evt.
		Str("request_id", reqID).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request")

	return err
}

package fiber

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/lumenapp/server/core"
)

// errInvalidBody marks a request body that could not be parsed at all.
var errInvalidBody = errors.New("invalid request body")

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ok writes the standard success envelope.
func ok(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// fail translates service errors into HTTP responses. Anything not
// recognized is a 500 with a generic message so internals never leak.
func (a *Adapter) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg = "invalid value for field " + verrs[0].Field()
	}

	if status == http.StatusInternalServerError {
		a.opts.Logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		msg = "something went wrong"
	}

	return c.Status(status).JSON(errorResponse{Message: msg})
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrMissingAuthHeader),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrTokenMalformed),
		errors.Is(err, core.ErrTokenSignature),
		errors.Is(err, core.ErrInvalidIDToken):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrContentDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, errInvalidBody),
		errors.As(err, &verrs),
		errors.Is(err, core.ErrNameRequired),
		errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrIdentifierRequired),
		errors.Is(err, core.ErrOneIdentifier),
		errors.Is(err, core.ErrQueryRequired),
		errors.Is(err, core.ErrIDTokenRequired),
		errors.Is(err, core.ErrNoActiveOtp),
		errors.Is(err, core.ErrOtpChannelMismatch),
		errors.Is(err, core.ErrOtpExpired),
		errors.Is(err, core.ErrOtpInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lumenapp/server/services"
)

type signUpRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

func (a *Adapter) signup(c fiber.Ctx) error {
	var req signUpRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	result, err := a.services.Auth.SignUp(c.Context(), services.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *Adapter) login(c fiber.Ctx) error {
	var req loginRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	result, err := a.services.Auth.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusOK, result)
}

func (a *Adapter) currentUser(c fiber.Ctx) error {
	user, err := a.services.Auth.CurrentUser(c.Context(), userID(c))
	if err != nil {
		// An authenticated token for a vanished record reads as an auth
		// failure, not a lookup failure.
		return c.Status(http.StatusUnauthorized).JSON(errorResponse{Message: "user not found"})
	}
	return ok(c, http.StatusOK, fiber.Map{"user": user})
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Phone *string `json:"phone"`
}

func (a *Adapter) updateProfile(c fiber.Ctx) error {
	var req updateProfileRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	user, err := a.services.Auth.UpdateProfile(c.Context(), userID(c), services.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusOK, fiber.Map{"user": user})
}

type googleRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

func (a *Adapter) google(c fiber.Ctx) error {
	var req googleRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	result, err := a.services.Federated.SignIn(c.Context(), req.IDToken)
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusOK, result)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

func (a *Adapter) forgotPassword(c fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	issued, err := a.services.Reset.RequestReset(c.Context(), services.ResetRequestInput{
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return a.fail(c, err)
	}

	resp := fiber.Map{
		"channel":   issued.Channel,
		"delivered": issued.Delivered,
	}
	if a.opts.ExposeResetCode {
		resp["otp"] = issued.Code
	}
	return ok(c, http.StatusOK, resp)
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Code        string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (a *Adapter) resetPassword(c fiber.Ctx) error {
	var req resetPasswordRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	err := a.services.Reset.ConfirmReset(c.Context(), services.ResetConfirmInput{
		Email:       req.Email,
		Phone:       req.Phone,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusOK, fiber.Map{"message": "password reset successful"})
}

type generateContentRequest struct {
	Query string `json:"query" validate:"required"`
}

func (a *Adapter) generateContent(c fiber.Ctx) error {
	var req generateContentRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, err)
	}

	content, err := a.services.Content.Generate(c.Context(), userID(c), req.Query)
	if err != nil {
		return a.fail(c, err)
	}

	return ok(c, http.StatusCreated, content)
}

func (a *Adapter) contentByID(c fiber.Ctx) error {
	content, err := a.services.Content.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return a.fail(c, err)
	}
	return ok(c, http.StatusOK, content)
}

func (a *Adapter) listUserContent(c fiber.Ctx) error {
	contents, err := a.services.Content.ListByUser(c.Context(), userID(c))
	if err != nil {
		return a.fail(c, err)
	}
	return ok(c, http.StatusOK, contents)
}

// bind parses and validates a JSON body. Returned errors go through
// fail, which maps body and validator failures to 400.
func (a *Adapter) bind(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return errInvalidBody
	}
	if err := a.validate.Struct(out); err != nil {
		return err
	}
	return nil
}

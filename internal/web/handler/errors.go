package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/motoworks/motoworks-rbac/internal/db/controller"
)

// ErrInvalidID is returned for a path ID that is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes err as JSON with a status derived from its category:
// not found 404, validation 422, conflict 409, anything else 500. Messages of
// unexpected errors are not sent to the client.
func Error(c *fiber.Ctx, err error) error {
	var (
		status = fiber.StatusInternalServerError
		msg    = "internal server error"
		vErrs  validator.ValidationErrors
	)

	switch {
	case errors.Is(err, controller.ErrNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, controller.ErrValidation), errors.As(err, &vErrs), errors.Is(err, ErrInvalidID):
		status, msg = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, controller.ErrConflict):
		status, msg = fiber.StatusConflict, err.Error()
	default:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("Request failed")
	}

	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// ParamID parses the named path parameter as a positive ID.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// ParamUint parses the named path parameter as a positive role or permission ID.
// Values that do not fit the platform uint are rejected instead of wrapping.
func ParamUint(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return uint(id), nil
}

// BindJSON decodes the request body into in and validates it.
func BindJSON(c *fiber.Ctx, v *validator.Validate, in any) error {
	if err := c.BodyParser(in); err != nil {
		return errors.Join(controller.ErrValidation, err)
	}

	return v.Struct(in)
}

package http

import (
	"fmt"
	"reflect"
	"strings"

	"chessmind/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMiddleware parses and validates request bodies before they reach
// the handlers, storing the result in request locals.
func validationMiddleware(c *fiber.Ctx) error {
	// Skip validation for GET, DELETE, OPTIONS
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	// Determine request type based on path
	path := c.Path()
	var requestType interface{}

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo") && method == fiber.MethodPost:
		requestType = &core.UndoRequest{}
	case strings.HasSuffix(path, "/chat") && method == fiber.MethodPost:
		requestType = &core.ChatRequest{}
	case strings.HasSuffix(path, "/config") && method == fiber.MethodPut:
		requestType = &core.ConfigureRequest{}
	default:
		return c.Next() // No validation for unknown endpoints
	}

	// Parse body
	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.CodeInvalidRequest,
			Details: err.Error(),
		})
	}

	// Validate
	if errs := validate.Struct(requestType); errs != nil {
		var details strings.Builder
		for _, err := range errs.(validator.ValidationErrors) {
			if details.Len() > 0 {
				details.WriteString("; ")
			}
			switch err.Tag() {
			case "required":
				details.WriteString(fmt.Sprintf("%s is required", err.Field()))
			case "oneof":
				details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
			case "min":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
				}
			case "max":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
				}
			case "omitempty": // Skip, a control tag that doesn't error
				continue
			default:
				details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.CodeInvalidRequest,
			Details: details.String(),
		})
	}

	// Store validated body for handler use
	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// validatedRequest retrieves the parsed body stored by the validation
// middleware. Errors feed the app error handler.
func validatedRequest[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return body, nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Package http exposes the opponent service as a REST API.
package http

import (
	"fmt"
	"strings"
	"time"

	"chessmind/internal/core"
	"chessmind/internal/processor"
	"chessmind/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler routes HTTP requests to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST and PUT requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Put("/games/:gameId/config", h.Configure)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Post("/games/:gameId/chat", h.Chat)
	api.Get("/games/:gameId/analysis", h.Analyze)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.CodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.CodeInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.CodeGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.CodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.CodeRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame creates a new game against the opponent
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedRequest[core.CreateGameRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.CreateGame(*req)
	if !resp.Success {
		return c.Status(fiber.StatusBadRequest).JSON(resp.Error)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetGame retrieves current game state, including the pending flag while
// the opponent is deciding.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.GetGame(gameID)
	if !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// MakeMove submits the human move; the opponent reply is asynchronous and
// surfaces through polling GetGame.
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedRequest[core.MoveRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.MakeMove(gameID, *req)
	if !resp.Success {
		statusCode := fiber.StatusBadRequest
		if resp.Error.Code == core.CodeGameNotFound {
			statusCode = fiber.StatusNotFound
		}
		return c.Status(statusCode).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedRequest[core.UndoRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Undo(gameID, *req)
	if !resp.Success {
		statusCode := fiber.StatusBadRequest
		if resp.Error.Code == core.CodeGameNotFound {
			statusCode = fiber.StatusNotFound
		}
		return c.Status(statusCode).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// Configure changes difficulty or toggles remote decisions mid-game
func (h *HTTPHandler) Configure(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedRequest[core.ConfigureRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Configure(gameID, *req)
	if !resp.Success {
		statusCode := fiber.StatusBadRequest
		if resp.Error.Code == core.CodeGameNotFound {
			statusCode = fiber.StatusNotFound
		}
		return c.Status(statusCode).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.DeleteGame(gameID)
	if !resp.Success {
		statusCode := fiber.StatusBadRequest
		if resp.Error.Code == core.CodeGameNotFound {
			statusCode = fiber.StatusNotFound
		}
		return c.Status(statusCode).JSON(resp.Error)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.GetBoard(gameID)
	if !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// Chat exchanges one conversational message with the opponent
func (h *HTTPHandler) Chat(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedRequest[core.ChatRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Chat(c.Context(), gameID, *req)
	if !resp.Success {
		statusCode := fiber.StatusBadRequest
		switch resp.Error.Code {
		case core.CodeGameNotFound:
			statusCode = fiber.StatusNotFound
		case core.CodeInternalError:
			statusCode = fiber.StatusBadGateway
		}
		return c.Status(statusCode).JSON(resp.Error)
	}
	return c.JSON(resp)
}

// Analyze returns a commentary on the current position
func (h *HTTPHandler) Analyze(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.Analyze(c.Context(), gameID)
	if !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}
	return c.JSON(resp)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.CodeInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

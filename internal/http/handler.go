// FILE: stripchess/internal/http/handler.go
package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"stripchess/internal/core"
	"stripchess/internal/processor"
	"stripchess/internal/service"
)

const (
	// WaitTimeout bounds long-polling for analysis jobs
	WaitTimeout = 25 * time.Second
	// analyzeTimeout is checked once before the search starts; a running
	// search is not interrupted
	analyzeTimeout = 30 * time.Second
)

// HTTPHandler handles HTTP requests and routes them to the processor
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
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Use(rateLimiter(devMode))
	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	positions := api.Group("/positions")
	positions.Post("/moves", h.LegalMoves)
	positions.Post("/classify", h.Classify)
	positions.Post("/apply", h.ApplyMove)
	positions.Post("/analyze", h.Analyze)

	api.Post("/analyses", h.SubmitAnalysis)
	api.Get("/analyses/:jobId", h.GetAnalysis)

	return app
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Unix(),
		Storage:  h.svc.GetStorageHealth(),
		Searches: h.svc.Searches(),
	})
}

// respond writes a processor response with the status mapped from its error code
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// LegalMoves lists the legal moves of a position
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.PositionRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}
	return respond(c, h.proc.Execute(c.UserContext(), processor.NewLegalMovesCommand(req)), fiber.StatusOK)
}

// Classify reports whether a position is terminal
func (h *HTTPHandler) Classify(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.PositionRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}
	return respond(c, h.proc.Execute(c.UserContext(), processor.NewClassifyCommand(req)), fiber.StatusOK)
}

// ApplyMove validates and plays a move
func (h *HTTPHandler) ApplyMove(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.ApplyRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}
	return respond(c, h.proc.Execute(c.UserContext(), processor.NewApplyMoveCommand(req)), fiber.StatusOK)
}

// Analyze searches synchronously
func (h *HTTPHandler) Analyze(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.AnalyzeRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), analyzeTimeout)
	defer cancel()
	return respond(c, h.proc.Execute(ctx, processor.NewAnalyzeCommand(req)), fiber.StatusOK)
}

// SubmitAnalysis queues an analysis job
func (h *HTTPHandler) SubmitAnalysis(c *fiber.Ctx) error {
	req, errResp := validatedBody[core.AnalyzeRequest](c)
	if errResp != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errResp)
	}
	return respond(c, h.proc.Execute(c.UserContext(), processor.NewSubmitAnalysisCommand(req)), fiber.StatusAccepted)
}

// GetAnalysis returns a job, optionally long-polling until it finishes
func (h *HTTPHandler) GetAnalysis(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	if !isValidUUID(jobID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid job ID format",
			Code:    core.ErrCodeInvalidRequest,
			Details: "job ID must be a valid UUID",
		})
	}

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Execute(c.UserContext(), processor.NewGetAnalysisCommand(jobID)), fiber.StatusOK)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), WaitTimeout)
	defer cancel()
	return respond(c, h.proc.WaitAnalysis(ctx, jobID), fiber.StatusOK)
}

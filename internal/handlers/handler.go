package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/models"
	"github.com/shardviz/shardviz/internal/services"
	"github.com/shardviz/shardviz/internal/store"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger      *logging.Logger
	stepService *services.StepService
}

// New creates a new handler instance
func New(logger *logging.Logger, st store.Store) *Handler {
	return &Handler{
		logger:      logger,
		stepService: services.NewStepService(logger, st),
	}
}

// parseStepRequest extracts the (run, step) pair from the route parameters.
func parseStepRequest(c *fiber.Ctx) (store.RunID, int, error) {
	run := store.RunID{
		Test:   c.Params("test"),
		Folder: c.Params("folder"),
	}

	t, err := strconv.Atoi(c.Params("t"))
	if err != nil || t < 0 {
		return run, 0, fiber.NewError(fiber.StatusBadRequest,
			"step index must be a non-negative integer")
	}

	return run, t, nil
}

// respondServiceError maps service error codes onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	svcErr, ok := err.(*services.ServiceError)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInternal,
				Message: err.Error(),
			},
		})
	}

	status := fiber.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeRunNotFound, services.CodeStepNotFound:
		status = fiber.StatusNotFound
	case services.CodeInvalidSnapshot:
		// A malformed snapshot is a data-integrity problem, not a blank page.
		status = fiber.StatusUnprocessableEntity
	case services.CodeInvalidArgument:
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Details: svcErr.Details,
		},
	})
}

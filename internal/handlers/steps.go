package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ListRuns handles run discovery requests
// GET /v1/runs
func (h *Handler) ListRuns(c *fiber.Ctx) error {
	resp, err := h.stepService.ListRuns(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// GetStep handles step view requests
// GET /v1/runs/:test/:folder/steps/:t
func (h *Handler) GetStep(c *fiber.Ctx) error {
	run, t, err := parseStepRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.stepService.GetStep(c.UserContext(), run, t)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// GetUtilization handles per-node utilization requests (bar chart data)
// GET /v1/runs/:test/:folder/steps/:t/utilization
func (h *Handler) GetUtilization(c *fiber.Ctx) error {
	run, t, err := parseStepRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.stepService.GetUtilization(c.UserContext(), run, t)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// GetNodeTable handles node table requests
// GET /v1/runs/:test/:folder/steps/:t/nodes
func (h *Handler) GetNodeTable(c *fiber.Ctx) error {
	run, t, err := parseStepRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.stepService.GetNodeTable(c.UserContext(), run, t)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

// GetShardTable handles shard table requests
// GET /v1/runs/:test/:folder/steps/:t/shards
func (h *Handler) GetShardTable(c *fiber.Ctx) error {
	run, t, err := parseStepRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.stepService.GetShardTable(c.UserContext(), run, t)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resp)
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/poller"
)

// Poller is the orchestrator surface exposed over HTTP.
type Poller interface {
	RunCycle(ctx context.Context) (*models.CycleResult, error)
	Stats() models.Stats
}

// PollStore reads the poll audit trail and recent leads.
type PollStore interface {
	GetRecentPollRuns(ctx context.Context, limit int) ([]models.CycleResult, error)
	ListLeads(ctx context.Context, minScore, limit int) ([]models.Lead, error)
}

// PollHandler triggers cycles and reports their outcome via JSON API.
type PollHandler struct {
	poller Poller
	store  PollStore
}

// NewPollHandler creates a new poll handler.
func NewPollHandler(p Poller, store PollStore) *PollHandler {
	return &PollHandler{poller: p, store: store}
}

// RunPoll runs one cycle and returns its result. A cycle already in flight
// yields 409.
func (h *PollHandler) RunPoll(c fiber.Ctx) error {
	result, err := h.poller.RunCycle(context.WithoutCancel(c.Context()))
	if err != nil {
		if errors.Is(err, poller.ErrCycleRunning) {
			return jsonError(c, fiber.StatusConflict, "poll cycle already running")
		}
		slog.Error("manual poll failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "poll cycle failed")
	}

	return jsonStatus(c, fiber.StatusAccepted, models.PollRunResponse{
		Started: true,
		CycleID: &result.ID,
		Result:  result,
	})
}

// Stats returns the last cycle and lifetime totals.
func (h *PollHandler) Stats(c fiber.Ctx) error {
	return jsonSuccess(c, h.poller.Stats())
}

// Runs returns recent poll audit records.
func (h *PollHandler) Runs(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 20)
	runs, err := h.store.GetRecentPollRuns(c.Context(), limit)
	if err != nil {
		slog.Error("failed to fetch poll runs", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch poll runs")
	}
	if runs == nil {
		runs = []models.CycleResult{}
	}
	return jsonSuccess(c, runs)
}

// Leads returns recently discovered leads at or above min_score.
func (h *PollHandler) Leads(c fiber.Ctx) error {
	minScore := queryInt(c, "min_score", models.MinScore)
	if minScore < models.MinScore || minScore > models.MaxScore {
		return jsonError(c, fiber.StatusBadRequest, "min_score must be between 0 and 10")
	}

	leads, err := h.store.ListLeads(c.Context(), minScore, queryInt(c, "limit", 50))
	if err != nil {
		slog.Error("failed to fetch leads", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch leads")
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return jsonSuccess(c, leads)
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

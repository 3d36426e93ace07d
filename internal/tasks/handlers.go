package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/mailer"
	"github.com/sonna/artists-backend/internal/metadata"
	"gorm.io/gorm"
)

// Distributor is the slice of the review service the fan-out handler
// needs; it keeps tasks from importing review (which imports tasks).
type Distributor interface {
	FanOut(ctx context.Context, trackID uuid.UUID) (int, error)
}

type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	detector *metadata.Detector
	mailer   *mailer.Mailer
	review   Distributor
}

func NewHandler(db *gorm.DB, logger *slog.Logger, detector *metadata.Detector, m *mailer.Mailer, reviewService Distributor) *Handler {
	return &Handler{
		db:       db,
		logger:   logger,
		detector: detector,
		mailer:   m,
		review:   reviewService,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDuplicateCheck, h.HandleDuplicateCheck)
	mux.HandleFunc(TypeContractSend, h.HandleContractSend)
	mux.HandleFunc(TypeDistributionFanout, h.HandleDistributionFanout)
}

// HandleDuplicateCheck runs the advisory duplicate check for a newly
// submitted track. The detector fails open on external errors, so this
// only errors (and retries) on infrastructure faults like a dead DB.
func (h *Handler) HandleDuplicateCheck(ctx context.Context, t *asynq.Task) error {
	var payload DuplicateCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("starting duplicate check",
		"track_id", payload.TrackID,
		"title", payload.Title,
		"artist", payload.ArtistName,
	)

	found, err := h.detector.Check(ctx, metadata.CheckInput{
		TrackID:    payload.TrackID,
		Title:      payload.Title,
		ArtistName: payload.ArtistName,
	})
	if err != nil {
		return err
	}

	h.logger.Info("completed duplicate check",
		"track_id", payload.TrackID,
		"duplicates_found", found,
	)
	return nil
}

// HandleContractSend emails the distribution contract after a user's
// first submission. The mailer is idempotent per user, so retries are
// safe.
func (h *Handler) HandleContractSend(ctx context.Context, t *asynq.Task) error {
	var payload ContractSendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	accountType := models.AccountType(payload.AccountType)
	if err := h.mailer.SendContract(ctx, payload.UserID, payload.ArtistName, accountType); err != nil {
		h.logger.Error("contract send failed", "user_id", payload.UserID, "error", err)
		return err
	}
	return nil
}

// HandleDistributionFanout creates the per-platform submissions for an
// approved track. Already-covered platforms are skipped on retry.
func (h *Handler) HandleDistributionFanout(ctx context.Context, t *asynq.Task) error {
	var payload DistributionFanoutPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	created, err := h.review.FanOut(ctx, payload.TrackID)
	if err != nil {
		h.logger.Error("distribution fanout failed", "track_id", payload.TrackID, "error", err)
		return err
	}

	h.logger.Info("distribution fanout completed",
		"track_id", payload.TrackID,
		"submissions_created", created,
	)
	return nil
}

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/tasks"
	"gorm.io/gorm"
)

var (
	ErrTrackNotFound      = errors.New("track not found")
	ErrAlreadyReviewed    = errors.New("track already reviewed")
	ErrInvalidDecision    = errors.New("decision must be approved or rejected")
	ErrSubmissionNotFound = errors.New("platform submission not found")
)

// Enqueuer is the slice of asynq.Client the service needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service is the analyst surface: pending-track listing and the
// approve/reject decision, plus per-platform submission updates.
type Service struct {
	db       *gorm.DB
	enqueuer Enqueuer
	logger   *slog.Logger
}

func NewService(db *gorm.DB, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{db: db, enqueuer: enqueuer, logger: logger}
}

// ListPending returns a page of pending tracks with their artist, newest
// first, along with the total pending count.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]models.Track, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Track{}).
		Where("status = ?", models.TrackStatusPending).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Preload("Artist").
		Where("status = ?", models.TrackStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tracks).Error
	return tracks, total, err
}

type DecisionInput struct {
	TrackID   uuid.UUID
	AnalystID string
	Status    models.TrackStatus
	Comments  string
}

// Decide sets the track status and writes the append-only Approval row in
// one transaction. Only pending tracks can be decided; on approval the
// platform fan-out job is enqueued after commit.
func (s *Service) Decide(ctx context.Context, input DecisionInput) (*models.Approval, error) {
	if input.Status != models.TrackStatusApproved && input.Status != models.TrackStatusRejected {
		return nil, ErrInvalidDecision
	}

	var track models.Track
	if err := s.db.WithContext(ctx).First(&track, "id = ?", input.TrackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("loading track: %w", err)
	}

	approval := models.Approval{
		TrackID:    track.ID,
		AnalystID:  input.AnalystID,
		Status:     input.Status,
		Comments:   input.Comments,
		ReviewedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Track{}).
			Where("id = ? AND status = ?", track.ID, models.TrackStatusPending).
			Update("status", input.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		return tx.Create(&approval).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("recording decision: %w", err)
	}

	if input.Status == models.TrackStatusApproved {
		s.enqueueFanout(ctx, track.ID)
	}

	return &approval, nil
}

func (s *Service) enqueueFanout(ctx context.Context, trackID uuid.UUID) {
	if s.enqueuer == nil {
		return
	}
	task, err := tasks.NewDistributionFanoutTask(tasks.DistributionFanoutPayload{TrackID: trackID})
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(ctx, task, asynq.Queue("critical"))
	}
	if err != nil {
		s.logger.Warn("failed to enqueue distribution fanout", "track_id", trackID, "error", err)
	}
}

// FanOut creates one submitted PlatformSubmission per active streaming
// platform. Platforms that already hold a row for the track are skipped,
// so a retried task is harmless.
func (s *Service) FanOut(ctx context.Context, trackID uuid.UUID) (int, error) {
	var track models.Track
	if err := s.db.WithContext(ctx).First(&track, "id = ?", trackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTrackNotFound
		}
		return 0, err
	}

	var platforms []models.StreamingPlatform
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&platforms).Error; err != nil {
		return 0, fmt.Errorf("listing platforms: %w", err)
	}

	created := 0
	for _, platform := range platforms {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.PlatformSubmission{}).
			Where("track_id = ? AND platform_id = ?", trackID, platform.ID).
			Count(&existing).Error; err != nil {
			return created, err
		}
		if existing > 0 {
			continue
		}

		submission := models.PlatformSubmission{
			TrackID:     trackID,
			PlatformID:  platform.ID,
			Status:      models.SubmissionStatusSubmitted,
			SubmittedAt: time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
			return created, fmt.Errorf("creating platform submission: %w", err)
		}
		created++
	}
	return created, nil
}

type SubmissionUpdateInput struct {
	Status       models.SubmissionStatus
	StreamingURL string
}

// UpdateSubmission records the reviewed outcome of one platform
// submission.
func (s *Service) UpdateSubmission(ctx context.Context, submissionID uuid.UUID, input SubmissionUpdateInput) (*models.PlatformSubmission, error) {
	var submission models.PlatformSubmission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]any{
		"status":      input.Status,
		"reviewed_at": now,
	}
	if input.StreamingURL != "" {
		updates["streaming_url"] = input.StreamingURL
	}
	if err := s.db.WithContext(ctx).Model(&submission).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating platform submission: %w", err)
	}
	return &submission, nil
}

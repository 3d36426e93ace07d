package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/internal/tasks"
	"gorm.io/gorm"
)

var (
	ErrArtistLimitReached = errors.New("artist limit reached for account type")
	ErrNotFound           = errors.New("record not found")
)

// ValidationError lists the required fields a submission is missing.
// It is produced before any insert is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	missing := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		missing = append(missing, f)
	}
	return "validation failed: " + strings.Join(missing, ", ")
}

// Enqueuer is the slice of asynq.Client the service needs. A nil Enqueuer
// simply disables the post-commit jobs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Service struct {
	db       *gorm.DB
	enqueuer Enqueuer
	logger   *slog.Logger
}

func NewService(db *gorm.DB, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{db: db, enqueuer: enqueuer, logger: logger}
}

type ArtistInput struct {
	Name        string
	Genre       string
	Bio         string
	ImageURL    string
	AccountType models.AccountType
}

// CreateArtist inserts an artist after enforcing the per-account-type
// ceiling: 2 artists for an artist account, 5 for a label.
func (s *Service) CreateArtist(ctx context.Context, userID uuid.UUID, input ArtistInput) (*models.Artist, error) {
	if input.Name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "Name is required"}}
	}
	if input.AccountType == "" {
		input.AccountType = models.AccountTypeArtist
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Artist{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("counting artists: %w", err)
	}
	if int(count) >= input.AccountType.MaxArtists() {
		return nil, ErrArtistLimitReached
	}

	artist := models.Artist{
		UserID:      userID,
		Name:        input.Name,
		Genre:       input.Genre,
		Bio:         input.Bio,
		ImageURL:    input.ImageURL,
		AccountType: input.AccountType,
	}
	if err := s.db.WithContext(ctx).Create(&artist).Error; err != nil {
		return nil, fmt.Errorf("creating artist: %w", err)
	}
	return &artist, nil
}

func (s *Service) ListArtists(ctx context.Context, userID uuid.UUID) ([]models.Artist, error) {
	var artists []models.Artist
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&artists).Error
	return artists, err
}

// GetArtist returns the artist only when owned by userID.
func (s *Service) GetArtist(ctx context.Context, userID, artistID uuid.UUID) (*models.Artist, error) {
	var artist models.Artist
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", artistID, userID).
		First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &artist, nil
}

func (s *Service) UpdateArtist(ctx context.Context, userID, artistID uuid.UUID, input ArtistInput) (*models.Artist, error) {
	artist, err := s.GetArtist(ctx, userID, artistID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Genre != "" {
		updates["genre"] = input.Genre
	}
	if input.Bio != "" {
		updates["bio"] = input.Bio
	}
	if input.ImageURL != "" {
		updates["image_url"] = input.ImageURL
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(artist).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating artist: %w", err)
		}
	}
	return artist, nil
}

func (s *Service) DeleteArtist(ctx context.Context, userID, artistID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", artistID, userID).
		Delete(&models.Artist{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type TrackInput struct {
	Title       string
	Genre       string
	Year        int
	Album       string
	TrackNumber int
	Language    string
	Lyrics      string
	ReleaseDate *time.Time
	RecordLabel string

	Duration    int
	BitRate     int
	SampleRate  int
	Channels    string
	FileFormat  string
	FileURL     string
	CoverArtURL string

	Composer        string
	Lyricist        string
	Publisher       string
	CopyrightHolder string
	PROSociety      string
	LicenseType     string
}

func (in *TrackInput) validate() *ValidationError {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Genre) == "" {
		fields["genre"] = "Genre is required"
	}
	if in.Year == 0 {
		fields["year"] = "Year is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// SubmitTrack validates, mints ISRC/ISWC codes and inserts the track as
// pending. After the insert commits it enqueues the duplicate check, and
// the contract email when this is the owner's first track. Both jobs are
// advisory: an enqueue failure is logged and the submission still
// succeeds.
func (s *Service) SubmitTrack(ctx context.Context, userID, artistID uuid.UUID, input TrackInput) (*models.Track, error) {
	if verr := input.validate(); verr != nil {
		return nil, verr
	}

	artist, err := s.GetArtist(ctx, userID, artistID)
	if err != nil {
		return nil, err
	}

	var priorTracks int64
	if err := s.db.WithContext(ctx).Model(&models.Track{}).
		Joins("JOIN artists ON artists.id = tracks.artist_id").
		Where("artists.user_id = ?", userID).
		Count(&priorTracks).Error; err != nil {
		return nil, fmt.Errorf("counting prior tracks: %w", err)
	}

	track, err := s.insertWithCodes(ctx, artist.ID, input)
	if err != nil {
		return nil, err
	}

	s.enqueueDuplicateCheck(ctx, track, artist)
	if priorTracks == 0 {
		s.enqueueContract(ctx, userID, artist)
	}

	return track, nil
}

// insertWithCodes retries on the (unlikely) unique collision of a freshly
// minted code.
func (s *Service) insertWithCodes(ctx context.Context, artistID uuid.UUID, input TrackInput) (*models.Track, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		isrc, err := newISRC(time.Now())
		if err != nil {
			return nil, err
		}
		iswc, err := newISWC()
		if err != nil {
			return nil, err
		}

		track := models.Track{
			ArtistID:        artistID,
			Title:           input.Title,
			Genre:           input.Genre,
			Year:            input.Year,
			Album:           input.Album,
			TrackNumber:     input.TrackNumber,
			Language:        input.Language,
			Lyrics:          input.Lyrics,
			ReleaseDate:     input.ReleaseDate,
			RecordLabel:     input.RecordLabel,
			Duration:        input.Duration,
			BitRate:         input.BitRate,
			SampleRate:      input.SampleRate,
			Channels:        input.Channels,
			FileFormat:      input.FileFormat,
			FileURL:         input.FileURL,
			CoverArtURL:     input.CoverArtURL,
			Composer:        input.Composer,
			Lyricist:        input.Lyricist,
			Publisher:       input.Publisher,
			CopyrightHolder: input.CopyrightHolder,
			PROSociety:      input.PROSociety,
			LicenseType:     input.LicenseType,
			ISRCCode:        isrc,
			ISWCCode:        iswc,
			Status:          models.TrackStatusPending,
		}

		err = s.db.WithContext(ctx).Create(&track).Error
		if err == nil {
			return &track, nil
		}
		lastErr = err
		if !isCodeCollision(err) {
			return nil, fmt.Errorf("creating track: %w", err)
		}
	}
	return nil, fmt.Errorf("creating track after %d attempts: %w", maxAttempts, lastErr)
}

func isCodeCollision(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (s *Service) enqueueDuplicateCheck(ctx context.Context, track *models.Track, artist *models.Artist) {
	if s.enqueuer == nil {
		return
	}
	task, err := tasks.NewDuplicateCheckTask(tasks.DuplicateCheckPayload{
		TrackID:    track.ID,
		Title:      track.Title,
		ArtistName: artist.Name,
		ISRCCode:   track.ISRCCode,
		ISWCCode:   track.ISWCCode,
	})
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(ctx, task)
	}
	if err != nil {
		s.logger.Warn("failed to enqueue duplicate check", "track_id", track.ID, "error", err)
	}
}

func (s *Service) enqueueContract(ctx context.Context, userID uuid.UUID, artist *models.Artist) {
	if s.enqueuer == nil {
		return
	}
	task, err := tasks.NewContractSendTask(tasks.ContractSendPayload{
		UserID:      userID,
		ArtistName:  artist.Name,
		AccountType: string(artist.AccountType),
	})
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(ctx, task, asynq.Queue("low"))
	}
	if err != nil {
		s.logger.Warn("failed to enqueue contract email", "user_id", userID, "error", err)
	}
}

func (s *Service) ListTracks(ctx context.Context, userID, artistID uuid.UUID) ([]models.Track, error) {
	if _, err := s.GetArtist(ctx, userID, artistID); err != nil {
		return nil, err
	}
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("created_at DESC").
		Find(&tracks).Error
	return tracks, err
}

func (s *Service) GetTrack(ctx context.Context, userID, trackID uuid.UUID) (*models.Track, error) {
	var track models.Track
	err := s.db.WithContext(ctx).
		Joins("JOIN artists ON artists.id = tracks.artist_id").
		Where("tracks.id = ? AND artists.user_id = ?", trackID, userID).
		First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

func (s *Service) DeleteTrack(ctx context.Context, userID, trackID uuid.UUID) error {
	track, err := s.GetTrack(ctx, userID, trackID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(track).Error
}

// ListDuplicateNotifications returns the advisory duplicate matches
// recorded for one of the caller's tracks.
func (s *Service) ListDuplicateNotifications(ctx context.Context, userID, trackID uuid.UUID) ([]models.DuplicateNotification, error) {
	if _, err := s.GetTrack(ctx, userID, trackID); err != nil {
		return nil, err
	}
	var notifications []models.DuplicateNotification
	err := s.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// ListPlatformSubmissions returns the per-platform distribution status of
// one of the caller's tracks.
func (s *Service) ListPlatformSubmissions(ctx context.Context, userID, trackID uuid.UUID) ([]models.PlatformSubmission, error) {
	if _, err := s.GetTrack(ctx, userID, trackID); err != nil {
		return nil, err
	}
	var submissions []models.PlatformSubmission
	err := s.db.WithContext(ctx).
		Preload("Platform").
		Where("track_id = ?", trackID).
		Order("submitted_at").
		Find(&submissions).Error
	return submissions, err
}

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sonna/artists-backend/internal/database/models"
	"gorm.io/gorm"
)

const platformMusicBrainz = "MusicBrainz"

// Searcher is the part of Client the detector uses.
type Searcher interface {
	SearchRecordings(ctx context.Context, title, artist string) ([]Recording, error)
}

// Detector checks a submitted track against external metadata and records
// a DuplicateNotification per match. Detection is advisory: an external
// failure counts as "no duplicate found" (fail-open) and never reaches
// the submission path.
type Detector struct {
	db       *gorm.DB
	searcher Searcher
	logger   *slog.Logger
}

func NewDetector(db *gorm.DB, searcher Searcher, logger *slog.Logger) *Detector {
	return &Detector{db: db, searcher: searcher, logger: logger}
}

type CheckInput struct {
	TrackID    uuid.UUID
	Title      string
	ArtistName string
}

// Check returns the number of duplicate candidates recorded.
func (d *Detector) Check(ctx context.Context, input CheckInput) (int, error) {
	recordings, err := d.searcher.SearchRecordings(ctx, input.Title, input.ArtistName)
	if err != nil {
		d.logger.Warn("duplicate check failed open",
			"track_id", input.TrackID,
			"error", err,
		)
		return 0, nil
	}

	found := 0
	for _, rec := range recordings {
		// Task delivery is at-least-once, so skip matches already recorded
		// for this track.
		var existing int64
		if err := d.db.WithContext(ctx).Model(&models.DuplicateNotification{}).
			Where("track_id = ? AND external_id = ?", input.TrackID, rec.ID).
			Count(&existing).Error; err != nil {
			return found, err
		}
		if existing > 0 {
			continue
		}

		details, err := json.Marshal(rec)
		if err != nil {
			details = []byte("{}")
		}

		notification := models.DuplicateNotification{
			TrackID:          input.TrackID,
			ExternalPlatform: platformMusicBrainz,
			ExternalID:       rec.ID,
			SimilarityScore:  float64(rec.Score) / 100,
			Details:          string(details),
			Status:           models.DuplicateStatusPending,
		}
		if err := d.db.WithContext(ctx).Create(&notification).Error; err != nil {
			return found, fmt.Errorf("recording duplicate notification: %w", err)
		}
		found++
	}

	if found > 0 {
		d.logger.Info("possible duplicates recorded",
			"track_id", input.TrackID,
			"count", found,
		)
	}
	return found, nil
}

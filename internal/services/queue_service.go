package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/cache"
	"github.com/otcheredev/clinic-core/internal/metrics"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/otcheredev/clinic-core/internal/visitflow"
	"github.com/rs/zerolog/log"
)

// queueSnapshotTTL bounds how long a sorted snapshot can outlive its
// fingerprint in cache
const queueSnapshotTTL = 5 * time.Minute

// QueueService derives the per-stage working lists. It is read-only over
// the visit set; the memoized snapshot is keyed by the visit set's
// content, never by wall-clock time, so wait durations stay fresh while
// the ordering work is reused between polls.
type QueueService struct {
	visitRepo *repository.VisitRepository
	cache     cache.Cache
}

// NewQueueService creates a new queue service
func NewQueueService(visitRepo *repository.VisitRepository, c cache.Cache) *QueueService {
	return &QueueService{
		visitRepo: visitRepo,
		cache:     c,
	}
}

// Queue returns the ordered waiting list for one stage of a clinic. An
// empty queue is a valid result, not an error.
func (s *QueueService) Queue(ctx context.Context, clinicID uuid.UUID, stage models.VisitStage) ([]models.QueueEntry, error) {
	if !visitflow.IsValidStage(stage) {
		return nil, apperrors.Validation("unknown stage")
	}

	visits, err := s.visitRepo.ListByStage(ctx, clinicID, stage)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	metrics.QueueDepth.WithLabelValues(clinicID.String(), string(stage)).Set(float64(len(visits)))

	sorted := s.sortedSnapshot(ctx, clinicID, stage, visits)

	now := time.Now().UTC()
	entries := make([]models.QueueEntry, 0, len(sorted))
	for _, v := range sorted {
		wait := int64(now.Sub(v.StageStartTime).Seconds())
		if wait < 0 {
			wait = 0
		}
		entries = append(entries, models.QueueEntry{Visit: v, WaitSeconds: wait})
	}
	return entries, nil
}

// sortedSnapshot returns the sorted visit list, reusing the cached
// ordering when the visit set's fingerprint is unchanged. Cache failures
// only cost the re-sort; they are never surfaced.
func (s *QueueService) sortedSnapshot(ctx context.Context, clinicID uuid.UUID, stage models.VisitStage, visits []models.Visit) []models.Visit {
	fingerprint := visitflow.Fingerprint(visits)
	key := cache.QueueKey(clinicID.String(), string(stage), fingerprint)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []models.Visit
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) == len(visits) {
			return cached
		}
	}

	sorted := visitflow.SortQueue(visits)

	if raw, err := json.Marshal(sorted); err == nil {
		if err := s.cache.Set(ctx, key, raw, queueSnapshotTTL); err != nil {
			log.Debug().Err(err).Msg("Failed to cache queue snapshot")
		}
	}
	return sorted
}

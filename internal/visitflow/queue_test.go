package visitflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitAt(priority models.VisitPriority, start time.Time) models.Visit {
	return models.Visit{
		ID:             uuid.New(),
		Stage:          models.StageConsultation,
		Priority:       priority,
		StageStartTime: start,
	}
}

func TestSortQueuePriorityBeatsTime(t *testing.T) {
	now := time.Now()
	emergencyLate := visitAt(models.PriorityEmergency, now)
	urgentEarly := visitAt(models.PriorityUrgent, now.Add(-2*time.Hour))
	normalEarliest := visitAt(models.PriorityNormal, now.Add(-5*time.Hour))

	sorted := SortQueue([]models.Visit{normalEarliest, urgentEarly, emergencyLate})

	require.Len(t, sorted, 3)
	assert.Equal(t, emergencyLate.ID, sorted[0].ID)
	assert.Equal(t, urgentEarly.ID, sorted[1].ID)
	assert.Equal(t, normalEarliest.ID, sorted[2].ID)
}

func TestSortQueueFIFOWithinPriority(t *testing.T) {
	now := time.Now()
	first := visitAt(models.PriorityNormal, now.Add(-90*time.Minute))
	second := visitAt(models.PriorityNormal, now.Add(-30*time.Minute))
	third := visitAt(models.PriorityNormal, now.Add(-5*time.Minute))

	sorted := SortQueue([]models.Visit{third, first, second})

	assert.Equal(t, first.ID, sorted[0].ID)
	assert.Equal(t, second.ID, sorted[1].ID)
	assert.Equal(t, third.ID, sorted[2].ID)
}

func TestSortQueueUnrecognizedPriorityRanksLast(t *testing.T) {
	now := time.Now()
	bogus := visitAt(models.VisitPriority("critical!!"), now.Add(-10*time.Hour))
	normal := visitAt(models.PriorityNormal, now)

	sorted := SortQueue([]models.Visit{bogus, normal})

	assert.Equal(t, normal.ID, sorted[0].ID)
	assert.Equal(t, bogus.ID, sorted[1].ID)
}

func TestSortQueueEmptyIsValid(t *testing.T) {
	assert.Empty(t, SortQueue(nil))
	assert.Empty(t, SortQueue([]models.Visit{}))
}

func TestFingerprintStableAcrossWallClock(t *testing.T) {
	now := time.Now()
	visits := []models.Visit{
		visitAt(models.PriorityNormal, now.Add(-time.Hour)),
		visitAt(models.PriorityUrgent, now),
	}

	fp1 := Fingerprint(visits)
	fp2 := Fingerprint(visits)
	assert.Equal(t, fp1, fp2)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	now := time.Now()
	a := visitAt(models.PriorityNormal, now)
	b := visitAt(models.PriorityNormal, now)

	fp := Fingerprint([]models.Visit{a})
	assert.NotEqual(t, fp, Fingerprint([]models.Visit{a, b}))

	// A stage-start reset (i.e. a transition) changes the fingerprint
	moved := a
	moved.StageStartTime = now.Add(time.Minute)
	assert.NotEqual(t, Fingerprint([]models.Visit{a}), Fingerprint([]models.Visit{moved}))
}

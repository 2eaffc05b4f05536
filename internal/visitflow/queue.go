package visitflow

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/otcheredev/clinic-core/internal/models"
)

// priorityRank fixes the queue ranking. Unrecognized priority values rank
// below Normal instead of breaking the sort.
var priorityRank = map[models.VisitPriority]int{
	models.PriorityEmergency: 3,
	models.PriorityUrgent:    2,
	models.PriorityNormal:    1,
}

// PriorityRank returns the numeric rank for a priority, 0 for anything
// unrecognized
func PriorityRank(p models.VisitPriority) int {
	return priorityRank[p]
}

// SortQueue orders visits for the per-stage working list: priority rank
// descending, then StageStartTime ascending (FIFO within a priority band).
// The input slice is sorted in place and returned.
func SortQueue(visits []models.Visit) []models.Visit {
	sort.SliceStable(visits, func(i, j int) bool {
		ri, rj := PriorityRank(visits[i].Priority), PriorityRank(visits[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return visits[i].StageStartTime.Before(visits[j].StageStartTime)
	})
	return visits
}

// Fingerprint hashes the identity-relevant content of a visit set (id,
// priority, stage start). Two sets with the same fingerprint sort to the
// same queue, so it serves as the memoization key; wall-clock time is
// deliberately excluded.
func Fingerprint(visits []models.Visit) string {
	h := fnv.New64a()
	for _, v := range visits {
		fmt.Fprintf(h, "%s|%s|%d;", v.ID, v.Priority, v.StageStartTime.UnixNano())
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

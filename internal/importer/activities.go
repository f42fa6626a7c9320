package importer

import (
	"fmt"
	"time"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/storage"
)

// ActivityResult summarizes an activity import.
type ActivityResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportActivities reads activity rows from a JSONL file and stores them,
// replacing existing rows for the same (user, book) pair. Records with an
// out-of-range interaction score are recomputed from their view count and
// favorite flag; records without user and book ids are skipped.
func ImportActivities(db *storage.DB, path string, now time.Time) (*ActivityResult, error) {
	activities, err := storage.ReadJSONL[catalog.Activity](path)
	if err != nil {
		return nil, fmt.Errorf("reading activities: %w", err)
	}

	result := &ActivityResult{}
	for _, a := range activities {
		if a.UserID == 0 || a.BookID == 0 {
			result.Skipped++
			continue
		}
		if a.InteractionScore < 0 || a.InteractionScore > catalog.MaxInteraction {
			a.InteractionScore = a.Score()
		}
		if a.LastViewed.IsZero() {
			a.LastViewed = now
		}
		if err := db.PutActivity(a); err != nil {
			return nil, fmt.Errorf("importing activity (%d, %d): %w", a.UserID, a.BookID, err)
		}
		result.Imported++
	}
	return result, nil
}

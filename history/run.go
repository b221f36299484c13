package history

import (
	"fmt"
	"time"

	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/portal"
)

// SavedRun represents a single page run preserved in the user's history.
type SavedRun struct {
	Page          string            `json:"page"`
	RanAt         time.Time         `json:"ran_at"`
	ImagesTotal   int               `json:"images_total"`
	ImagesLoaded  int               `json:"images_loaded"`
	ImagesFailed  int               `json:"images_failed"`
	ImagesPending int               `json:"images_pending"`
	Portals       map[string]string `json:"portals"`
}

func (s *SavedRun) encode() string {
	return s.Page
}

func (s *SavedRun) String() string {
	return fmt.Sprintf("%s : %d / %d images", s.Page, s.ImagesLoaded, s.ImagesTotal)
}

// NewSavedRun snapshots the outcome of a page run.
func NewSavedRun(pagePath string, records []*media.Record, controllers []*portal.Controller) *SavedRun {
	run := &SavedRun{
		Page:    pagePath,
		RanAt:   time.Now(),
		Portals: make(map[string]string, len(controllers)),
	}

	for _, r := range records {
		run.ImagesTotal++
		switch r.Status() {
		case media.StatusLoaded:
			run.ImagesLoaded++
		case media.StatusFailed:
			run.ImagesFailed++
		default:
			run.ImagesPending++
		}
	}

	for _, c := range controllers {
		run.Portals[c.MountID()] = c.Status().String()
	}
	return run
}

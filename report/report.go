// Package report provides the machine-readable output of a headless page run.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/portal"
)

// Image is the terminal view of one deferred image.
type Image struct {
	// ID addresses the image element within its page.
	ID string `json:"id"`
	// Target is the real source the image deferred.
	Target string `json:"target"`
	// Status is the image's final lifecycle position.
	Status string `json:"status"`
}

// Portal is the terminal view of one video portal.
type Portal struct {
	// Mount addresses the element the player mounted onto.
	Mount string `json:"mount"`
	// VideoID is the embedded video.
	VideoID string `json:"video_id"`
	// Status is the portal's final lifecycle position.
	Status string `json:"status"`
}

type Output struct {
	Page       string    `json:"page"`
	FinishedAt time.Time `json:"finished_at"`
	Images     []*Image  `json:"images"`
	Portals    []*Portal `json:"portals"`
}

// New assembles a run report from the loader's and supervisor's final state.
func New(pagePath string, records []*media.Record, controllers []*portal.Controller) *Output {
	out := &Output{
		Page:       pagePath,
		FinishedAt: time.Now(),
		Images:     make([]*Image, len(records)),
		Portals:    make([]*Portal, len(controllers)),
	}

	for i, r := range records {
		out.Images[i] = &Image{
			ID:     r.ID(),
			Target: r.Target(),
			Status: r.Status().String(),
		}
	}
	for i, c := range controllers {
		out.Portals[i] = &Portal{
			Mount:   c.MountID(),
			VideoID: c.VideoID(),
			Status:  c.Status().String(),
		}
	}
	return out
}

// Write renders the report as indented JSON.
func (o *Output) Write(w io.Writer) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

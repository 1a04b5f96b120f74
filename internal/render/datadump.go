package render

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"reelforge/internal/services"
	"reelforge/internal/timeline"
)

// dataDump is the last-resort artifact: the full timeline as structured data
// plus a note telling an operator what to do with it.
type dataDump struct {
	Note        string             `json:"note"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Timeline    *timeline.Timeline `json:"timeline"`
}

const dataDumpNote = "Rendering and slideshow generation both failed. " +
	"This file contains the complete assembled timeline; manual review is required " +
	"to produce a deliverable from the listed assets and captions."

// WriteDataDump persists the timeline as indented JSON with a human-readable
// review note.
func WriteDataDump(tl *timeline.Timeline, dest string) error {
	payload, err := json.MarshalIndent(dataDump{
		Note:        dataDumpNote,
		GeneratedAt: time.Now().UTC(),
		Timeline:    tl,
	}, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "data dump", "marshal timeline", err)
	}
	if err := os.WriteFile(dest, payload, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "data dump", fmt.Sprintf("write %s", dest), err)
	}
	return nil
}

package rest

import (
	"net/http"

	"github.com/ewilliams-labs/setlist/internal/core/curation"
	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/services"
)

type curateRequest struct {
	Prompt   string                          `json:"prompt"`
	Tracks   []domain.Track                  `json:"tracks"`
	Features map[string]domain.AudioFeatures `json:"features,omitempty"`
	Options  services.Params                 `json:"options"`
}

type curateResponse struct {
	Tracks    []domain.Track       `json:"tracks"`
	Arc       domain.Arc           `json:"arc"`
	Analysis  domain.PromptSignals `json:"analysis"`
	Discovery []string             `json:"discovery"`
	Stats     curation.Stats       `json:"stats"`
}

func newCurateResponse(res curation.Result) curateResponse {
	discovery := make([]string, len(res.Discovery))
	for i, st := range res.Discovery {
		discovery[i] = st.Track.ID
	}
	tracks := res.Tracks
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return curateResponse{
		Tracks:    tracks,
		Arc:       res.Arc,
		Analysis:  res.Signals,
		Discovery: discovery,
		Stats:     res.Stats,
	}
}

// Curate handles POST /curate
func (h *Handler) Curate(w http.ResponseWriter, r *http.Request) {
	var req curateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Curate(r.Context(), services.CurateRequest{
		Prompt:   req.Prompt,
		Tracks:   req.Tracks,
		Features: req.Features,
		Params:   req.Options,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCurateResponse(res))
}

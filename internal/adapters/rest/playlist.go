package rest

import (
	"net/http"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/services"
)

type createPlaylistRequest struct {
	Prompt  string          `json:"prompt"`
	Options services.Params `json:"options"`
}

type createPlaylistResponse struct {
	Playlist domain.Playlist      `json:"playlist"`
	// Summary averages the features known at creation time.
	Summary  domain.AudioFeatures `json:"audio_summary"`
	curateResponse
}

// CreatePlaylist handles POST /playlists
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "prompt is required", errCodeInvalidOptions)
		return
	}

	playlist, res, err := h.svc.CreatePlaylistFromPrompt(r.Context(), services.PromptRequest{
		Prompt: req.Prompt,
		Params: req.Options,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/playlists/"+playlist.ID)
	writeJSON(w, http.StatusCreated, createPlaylistResponse{
		Playlist:       playlist,
		Summary:        playlist.Analyze(),
		curateResponse: newCurateResponse(res),
	})
}

// GetPlaylist handles GET /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := r.PathValue("id")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlist id is required")
		return
	}

	playlist, err := h.svc.GetPlaylist(r.Context(), playlistID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

// GetPlaylistAnalysis handles GET /playlists/{id}/analysis
func (h *Handler) GetPlaylistAnalysis(w http.ResponseWriter, r *http.Request) {
	playlistID := r.PathValue("id")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlist id is required")
		return
	}

	features, err := h.svc.GetPlaylistAnalysis(r.Context(), playlistID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, features)
}

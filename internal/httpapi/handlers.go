package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/lobby"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/types"
)

type handlers struct {
	lobby *lobby.Lobby
	log   *zap.Logger
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	var req types.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: bad json", engine.ErrValidation))
		return
	}
	res, err := h.lobby.Start(r.Context(), req.RunnerA, req.RunnerB)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftResponse(res, nil))
}

func (h *handlers) ban(w http.ResponseWriter, r *http.Request) {
	var req types.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: bad json", engine.ErrValidation))
		return
	}
	res, pub, err := h.lobby.BanAndPublish(r.Context(), req.Stage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(res, pub))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	res, err := h.lobby.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(res, nil))
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	v, err := h.lobby.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := types.DraftResponse{Version: v.Version, State: v.State, Ordering: v.Ordering, Files: v.Files}
	if v.Ordering != nil {
		resp.SplitNames = v.Ordering.SplitNames()
	}
	writeJSON(w, http.StatusOK, resp)
}

// publish re-randomizes the ordering of a concluded draft.
func (h *handlers) publish(w http.ResponseWriter, r *http.Request) {
	pub, err := h.lobby.Publish(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.lobby.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(lobby.Result{Version: pub.Version, State: v.State}, &pub))
}

// rewrite retries writing the current artifacts to disk.
func (h *handlers) rewrite(w http.ResponseWriter, r *http.Request) {
	pub, err := h.lobby.Rewrite(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pub.Files)
}

func (h *handlers) configFile(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, func(b artifact.Bundle) (string, string, []byte) {
		return artifact.ConfigFileName, "text/plain; charset=us-ascii", b.Config
	})
}

func (h *handlers) splitsFile(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, func(b artifact.Bundle) (string, string, []byte) {
		return b.SplitsName, "application/xml; charset=utf-8", b.Splits
	})
}

func (h *handlers) serveArtifact(w http.ResponseWriter, r *http.Request, pick func(artifact.Bundle) (name, contentType string, data []byte)) {
	v, err := h.lobby.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if v.Bundle == nil {
		writeError(w, lobby.ErrNotPublished)
		return
	}
	name, contentType, data := pick(*v.Bundle)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func draftResponse(res lobby.Result, pub *lobby.PublishResult) types.DraftResponse {
	resp := types.DraftResponse{
		Version:       res.Version,
		State:         res.State,
		Events:        res.Events,
		Announcements: types.Announcements(res.Events),
	}
	if pub != nil {
		ord, files := pub.Ordering, pub.Files
		resp.Version = pub.Version
		resp.Ordering = &ord
		resp.SplitNames = ord.SplitNames()
		if files != (artifact.Files{}) {
			resp.Files = &files
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	resp := types.ErrorResponse{Error: err.Error(), Kind: kind}
	var werr *artifact.WriteError
	if errors.As(err, &werr) {
		resp.Path = werr.Path
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	var werr *artifact.WriteError
	switch {
	case errors.Is(err, engine.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, engine.ErrUnresolvedStage):
		return http.StatusUnprocessableEntity, "unresolved_stage"
	case errors.Is(err, engine.ErrAlreadyBanned):
		return http.StatusConflict, "already_banned"
	case errors.Is(err, engine.ErrNotAwaitingBan):
		return http.StatusConflict, "not_awaiting_ban"
	case errors.Is(err, engine.ErrDraftInProgress):
		return http.StatusConflict, "draft_in_progress"
	case errors.Is(err, lobby.ErrNotConcluded):
		return http.StatusConflict, "not_concluded"
	case errors.Is(err, lobby.ErrNotPublished):
		return http.StatusNotFound, "not_published"
	case errors.As(err, &werr):
		return http.StatusInternalServerError, "artifact_write"
	case errors.Is(err, lobby.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

package player

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handler struct {
	repoResolver func(*http.Request) *FileRepo
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) *FileRepo) {
	h.repoResolver = fn
}

func (h *Handler) repoForRequest(r *http.Request) *FileRepo {
	if h.repoResolver == nil {
		return nil
	}
	return h.repoResolver(r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func settingsErrStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrUnknownStep), errors.Is(err, ErrEmptyKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrKeyInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GET /api/player/settings
// PATCH /api/player/settings {playerName?, soundEnabled?, keybindings?}
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)
	if repo == nil {
		writeErr(w, http.StatusInternalServerError, "player repository unavailable")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, repo.Get())
	case http.MethodPatch:
		var in struct {
			PlayerName   *string           `json:"playerName"`
			SoundEnabled *bool             `json:"soundEnabled"`
			Keybindings  map[string]string `json:"keybindings"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if in.PlayerName != nil {
			if _, err := repo.SetPlayerName(*in.PlayerName); err != nil {
				writeErr(w, settingsErrStatus(err), err.Error())
				return
			}
		}
		if in.SoundEnabled != nil {
			if _, err := repo.SetSound(*in.SoundEnabled); err != nil {
				writeErr(w, settingsErrStatus(err), err.Error())
				return
			}
		}
		for cmd, key := range in.Keybindings {
			if _, err := repo.SetKeybinding(cmd, key); err != nil {
				writeErr(w, settingsErrStatus(err), err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, repo.Get())
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/player/onboarding
// POST /api/player/onboarding {step?, dismiss?, restart?}
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)
	if repo == nil {
		writeErr(w, http.StatusInternalServerError, "player repository unavailable")
		return
	}

	type response struct {
		Onboarding Onboarding `json:"onboarding"`
		Next       string     `json:"next"`
	}
	respond := func(s Settings) {
		writeJSON(w, http.StatusOK, response{Onboarding: s.Onboarding, Next: s.Onboarding.NextStep()})
	}

	switch r.Method {
	case http.MethodGet:
		respond(repo.Get())
	case http.MethodPost:
		var in struct {
			Step    string `json:"step"`
			Dismiss bool   `json:"dismiss"`
			Restart bool   `json:"restart"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		var (
			s   Settings
			err error
		)
		switch {
		case in.Restart:
			s, err = repo.RestartTutorial()
		case in.Dismiss:
			s, err = repo.DismissTutorial()
		case in.Step != "":
			s, err = repo.MarkStepSeen(in.Step)
		default:
			writeErr(w, http.StatusBadRequest, `one of "step", "dismiss" or "restart" is required`)
			return
		}
		if err != nil {
			writeErr(w, settingsErrStatus(err), err.Error())
			return
		}
		respond(s)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

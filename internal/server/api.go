package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdoom/internal/config"
	"pdoom/internal/game"
	"pdoom/internal/guide"
	"pdoom/internal/httpmw"
	"pdoom/internal/network"
	"pdoom/internal/player"
	"pdoom/internal/score"
	"pdoom/internal/telemetry"
)

// App holds what the handlers depend on.
type App struct {
	Config    *config.Config
	Games     game.Repository
	Saves     *game.SaveStore
	Scores    score.Repository
	History   *score.SQLiteRepo
	Players   *player.FileRepo
	Telemetry *telemetry.MemoryRepository
	Hub       *network.Hub
	Guide     string
	Clock     game.Clock
	Logger    *log.Logger

	BootNow time.Time
}

func (app *App) now() time.Time {
	if app.Clock == nil {
		return time.Now().UTC()
	}
	return app.Clock.Now()
}

func (app *App) playerName() string {
	if app.Players != nil {
		return app.Players.Get().PlayerName
	}
	if app.Config != nil {
		return app.Config.Player.Name
	}
	return ""
}

func (app *App) logEvent(r *http.Request, level, msg string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["request_id"] = httpmw.RequestIDFromContext(r.Context())
	httpmw.Log(app.Logger, level, msg, fields)
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
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, game.ErrUnknownEvent):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnknownAction), errors.Is(err, game.ErrUnknownUpgrade),
		errors.Is(err, game.ErrBadSelection), errors.Is(err, game.ErrBadSlot):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrEventPending),
		errors.Is(err, game.ErrUpgradeOwned):
		return http.StatusConflict
	case errors.Is(err, game.ErrActionUnavailable), errors.Is(err, game.ErrNotEnoughAP),
		errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrCannotDelegate),
		errors.Is(err, game.ErrCannotDefer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrTooManyGames):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	games := app.Games

	// mutate runs fn on the game, then answers with its fresh view and notifies subscribers.
	mutate := func(w http.ResponseWriter, r *http.Request, fn func(g *game.Game) error) {
		id := r.PathValue("id")
		var view GameView
		err := games.With(r.Context(), id, func(g *game.Game) error {
			if err := fn(g); err != nil {
				return err
			}
			view = ViewOf(g)
			return nil
		})
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		if app.Hub != nil {
			_ = app.Hub.Publish(id, network.MsgStateChange, view)
		}
		writeJSON(w, http.StatusOK, view)
	}

	Handle(mux, rr, "POST /api/games", "Start a game", `{"seed":"2026-W43","difficulty":"hard"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Seed       string `json:"seed"`
			Difficulty string `json:"difficulty"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}

		bal := app.Config.Balance
		if d := strings.TrimSpace(body.Difficulty); d != "" {
			bal = config.Preset(d)
		}
		g, err := game.New(game.Options{
			ID:        uuid.NewString(),
			Seed:      body.Seed,
			Balance:   &bal,
			Clock:     app.Clock,
			Telemetry: app.Telemetry,
		})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := games.Create(r.Context(), g); err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		app.logEvent(r, "info", "game_created", map[string]any{"game_id": g.State.ID, "seed": g.State.Seed})
		writeJSON(w, http.StatusCreated, ViewOf(g))
	})

	Handle(mux, rr, "GET /api/games", "List live games", "", func(w http.ResponseWriter, r *http.Request) {
		list, err := games.List(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	Handle(mux, rr, "GET /api/games/{id}", "Get game state", "", func(w http.ResponseWriter, r *http.Request) {
		var view GameView
		err := games.With(r.Context(), r.PathValue("id"), func(g *game.Game) error {
			view = ViewOf(g)
			return nil
		})
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, view)
	})

	Handle(mux, rr, "DELETE /api/games/{id}", "Abandon a game", "", func(w http.ResponseWriter, r *http.Request) {
		if err := games.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	Handle(mux, rr, "POST /api/games/{id}/actions", "Select an action", `{"action":"safety_research","delegate":false}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action   string `json:"action"`
			Delegate bool   `json:"delegate"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(body.Action) == "" {
			writeErr(w, http.StatusBadRequest, `missing field "action"`)
			return
		}
		mutate(w, r, func(g *game.Game) error { return g.SelectAction(body.Action, body.Delegate) })
	})

	Handle(mux, rr, "POST /api/games/{id}/actions/undo", "Unselect an action (default: last)", `{"index":0}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Index *int `json:"index"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		mutate(w, r, func(g *game.Game) error {
			idx := len(g.State.Selected) - 1
			if body.Index != nil {
				idx = *body.Index
			}
			return g.UnselectAction(idx)
		})
	})

	Handle(mux, rr, "POST /api/games/{id}/upgrades", "Buy an upgrade", `{"upgrade":"comfy_chairs"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Upgrade string `json:"upgrade"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		mutate(w, r, func(g *game.Game) error { return g.BuyUpgrade(body.Upgrade) })
	})

	Handle(mux, rr, "POST /api/games/{id}/events/{instance}", "Answer a popup event", `{"option":0}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Option int `json:"option"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		mutate(w, r, func(g *game.Game) error { return g.ResolveEvent(r.PathValue("instance"), body.Option) })
	})

	Handle(mux, rr, "POST /api/games/{id}/events/{instance}/defer", "Defer a popup event", "", func(w http.ResponseWriter, r *http.Request) {
		mutate(w, r, func(g *game.Game) error { return g.DeferEvent(r.PathValue("instance")) })
	})

	Handle(mux, rr, "POST /api/games/{id}/end-turn", "Resolve the turn", "", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var (
			rep   game.TurnReport
			entry *score.Entry
		)
		err := games.With(r.Context(), id, func(g *game.Game) error {
			var err error
			rep, err = g.EndTurn()
			if err != nil {
				return err
			}
			if rep.Over {
				e := score.FromGame(g, app.playerName(), app.now())
				entry = &e
			}
			return nil
		})
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}

		app.logEvent(r, "info", "turn_ended", map[string]any{"game_id": id, "turn": rep.Turn, "doom_delta": rep.DoomDelta})
		if app.Hub != nil {
			_ = app.Hub.Publish(id, network.MsgTurnEnded, rep)
		}
		if entry != nil {
			app.recordScore(r, *entry)
			if app.Hub != nil {
				_ = app.Hub.Publish(id, network.MsgGameOver, entry)
			}
		}
		writeJSON(w, http.StatusOK, rep)
	})

	Handle(mux, rr, "GET /api/games/{id}/ws", "Subscribe to turn reports", "", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := games.With(r.Context(), id, func(*game.Game) error { return nil }); err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		if app.Hub == nil {
			writeErr(w, http.StatusServiceUnavailable, "live updates unavailable")
			return
		}
		network.ServeWS(app.Hub, w, r, id)
	})

	Handle(mux, rr, "POST /api/games/{id}/save", "Save a game to a slot", `{"slot":"slot1"}`, func(w http.ResponseWriter, r *http.Request) {
		if app.Saves == nil {
			writeErr(w, http.StatusServiceUnavailable, "saves unavailable")
			return
		}
		var body struct {
			Slot string `json:"slot"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		err := games.With(r.Context(), r.PathValue("id"), func(g *game.Game) error {
			return app.Saves.Save(body.Slot, g)
		})
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "slot": body.Slot})
	})

	Handle(mux, rr, "POST /api/saves/{slot}/load", "Resume a saved game as a new session", "", func(w http.ResponseWriter, r *http.Request) {
		if app.Saves == nil {
			writeErr(w, http.StatusServiceUnavailable, "saves unavailable")
			return
		}
		g, err := app.Saves.Load(r.PathValue("slot"), game.Options{Clock: app.Clock, Telemetry: app.Telemetry})
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		g.State.ID = uuid.NewString()
		if err := games.Create(r.Context(), g); err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, ViewOf(g))
	})

	Handle(mux, rr, "GET /api/catalog", "Actions, upgrades and events", "", func(w http.ResponseWriter, r *http.Request) {
		bal := app.Config.Balance
		g, err := game.New(game.Options{ID: "catalog", Seed: "catalog", Balance: &bal, Clock: app.Clock})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"actions":  g.Actions(),
			"upgrades": g.Upgrades(),
			"events":   game.EventIDs(),
			"balance":  bal,
		})
	})

	Handle(mux, rr, "GET /api/scores", "High scores (optional ?seed=&limit=)", "", func(w http.ResponseWriter, r *http.Request) {
		if app.Scores == nil {
			writeJSON(w, http.StatusOK, []score.Entry{})
			return
		}
		limit := app.Config.Server.ScoreboardLimit
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
			limit = n
		}
		entries, err := app.Scores.Top(r.Context(), strings.TrimSpace(r.URL.Query().Get("seed")), limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if entries == nil {
			entries = []score.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	Handle(mux, rr, "GET /api/history", "Run history summary", "", func(w http.ResponseWriter, r *http.Request) {
		if app.History == nil {
			writeErr(w, http.StatusServiceUnavailable, "run history unavailable")
			return
		}
		sum, err := app.History.Summary(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sum)
	})

	Handle(mux, rr, "GET /api/guide", "Player guide sections", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sections": guide.Sections(app.Guide)})
	})

	Handle(mux, rr, "GET /api/stats", "Balance telemetry (optional ?since=RFC3339)", "", func(w http.ResponseWriter, r *http.Request) {
		if app.Telemetry == nil {
			writeErr(w, http.StatusServiceUnavailable, "telemetry unavailable")
			return
		}
		since := time.Time{}
		if raw := r.URL.Query().Get("since"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "since must be RFC3339")
				return
			}
			since = t
		}
		events, err := app.Telemetry.GetEvents(since, nil)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats, err := telemetry.CalculateStats(events, since)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	Handle(mux, rr, "GET /api/routes", "This route list", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rr.List())
	})
}

func (app *App) recordScore(r *http.Request, e score.Entry) {
	if app.Scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	if err := app.Scores.Add(ctx, e); err != nil {
		app.logEvent(r, "error", "score_record_failed", map[string]any{"score_id": e.ID, "error": err.Error()})
		return
	}
	app.logEvent(r, "info", "game_over", map[string]any{
		"seed":    e.Seed,
		"turns":   e.TurnsSurvived,
		"outcome": string(e.Outcome),
		"won":     e.Won,
	})
}

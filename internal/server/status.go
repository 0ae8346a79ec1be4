package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"pdoom/internal/game"
	"pdoom/internal/guide"
	"pdoom/internal/score"
)

type statusData struct {
	BootNow time.Time
	Now     time.Time
	Games   []game.Summary
	Scores  []score.Entry
	Routes  []RouteDoc
}

// StatusPage renders the operator overview at "/".
func StatusPage(d statusData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := func(format string, args ...any) {
			_, _ = fmt.Fprintf(w, format, args...)
		}
		esc := templ.EscapeString

		p(`<!doctype html><html><head><meta charset="utf-8"><title>P(Doom) server</title>`)
		p(`<link rel="stylesheet" href="/static/css/status.css"></head><body>`)
		p(`<h1>P(Doom)</h1><p class="muted">up since %s</p>`, esc(humanize.RelTime(d.BootNow, d.Now, "ago", "from now")))

		p(`<h2>Live games (%d)</h2>`, len(d.Games))
		if len(d.Games) == 0 {
			p(`<p class="muted">No games running.</p>`)
		} else {
			p(`<table><tr><th>id</th><th>seed</th><th>turn</th><th>p(doom)</th><th>money</th><th>status</th></tr>`)
			for _, g := range d.Games {
				status := "playing"
				if g.Over {
					status = string(g.Outcome)
				}
				class := "doom-low"
				if g.Doom >= 70 {
					class = "doom-high"
				}
				p(`<tr><td>%s</td><td>%s</td><td>%d</td><td class="%s">%d</td><td>$%sk</td><td>%s</td></tr>`,
					esc(g.ID), esc(g.Seed), g.Turn, class, g.Doom, esc(humanize.Comma(int64(g.Money))), esc(status))
			}
			p(`</table>`)
		}

		p(`<h2>High scores</h2>`)
		if len(d.Scores) == 0 {
			p(`<p class="muted">Nobody has finished a run yet.</p>`)
		} else {
			p(`<table><tr><th></th><th>player</th><th>seed</th><th>turns</th><th>p(doom)</th><th>outcome</th><th>played</th></tr>`)
			for i, e := range d.Scores {
				p(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
					esc(humanize.Ordinal(i+1)), esc(e.Player), esc(e.Seed), e.TurnsSurvived, e.FinalDoom,
					esc(string(e.Outcome)), esc(humanize.RelTime(e.PlayedAt, d.Now, "ago", "from now")))
			}
			p(`</table>`)
		}

		p(`<h2>API</h2><table><tr><th>method</th><th>pattern</th><th>summary</th></tr>`)
		for _, rt := range d.Routes {
			p(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, esc(rt.Method), esc(rt.Pattern), esc(rt.Summary))
		}
		p(`</table></body></html>`)
		return nil
	})
}

// RegisterStatusPage serves the overview at "/".
func RegisterStatusPage(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		d := statusData{BootNow: app.BootNow, Now: app.now(), Routes: rr.List()}
		if list, err := app.Games.List(r.Context()); err == nil {
			d.Games = list
		}
		if app.Scores != nil {
			if top, err := app.Scores.Top(r.Context(), "", app.Config.Server.ScoreboardLimit); err == nil {
				d.Scores = top
			}
		}
		templ.Handler(StatusPage(d)).ServeHTTP(w, r)
	})
}

// GuidePage wraps the rendered player guide.
func GuidePage(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html><html><head><meta charset="utf-8"><title>P(Doom) player guide</title>`+
			`<link rel="stylesheet" href="/static/css/status.css"></head><body><p><a href="/">back</a></p>`+
			body+`</body></html>`)
		return err
	})
}

// RegisterGuidePage serves the player guide as HTML at "/guide".
func RegisterGuidePage(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	Handle(mux, rr, "GET /guide", "Player guide (HTML)", "", func(w http.ResponseWriter, r *http.Request) {
		body, err := guide.HTML(app.Guide)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		templ.Handler(GuidePage(body)).ServeHTTP(w, r)
	})
}

package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdoom/internal/game"
	"pdoom/internal/player"
	"pdoom/internal/score"
)

// AutosaveSlot is where an unfinished run is kept between sessions.
const AutosaveSlot = "autosave"

type Options struct {
	Game       *game.Game
	Players    *player.FileRepo
	Scores     score.Repository
	Saves      *game.SaveStore
	Guide      string
	Clock      game.Clock
	ScoreLimit int

	// NewGame starts the next run after a game over. Nil disables restarting.
	NewGame func() (*game.Game, error)
}

type App struct {
	opts Options
}

func NewApp(opts Options) (*App, error) {
	if opts.Game == nil {
		return nil, errors.New("tui: game is required")
	}
	if opts.Players == nil {
		return nil, errors.New("tui: player settings are required")
	}
	if opts.Scores == nil {
		opts.Scores = score.NewMemoryRepo()
	}
	if opts.Clock == nil {
		opts.Clock = game.SystemClock
	}
	if opts.ScoreLimit <= 0 {
		opts.ScoreLimit = score.DefaultLimit
	}
	return &App{opts: opts}, nil
}

func (a *App) Run() error {
	m := newModel(a.opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	tipStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("13"))
)

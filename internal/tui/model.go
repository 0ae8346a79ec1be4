package tui

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"pdoom/internal/game"
	"pdoom/internal/guide"
	"pdoom/internal/player"
	"pdoom/internal/score"
)

type screen int

const (
	screenPlay screen = iota
	screenUpgrades
	screenEvent
	screenGuide
	screenLog
	screenScores
	screenHelp
	screenOver
)

// deferKey postpones the popup on screen. It is only read on the event screen.
const deferKey = "f"

type model struct {
	opts     Options
	game     *game.Game
	settings player.Settings
	sections []guide.Section

	screen   screen
	cursor   int
	page     int
	delegate bool
	status   string

	scores   []score.Entry
	recorded bool
	lastRun  score.Entry

	w int
	h int
}

func newModel(opts Options) model {
	m := model{
		opts:     opts,
		game:     opts.Game,
		settings: opts.Players.Get(),
		sections: guide.Sections(opts.Guide),
		w:        100,
		h:        40,
	}
	if m.game.State.Over {
		m.finish()
	} else if len(m.game.State.Pending) > 0 {
		m.screen = screenEvent
	}
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.screen {
		case screenUpgrades:
			return m.updateUpgrades(msg)
		case screenEvent:
			return m.updateEvent(msg)
		case screenGuide:
			return m.updateGuide(msg)
		case screenLog, screenScores, screenHelp:
			return m.updateOverlay(msg)
		case screenOver:
			return m.updateOver(msg)
		}
		return m.updatePlay(msg)
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) command(msg tea.KeyMsg) string {
	cmd, _ := m.settings.CommandFor(msg.String())
	return cmd
}

func (m model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.markStep(player.StepWelcome)
	actions := m.game.Actions()

	switch m.command(msg) {
	case player.CmdQuit:
		return m.quit()
	case player.CmdEndTurn:
		return m.endTurn()
	case player.CmdUndo:
		m.undo()
		return m, nil
	case player.CmdDelegate:
		m.delegate = !m.delegate
		if m.delegate {
			m.status = "Delegation on: the next action goes to your admin staff."
		} else {
			m.status = "Delegation off."
		}
		m.markStep(player.StepDelegation)
		return m, nil
	case player.CmdUpgrades:
		m.screen = screenUpgrades
		m.cursor = 0
		m.markStep(player.StepUpgrades)
		return m, nil
	case player.CmdGuide:
		m.screen = screenGuide
		return m, nil
	case player.CmdLog:
		m.screen = screenLog
		return m, nil
	case player.CmdScores:
		m.loadScores()
		m.screen = screenScores
		return m, nil
	case player.CmdHelp:
		m.screen = screenHelp
		return m, nil
	case player.CmdTips:
		if s, err := m.opts.Players.DismissTutorial(); err == nil {
			m.settings = s
		}
		m.status = "Tips hidden."
		return m, nil
	}

	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(actions)-1 {
			m.cursor++
		}
		return m, nil
	case " ", "space":
		m.selectAction(actions, m.cursor)
		return m, nil
	}
	if n, ok := digit(msg); ok && n <= len(actions) {
		m.cursor = n - 1
		m.selectAction(actions, n-1)
	}
	return m, nil
}

func (m *model) selectAction(actions []game.ActionView, i int) {
	if i < 0 || i >= len(actions) {
		return
	}
	a := actions[i]
	delegated := m.delegate
	m.delegate = false
	if err := m.game.SelectAction(a.ID, delegated); err != nil {
		m.status = err.Error()
		return
	}
	if delegated {
		m.status = fmt.Sprintf("Delegated %s.", a.Name)
	} else {
		m.status = fmt.Sprintf("Selected %s.", a.Name)
	}
	m.markStep(player.StepActionPoints)
}

func (m *model) undo() {
	n := len(m.game.State.Selected)
	if n == 0 {
		m.status = "Nothing to undo."
		return
	}
	if err := m.game.UnselectAction(n - 1); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "Cancelled the last action."
}

func (m model) endTurn() (tea.Model, tea.Cmd) {
	rep, err := m.game.EndTurn()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.markStep(player.StepEndTurn)
	m.delegate = false
	m.status = fmt.Sprintf("Turn %d resolved: money %+d, doom %+d, reputation %+d.",
		rep.Turn, rep.MoneyDelta, rep.DoomDelta, rep.ReputationDelta)

	switch {
	case rep.Over:
		m.finish()
	case len(m.game.State.Pending) > 0:
		m.screen = screenEvent
	}
	return m, nil
}

// finish records the run once and shows the game over screen.
func (m *model) finish() {
	m.screen = screenOver
	if m.recorded {
		return
	}
	m.recorded = true
	ctx := context.Background()
	m.lastRun = score.FromGame(m.game, m.settings.PlayerName, m.opts.Clock.Now())
	if err := m.opts.Scores.Add(ctx, m.lastRun); err != nil {
		m.status = fmt.Sprintf("Could not record score: %v", err)
	}
	if m.opts.Saves != nil {
		_ = m.opts.Saves.Delete(AutosaveSlot)
	}
	m.loadScores()
}

func (m *model) loadScores() {
	top, err := m.opts.Scores.Top(context.Background(), m.game.State.Seed, m.opts.ScoreLimit)
	if err != nil {
		m.status = fmt.Sprintf("Could not load scores: %v", err)
		return
	}
	m.scores = top
}

func (m model) updateUpgrades(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ups := m.game.Upgrades()
	cmd := m.command(msg)
	switch {
	case cmd == player.CmdQuit:
		return m.quit()
	case cmd == player.CmdUpgrades, msg.String() == "esc":
		m.screen = screenPlay
		m.cursor = 0
		return m, nil
	}

	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(ups)-1 {
			m.cursor++
		}
		return m, nil
	case " ", "space", "enter":
		m.buyUpgrade(ups, m.cursor)
		return m, nil
	}
	if n, ok := digit(msg); ok && n <= len(ups) {
		m.cursor = n - 1
		m.buyUpgrade(ups, n-1)
	}
	return m, nil
}

func (m *model) buyUpgrade(ups []game.UpgradeView, i int) {
	if i < 0 || i >= len(ups) {
		return
	}
	if err := m.game.BuyUpgrade(ups[i].ID); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("Bought %s.", ups[i].Name)
}

func (m model) updateEvent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.command(msg) {
	case player.CmdQuit:
		return m.quit()
	case player.CmdGuide:
		m.screen = screenGuide
		return m, nil
	case player.CmdHelp:
		m.screen = screenHelp
		return m, nil
	}

	pending := m.game.PendingEvents()
	if len(pending) == 0 {
		m.screen = screenPlay
		return m, nil
	}
	ev := pending[0]

	if msg.String() == deferKey {
		if err := m.game.DeferEvent(ev.Instance.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Deferred %s.", ev.Name)
		m.markStep(player.StepEvents)
		m.afterEvent()
		return m, nil
	}
	if n, ok := digit(msg); ok && n <= len(ev.Options) {
		if err := m.game.ResolveEvent(ev.Instance.ID, n-1); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s: %s.", ev.Name, ev.Options[n-1])
		m.markStep(player.StepEvents)
		m.afterEvent()
	}
	return m, nil
}

func (m *model) afterEvent() {
	if m.game.State.Over {
		m.finish()
		return
	}
	if len(m.game.State.Pending) == 0 {
		m.screen = screenPlay
	}
}

func (m model) updateGuide(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.command(msg)
	switch {
	case cmd == player.CmdQuit:
		return m.quit()
	case cmd == player.CmdGuide, msg.String() == "esc":
		m.screen = m.home()
		return m, nil
	}
	switch msg.String() {
	case "left", "pgup":
		if m.page > 0 {
			m.page--
		}
	case "right", "pgdown":
		if m.page < len(m.sections)-1 {
			m.page++
		}
	}
	return m, nil
}

// updateOverlay handles the read-only screens. Any of their own keys or esc closes them.
func (m model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.command(msg)
	if cmd == player.CmdQuit {
		return m.quit()
	}
	if msg.String() == "esc" || cmd == player.CmdLog || cmd == player.CmdScores || cmd == player.CmdHelp {
		m.screen = m.home()
	}
	return m, nil
}

func (m model) updateOver(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.command(msg) {
	case player.CmdQuit:
		return m, tea.Quit
	case player.CmdLog:
		m.screen = screenLog
		return m, nil
	case player.CmdGuide:
		m.screen = screenGuide
		return m, nil
	}
	if msg.String() == "n" && m.opts.NewGame != nil {
		g, err := m.opts.NewGame()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.game = g
		m.recorded = false
		m.screen = screenPlay
		m.cursor = 0
		m.status = fmt.Sprintf("New run started with seed %s.", g.State.Seed)
	}
	return m, nil
}

// home is the screen overlays return to.
func (m model) home() screen {
	switch {
	case m.game.State.Over:
		return screenOver
	case len(m.game.State.Pending) > 0:
		return screenEvent
	}
	return screenPlay
}

// quit saves an unfinished run before leaving.
func (m model) quit() (tea.Model, tea.Cmd) {
	if m.opts.Saves != nil && !m.game.State.Over {
		if err := m.opts.Saves.Save(AutosaveSlot, m.game); err != nil {
			m.status = fmt.Sprintf("Save failed: %v", err)
			return m, nil
		}
	}
	return m, tea.Quit
}

func (m *model) markStep(step string) {
	if m.settings.Onboarding.StepsSeen[step] {
		return
	}
	s, err := m.opts.Players.MarkStepSeen(step)
	if err != nil {
		return
	}
	m.settings = s
}

// digit reads keys 1-9 as a one-based index.
func digit(msg tea.KeyMsg) (int, bool) {
	n, err := strconv.Atoi(msg.String())
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"pdoom/internal/opponent"
	"pdoom/internal/player"
	"pdoom/internal/staff"
)

var stepTips = map[string]string{
	player.StepWelcome:      "Welcome, director. Keep p(Doom) down and your lab alive.",
	player.StepActionPoints: "Press a number to queue an action. Each one spends action points now and money at end of turn.",
	player.StepDelegation:   "Hire an admin, then press %s before an action to delegate it.",
	player.StepEndTurn:      "Press %s to end the turn once your actions are queued.",
	player.StepEvents:       "Events may interrupt you. Pick an option with its number.",
	player.StepUpgrades:     "Press %s to buy permanent upgrades for the lab.",
}

func (m model) View() string {
	width := m.w
	if width < 60 {
		width = 60
	}
	pane := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("2")).
		Padding(0, 1).
		Width(width - 4)

	header := pane.Copy().Render(m.headerText())
	var body string
	switch m.screen {
	case screenUpgrades:
		body = m.viewUpgrades()
	case screenEvent:
		body = m.viewEvent()
	case screenGuide:
		body = m.viewGuide()
	case screenLog:
		body = m.viewLog()
	case screenScores:
		body = m.viewScores()
	case screenHelp:
		body = m.viewHelp()
	case screenOver:
		body = m.viewOver()
	default:
		body = m.viewPlay(width - 8)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		pane.Copy().Render(body),
		pane.Copy().Render(m.footerText()),
	)
}

func money(k int) string {
	return "$" + humanize.Comma(int64(k)) + "k"
}

func (m model) headerText() string {
	s := m.game.State
	doom := fmt.Sprintf("p(Doom) %d/%d", s.Doom, s.MaxDoom)
	switch {
	case s.Doom*100 >= s.MaxDoom*75:
		doom = badStyle.Render(doom)
	case s.Doom*100 >= s.MaxDoom*50:
		doom = warnStyle.Render(doom)
	default:
		doom = goodStyle.Render(doom)
	}

	line1 := titleStyle.Render(fmt.Sprintf("P(DOOM)  turn %d  seed %s", s.Turn, s.Seed))
	line2 := fmt.Sprintf("%s  money %s (free %s)  reputation %d  AP %d/%d",
		doom, money(s.Money), money(m.game.Available()), s.Reputation, s.ActionPoints, s.MaxActionPoints)
	line3 := fmt.Sprintf("staff %d (%d researchers, %d admins, %d managers)  compute %d  research %d  papers %d",
		s.Staff.Len(), s.Staff.Count(staff.RoleResearcher), s.Staff.Count(staff.RoleAdmin),
		s.Staff.Count(staff.RoleManager), s.Compute, s.Research, s.Papers)
	return strings.Join([]string{line1, line2, line3}, "\n")
}

func (m model) viewPlay(width int) string {
	var left strings.Builder
	left.WriteString(titleStyle.Render("Actions"))
	if m.delegate {
		left.WriteString(warnStyle.Render("  [delegating]"))
	}
	left.WriteString("\n")
	for i, a := range m.game.Actions() {
		key := " "
		if i < 9 {
			key = fmt.Sprint(i + 1)
		}
		line := fmt.Sprintf("%s %-22s %6s  %d AP", key, a.Name, money(a.Cost), a.APCost)
		if a.Delegatable {
			line += fmt.Sprintf(" (d:%d AP)", a.DelegateAPCost)
		}
		switch {
		case i == m.cursor:
			line = cursorStyle.Render("> " + line)
		case !a.Available:
			line = dimStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		left.WriteString(line + "\n")
	}

	var right strings.Builder
	right.WriteString(titleStyle.Render("Queued") + "\n")
	if len(m.game.State.Selected) == 0 {
		right.WriteString(dimStyle.Render("nothing yet") + "\n")
	}
	for _, sel := range m.game.State.Selected {
		tag := ""
		if sel.Delegated {
			tag = " (delegated)"
		}
		right.WriteString(fmt.Sprintf("- %s %s%s\n", sel.ActionID, money(sel.Cost), tag))
	}
	right.WriteString("\n" + titleStyle.Render("Rival labs") + "\n")
	for _, o := range m.game.State.Opponents {
		right.WriteString(opponentLine(o.View()) + "\n")
	}
	if deferred := m.game.DeferredEvents(); len(deferred) > 0 {
		right.WriteString("\n" + titleStyle.Render("Deferred") + "\n")
		for _, ev := range deferred {
			right.WriteString(fmt.Sprintf("- %s (%d turns)\n", ev.Name, ev.Instance.ExpiresIn))
		}
	}

	col := lipgloss.NewStyle().Width(width / 2)
	top := lipgloss.JoinHorizontal(lipgloss.Top, col.Render(left.String()), col.Render(right.String()))
	return lipgloss.JoinVertical(lipgloss.Left, top, "", titleStyle.Render("Log"), m.tail(6))
}

func opponentLine(v opponent.View) string {
	if !v.Discovered {
		return dimStyle.Render("? " + v.Name)
	}
	unknown := "?"
	intOr := func(p *int) string {
		if p == nil {
			return unknown
		}
		return fmt.Sprint(*p)
	}
	progress := unknown
	if v.Progress != nil {
		progress = fmt.Sprintf("%.1f%%", *v.Progress)
	}
	return fmt.Sprintf("%s  progress %s  researchers %s  compute %s  budget %s",
		v.Name, progress, intOr(v.Researchers), intOr(v.Compute), intOr(v.Budget))
}

func (m model) tail(n int) string {
	msgs := m.game.State.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return strings.Join(msgs, "\n")
}

func (m model) viewUpgrades() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upgrades") + "\n\n")
	for i, u := range m.game.Upgrades() {
		state := money(u.Cost)
		if u.Owned {
			state = "owned"
		}
		line := fmt.Sprintf("%d %-22s %8s  %s", i+1, u.Name, state, u.Description)
		switch {
		case i == m.cursor:
			line = cursorStyle.Render("> " + line)
		case u.Owned || !u.Affordable:
			line = dimStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) viewEvent() string {
	pending := m.game.PendingEvents()
	if len(pending) == 0 {
		return "No events waiting."
	}
	ev := pending[0]
	var b strings.Builder
	b.WriteString(warnStyle.Render(ev.Name) + "\n\n")
	b.WriteString(ev.Description + "\n\n")
	for i, o := range ev.Options {
		b.WriteString(fmt.Sprintf("%d  %s\n", i+1, o))
	}
	if ev.Deferrable {
		b.WriteString(fmt.Sprintf("\n%s  defer this decision\n", deferKey))
	}
	if len(pending) > 1 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n%d more waiting", len(pending)-1)))
	}
	return b.String()
}

func (m model) viewGuide() string {
	if len(m.sections) == 0 {
		return "The player guide is empty."
	}
	page := m.page
	if page >= len(m.sections) {
		page = len(m.sections) - 1
	}
	sec := m.sections[page]
	return fmt.Sprintf("%s\n\n%s\n\n%s",
		titleStyle.Render(sec.Title),
		sec.Body,
		dimStyle.Render(fmt.Sprintf("page %d of %d, left/right to turn", page+1, len(m.sections))))
}

func (m model) viewLog() string {
	n := m.h - 14
	if n < 10 {
		n = 10
	}
	return titleStyle.Render("Message log") + "\n\n" + m.tail(n)
}

func (m model) viewScores() string {
	return titleStyle.Render("High scores for "+m.game.State.Seed) + "\n\n" + m.scoreTable()
}

func (m model) scoreTable() string {
	if len(m.scores) == 0 {
		return dimStyle.Render("No runs recorded for this seed yet.")
	}
	var b strings.Builder
	for i, e := range m.scores {
		line := fmt.Sprintf("%-5s %-16s %3d turns  doom %3d  %-12s %s",
			humanize.Ordinal(i+1), e.Player, e.TurnsSurvived, e.FinalDoom, e.Outcome, humanize.Time(e.PlayedAt))
		if e.ID == m.lastRun.ID {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) viewHelp() string {
	cmds := make([]string, 0, len(m.settings.Keybindings))
	for cmd := range m.settings.Keybindings {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	b.WriteString(fmt.Sprintf("%-12s %s\n", "1-9", "select action / choose option"))
	b.WriteString(fmt.Sprintf("%-12s %s\n", "up/down", "move cursor, space selects"))
	for _, cmd := range cmds {
		b.WriteString(fmt.Sprintf("%-12s %s\n", m.settings.KeyFor(cmd), strings.ReplaceAll(cmd, "_", " ")))
	}
	return b.String()
}

func (m model) viewOver() string {
	s := m.game.State
	headline := badStyle.Render("GAME OVER")
	if s.Outcome.Won() {
		headline = goodStyle.Render("VICTORY")
	}
	var b strings.Builder
	b.WriteString(headline + "\n\n")
	b.WriteString(s.Outcome.Describe() + "\n")
	b.WriteString(fmt.Sprintf("You survived %d turns with p(Doom) at %d.\n\n", s.TurnsSurvived(), s.Doom))
	b.WriteString(titleStyle.Render("High scores") + "\n" + m.scoreTable())
	return b.String()
}

func (m model) footerText() string {
	var lines []string
	if m.status != "" {
		lines = append(lines, m.status)
	}
	if tip := m.tip(); tip != "" {
		lines = append(lines, tipStyle.Render(tip))
	}
	lines = append(lines, dimStyle.Render(m.controls()))
	return strings.Join(lines, "\n")
}

func (m model) tip() string {
	step := m.settings.Onboarding.NextStep()
	text, ok := stepTips[step]
	if !ok {
		return ""
	}
	switch step {
	case player.StepDelegation:
		text = fmt.Sprintf(text, m.settings.KeyFor(player.CmdDelegate))
	case player.StepEndTurn:
		text = fmt.Sprintf(text, m.settings.KeyFor(player.CmdEndTurn))
	case player.StepUpgrades:
		text = fmt.Sprintf(text, m.settings.KeyFor(player.CmdUpgrades))
	}
	return fmt.Sprintf("Tip: %s (%s hides tips)", text, m.settings.KeyFor(player.CmdTips))
}

func (m model) controls() string {
	k := m.settings.KeyFor
	switch m.screen {
	case screenOver:
		if m.opts.NewGame != nil {
			return fmt.Sprintf("n new run  %s log  %s quit", k(player.CmdLog), k(player.CmdQuit))
		}
		return fmt.Sprintf("%s log  %s quit", k(player.CmdLog), k(player.CmdQuit))
	case screenEvent:
		return fmt.Sprintf("1-9 choose  %s guide  %s save and quit", k(player.CmdGuide), k(player.CmdQuit))
	case screenPlay:
		return fmt.Sprintf("%s end turn  %s undo  %s delegate  %s upgrades  %s help  %s save and quit",
			k(player.CmdEndTurn), k(player.CmdUndo), k(player.CmdDelegate), k(player.CmdUpgrades),
			k(player.CmdHelp), k(player.CmdQuit))
	}
	return "esc back"
}

package player

// Commands a keybinding can drive.
const (
	CmdEndTurn  = "end_turn"
	CmdUndo     = "undo"
	CmdDelegate = "delegate"
	CmdUpgrades = "upgrades"
	CmdGuide    = "guide"
	CmdLog      = "log"
	CmdScores   = "scores"
	CmdHelp     = "help"
	CmdTips     = "dismiss_tips"
	CmdQuit     = "quit"
)

// Onboarding steps, in the order the tutorial shows them.
const (
	StepWelcome      = "welcome"
	StepActionPoints = "action_points"
	StepDelegation   = "delegation"
	StepEndTurn      = "end_turn"
	StepEvents       = "events"
	StepUpgrades     = "upgrades"
)

var Steps = []string{StepWelcome, StepActionPoints, StepDelegation, StepEndTurn, StepEvents, StepUpgrades}

type Onboarding struct {
	TutorialEnabled bool            `json:"tutorialEnabled"`
	Dismissed       bool            `json:"dismissed"`
	StepsSeen       map[string]bool `json:"stepsSeen"`
}

// NextStep is the first unseen step, or "" when the tutorial is done.
func (o Onboarding) NextStep() string {
	if !o.TutorialEnabled || o.Dismissed {
		return ""
	}
	for _, s := range Steps {
		if !o.StepsSeen[s] {
			return s
		}
	}
	return ""
}

type Settings struct {
	PlayerName   string            `json:"playerName"`
	SoundEnabled bool              `json:"soundEnabled"`
	Keybindings  map[string]string `json:"keybindings"`
	Onboarding   Onboarding        `json:"onboarding"`
}

// KeyFor returns the key bound to cmd.
func (s Settings) KeyFor(cmd string) string {
	return s.Keybindings[cmd]
}

// CommandFor maps a pressed key back to its command.
func (s Settings) CommandFor(key string) (string, bool) {
	for cmd, k := range s.Keybindings {
		if k == key {
			return cmd, true
		}
	}
	return "", false
}

func DefaultKeybindings() map[string]string {
	return map[string]string{
		CmdEndTurn:  "enter",
		CmdUndo:     "backspace",
		CmdDelegate: "d",
		CmdUpgrades: "u",
		CmdGuide:    "g",
		CmdLog:      "l",
		CmdScores:   "s",
		CmdHelp:     "?",
		CmdTips:     "x",
		CmdQuit:     "q",
	}
}

func defaultSettings() Settings {
	return Settings{
		PlayerName:   "Lab Director",
		SoundEnabled: true,
		Keybindings:  DefaultKeybindings(),
		Onboarding: Onboarding{
			TutorialEnabled: true,
			StepsSeen:       map[string]bool{},
		},
	}
}

// normalizeSettings fills anything missing from a loaded file with defaults.
func normalizeSettings(s Settings) Settings {
	out := defaultSettings()
	if s.PlayerName != "" {
		out.PlayerName = s.PlayerName
	}
	out.SoundEnabled = s.SoundEnabled
	for k, v := range s.Keybindings {
		if v != "" {
			out.Keybindings[k] = v
		}
	}
	out.Onboarding.TutorialEnabled = s.Onboarding.TutorialEnabled
	out.Onboarding.Dismissed = s.Onboarding.Dismissed
	for k, v := range s.Onboarding.StepsSeen {
		if v {
			out.Onboarding.StepsSeen[k] = true
		}
	}
	return out
}

func cloneSettings(s Settings) Settings {
	out := s
	out.Keybindings = make(map[string]string, len(s.Keybindings))
	for k, v := range s.Keybindings {
		out.Keybindings[k] = v
	}
	out.Onboarding.StepsSeen = make(map[string]bool, len(s.Onboarding.StepsSeen))
	for k, v := range s.Onboarding.StepsSeen {
		out.Onboarding.StepsSeen[k] = v
	}
	return out
}

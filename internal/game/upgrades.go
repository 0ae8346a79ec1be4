package game

import (
	"fmt"

	"pdoom/internal/telemetry"
)

const (
	UpgradeAccountingSoftware = "accounting_software"
	UpgradeComfyChairs        = "comfy_chairs"
	UpgradeSecureCloud        = "secure_cloud"
	UpgradeEventAlertSystem   = "event_alert_system"
	UpgradeBetterComputers    = "better_computers"
)

// Upgrade is a one-off purchase. It costs money but no action points.
type Upgrade struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

type UpgradeView struct {
	Upgrade
	Owned      bool `json:"owned"`
	Affordable bool `json:"affordable"`
}

func catalogUpgrades() []Upgrade {
	return []Upgrade{
		{
			ID:          UpgradeAccountingSoftware,
			Name:        "Accounting Software",
			Description: "Keeps the books clean. Big spending no longer draws board oversight and audit risk fades.",
			Cost:        50,
		},
		{
			ID:          UpgradeComfyChairs,
			Name:        "Comfy Chairs",
			Description: "Happier staff burn out far less often.",
			Cost:        15,
		},
		{
			ID:          UpgradeSecureCloud,
			Name:        "Secure Cloud",
			Description: "Halves the chance that espionage is traced back to you.",
			Cost:        40,
		},
		{
			ID:          UpgradeEventAlertSystem,
			Name:        "Event Alert System",
			Description: "Lets you postpone some decisions for a few turns.",
			Cost:        30,
		},
		{
			ID:          UpgradeBetterComputers,
			Name:        "Better Computers",
			Description: "Research output increased by a quarter.",
			Cost:        120,
		},
	}
}

func indexUpgrades(list []Upgrade) map[string]Upgrade {
	m := make(map[string]Upgrade, len(list))
	for _, u := range list {
		m[u.ID] = u
	}
	return m
}

func (g *Game) Upgrades() []UpgradeView {
	list := catalogUpgrades()
	out := make([]UpgradeView, 0, len(list))
	for _, u := range list {
		out = append(out, UpgradeView{
			Upgrade:    u,
			Owned:      g.State.Upgrades[u.ID],
			Affordable: g.Available() >= u.Cost,
		})
	}
	return out
}

// BuyUpgrade pays for an upgrade immediately. The cost counts towards this turn's spending.
func (g *Game) BuyUpgrade(id string) error {
	const what = "buy upgrade"
	if g.State.Over {
		return g.reject(what, ErrGameOver)
	}
	u, ok := g.upgrades[id]
	if !ok {
		return g.reject(what, fmt.Errorf("%w %q", ErrUnknownUpgrade, id))
	}
	if g.State.Upgrades[id] {
		return g.reject(what, fmt.Errorf("%s: %w", u.Name, ErrUpgradeOwned))
	}
	if g.Available() < u.Cost {
		return g.reject(what, fmt.Errorf("%s costs $%dk: %w", u.Name, u.Cost, ErrInsufficientFunds))
	}

	g.State.Money -= u.Cost
	g.State.SpendThisTurn += u.Cost
	g.State.Upgrades[id] = true
	g.logf("Purchased %s.", u.Name)
	g.record(telemetry.EventUpgradePurchased, telemetry.EventMetadata{"upgrade": id, "cost": u.Cost})
	g.touch()
	return nil
}

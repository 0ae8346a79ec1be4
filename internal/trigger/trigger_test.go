package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_RejectsBadSource(t *testing.T) {
	_, err := Compile("Money <")
	require.Error(t, err)

	_, err = Compile("Money + 1")
	require.Error(t, err, "non-boolean expressions are rejected")

	_, err = Compile("Nonexistent > 3")
	require.Error(t, err)
}

func TestPredicate_Eval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		env  Env
		want bool
	}{
		{"threshold", "Staff >= ManagerUnlockStaff", Env{Staff: 9, ManagerUnlockStaff: 9}, true},
		{"roll", "Money < 60 && Roll < 0.25", Env{Money: 50, Roll: 0.3}, false},
		{"upgrade helper", `!HasUpgrade("accounting_software") && SpendThisTurn > BoardSpendThreshold`,
			Env{SpendThisTurn: 200, BoardSpendThreshold: 150, Upgrades: map[string]bool{}}, true},
		{"upgrade owned", `!HasUpgrade("accounting_software")`,
			Env{Upgrades: map[string]bool{"accounting_software": true}}, false},
		{"ternary", `Roll < (HasUpgrade("comfy_chairs") ? 0.04 : 0.10)`,
			Env{Roll: 0.05, Upgrades: map[string]bool{"comfy_chairs": true}}, false},
		{"milestone", `Milestone("manager_unlock")`, Env{Milestones: map[string]bool{"manager_unlock": true}}, true},
		{"nil maps", `HasUpgrade("x") || Milestone("y")`, Env{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Compile(tc.src)
			require.NoError(t, err)
			got, err := p.Eval(tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("rich", "Money > 100"))
	require.Error(t, s.Add("broken", "Money >"))
	assert.Equal(t, 1, s.Len())

	ok, err := s.Eval("rich", Env{Money: 101})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Eval("missing", Env{})
	require.NoError(t, err)
	assert.False(t, ok)
}

package staff

type Role string

const (
	RoleGeneralist Role = "generalist"
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGeneralist, RoleResearcher, RoleAdmin, RoleManager:
		return true
	default:
		return false
	}
}

// Blob is one employee or manager on the office floor.
type Blob struct {
	ID        int     `json:"id"`
	Role      Role    `json:"role"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	HiredTurn int     `json:"hired_turn"`

	// ManagerID is 0 for founder-managed employees and for managers themselves.
	ManagerID  int  `json:"manager_id"`
	Managed    bool `json:"managed"`
	HasCompute bool `json:"has_compute"`
	Productive bool `json:"productive"`
}

func (b Blob) IsManager() bool { return b.Role == RoleManager }

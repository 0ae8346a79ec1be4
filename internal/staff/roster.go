package staff

import "sort"

// Roster is the lab's full staff list in hire order.
type Roster struct {
	Blobs  []Blob `json:"blobs"`
	NextID int    `json:"next_id"`
}

func (r *Roster) Hire(role Role, turn int) Blob {
	if !role.Valid() {
		role = RoleGeneralist
	}
	r.NextID++
	b := Blob{ID: r.NextID, Role: role, HiredTurn: turn}
	r.Blobs = append(r.Blobs, b)
	return b
}

func (r *Roster) Len() int { return len(r.Blobs) }

func (r *Roster) Count(role Role) int {
	n := 0
	for _, b := range r.Blobs {
		if b.Role == role {
			n++
		}
	}
	return n
}

// Employees returns every non-manager blob in hire order.
func (r *Roster) Employees() []Blob {
	out := make([]Blob, 0, len(r.Blobs))
	for _, b := range r.Blobs {
		if !b.IsManager() {
			out = append(out, b)
		}
	}
	return out
}

// Quit removes up to n blobs, most recently hired employees first and managers last.
// It returns the removed blobs.
func (r *Roster) Quit(n int) []Blob {
	if n <= 0 || len(r.Blobs) == 0 {
		return nil
	}
	var removed []Blob
	for pass := 0; pass < 2 && len(removed) < n; pass++ {
		wantManager := pass == 1
		for i := len(r.Blobs) - 1; i >= 0 && len(removed) < n; i-- {
			if r.Blobs[i].IsManager() != wantManager {
				continue
			}
			removed = append(removed, r.Blobs[i])
			r.Blobs = append(r.Blobs[:i], r.Blobs[i+1:]...)
		}
	}
	return removed
}

// QuitRole removes the most recently hired blob with the given role.
func (r *Roster) QuitRole(role Role) (Blob, bool) {
	for i := len(r.Blobs) - 1; i >= 0; i-- {
		if r.Blobs[i].Role == role {
			b := r.Blobs[i]
			r.Blobs = append(r.Blobs[:i], r.Blobs[i+1:]...)
			return b, true
		}
	}
	return Blob{}, false
}

// AssignManagers gives the first founding employees to the founders and the rest to
// managers, span each, in hire order. Employees left over are unmanaged.
// It returns the number of unmanaged employees.
func (r *Roster) AssignManagers(span, founding int) int {
	if span < 0 {
		span = 0
	}
	var managers []int
	for _, b := range r.Blobs {
		if b.IsManager() {
			managers = append(managers, b.ID)
		}
	}
	sort.Ints(managers)

	load := make(map[int]int, len(managers))
	mi := 0
	founders := 0
	unmanaged := 0
	for i := range r.Blobs {
		b := &r.Blobs[i]
		b.ManagerID = 0
		if b.IsManager() {
			b.Managed = true
			continue
		}
		if founders < founding {
			founders++
			b.Managed = true
			continue
		}
		for mi < len(managers) && load[managers[mi]] >= span {
			mi++
		}
		if mi < len(managers) {
			b.ManagerID = managers[mi]
			b.Managed = true
			load[managers[mi]]++
			continue
		}
		b.Managed = false
		unmanaged++
	}
	return unmanaged
}

// AllocateCompute hands one unit of compute to each managed employee in hire order
// and marks who is productive this turn. It returns the units used.
func (r *Roster) AllocateCompute(units int) int {
	used := 0
	for i := range r.Blobs {
		b := &r.Blobs[i]
		b.HasCompute = false
		b.Productive = false
		if b.IsManager() || !b.Managed {
			continue
		}
		if used < units {
			b.HasCompute = true
			b.Productive = true
			used++
		}
	}
	return used
}

func (r *Roster) Productive() []Blob {
	var out []Blob
	for _, b := range r.Blobs {
		if b.Productive {
			out = append(out, b)
		}
	}
	return out
}

// Layout places managers on the top row and employees in a grid below,
// grouped under their manager.
func (r *Roster) Layout(columns int, spacing float64) {
	if columns <= 0 {
		columns = 8
	}
	if spacing <= 0 {
		spacing = 1
	}

	order := make([]int, 0, len(r.Blobs))
	col := 0
	for i := range r.Blobs {
		if r.Blobs[i].IsManager() {
			r.Blobs[i].X = float64(col) * spacing
			r.Blobs[i].Y = 0
			col++
		} else {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return r.Blobs[order[a]].ManagerID < r.Blobs[order[b]].ManagerID
	})
	for n, i := range order {
		r.Blobs[i].X = float64(n%columns) * spacing
		r.Blobs[i].Y = float64(n/columns+1) * spacing
	}
}

package model

// Directory holds the active and inactive player collections of one lobby.
// A name appears in at most one collection. Directory performs no I/O and
// is not safe for concurrent use; the owning controller serializes access.
type Directory struct {
	Capacity int
	Started  bool
	Active   []Player // participating, receives broadcasts
	Inactive []Player // known by name, no live connection, may rejoin
}

// NewDirectory creates an empty directory with a fixed capacity
func NewDirectory(capacity int) *Directory {
	return &Directory{
		Capacity: capacity,
		Active:   []Player{},
		Inactive: []Player{},
	}
}

// IsActive reports whether name is in the active collection
func (d *Directory) IsActive(name PlayerName) bool {
	return indexOf(d.Active, name) >= 0
}

// IsInactive reports whether name is in the inactive collection
func (d *Directory) IsInactive(name PlayerName) bool {
	return indexOf(d.Inactive, name) >= 0
}

// Occupancy returns the number of known players, active and inactive
func (d *Directory) Occupancy() int {
	return len(d.Active) + len(d.Inactive)
}

// IsAcceptingPlayers reports whether a new name may register.
// Inactive players occupy capacity until the round starts.
func (d *Directory) IsAcceptingPlayers() bool {
	return !d.Started && d.Occupancy() < d.Capacity
}

// AddActive appends a new player to the active collection
func (d *Directory) AddActive(p Player) {
	d.Active = append(d.Active, p)
}

// Reactivate moves an inactive player back to the end of the active
// collection with a new connection. Returns false if name is not inactive.
func (d *Directory) Reactivate(name PlayerName, conn ConnID) bool {
	i := indexOf(d.Inactive, name)
	if i < 0 {
		return false
	}
	d.Inactive = append(d.Inactive[:i], d.Inactive[i+1:]...)
	d.Active = append(d.Active, Player{Name: name, Conn: conn})
	return true
}

// Deactivate moves every named active player to the end of the inactive
// collection in one step, keeping their relative order.
func (d *Directory) Deactivate(names []PlayerName) []Player {
	if len(names) == 0 {
		return nil
	}
	set := nameSet(names)
	var moved []Player
	remaining := make([]Player, 0, len(d.Active))
	for _, p := range d.Active {
		if _, ok := set[p.Name]; ok {
			moved = append(moved, p)
			continue
		}
		remaining = append(remaining, p)
	}
	d.Active = remaining
	d.Inactive = append(d.Inactive, moved...)
	return moved
}

// RetainActive drops every active player whose name is not in names.
// Dropped players are discarded, not moved to inactive.
func (d *Directory) RetainActive(names []PlayerName) {
	set := nameSet(names)
	kept := make([]Player, 0, len(d.Active))
	for _, p := range d.Active {
		if _, ok := set[p.Name]; ok {
			kept = append(kept, p)
		}
	}
	d.Active = kept
}

// ClearInactive forgets every inactive player
func (d *Directory) ClearInactive() {
	d.Inactive = []Player{}
}

// MarkStarted flags the round as started. It is never reset.
func (d *Directory) MarkStarted() {
	d.Started = true
}

// ActivePlayers returns a copy of the active collection
func (d *Directory) ActivePlayers() []Player {
	out := make([]Player, len(d.Active))
	copy(out, d.Active)
	return out
}

// ActiveNames returns the roster: active names in order
func (d *Directory) ActiveNames() []PlayerName {
	return PlayerNames(d.Active)
}

// InactiveNames returns inactive names in order
func (d *Directory) InactiveNames() []PlayerName {
	return PlayerNames(d.Inactive)
}

func indexOf(players []Player, name PlayerName) int {
	for i, p := range players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func nameSet(names []PlayerName) map[PlayerName]struct{} {
	set := make(map[PlayerName]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

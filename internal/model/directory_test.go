package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"
)

type DirectorySuite struct {
	suite.Suite
	dir *Directory
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.dir = NewDirectory(3)
}

func player(name string) Player {
	return Player{Name: PlayerName(name), Conn: ConnID("conn-" + name)}
}

func (s *DirectorySuite) TestNewDirectoryIsEmptyAndAccepting() {
	s.Equal(3, s.dir.Capacity)
	s.False(s.dir.Started)
	s.Empty(s.dir.Active)
	s.Empty(s.dir.Inactive)
	s.True(s.dir.IsAcceptingPlayers())
}

func (s *DirectorySuite) TestAddActive() {
	s.dir.AddActive(player("Al"))
	s.dir.AddActive(player("Bo"))

	s.True(s.dir.IsActive("Al"))
	s.False(s.dir.IsInactive("Al"))
	s.Equal([]PlayerName{"Al", "Bo"}, s.dir.ActiveNames())
	s.Equal(2, s.dir.Occupancy())
}

func (s *DirectorySuite) TestInactivePlayersOccupyCapacity() {
	s.dir.AddActive(player("Al"))
	s.dir.AddActive(player("Bo"))
	s.dir.AddActive(player("Cy"))
	s.False(s.dir.IsAcceptingPlayers())

	s.dir.Deactivate([]PlayerName{"Cy"})

	s.Equal(3, s.dir.Occupancy())
	s.False(s.dir.IsAcceptingPlayers())
}

func (s *DirectorySuite) TestNotAcceptingOnceStarted() {
	s.dir.MarkStarted()
	s.Equal(0, s.dir.Occupancy())
	s.False(s.dir.IsAcceptingPlayers())
}

func (s *DirectorySuite) TestDeactivateKeepsOrder() {
	for _, n := range []string{"Al", "Bo", "Cy"} {
		s.dir.AddActive(player(n))
	}

	moved := s.dir.Deactivate([]PlayerName{"Cy", "Al"})

	s.Equal([]PlayerName{"Al", "Cy"}, PlayerNames(moved))
	s.Equal([]PlayerName{"Bo"}, s.dir.ActiveNames())
	s.Equal([]PlayerName{"Al", "Cy"}, s.dir.InactiveNames())
}

func (s *DirectorySuite) TestDeactivateUnknownNameIsIgnored() {
	s.dir.AddActive(player("Al"))

	moved := s.dir.Deactivate([]PlayerName{"Zed"})

	s.Empty(moved)
	s.Equal([]PlayerName{"Al"}, s.dir.ActiveNames())
	s.Empty(s.dir.Inactive)
}

func (s *DirectorySuite) TestDeactivateNothing() {
	s.dir.AddActive(player("Al"))
	s.Nil(s.dir.Deactivate(nil))
	s.Equal(1, len(s.dir.Active))
}

func (s *DirectorySuite) TestReactivateReplacesConnection() {
	s.dir.AddActive(player("Al"))
	s.dir.AddActive(player("Bo"))
	s.dir.Deactivate([]PlayerName{"Al"})

	ok := s.dir.Reactivate("Al", "conn-new")

	s.True(ok)
	s.Equal([]PlayerName{"Bo", "Al"}, s.dir.ActiveNames())
	s.Empty(s.dir.Inactive)
	s.Equal(ConnID("conn-new"), s.dir.Active[1].Conn)
}

func (s *DirectorySuite) TestReactivateUnknownName() {
	s.dir.AddActive(player("Al"))

	s.False(s.dir.Reactivate("Al", "conn-x"))
	s.False(s.dir.Reactivate("Zed", "conn-x"))
	s.Equal([]PlayerName{"Al"}, s.dir.ActiveNames())
}

func (s *DirectorySuite) TestReactivateIgnoresCapacity() {
	s.dir.AddActive(player("Al"))
	s.dir.Deactivate([]PlayerName{"Al"})
	s.dir.MarkStarted()

	s.True(s.dir.Reactivate("Al", "conn-2"))
	s.True(s.dir.IsActive("Al"))
}

func (s *DirectorySuite) TestRetainActiveDiscardsOthers() {
	for _, n := range []string{"Al", "Bo", "Cy"} {
		s.dir.AddActive(player(n))
	}

	s.dir.RetainActive([]PlayerName{"Cy", "Al", "Zed"})

	s.Equal([]PlayerName{"Al", "Cy"}, s.dir.ActiveNames())
	s.Empty(s.dir.Inactive)
}

func (s *DirectorySuite) TestClearInactive() {
	s.dir.AddActive(player("Al"))
	s.dir.Deactivate([]PlayerName{"Al"})

	s.dir.ClearInactive()

	s.Empty(s.dir.Inactive)
	s.NotNil(s.dir.Inactive)
}

func (s *DirectorySuite) TestActivePlayersReturnsCopy() {
	s.dir.AddActive(player("Al"))

	players := s.dir.ActivePlayers()
	players[0].Name = "Mallory"

	s.Equal([]PlayerName{"Al"}, s.dir.ActiveNames())
}

func TestPlayerNamesOfEmptyIsEmptyNotNil(t *testing.T) {
	names := PlayerNames(nil)
	require.NotNil(t, names)
	assert.Empty(t, names)
}

// directoryOp applies one random mutation, mirroring how the lobby controller
// drives the directory.
func directoryOp(t *rapid.T, d *Directory, pool []PlayerName) {
	name := rapid.SampledFrom(pool).Draw(t, "name")
	switch rapid.IntRange(0, 4).Draw(t, "op") {
	case 0:
		if !d.IsActive(name) && !d.IsInactive(name) && d.IsAcceptingPlayers() {
			d.AddActive(Player{Name: name, Conn: ConnID(name)})
		}
	case 1:
		d.Reactivate(name, ConnID(fmt.Sprintf("%s-re", name)))
	case 2:
		d.Deactivate(rapid.SliceOfDistinct(rapid.SampledFrom(pool), func(n PlayerName) PlayerName { return n }).Draw(t, "names"))
	case 3:
		d.RetainActive(rapid.SliceOf(rapid.SampledFrom(pool)).Draw(t, "keep"))
	case 4:
		d.ClearInactive()
		d.MarkStarted()
	}
}

func TestPropertyNamesStayUniqueAndDisjoint(t *testing.T) {
	pool := []PlayerName{"Al", "Bo", "Cy", "Di", "Ed", "Fa"}
	rapid.Check(t, func(t *rapid.T) {
		d := NewDirectory(rapid.IntRange(1, 5).Draw(t, "capacity"))
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			directoryOp(t, d, pool)

			seen := make(map[PlayerName]bool)
			for _, p := range append(d.ActivePlayers(), d.Inactive...) {
				if seen[p.Name] {
					t.Fatalf("name %q appears twice after step %d", p.Name, i)
				}
				seen[p.Name] = true
			}
		}
	})
}

func TestPropertyRegistrationNeverExceedsCapacity(t *testing.T) {
	pool := []PlayerName{"Al", "Bo", "Cy", "Di", "Ed", "Fa"}
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 5).Draw(t, "capacity")
		d := NewDirectory(capacity)
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom(pool).Draw(t, "name")
			if rapid.Bool().Draw(t, "register") {
				if !d.IsActive(name) && !d.IsInactive(name) && d.IsAcceptingPlayers() {
					d.AddActive(Player{Name: name, Conn: ConnID(name)})
				}
			} else {
				d.Deactivate([]PlayerName{name})
			}
			if d.Occupancy() > capacity {
				t.Fatalf("occupancy %d exceeds capacity %d", d.Occupancy(), capacity)
			}
		}
	})
}

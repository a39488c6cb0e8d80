package bracket

// Side selects one of the two slots of a matchup.
type Side int

const (
	SideA Side = 1
	SideB Side = 2
)

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

func (s Side) String() string {
	switch s {
	case SideA:
		return "a"
	case SideB:
		return "b"
	default:
		return "invalid"
	}
}

// ParseSide accepts the form values used by the matchup screen.
func ParseSide(v string) (Side, bool) {
	switch v {
	case "a", "A", "1":
		return SideA, true
	case "b", "B", "2":
		return SideB, true
	}
	return 0, false
}

// Outcome is either undecided (the zero value) or decided for one side.
type Outcome struct {
	side Side
}

func Undecided() Outcome {
	return Outcome{}
}

func Decided(side Side) Outcome {
	if !side.Valid() {
		panic("bracket: decided outcome needs side a or b")
	}
	return Outcome{side: side}
}

func (o Outcome) IsDecided() bool {
	return o.side.Valid()
}

func (o Outcome) Side() (Side, bool) {
	return o.side, o.side.Valid()
}

type Matchup struct {
	A      MediaItem
	B      MediaItem
	Winner Outcome
}

func NewMatchup(a, b MediaItem) Matchup {
	return Matchup{A: a, B: b, Winner: Undecided()}
}

func (m Matchup) IsDecided() bool {
	return m.Winner.IsDecided()
}

// Decide returns a copy of m won by side. A decided matchup is returned as is.
func (m Matchup) Decide(side Side) Matchup {
	if m.IsDecided() {
		return m
	}
	m.Winner = Decided(side)
	return m
}

func (m Matchup) Item(side Side) MediaItem {
	if side == SideB {
		return m.B
	}
	return m.A
}

func (m Matchup) WinnerItem() (MediaItem, bool) {
	side, ok := m.Winner.Side()
	if !ok {
		return MediaItem{}, false
	}
	return m.Item(side), true
}

func (m Matchup) LoserItem() (MediaItem, bool) {
	side, ok := m.Winner.Side()
	if !ok {
		return MediaItem{}, false
	}
	if side == SideA {
		return m.B, true
	}
	return m.A, true
}

func (m Matchup) IsWinner(side Side) bool {
	s, ok := m.Winner.Side()
	return ok && s == side
}

func (m Matchup) IsLoser(side Side) bool {
	s, ok := m.Winner.Side()
	return ok && s != side
}

package game

// View is the read model handed to the presentation layer.
type View struct {
	ID        string       `json:"id"`
	Numbers   []NumberView `json:"numbers"`
	Slots     []SlotView   `json:"slots"`
	Tokens    []string     `json:"tokens"`
	Statement string       `json:"statement"`
	Holding   string       `json:"holding,omitempty"`
	Palette   []Symbol     `json:"palette"`
	Moves     int          `json:"moves"`
	Outcome   Outcome      `json:"outcome"`
}

type NumberView struct {
	ID          int    `json:"id"`
	Original    int    `json:"original"`
	Display     string `json:"display"`
	Transformed bool   `json:"transformed"`
}

// SlotView mirrors the recursive slot tree. Position is set only for
// top-level slots.
type SlotView struct {
	ID       SlotID        `json:"id"`
	Position *int          `json:"position,omitempty"`
	Operator *OperatorView `json:"operator,omitempty"`
	Left     *SlotView     `json:"left,omitempty"`
	Right    *SlotView     `json:"right,omitempty"`
}

type OperatorView struct {
	ID     OperatorID `json:"id"`
	Symbol Symbol     `json:"symbol"`
	Class  string     `json:"class"`
}

// Snapshot captures the current state for rendering.
func (g *Game) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		ID:      g.ID,
		Palette: Palette,
		Moves:   g.moves,
		Outcome: g.outcome,
	}
	if g.held != nil {
		v.Holding = g.held.Class().String()
	}
	for _, n := range g.eq.Numbers {
		v.Numbers = append(v.Numbers, NumberView{
			ID:          n.ID,
			Original:    n.Original,
			Display:     n.String(),
			Transformed: n.Transformed(),
		})
	}
	for _, s := range g.eq.Slots {
		v.Slots = append(v.Slots, *slotView(s))
	}
	toks, _ := Flatten(g.eq)
	v.Tokens = TokenStrings(toks)
	v.Statement = JoinTokens(toks)
	return v
}

func slotView(s *Slot) *SlotView {
	if s == nil {
		return nil
	}
	sv := &SlotView{ID: s.ID}
	if s.Pos != NoPosition {
		pos := s.Pos
		sv.Position = &pos
	}
	if s.Op != nil {
		sv.Operator = &OperatorView{ID: s.Op.ID, Symbol: s.Op.Symbol, Class: s.Op.Class().String()}
	}
	sv.Left = slotView(s.Left)
	sv.Right = slotView(s.Right)
	return sv
}

package mapview

// ViewMode selects which overlay is mounted.
type ViewMode int

const (
	Boundaries ViewMode = iota
	Choropleth
)

func (m ViewMode) String() string {
	if m == Choropleth {
		return "choropleth"
	}
	return "boundaries"
}

// Other returns the mode a toggle switches to.
func (m ViewMode) Other() ViewMode {
	if m == Choropleth {
		return Boundaries
	}
	return Choropleth
}

// ToggleLabel is the caption of the button that switches away from m.
func (m ViewMode) ToggleLabel() string {
	if m == Choropleth {
		return "Show Boundaries"
	}
	return "Show Choropleth"
}

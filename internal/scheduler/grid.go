package scheduler

// Grid describes the weekly timetable geometry: Days columns of PeriodsPerDay
// rows. A slot is an integer in [0, Days*PeriodsPerDay) encoding one
// (day, period) cell.
type Grid struct {
	Days          int
	PeriodsPerDay int
}

// SlotCount returns the number of cells in the weekly grid.
func (g Grid) SlotCount() int {
	return g.Days * g.PeriodsPerDay
}

// Slot encodes a (day, period) cell into its slot number.
func (g Grid) Slot(day, period int) int {
	return day*g.PeriodsPerDay + period
}

// DayPeriod decodes a slot number back into its (day, period) cell.
func (g Grid) DayPeriod(slot int) (int, int) {
	return slot / g.PeriodsPerDay, slot % g.PeriodsPerDay
}

// ValidSlot reports whether slot falls inside the grid.
func (g Grid) ValidSlot(slot int) bool {
	return slot >= 0 && slot < g.SlotCount()
}

package models

// HourBlockerCell is one (day, period) row of the hour blocker table.
type HourBlockerCell struct {
	Day     int  `db:"day" json:"day"`
	Period  int  `db:"period" json:"period"`
	Blocked bool `db:"blocked" json:"blocked"`
}

// HourBlocker disables specific (day, period) cells for every teacher,
// independent of any teacher's own availability.
type HourBlocker struct {
	days    int
	periods int
	blocked map[[2]int]bool
}

// NewHourBlocker returns a blocker for a days x periods grid with every cell
// open.
func NewHourBlocker(days, periods int) *HourBlocker {
	return &HourBlocker{
		days:    days,
		periods: periods,
		blocked: make(map[[2]int]bool),
	}
}

// Block disables the given cell. Out-of-grid cells are ignored.
func (h *HourBlocker) Block(day, period int) {
	if day < 0 || day >= h.days || period < 0 || period >= h.periods {
		return
	}
	h.blocked[[2]int{day, period}] = true
}

// IsBlocked reports whether the cell is globally disabled. Cells outside the
// grid count as blocked.
func (h *HourBlocker) IsBlocked(day, period int) bool {
	if day < 0 || day >= h.days || period < 0 || period >= h.periods {
		return true
	}
	return h.blocked[[2]int{day, period}]
}

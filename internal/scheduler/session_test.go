package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchedulePlaceAndRemove(t *testing.T) {
	schedule := NewSchedule()
	a := testSession("a", "math", "t1", 1)
	b := testSession("b", "english", "t2", 1)

	schedule.Place(a, 3)
	schedule.Place(b, 3)
	require.Equal(t, 2, schedule.Len())
	require.Equal(t, 2, schedule.Occupancy(3))

	slot, ok := schedule.SlotOf("a")
	require.True(t, ok)
	require.Equal(t, 3, slot)

	removedFrom, ok := schedule.Remove(a)
	require.True(t, ok)
	require.Equal(t, 3, removedFrom)
	require.Equal(t, 1, schedule.Len())

	_, ok = schedule.Remove(a)
	require.False(t, ok)

	require.Equal(t, []*Session{b}, schedule.SessionsAt(3))
}

func TestScheduleSlotsSorted(t *testing.T) {
	schedule := NewSchedule()
	schedule.Place(testSession("a", "math", "t1", 1), 5)
	schedule.Place(testSession("b", "english", "t2", 1), 1)
	schedule.Place(testSession("c", "art", "t3", 1), 3)

	require.Equal(t, []int{1, 3, 5}, schedule.Slots())
}

func TestScheduleCloneIsIndependent(t *testing.T) {
	schedule := NewSchedule()
	a := testSession("a", "math", "t1", 1)
	b := testSession("b", "english", "t2", 1)
	schedule.Place(a, 0)
	schedule.Place(b, 2)

	clone := schedule.Clone()
	clone.Remove(a)
	clone.Place(a, 4)

	slot, ok := schedule.SlotOf("a")
	require.True(t, ok)
	require.Equal(t, 0, slot)

	cloneSlot, ok := clone.SlotOf("a")
	require.True(t, ok)
	require.Equal(t, 4, cloneSlot)
}

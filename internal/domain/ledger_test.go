package domain_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

func newTrip(t *testing.T, days, maxStops int) *domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(domain.TripParams{TotalDays: days, MaxStops: maxStops})
	require.NoError(t, err)
	return trip
}

func insert(t *testing.T, trip *domain.Trip, day int, pos domain.Position, name string) domain.Stop {
	t.Helper()
	s, err := trip.InsertStop(day, pos, domain.StopInput{Name: name})
	require.NoError(t, err)
	return s
}

func dayNames(trip *domain.Trip, day int) []string {
	var names []string
	for _, s := range trip.DayStops(day) {
		names = append(names, s.Name)
	}
	return names
}

func dayIDs(trip *domain.Trip, day int) []string {
	var ids []string
	for _, s := range trip.DayStops(day) {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestNewTrip_Defaults(t *testing.T) {
	trip, err := domain.NewTrip(domain.TripParams{})
	require.NoError(t, err)

	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, 1, trip.TotalDays())
	assert.Equal(t, domain.DefaultMaxStops, trip.MaxStops())
	assert.Equal(t, domain.Driving, trip.DefaultMode)

	_, err = domain.NewTrip(domain.TripParams{DefaultMode: "FERRY"})
	assert.Error(t, err)
	_, err = domain.NewTrip(domain.TripParams{TotalDays: -1})
	assert.Error(t, err)
}

func TestInsertStop_Positions(t *testing.T) {
	trip := newTrip(t, 1, 0)

	a := insert(t, trip, 1, domain.Append(), "A")
	assert.Equal(t, domain.OrderBaseline, a.Order)

	c := insert(t, trip, 1, domain.Append(), "C")
	insert(t, trip, 1, domain.After(a.ID), "B")
	insert(t, trip, 1, domain.First(), "Start")
	insert(t, trip, 1, domain.After(c.ID), "End")

	assert.Equal(t, []string{"Start", "A", "B", "C", "End"}, dayNames(trip, 1))
	require.NoError(t, trip.Validate())
}

func TestInsertStop_SplitsGapWithoutRenumbering(t *testing.T) {
	trip := newTrip(t, 1, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	b := insert(t, trip, 1, domain.Append(), "B")

	mid := insert(t, trip, 1, domain.After(a.ID), "mid")

	assert.Greater(t, mid.Order, a.Order)
	assert.Less(t, mid.Order, b.Order)

	got, err := trip.Stop(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Order, got.Order, "siblings keep their keys")
}

func TestInsertStop_RenormalizesCrowdedDay(t *testing.T) {
	trip := newTrip(t, 1, 100)
	first := insert(t, trip, 1, domain.Append(), "first")
	insert(t, trip, 1, domain.Append(), "last")

	// Repeatedly splitting the same gap halves it each time.
	for i := 0; i < 40; i++ {
		insert(t, trip, 1, domain.After(first.ID), "x")
		require.NoError(t, trip.Validate())
	}

	stops := trip.DayStops(1)
	assert.Equal(t, "first", stops[0].Name)
	assert.Equal(t, "last", stops[len(stops)-1].Name)
	for i := 1; i < len(stops); i++ {
		assert.GreaterOrEqual(t, stops[i].Order-stops[i-1].Order, domain.MinOrderGap)
	}
}

func TestInsertStop_Errors(t *testing.T) {
	trip := newTrip(t, 2, 2)
	a := insert(t, trip, 1, domain.Append(), "A")

	_, err := trip.InsertStop(3, domain.Append(), domain.StopInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidDay)

	_, err = trip.InsertStop(2, domain.After(a.ID), domain.StopInput{})
	assert.ErrorIs(t, err, domain.ErrStopNotFound, "anchor must be on the same day")

	_, err = trip.InsertStop(1, domain.After("missing"), domain.StopInput{})
	assert.ErrorIs(t, err, domain.ErrStopNotFound)

	_, err = trip.InsertStop(1, domain.Append(), domain.StopInput{DurationMin: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidStop)

	_, err = trip.InsertStop(1, domain.Append(), domain.StopInput{Location: domain.GeoPoint{Lat: 91}})
	assert.ErrorIs(t, err, domain.ErrInvalidStop)

	assert.Equal(t, 1, trip.StopCount())
}

func TestInsertStop_CapacityExceeded(t *testing.T) {
	trip := newTrip(t, 1, 3)
	for i := 0; i < 3; i++ {
		insert(t, trip, 1, domain.Append(), "s")
	}

	_, err := trip.InsertStop(1, domain.Append(), domain.StopInput{Name: "one too many"})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 3, trip.StopCount())
}

func TestRemoveStop(t *testing.T) {
	trip := newTrip(t, 1, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	b := insert(t, trip, 1, domain.Append(), "B")
	c := insert(t, trip, 1, domain.Append(), "C")

	removed, err := trip.RemoveStop(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", removed.Name)
	assert.Equal(t, []string{"A", "C"}, dayNames(trip, 1))

	got, _ := trip.Stop(c.ID)
	assert.Equal(t, c.Order, got.Order)
	got, _ = trip.Stop(a.ID)
	assert.Equal(t, a.Order, got.Order)

	_, err = trip.RemoveStop(b.ID)
	assert.ErrorIs(t, err, domain.ErrStopNotFound)
}

func TestReorderDay(t *testing.T) {
	trip := newTrip(t, 2, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	b := insert(t, trip, 1, domain.Append(), "B")
	c := insert(t, trip, 1, domain.Append(), "C")
	other := insert(t, trip, 2, domain.Append(), "other")

	seq := []string{c.ID, a.ID, b.ID}
	require.NoError(t, trip.ReorderDay(1, seq))
	assert.Equal(t, seq, dayIDs(trip, 1))

	got, _ := trip.Stop(other.ID)
	assert.Equal(t, other.Order, got.Order, "other days are untouched")
}

func TestReorderDay_RejectsNonPermutation(t *testing.T) {
	trip := newTrip(t, 2, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	b := insert(t, trip, 1, domain.Append(), "B")
	other := insert(t, trip, 2, domain.Append(), "other")
	before := trip.Stops()

	cases := map[string][]string{
		"missing stop":  {a.ID},
		"duplicate":     {a.ID, a.ID},
		"foreign stop":  {a.ID, other.ID},
		"too many ids":  {a.ID, b.ID, other.ID},
		"empty for day": {},
	}
	for name, seq := range cases {
		t.Run(name, func(t *testing.T) {
			err := trip.ReorderDay(1, seq)
			assert.ErrorIs(t, err, domain.ErrSequenceMismatch)
			assert.Equal(t, before, trip.Stops())
		})
	}

	err := trip.ReorderDay(1, []string{a.ID, "ghost"})
	assert.ErrorIs(t, err, domain.ErrStopNotFound)
	assert.ErrorIs(t, trip.ReorderDay(3, nil), domain.ErrInvalidDay)
}

func TestMoveStopToDay(t *testing.T) {
	trip := newTrip(t, 2, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	insert(t, trip, 2, domain.Append(), "X")
	insert(t, trip, 2, domain.Append(), "Y")

	moved, err := trip.MoveStopToDay(a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Day)
	assert.Equal(t, []string{"X", "Y", "A"}, dayNames(trip, 2))
	assert.Empty(t, trip.DayStops(1))

	_, err = trip.MoveStopToDay(a.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidDay)
	_, err = trip.MoveStopToDay("ghost", 1)
	assert.ErrorIs(t, err, domain.ErrStopNotFound)
	require.NoError(t, trip.Validate())
}

func TestRemoveDay(t *testing.T) {
	trip := newTrip(t, 3, 0)
	d1 := insert(t, trip, 1, domain.Append(), "d1")
	insert(t, trip, 2, domain.Append(), "d2a")
	insert(t, trip, 2, domain.Append(), "d2b")
	d3 := insert(t, trip, 3, domain.Append(), "d3")

	removed, err := trip.RemoveDay(2)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, 2, trip.TotalDays())

	got, _ := trip.Stop(d1.ID)
	assert.Equal(t, 1, got.Day)
	got, _ = trip.Stop(d3.ID)
	assert.Equal(t, 2, got.Day)
	assert.Equal(t, d3.Order, got.Order)

	_, err = trip.RemoveDay(5)
	assert.ErrorIs(t, err, domain.ErrInvalidDay)
	require.NoError(t, trip.Validate())
}

func TestRemoveDay_LastDayProtected(t *testing.T) {
	trip := newTrip(t, 1, 0)
	insert(t, trip, 1, domain.Append(), "A")
	before := trip.Clone()

	_, err := trip.RemoveDay(1)
	require.ErrorIs(t, err, domain.ErrLastDayProtected)
	assert.Equal(t, before, trip)
}

func TestAddDay(t *testing.T) {
	trip := newTrip(t, 1, 0)
	insert(t, trip, 1, domain.Append(), "A")

	assert.Equal(t, 2, trip.AddDay())
	assert.Empty(t, trip.DayStops(2))
	assert.Equal(t, 1, trip.StopCount())
}

func TestAttributeCommands(t *testing.T) {
	trip := newTrip(t, 1, 0)
	a := insert(t, trip, 1, domain.Append(), "A")

	require.NoError(t, trip.PinVisitTime(a.ID, 600))
	got, _ := trip.Stop(a.ID)
	assert.True(t, got.Visit.IsPinned())

	assert.ErrorIs(t, trip.UpdateDerivedTime(a.ID, domain.DerivedTime(500)), domain.ErrInvalidStop)
	assert.ErrorIs(t, trip.PinVisitTime(a.ID, domain.MinutesPerDay), domain.ErrInvalidStop)

	require.NoError(t, trip.UnpinVisitTime(a.ID))
	got, _ = trip.Stop(a.ID)
	m, ok := got.Visit.Minutes()
	assert.True(t, ok)
	assert.False(t, got.Visit.IsPinned())
	assert.Equal(t, 600, m)

	require.NoError(t, trip.SetLegMode(a.ID, domain.Walking))
	assert.ErrorIs(t, trip.SetLegMode(a.ID, "ROCKET"), domain.ErrInvalidStop)
	got, _ = trip.Stop(a.ID)
	assert.Equal(t, domain.Walking, got.LegMode(domain.Driving))
	require.NoError(t, trip.SetLegMode(a.ID, ""))
	got, _ = trip.Stop(a.ID)
	assert.Equal(t, domain.Driving, got.LegMode(domain.Driving))

	dep := 700
	require.NoError(t, trip.SetDeparture(a.ID, &dep))
	dep = 1
	got, _ = trip.Stop(a.ID)
	require.NotNil(t, got.DepartAt)
	assert.Equal(t, 700, *got.DepartAt, "departure is copied in")

	assert.ErrorIs(t, trip.SetDuration(a.ID, -1), domain.ErrInvalidStop)
	assert.ErrorIs(t, trip.SetCost(a.ID, -1, "usd"), domain.ErrInvalidStop)
	assert.ErrorIs(t, trip.SetMemo("ghost", "x"), domain.ErrStopNotFound)
}

func TestLedger_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	trip := newTrip(t, 3, 12)

	for step := 0; step < 500; step++ {
		stops := trip.Stops()
		pick := func() string {
			if len(stops) == 0 || rng.IntN(10) == 0 {
				return "none"
			}
			return stops[rng.IntN(len(stops))].ID
		}
		day := 1 + rng.IntN(trip.TotalDays()+1) // occasionally out of range

		before := trip.Clone()
		var err error
		switch rng.IntN(7) {
		case 0, 1:
			pos := domain.Append()
			switch rng.IntN(3) {
			case 0:
				pos = domain.First()
			case 1:
				pos = domain.After(pick())
			}
			_, err = trip.InsertStop(day, pos, domain.StopInput{Name: "s"})
		case 2:
			_, err = trip.RemoveStop(pick())
		case 3:
			ids := dayIDs(trip, day)
			rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			if len(ids) > 0 && rng.IntN(4) == 0 {
				ids = append(ids, ids[0])
			}
			err = trip.ReorderDay(day, ids)
		case 4:
			_, err = trip.MoveStopToDay(pick(), day)
		case 5:
			if trip.TotalDays() < 5 {
				trip.AddDay()
			}
		case 6:
			_, err = trip.RemoveDay(day)
		}

		if err != nil {
			require.Equal(t, before, trip, "step %d: failed command changed the trip: %v", step, err)
		}
		require.NoError(t, trip.Validate(), "step %d", step)
	}
}

func TestClone_IsDeep(t *testing.T) {
	trip := newTrip(t, 1, 0)
	a := insert(t, trip, 1, domain.Append(), "A")
	dep := 600
	require.NoError(t, trip.SetDeparture(a.ID, &dep))

	c := trip.Clone()
	require.NoError(t, c.SetMemo(a.ID, "changed"))
	require.NoError(t, c.SetDeparture(a.ID, nil))

	got, _ := trip.Stop(a.ID)
	assert.Empty(t, got.Memo)
	assert.NotNil(t, got.DepartAt)
}

package hotel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/models"
)

func TestStayInterval(t *testing.T) {
	_, err := NewStayInterval(day(2025, 3, 5), day(2025, 3, 5))
	assert.ErrorIs(t, err, errors.ErrStayDatesInvalid)
	_, err = NewStayInterval(day(2025, 3, 6), day(2025, 3, 5))
	assert.ErrorIs(t, err, errors.ErrStayDatesInvalid)

	stay, err := NewStayInterval(day(2025, 3, 1), day(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, stay.Nights())
	assert.True(t, stay.Contains(day(2025, 3, 1)))
	assert.True(t, stay.Contains(day(2025, 3, 4)))
	assert.False(t, stay.Contains(day(2025, 3, 5)))

	tests := []struct {
		name  string
		other StayInterval
		want  bool
	}{
		{"touch after", StayInterval{day(2025, 3, 5), day(2025, 3, 8)}, false},
		{"touch before", StayInterval{day(2025, 2, 25), day(2025, 3, 1)}, false},
		{"overlap tail", StayInterval{day(2025, 3, 4), day(2025, 3, 6)}, true},
		{"overlap head", StayInterval{day(2025, 2, 28), day(2025, 3, 2)}, true},
		{"inside", StayInterval{day(2025, 3, 2), day(2025, 3, 3)}, true},
		{"covering", StayInterval{day(2025, 2, 28), day(2025, 3, 9)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stay.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(stay))
		})
	}
}

func TestAvailabilityEngine_BoundaryAndConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.guest(t, "alice", models.GuestTypeRegular, 0)
	r := env.room(t, "101", "Double", 100, models.RoomStatusAvailable)
	existing := env.reservation(t, g.ID, r.ID, day(2025, 3, 1), day(2025, 3, 5))

	ok, err := env.engine.IsAvailable(ctx, r.ID, day(2025, 3, 5), day(2025, 3, 8), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.engine.IsAvailable(ctx, r.ID, day(2025, 3, 4), day(2025, 3, 6), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.engine.IsAvailable(ctx, r.ID, day(2025, 3, 4), day(2025, 3, 6), &existing.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	stay, _ := NewStayInterval(day(2025, 3, 2), day(2025, 3, 3))
	conflicts, err := env.engine.Conflicts(ctx, r.ID, stay, nil)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, existing.ID, conflicts[0].ID)
}

func TestAvailabilityEngine_AvailableRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.guest(t, "bob", models.GuestTypeRegular, 0)
	r101 := env.room(t, "101", "Single", 80, models.RoomStatusAvailable)
	r102 := env.room(t, "102", "Double", 120, models.RoomStatusOccupied)
	env.room(t, "103", "Double", 120, models.RoomStatusMaintenance)
	env.room(t, "104", "Suite", 300, models.RoomStatusOutOfOrder)
	r105 := env.room(t, "105", "Suite", 300, models.RoomStatusAvailable)

	env.reservation(t, g.ID, r101.ID, day(2025, 3, 1), day(2025, 3, 5))
	env.reservation(t, g.ID, r102.ID, day(2025, 2, 20), day(2025, 3, 1))
	env.reservation(t, g.ID, r105.ID, day(2025, 1, 5), day(2025, 1, 9))
	r106 := env.room(t, "106", "Suite", 300, models.RoomStatusAvailable)
	env.reservation(t, g.ID, r106.ID, day(2025, 2, 25), day(2025, 3, 10))

	stay, _ := NewStayInterval(day(2025, 3, 1), day(2025, 3, 3))
	rooms, err := env.engine.AvailableRooms(ctx, stay)
	require.NoError(t, err)

	var numbers []string
	for _, room := range rooms {
		numbers = append(numbers, room.RoomNo)
	}
	assert.Equal(t, []string{"102", "105"}, numbers)
	assert.Equal(t, r105.ID, rooms[1].ID)
}

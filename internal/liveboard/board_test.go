package liveboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
)

type stubSnapshotter struct {
	entries []duties.TripDutyView
	calls   int
}

func (s *stubSnapshotter) ListTripDutyBoard(ctx context.Context, date string, routeIDs []uuid.UUID) ([]duties.TripDutyView, error) {
	s.calls++
	out := make([]duties.TripDutyView, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func boardFixture(t *testing.T) (*Board, *stubSnapshotter, uuid.UUID, uuid.UUID) {
	t.Helper()

	routeID := uuid.New()
	tripDutyID := uuid.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	snap := &stubSnapshotter{entries: []duties.TripDutyView{{
		TripDutyID: tripDutyID,
		DutyID:     uuid.New(),
		RouteID:    routeID,
		Date:       date,
		StartAt:    date.Add(6 * time.Hour),
		EndAt:      date.Add(8 * time.Hour),
		DutyType:   enums.DutyTypeTrip,
	}}}

	board, err := NewBoard(snap, nil, nil)
	require.NoError(t, err)
	require.NoError(t, board.Load(context.Background(), "2026-03-02", []uuid.UUID{routeID}))
	return board, snap, routeID, tripDutyID
}

func TestApplyTripStartedAttachesTrip(t *testing.T) {
	board, _, routeID, tripDutyID := boardFixture(t)

	tripID := uuid.New()
	startedAt := time.Date(2026, 3, 2, 6, 1, 0, 0, time.UTC)
	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID,
		TripID:     tripID,
		RouteID:    routeID,
		StartedAt:  startedAt,
	}})

	entries := board.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Trip)
	assert.Equal(t, tripID, entries[0].Trip.ID)
	assert.Equal(t, enums.TripStatusInProgress, entries[0].Trip.Status)
	assert.True(t, entries[0].Trip.StartedAt.Equal(startedAt))
	assert.Nil(t, entries[0].Trip.EndedAt)
}

func TestApplyTripEndedUpdatesAttachedTrip(t *testing.T) {
	board, _, routeID, tripDutyID := boardFixture(t)

	tripID := uuid.New()
	startedAt := time.Date(2026, 3, 2, 6, 1, 0, 0, time.UTC)
	endedAt := startedAt.Add(90 * time.Minute)

	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: tripID, RouteID: routeID, StartedAt: startedAt,
	}})
	board.Apply(livefeed.Event{Kind: livefeed.KindTripEnded, Ended: &livefeed.TripEnded{
		TripID: tripID, RouteID: routeID, EndedAt: endedAt,
	}})

	entries := board.Entries()
	require.NotNil(t, entries[0].Trip)
	assert.Equal(t, enums.TripStatusCompleted, entries[0].Trip.Status)
	require.NotNil(t, entries[0].Trip.EndedAt)
	assert.True(t, entries[0].Trip.EndedAt.Equal(endedAt))
}

func TestEndBeforeStartIsDropped(t *testing.T) {
	board, _, routeID, _ := boardFixture(t)

	// No start was applied, so there is no attached trip to match.
	board.Apply(livefeed.Event{Kind: livefeed.KindTripEnded, Ended: &livefeed.TripEnded{
		TripID: uuid.New(), RouteID: routeID, EndedAt: time.Now().UTC(),
	}})

	entries := board.Entries()
	assert.Nil(t, entries[0].Trip)
}

func TestUnsubscribedRouteEventsIgnored(t *testing.T) {
	board, _, routeID, tripDutyID := boardFixture(t)

	otherRoute := uuid.New()
	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: uuid.New(), RouteID: otherRoute, StartedAt: time.Now().UTC(),
	}})
	assert.Nil(t, board.Entries()[0].Trip)

	board.Unsubscribe(routeID)
	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: uuid.New(), RouteID: routeID, StartedAt: time.Now().UTC(),
	}})
	assert.Nil(t, board.Entries()[0].Trip)

	board.Subscribe(routeID)
	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: uuid.New(), RouteID: routeID, StartedAt: time.Now().UTC(),
	}})
	assert.NotNil(t, board.Entries()[0].Trip)
}

func TestStartForUnknownTripDutyIsDropped(t *testing.T) {
	board, _, routeID, _ := boardFixture(t)

	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: uuid.New(), TripID: uuid.New(), RouteID: routeID, StartedAt: time.Now().UTC(),
	}})
	assert.Nil(t, board.Entries()[0].Trip)
}

func TestRefreshReloadsSnapshot(t *testing.T) {
	board, snap, _, tripDutyID := boardFixture(t)
	require.Equal(t, 1, snap.calls)

	board.Apply(livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: uuid.New(), RouteID: board.Entries()[0].RouteID, StartedAt: time.Now().UTC(),
	}})
	require.NotNil(t, board.Entries()[0].Trip)

	require.NoError(t, board.Refresh(context.Background()))
	assert.Equal(t, 2, snap.calls)
	assert.Nil(t, board.Entries()[0].Trip)
}

func TestRunConsumesUntilChannelCloses(t *testing.T) {
	board, _, routeID, tripDutyID := boardFixture(t)

	events := make(chan livefeed.Event, 2)
	tripID := uuid.New()
	startedAt := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(time.Hour)
	events <- livefeed.Event{Kind: livefeed.KindTripStarted, Started: &livefeed.TripStarted{
		TripDutyID: tripDutyID, TripID: tripID, RouteID: routeID, StartedAt: startedAt,
	}}
	events <- livefeed.Event{Kind: livefeed.KindTripEnded, Ended: &livefeed.TripEnded{
		TripID: tripID, RouteID: routeID, EndedAt: endedAt,
	}}
	close(events)

	board.Run(context.Background(), events)

	entries := board.Entries()
	require.NotNil(t, entries[0].Trip)
	assert.Equal(t, enums.TripStatusCompleted, entries[0].Trip.Status)
}

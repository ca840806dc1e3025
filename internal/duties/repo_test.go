package duties

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

func TestRepositoryFindVehicleBlockByCode(t *testing.T) {
	db := setupDutiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	schedule := seedSchedule(t, db, "Weekday")
	template := seedBlockTemplate(t, db, schedule.ID, "B1")

	_, err := repo.FindVehicleBlockByCode(ctx, "B1-2026-03-02")
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	created, err := repo.CreateVehicleBlock(ctx, &models.VehicleBlock{
		Code:       "B1-2026-03-02",
		TemplateID: template.ID,
	})
	require.NoError(t, err)

	found, err := repo.FindVehicleBlockByCode(ctx, "B1-2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.CreateVehicleBlock(ctx, &models.VehicleBlock{
		ID:         uuid.New(),
		Code:       "B1-2026-03-02",
		TemplateID: template.ID,
	})
	require.Error(t, err, "duplicate instance code rejected by unique index")
}

func TestRepositoryFindTemplatesScopedToSchedule(t *testing.T) {
	db := setupDutiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	schedule := seedSchedule(t, db, "Weekday")
	other := seedSchedule(t, db, "Weekend")
	seedBlockTemplate(t, db, schedule.ID, "B1")
	seedRunTemplate(t, db, schedule.ID, "R1")

	found, err := repo.FindBlockTemplate(ctx, schedule.ID, "B1")
	require.NoError(t, err)
	assert.Equal(t, "B1", found.Code)

	_, err = repo.FindBlockTemplate(ctx, other.ID, "B1")
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	_, err = repo.FindRunTemplate(ctx, schedule.ID, "R1")
	require.NoError(t, err)
	_, err = repo.FindRunTemplate(ctx, schedule.ID, "R2")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestRepositoryBoardQueryFiltersByRoute(t *testing.T) {
	db := setupDutiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	route := seedRoute(t, db, "12")
	other := seedRoute(t, db, "99")

	date := parseBoardDate(t, "2026-03-02")
	for _, routeID := range []uuid.UUID{route.ID, other.ID} {
		duty, err := repo.CreateDuty(ctx, &models.Duty{
			Date:     date,
			StartAt:  mustTimeOfDay(t, "06:00").On(date),
			EndAt:    mustTimeOfDay(t, "08:00").On(date),
			DutyType: enums.DutyTypeTrip,
		})
		require.NoError(t, err)
		_, err = repo.CreateTripDuty(ctx, &models.TripDuty{DutyID: duty.ID, RouteID: routeID})
		require.NoError(t, err)
	}

	rows, err := repo.ListTripDutiesForBoard(ctx, date, []uuid.UUID{route.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, route.ID, rows[0].RouteID)
	require.NotNil(t, rows[0].Duty)

	all, err := repo.ListTripDutiesForBoard(ctx, date, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func parseBoardDate(t *testing.T, raw string) (date time.Time) {
	t.Helper()
	date, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	require.NoError(t, err)
	return date
}

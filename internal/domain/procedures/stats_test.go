package procedures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Stats(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRecorder{})

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Tres trámites: uno aprobado (5 días de proceso), uno rechazado (3 días),
	// uno todavía en revisión. Fechas fijadas a mano.
	seed := []struct {
		status  Status
		created time.Time
		updated time.Time
		ptype   string
	}{
		{StatusApproved, now.AddDate(0, 0, -20), now.AddDate(0, 0, -15), TypeCalificacion29_89},
		{StatusRejected, now.AddDate(0, -2, 0), now.AddDate(0, -2, 3), TypeCalificacion29_89},
		{StatusInReview, now.AddDate(0, 0, -1), now.AddDate(0, 0, -1), TypeCambioRazonSocial},
	}
	for i, s := range seed {
		require.NoError(t, repo.Insert(context.Background(), Procedure{
			ID:           string(rune('a' + i)),
			TrackingCode: GenerateTrackingCode(),
			OwnerID:      userActor.ID,
			Type:         s.ptype,
			Status:       s.status,
			CreatedAt:    s.created,
			UpdatedAt:    s.updated,
		}))
	}

	stats, err := svc.Stats(context.Background(), adminActor)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalProcedures)
	assert.Equal(t, 1, stats.ProceduresByStatus[StatusApproved])
	assert.Equal(t, 1, stats.ProceduresByStatus[StatusRejected])
	assert.Equal(t, 1, stats.ProceduresByStatus[StatusInReview])
	assert.Equal(t, 0, stats.ProceduresByStatus[StatusReceived])
	assert.Equal(t, 2, stats.ProceduresByType[TypeCalificacion29_89])

	// Promedio sobre los terminales: (5 + 3) / 2 días.
	assert.InDelta(t, 4.0, stats.AverageProcessingDays, 0.01)
	// 2 de 3 en estado terminal.
	assert.InDelta(t, 66.66, stats.CompletionRate, 0.1)

	// Serie mensual: 6 meses, el actual al final. El aprobado cae en febrero,
	// el rechazado en enero y el de revisión en marzo.
	require.Len(t, stats.ProceduresByMonth, 6)
	assert.Equal(t, "2025-03", stats.ProceduresByMonth[5].Month)
	assert.Equal(t, 1, stats.ProceduresByMonth[5].Count)
	assert.Equal(t, "2025-02", stats.ProceduresByMonth[4].Month)
	assert.Equal(t, 1, stats.ProceduresByMonth[4].Count)
	assert.Equal(t, "2025-01", stats.ProceduresByMonth[3].Month)
	assert.Equal(t, 1, stats.ProceduresByMonth[3].Count)
}

func TestService_Stats_AdminOnly(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeRecorder{})

	_, err := svc.Stats(context.Background(), userActor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Stats(context.Background(), Actor{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_Stats_Empty(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeRecorder{})

	stats, err := svc.Stats(context.Background(), adminActor)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalProcedures)
	assert.Zero(t, stats.AverageProcessingDays)
	assert.Zero(t, stats.CompletionRate)
	assert.Len(t, stats.ProceduresByMonth, 6)
}

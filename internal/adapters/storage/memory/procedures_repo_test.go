package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"disercomi-tramites/internal/domain/procedures"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProcedure(t *testing.T, repo procedures.Repository, code string) procedures.Procedure {
	t.Helper()

	p := procedures.Procedure{
		ID:           uuid.NewString(),
		TrackingCode: code,
		OwnerID:      "user-1",
		Type:         procedures.TypeCalificacion29_89,
		Status:       procedures.StatusReceived,
		Steps:        procedures.NewSteps(),
		Comments:     []procedures.Comment{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func TestProceduresRepo_InsertDuplicates(t *testing.T) {
	repo := NewProceduresRepo()
	p := seedProcedure(t, repo, "DIS-AAA-111")

	err := repo.Insert(context.Background(), p)
	assert.ErrorIs(t, err, procedures.ErrDuplicateID)

	other := p
	other.ID = uuid.NewString()
	err = repo.Insert(context.Background(), other)
	assert.ErrorIs(t, err, procedures.ErrDuplicateTrackingCode)
}

func TestProceduresRepo_FindByTrackingCode(t *testing.T) {
	repo := NewProceduresRepo()
	p := seedProcedure(t, repo, "DIS-AAA-111")

	got, err := repo.FindByTrackingCode(context.Background(), "DIS-AAA-111")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.FindByTrackingCode(context.Background(), "DIS-ZZZ-999")
	assert.ErrorIs(t, err, procedures.ErrNotFound)
}

func TestProceduresRepo_UpdatePreservesKeys(t *testing.T) {
	repo := NewProceduresRepo()
	p := seedProcedure(t, repo, "DIS-AAA-111")

	// El mutator intenta pisar llaves y fechas: el repositorio las restaura.
	got, err := repo.Update(context.Background(), p.ID, func(cur procedures.Procedure) procedures.Procedure {
		cur.ID = "otro-id"
		cur.TrackingCode = "DIS-HACK-000"
		cur.OwnerID = "intruso"
		cur.CreatedAt = time.Time{}
		cur.Status = procedures.StatusInReview
		return cur
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.TrackingCode, got.TrackingCode)
	assert.Equal(t, p.OwnerID, got.OwnerID)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
	assert.Equal(t, procedures.StatusInReview, got.Status)
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))

	_, err = repo.Update(context.Background(), "no-existe", func(cur procedures.Procedure) procedures.Procedure { return cur })
	assert.ErrorIs(t, err, procedures.ErrNotFound)
}

func TestProceduresRepo_ReadsAreCopies(t *testing.T) {
	repo := NewProceduresRepo()
	p := seedProcedure(t, repo, "DIS-AAA-111")

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)

	// Mutar la copia leída no toca el registro almacenado.
	got.Steps[0].Status = procedures.StepCompleted
	got.Comments = append(got.Comments, procedures.Comment{ID: "x"})

	again, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, procedures.StepPending, again.Steps[0].Status)
	assert.Empty(t, again.Comments)
}

func TestProceduresRepo_ConcurrentCommentAppends(t *testing.T) {
	repo := NewProceduresRepo()
	p := seedProcedure(t, repo, "DIS-AAA-111")

	const writers = 50

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), p.ID, func(cur procedures.Procedure) procedures.Procedure {
				cur.Comments = append(cur.Comments, procedures.Comment{
					ID:        uuid.NewString(),
					Text:      "comentario concurrente",
					CreatedAt: time.Now().UTC(),
				})
				return cur
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, writers, "ningún append concurrente debe perderse")
}

func TestProceduresRepo_ListOrdering(t *testing.T) {
	repo := NewProceduresRepo()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := procedures.Procedure{
			ID:           uuid.NewString(),
			TrackingCode: "DIS-AAA-11" + string(rune('0'+i)),
			OwnerID:      "user-1",
			CreatedAt:    base.AddDate(0, 0, 2-i), // insertados en orden inverso
		}
		require.NoError(t, repo.Insert(context.Background(), p))
	}

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt))
	}

	mine, err := repo.FindByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	none, err := repo.FindByOwner(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

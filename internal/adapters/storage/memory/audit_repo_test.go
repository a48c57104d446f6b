package memory

import (
	"context"
	"testing"
	"time"

	"disercomi-tramites/internal/domain/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_ListFilters(t *testing.T) {
	repo := NewAuditRepo()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []audit.Entry{
		{ID: "1", Timestamp: base, ActorName: "María López", ActionType: audit.ActionCreate, ResourceType: audit.ResourceTramite, Description: "Nuevo trámite creado"},
		{ID: "2", Timestamp: base.Add(time.Hour), ActorName: "Carlos Ruiz", ActionType: audit.ActionStateChange, ResourceType: audit.ResourceTramite, Description: "Estado actualizado de received a approved"},
		{ID: "3", Timestamp: base.Add(2 * time.Hour), ActorName: "Carlos Ruiz", ActionType: audit.ActionUpdate, ResourceType: audit.ResourceDocumento, Description: "Documento firmado digitalmente"},
	}
	for _, e := range seed {
		require.NoError(t, repo.Append(context.Background(), e))
	}

	t.Run("sin filtro, más recientes primero", func(t *testing.T) {
		got, err := repo.List(context.Background(), audit.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "3", got[0].ID)
		assert.Equal(t, "1", got[2].ID)
	})

	t.Run("por tipo de acción", func(t *testing.T) {
		got, err := repo.List(context.Background(), audit.Filter{ActionType: audit.ActionStateChange})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("por tipo de recurso", func(t *testing.T) {
		got, err := repo.List(context.Background(), audit.Filter{ResourceType: audit.ResourceDocumento})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("por texto, insensible a mayúsculas", func(t *testing.T) {
		got, err := repo.List(context.Background(), audit.Filter{Search: "maría"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
	})

	t.Run("por rango de fechas", func(t *testing.T) {
		got, err := repo.List(context.Background(), audit.Filter{
			From: base.Add(30 * time.Minute),
			To:   base.Add(90 * time.Minute),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})
}

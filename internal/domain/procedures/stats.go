package procedures

import (
	"context"
	"time"
)

// DashboardStats son los agregados del tablero administrativo.
type DashboardStats struct {
	TotalProcedures       int
	ProceduresByStatus    map[Status]int
	ProceduresByType      map[string]int
	ProceduresByMonth     []MonthCount
	AverageProcessingDays float64
	CompletionRate        float64
}

type MonthCount struct {
	Month string // YYYY-MM
	Count int
}

// statsMonths: el tablero muestra los últimos 6 meses.
const statsMonths = 6

// Stats calcula los agregados sobre el total de trámites (solo administración).
// El tiempo promedio se mide en días entre creación y última actualización de
// los trámites en estado terminal.
func (s *Service) Stats(ctx context.Context, actor Actor) (DashboardStats, error) {
	if err := requireActor(actor); err != nil {
		return DashboardStats{}, err
	}
	if !actor.canManage() {
		return DashboardStats{}, ErrForbidden
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	out := DashboardStats{
		TotalProcedures: len(all),
		ProceduresByStatus: map[Status]int{
			StatusReceived: 0,
			StatusInReview: 0,
			StatusApproved: 0,
			StatusRejected: 0,
		},
		ProceduresByType: map[string]int{},
	}

	now := s.now()

	var terminal int
	var totalDays float64

	for _, p := range all {
		out.ProceduresByStatus[p.Status]++
		out.ProceduresByType[p.Type]++

		if p.Status == StatusApproved || p.Status == StatusRejected {
			terminal++
			totalDays += p.UpdatedAt.Sub(p.CreatedAt).Hours() / 24
		}
	}

	months := make([]MonthCount, 0, statsMonths)
	for i := statsMonths - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		count := 0
		for _, p := range all {
			if !p.CreatedAt.Before(start) && p.CreatedAt.Before(end) {
				count++
			}
		}
		months = append(months, MonthCount{Month: start.Format("2006-01"), Count: count})
	}
	out.ProceduresByMonth = months

	if terminal > 0 {
		out.AverageProcessingDays = totalDays / float64(terminal)
	}
	if len(all) > 0 {
		out.CompletionRate = float64(terminal) / float64(len(all)) * 100
	}

	return out, nil
}

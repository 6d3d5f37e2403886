package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/infra"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// factorGanancia is the share of weekly sales paid to the agent as profit.
var factorGanancia = decimal.New(8, -2)

// ReporteService aggregates committed sales into daily and weekly totals per agent.
// Almacen callers see every agent; Vendedor callers see only their own rows.
type ReporteService interface {
	VentasDiarias(ctx context.Context, callerID uuid.UUID, rol, fecha string) ([]dto.VentaDiariaResponse, error)
	VentasSemanales(ctx context.Context, callerID uuid.UUID, rol string) ([]dto.VentaSemanalResponse, error)
	VentasSemanalesAgrupadas(ctx context.Context, callerID uuid.UUID, rol string) ([]dto.SemanaResponse, error)
	ReporteSemanalPDF(ctx context.Context, callerID uuid.UUID, rol string) ([]byte, error)
}

type reporteService struct {
	ventas   repository.VentaRepository
	usuarios repository.UsuarioRepository
	cache    *ReportCache
	loc      *time.Location
	now      func() time.Time
}

func NewReporteService(
	ventas repository.VentaRepository,
	usuarios repository.UsuarioRepository,
	cache *ReportCache,
	loc *time.Location,
) ReporteService {
	if loc == nil {
		loc = time.UTC
	}
	return &reporteService{ventas: ventas, usuarios: usuarios, cache: cache, loc: loc, now: time.Now}
}

// ── VentasDiarias ─────────────────────────────────────────────────────────────

func (s *reporteService) VentasDiarias(ctx context.Context, callerID uuid.UUID, rol, fecha string) ([]dto.VentaDiariaResponse, error) {
	var dia time.Time
	if fecha == "" {
		dia = startOfDay(s.now().In(s.loc))
	} else {
		d, err := parseDia(fecha, s.loc)
		if err != nil {
			return nil, err
		}
		dia = d
	}

	scope, err := s.scope(callerID, rol)
	if err != nil {
		return nil, err
	}
	key := s.cache.key(ctx, "diarias", dia.Format("2006-01-02"), scope)
	var cached []dto.VentaDiariaResponse
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	f := repository.VentaFilter{Desde: dia, Hasta: dia.AddDate(0, 0, 1)}
	var agentes []model.Usuario
	if rol == model.RolAlmacen {
		agentes, err = s.usuarios.ListVendedores(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		u, err := s.findUsuario(ctx, callerID)
		if err != nil {
			return nil, err
		}
		agentes = []model.Usuario{*u}
		f.VendedorID = &callerID
	}

	ventas, err := s.ventas.List(ctx, f)
	if err != nil {
		return nil, err
	}
	totales := make(map[uuid.UUID]decimal.Decimal, len(agentes))
	for _, v := range ventas {
		totales[v.VendedorID] = totales[v.VendedorID].Add(v.Total)
	}

	resp := make([]dto.VentaDiariaResponse, len(agentes))
	for i, a := range agentes {
		resp[i] = dto.VentaDiariaResponse{
			VendedorID:     a.ID.String(),
			VendedorNombre: a.Nombre,
			Total:          totales[a.ID],
		}
	}
	sort.SliceStable(resp, func(i, j int) bool {
		if c := resp[i].Total.Cmp(resp[j].Total); c != 0 {
			return c > 0
		}
		return resp[i].VendedorNombre < resp[j].VendedorNombre
	})

	s.cache.set(ctx, key, resp)
	return resp, nil
}

// ── VentasSemanales ───────────────────────────────────────────────────────────
// Weeks run Monday to Sunday in the configured timezone. One row per
// (week, agent) that has at least one sale.

func (s *reporteService) VentasSemanales(ctx context.Context, callerID uuid.UUID, rol string) ([]dto.VentaSemanalResponse, error) {
	scope, err := s.scope(callerID, rol)
	if err != nil {
		return nil, err
	}
	key := s.cache.key(ctx, "semanales", scope)
	var cached []dto.VentaSemanalResponse
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	var f repository.VentaFilter
	nombres := make(map[uuid.UUID]string)
	if rol == model.RolAlmacen {
		agentes, err := s.usuarios.ListVendedores(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range agentes {
			nombres[a.ID] = a.Nombre
		}
	} else {
		u, err := s.findUsuario(ctx, callerID)
		if err != nil {
			return nil, err
		}
		nombres[u.ID] = u.Nombre
		f.VendedorID = &callerID
	}

	ventas, err := s.ventas.List(ctx, f)
	if err != nil {
		return nil, err
	}
	resp := agruparPorSemana(ventas, nombres, s.loc)

	s.cache.set(ctx, key, resp)
	return resp, nil
}

func (s *reporteService) VentasSemanalesAgrupadas(ctx context.Context, callerID uuid.UUID, rol string) ([]dto.SemanaResponse, error) {
	rows, err := s.VentasSemanales(ctx, callerID, rol)
	if err != nil {
		return nil, err
	}
	return AgruparSemanas(rows), nil
}

func (s *reporteService) ReporteSemanalPDF(ctx context.Context, callerID uuid.UUID, rol string) ([]byte, error) {
	semanas, err := s.VentasSemanalesAgrupadas(ctx, callerID, rol)
	if err != nil {
		return nil, err
	}
	pdf, err := infra.GenerateReporteSemanalPDF(semanas, s.now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("reporte semanal pdf: %w", err)
	}
	return pdf, nil
}

// ── Aggregation ───────────────────────────────────────────────────────────────

// WeekStart returns midnight of the Monday on or before t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	d := startOfDay(t.In(loc))
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Ganancia is the agent profit for a sales total, rounded to two decimals.
func Ganancia(total decimal.Decimal) decimal.Decimal {
	return total.Mul(factorGanancia).Round(2)
}

func agruparPorSemana(ventas []model.Venta, nombres map[uuid.UUID]string, loc *time.Location) []dto.VentaSemanalResponse {
	type bucket struct {
		inicio     time.Time
		vendedorID uuid.UUID
	}
	totales := make(map[bucket]decimal.Decimal)
	for _, v := range ventas {
		b := bucket{inicio: WeekStart(v.Fecha, loc), vendedorID: v.VendedorID}
		totales[b] = totales[b].Add(v.Total)
	}

	resp := make([]dto.VentaSemanalResponse, 0, len(totales))
	for b, total := range totales {
		resp = append(resp, dto.VentaSemanalResponse{
			WeekStart:      b.inicio.Format("2006-01-02"),
			WeekEnd:        b.inicio.AddDate(0, 0, 6).Format("2006-01-02"),
			VendedorID:     b.vendedorID.String(),
			VendedorNombre: nombres[b.vendedorID],
			Total:          total,
			Ganancia:       Ganancia(total),
		})
	}
	sort.Slice(resp, func(i, j int) bool {
		if resp[i].WeekStart != resp[j].WeekStart {
			return resp[i].WeekStart > resp[j].WeekStart
		}
		if c := resp[i].Total.Cmp(resp[j].Total); c != 0 {
			return c > 0
		}
		return resp[i].VendedorNombre < resp[j].VendedorNombre
	})
	return resp
}

// AgruparSemanas groups weekly rows (already sorted newest week first) into one
// entry per week with the week total and profit.
func AgruparSemanas(rows []dto.VentaSemanalResponse) []dto.SemanaResponse {
	semanas := make([]dto.SemanaResponse, 0)
	for _, r := range rows {
		n := len(semanas)
		if n == 0 || semanas[n-1].FechaInicio != r.WeekStart {
			semanas = append(semanas, dto.SemanaResponse{
				FechaInicio: r.WeekStart,
				FechaFin:    r.WeekEnd,
				Ventas:      []dto.VentaSemanalResponse{},
			})
			n++
		}
		sem := &semanas[n-1]
		sem.Total = sem.Total.Add(r.Total)
		sem.Ventas = append(sem.Ventas, r)
	}
	for i := range semanas {
		semanas[i].Ganancia = Ganancia(semanas[i].Total)
	}
	return semanas
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// scope is the cache key segment that separates per-caller results.
func (s *reporteService) scope(callerID uuid.UUID, rol string) (string, error) {
	switch rol {
	case model.RolAlmacen:
		return "almacen", nil
	case model.RolVendedor:
		return "vendedor:" + callerID.String(), nil
	default:
		return "", ErrNoAutorizado
	}
}

func (s *reporteService) findUsuario(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, err := s.usuarios.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUsuarioNoEncontrado
	}
	return u, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/menuvercel/mitienda-host/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReporteSemanalPDF(t *testing.T) {
	semanas := []dto.SemanaResponse{{
		FechaInicio: "2024-01-08",
		FechaFin:    "2024-01-14",
		Total:       decimal.NewFromInt(30),
		Ganancia:    decimal.RequireFromString("2.40"),
		Ventas: []dto.VentaSemanalResponse{{
			WeekStart:      "2024-01-08",
			WeekEnd:        "2024-01-14",
			VendedorNombre: "José Núñez",
			Total:          decimal.NewFromInt(30),
			Ganancia:       decimal.RequireFromString("2.40"),
		}},
	}}

	out, err := GenerateReporteSemanalPDF(semanas, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := GenerateReporteSemanalPDF(nil, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}

func TestFechaCorta(t *testing.T) {
	assert.Equal(t, "08/01/2024", fechaCorta("2024-01-08"))
	assert.Equal(t, "ayer", fechaCorta("ayer"))
}

package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
)

func header(title, number string) dto.DocumentHeader {
	return dto.DocumentHeader{
		CenterName:    "Centre Nord",
		CenterAddress: "Rue 12, Plateau",
		CenterPhone:   "+225 01 02 03 04",
		Title:         title,
		Number:        number,
		Date:          time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

func TestMarotoGenerator_Receipt(t *testing.T) {
	g := NewMarotoGenerator("FCFA")
	out, err := g.Receipt(context.Background(), dto.ReceiptView{
		Header:        header("Reçu de paiement", "R-20261019-ABC123"),
		PatientName:   "Awa Traoré",
		PatientNumber: "P-20261001-000001",
		Reference:     "Épisode #12",
		PaymentMethod: "Cash",
		Amount:        decimal.RequireFromString("15000"),
		TotalDue:      decimal.RequireFromString("40000"),
		TotalPaid:     decimal.RequireFromString("25000"),
		Remaining:     decimal.RequireFromString("15000"),
		CashierName:   "Koffi Mensah",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMarotoGenerator_Prescription(t *testing.T) {
	out, err := NewMarotoGenerator("").Prescription(context.Background(), dto.PrescriptionView{
		Header:        header("Ordonnance", "ORD-000004"),
		PatientName:   "Awa Traoré",
		PatientNumber: "P-20261001-000001",
		PatientAge:    34,
		DoctorName:    "Dr Koné",
		Instructions:  "Revenir dans 7 jours",
		Lines: []dto.PrescriptionLineView{
			{MedicationName: "Amoxicilline 500mg", Dosage: "1 gélule", Frequency: "3/jour", Duration: "7 jours", Quantity: 21},
			{MedicationName: "Paracétamol", Quantity: 8, Instructions: "si fièvre"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMarotoGenerator_ExamResult(t *testing.T) {
	done := time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)
	out, err := NewMarotoGenerator("").ExamResult(context.Background(), dto.ExamResultView{
		Header:      header("Résultat d'examen", "EX-000009"),
		PatientName: "Awa Traoré",
		ExamName:    "NFS",
		ExamType:    "Biologie",
		RequestedAt: done.Add(-2 * time.Hour),
		PerformedAt: &done,
		PerformedBy: "Dr Bamba",
		Result:      "Hb 13,2 g/dL\nGB 6 800/mm3",
		Notes:       "RAS",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"950":       "950,00",
		"25000":     "25 000,00",
		"1234567.5": "1 234 567,50",
		"-1500.25":  "-1 500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

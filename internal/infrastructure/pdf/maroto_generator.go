// Package pdf genera los documentos imprimibles del centro con Maroto v2:
// recibo de pago, ordonnance (receta) y resultado de examen.
//
// Layout común de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Centro + dirección  │  Título + N° + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PACIENTE: Nombre + N° de paciente                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUERPO: tabla / importes / resultado según el documento     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firma + leyenda                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
)

var _ billing.DocumentGenerator = (*MarotoGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoGenerator implementa billing.DocumentGenerator usando Maroto v2.
type MarotoGenerator struct {
	currency string
}

// NewMarotoGenerator construye el generador; currency se imprime tras cada importe (ej: "FCFA").
func NewMarotoGenerator(currency string) *MarotoGenerator {
	return &MarotoGenerator{currency: currency}
}

// Receipt recibo de pago con QR del número de recibo.
func (g *MarotoGenerator) Receipt(_ context.Context, v dto.ReceiptView) ([]byte, error) {
	m := newDocument(v.Header)

	m.AddRows(headerRow(v.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(v.PatientName, v.PatientNumber, ""))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(labelValueRow("Référence", nonEmpty(v.Reference, "-")))
	m.AddRows(labelValueRow("Mode de paiement", paymentMethodLabel(v.PaymentMethod)))
	m.AddRows(row.New(4))
	m.AddRows(g.amountsRow(v))

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(40).Add(
		col.New(4).Add(code.NewQr(v.Header.Number, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("Caissier : "+nonEmpty(v.CashierName, "-"), props.Text{Size: 9, Top: 6, Left: 3}),
			text.New("Ce reçu fait foi de paiement. Merci de le conserver.", props.Text{
				Size: 8, Top: 16, Left: 3, Color: colorGray,
			}),
		),
	))
	return generate(m)
}

// Prescription ordonnance con una fila por medicamento.
func (g *MarotoGenerator) Prescription(_ context.Context, v dto.PrescriptionView) ([]byte, error) {
	m := newDocument(v.Header)

	age := ""
	if v.PatientAge >= 0 {
		age = fmt.Sprintf("%d ans", v.PatientAge)
	}
	m.AddRows(headerRow(v.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(v.PatientName, v.PatientNumber, age))
	m.AddRows(labelValueRow("Prescripteur", nonEmpty(v.DoctorName, "-")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range prescriptionRows(v.Lines) {
		m.AddRows(r)
	}
	if strings.TrimSpace(v.Instructions) != "" {
		m.AddRows(row.New(4))
		m.AddRows(labelValueRow("Instructions", v.Instructions))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(signatureRow("Signature et cachet du médecin"))
	return generate(m)
}

// ExamResult resultado de un examen realizado.
func (g *MarotoGenerator) ExamResult(_ context.Context, v dto.ExamResultView) ([]byte, error) {
	m := newDocument(v.Header)

	m.AddRows(headerRow(v.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(v.PatientName, v.PatientNumber, ""))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(labelValueRow("Examen", v.ExamName))
	m.AddRows(labelValueRow("Type", nonEmpty(v.ExamType, "-")))
	m.AddRows(labelValueRow("Demandé le", v.RequestedAt.Format("02/01/2006 15:04")))
	if v.PerformedAt != nil {
		m.AddRows(labelValueRow("Réalisé le", v.PerformedAt.Format("02/01/2006 15:04")))
	}
	m.AddRows(labelValueRow("Réalisé par", nonEmpty(v.PerformedBy, "-")))

	m.AddRows(row.New(4))
	m.AddRows(sectionTitleRow("RÉSULTAT"))
	m.AddRows(paragraphRows(v.Result)...)
	if strings.TrimSpace(v.Notes) != "" {
		m.AddRows(sectionTitleRow("OBSERVATIONS"))
		m.AddRows(paragraphRows(v.Notes)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(signatureRow("Signature du biologiste"))
	return generate(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func newDocument(h dto.DocumentHeader) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(h.Title+" "+h.Number, true).
		WithAuthor(h.CenterName, true).
		Build()
	return maroto.New(cfg)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: centro (izq) y título + número + fecha (der).
func headerRow(h dto.DocumentHeader) core.Row {
	contact := strings.TrimSpace(nonEmpty(h.CenterAddress, "") + "   " + phoneLabel(h.CenterPhone))
	return row.New(18).Add(
		col.New(7).Add(
			text.New(h.CenterName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(contact, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(h.Title), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(h.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+h.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func patientRow(name, number, extra string) core.Row {
	detail := "N° patient : " + nonEmpty(number, "-")
	if extra != "" {
		detail += "   |   " + extra
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PATIENT", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(name, "-"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func labelValueRow(label, value string) core.Row {
	return row.New(6).Add(
		col.New(4).Add(text.New(label+" :", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
		col.New(8).Add(text.New(value, props.Text{Size: 9, Top: 1})),
	)
}

func sectionTitleRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

// paragraphRows: una fila por línea del texto libre.
func paragraphRows(s string) []core.Row {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(l, props.Text{Size: 9, Left: 2}),
		)))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de medicamentos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	bg := &props.Cell{BackgroundColor: colorPrimary}
	return row.New(8).WithStyle(bg).Add(
		h("Médicament", 4, align.Left),
		h("Posologie", 2, align.Left),
		h("Fréquence", 2, align.Left),
		h("Durée", 2, align.Left),
		h("Qté", 2, align.Center),
	)
}

func prescriptionRows(lines []dto.PrescriptionLineView) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1}))
	}
	result := make([]core.Row, 0, len(lines)*2)
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			cell(l.MedicationName, 4, align.Left),
			cell(nonEmpty(l.Dosage, "-"), 2, align.Left),
			cell(nonEmpty(l.Frequency, "-"), 2, align.Left),
			cell(nonEmpty(l.Duration, "-"), 2, align.Left),
			cell(fmt.Sprintf("%d", l.Quantity), 2, align.Center),
		))
		if l.Instructions != "" {
			result = append(result, row.New(5).Add(col.New(12).Add(
				text.New("- "+l.Instructions, props.Text{Size: 7, Left: 4, Color: colorGray}),
			)))
		}
	}
	return result
}

// amountsRow: bloque de importes alineado a la derecha.
func (g *MarotoGenerator) amountsRow(v dto.ReceiptView) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(d decimal.Decimal) core.Component {
		return text.New(g.money(d), props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(4),
		col.New(4).Add(
			label("Montant dû :"),
			label("Déjà réglé :"),
			text.New("MONTANT PAYÉ :", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2}),
			label("Reste à payer :"),
		),
		col.New(4).Add(
			value(v.TotalDue),
			value(v.TotalPaid.Sub(v.Amount)),
			text.New(g.money(v.Amount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}),
			value(v.Remaining),
		),
	)
}

func signatureRow(caption string) core.Row {
	return row.New(30).Add(
		col.New(7),
		col.New(5).Add(
			text.New(caption, props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func phoneLabel(phone string) string {
	if phone == "" {
		return ""
	}
	return "Tél : " + phone
}

func paymentMethodLabel(m string) string {
	switch m {
	case "Cash":
		return "Espèces"
	case "Card":
		return "Carte bancaire"
	case "MobileMoney":
		return "Mobile Money"
	case "Insurance":
		return "Assurance"
	case "BankTransfer":
		return "Virement"
	}
	return m
}

func (g *MarotoGenerator) money(d decimal.Decimal) string {
	s := formatMoney(d)
	if g.currency != "" {
		s += " " + g.currency
	}
	return s
}

// formatMoney separa miles con espacio y usa coma decimal.
// Ej: 25000 → "25 000,00", 1234567.5 → "1 234 567,50"
func formatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	return string(buf) + "," + frac
}

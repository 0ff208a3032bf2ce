package simulation

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

// Report resultado de una corrida del harness. Mismatch debe ser 0.
type Report struct {
	Seed     int64
	Guard    string
	Requests int

	TotalBefore           int64
	TotalAfter            int64
	SuccessfulQuantitySum int64
	ExpectedDecrease      int64 // TotalBefore - TotalAfter
	Mismatch              int64 // SuccessfulQuantitySum - ExpectedDecrease

	SuccessCount int
	FailureCount int
	Rejections   map[entity.RejectReason]int

	ReservedValue decimal.Decimal // suma de precio*cantidad de los pedidos exitosos
	MaxInFlight   int64           // máximo de pedidos simultáneos en una instancia
	Elapsed       time.Duration

	Violations []string
}

// OK indica que no se detectó ninguna violación de invariantes.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

func (r *Report) violate(format string, args ...any) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// Verify compara las fotografías antes/después con las respuestas y verifica
// I1 (no negativos), I2 (no se concede más de lo que hubo), I3 (conservación)
// e I4 (una respuesta por pedido).
func Verify(before, after entity.Snapshot, requests []entity.OrderRequest, responses []entity.OrderResponse) Report {
	r := Report{
		Requests:      len(requests),
		TotalBefore:   before.Total(),
		TotalAfter:    after.Total(),
		Rejections:    make(map[entity.RejectReason]int),
		ReservedValue: decimal.Zero,
	}

	prices := make(map[int]decimal.Decimal, len(before.Levels))
	for _, l := range before.Levels {
		prices[l.ProductID] = l.Price
	}

	// I4
	if len(responses) != len(requests) {
		r.violate("I4: %d pedidos y %d respuestas", len(requests), len(responses))
	}
	seen := make(map[string]int, len(responses))
	perProduct := make(map[int]int64)
	for i, resp := range responses {
		if resp.State() == entity.StatePending {
			r.violate("I4: pedido #%d sin respuesta terminal", i)
			continue
		}
		// La respuesta i pertenece al pedido i; el ID solo se usa si viene informado.
		if i < len(requests) && resp.Request != requests[i] {
			r.violate("I4: respuesta #%d corresponde a %s, se esperaba %s", i, resp.Request, requests[i])
		}
		if resp.Request.ID != "" {
			seen[resp.Request.ID]++
			if seen[resp.Request.ID] == 2 {
				r.violate("I4: pedido %s con respuesta duplicada", resp.Request.ID)
			}
		}

		if resp.Success {
			r.SuccessCount++
			r.SuccessfulQuantitySum += resp.Request.Quantity
			perProduct[resp.Request.ProductID] += resp.Request.Quantity
			r.ReservedValue = r.ReservedValue.Add(prices[resp.Request.ProductID].Mul(decimal.NewFromInt(resp.Request.Quantity)))
			continue
		}
		r.FailureCount++
		r.Rejections[resp.Reason]++
	}

	// I1, I2 y conservación por producto
	for _, l := range after.Levels {
		if l.Quantity < 0 {
			r.violate("I1: producto %d con stock negativo %d", l.ProductID, l.Quantity)
		}
		if l.Reserved > l.Initial {
			r.violate("I2: producto %d concedió %d de %d", l.ProductID, l.Reserved, l.Initial)
		}
		if l.Initial-l.Reserved != l.Quantity {
			r.violate("I2: producto %d perdió actualizaciones (inicial %d, concedido %d, actual %d)",
				l.ProductID, l.Initial, l.Reserved, l.Quantity)
		}
		if b, ok := before.Level(l.ProductID); ok && b.Quantity-l.Quantity != perProduct[l.ProductID] {
			r.violate("I3: producto %d descontó %d pero las respuestas suman %d",
				l.ProductID, b.Quantity-l.Quantity, perProduct[l.ProductID])
		}
	}

	// I3
	r.ExpectedDecrease = r.TotalBefore - r.TotalAfter
	r.Mismatch = r.SuccessfulQuantitySum - r.ExpectedDecrease
	if r.Mismatch != 0 {
		r.violate("I3: diferencia de %d unidades entre lo reservado y lo descontado", r.Mismatch)
	}
	return r
}

// Print escribe el reporte con separadores de miles según tag.
func (r Report) Print(w io.Writer, tag language.Tag) {
	p := message.NewPrinter(tag)
	p.Fprintf(w, "Guard: %s  semilla: %d  pedidos: %d  duración: %s\n", r.Guard, r.Seed, r.Requests, r.Elapsed.Round(time.Millisecond))
	p.Fprintf(w, "Total de productos antes: %d\n", r.TotalBefore)
	p.Fprintf(w, "Total de productos después: %d\n", r.TotalAfter)
	p.Fprintf(w, "Cantidad reservada por pedidos exitosos: %d\n", r.SuccessfulQuantitySum)
	p.Fprintf(w, "Cantidad que debería haberse reservado: %d\n", r.ExpectedDecrease)
	p.Fprintf(w, "Diferencia (mismatch): %d\n", r.Mismatch)
	p.Fprintf(w, "Pedidos exitosos: %d\n", r.SuccessCount)
	p.Fprintf(w, "Pedidos fallidos: %d (NotFound=%d, InsufficientStock=%d, Canceled=%d)\n",
		r.FailureCount,
		r.Rejections[entity.ReasonNotFound],
		r.Rejections[entity.ReasonInsufficientStock],
		r.Rejections[entity.ReasonCanceled])
	p.Fprintf(w, "Valor reservado: %s\n", r.ReservedValue.StringFixed(2))
	p.Fprintf(w, "Máximo en vuelo por instancia: %d\n", r.MaxInFlight)
	for _, v := range r.Violations {
		p.Fprintf(w, "VIOLACIÓN: %s\n", v)
	}
}

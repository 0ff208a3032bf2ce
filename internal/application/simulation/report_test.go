package simulation_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventory-reservation/internal/application/simulation"
	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

func level(id int, initial, qty, reserved int64) entity.ProductLevel {
	return entity.ProductLevel{ProductID: id, Price: decimal.RequireFromString("2.50"), Initial: initial, Quantity: qty, Reserved: reserved}
}

func req(id string, product int, qty int64) entity.OrderRequest {
	return entity.OrderRequest{ID: id, ProductID: product, Quantity: qty}
}

func TestVerify_Consistente(t *testing.T) {
	before := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 10, 10, 0), level(2, 5, 5, 0)}}
	after := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 10, 6, 4), level(2, 5, 5, 0)}}
	requests := []entity.OrderRequest{req("a", 1, 4), req("b", 2, 9), req("c", 3, 1)}
	responses := []entity.OrderResponse{
		entity.Fulfilled(requests[0], "i1"),
		entity.Rejected(requests[1], "i1", entity.ReasonInsufficientStock),
		entity.Rejected(requests[2], "i2", entity.ReasonNotFound),
	}

	r := simulation.Verify(before, after, requests, responses)

	assert.True(t, r.OK(), "%v", r.Violations)
	assert.Equal(t, int64(15), r.TotalBefore)
	assert.Equal(t, int64(11), r.TotalAfter)
	assert.Equal(t, int64(4), r.SuccessfulQuantitySum)
	assert.Equal(t, int64(4), r.ExpectedDecrease)
	assert.Zero(t, r.Mismatch)
	assert.Equal(t, 1, r.SuccessCount)
	assert.Equal(t, 2, r.FailureCount)
	assert.Equal(t, 1, r.Rejections[entity.ReasonNotFound])
	assert.Equal(t, 1, r.Rejections[entity.ReasonInsufficientStock])
	assert.Equal(t, "10.00", r.ReservedValue.StringFixed(2))
}

func TestVerify_DetectaMismatch(t *testing.T) {
	before := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, 5, 0)}}
	after := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, 3, 4)}}
	requests := []entity.OrderRequest{req("a", 1, 2), req("b", 1, 2)}
	responses := []entity.OrderResponse{entity.Fulfilled(requests[0], "i"), entity.Fulfilled(requests[1], "i")}

	r := simulation.Verify(before, after, requests, responses)

	assert.False(t, r.OK())
	assert.Equal(t, int64(2), r.Mismatch)
	assert.NotEmpty(t, r.Violations)
}

func TestVerify_DetectaRespuestaFaltanteYDuplicada(t *testing.T) {
	snap := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, 5, 0)}}
	requests := []entity.OrderRequest{req("a", 9, 1), req("b", 9, 1), req("c", 9, 1)}
	responses := []entity.OrderResponse{
		entity.Rejected(requests[0], "i", entity.ReasonNotFound),
		entity.Rejected(requests[0], "i", entity.ReasonNotFound), // duplicada y fuera de lugar
		{},
	}

	r := simulation.Verify(snap, snap, requests, responses)

	assert.False(t, r.OK())
	joined := ""
	for _, v := range r.Violations {
		joined += v + "\n"
	}
	assert.Contains(t, joined, "sin respuesta terminal")
	assert.Contains(t, joined, "duplicada")
	assert.Contains(t, joined, "corresponde a")
}

// Sin ID no hay duplicados que contar; la posición sigue detectando
// respuestas que no corresponden a su pedido.
func TestVerify_PedidosSinID(t *testing.T) {
	snap := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, 5, 0)}}
	requests := []entity.OrderRequest{req("", 9, 1), req("", 9, 2)}

	ok := simulation.Verify(snap, snap, requests, []entity.OrderResponse{
		entity.Rejected(requests[0], "i", entity.ReasonNotFound),
		entity.Rejected(requests[1], "i", entity.ReasonNotFound),
	})
	assert.True(t, ok.OK(), "%v", ok.Violations)

	swapped := simulation.Verify(snap, snap, requests, []entity.OrderResponse{
		entity.Rejected(requests[1], "i", entity.ReasonNotFound),
		entity.Rejected(requests[0], "i", entity.ReasonNotFound),
	})
	assert.False(t, swapped.OK())
	assert.Contains(t, swapped.Violations[0], "corresponde a")
}

func TestVerify_DetectaStockNegativoYSobreventa(t *testing.T) {
	before := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, 5, 0)}}
	after := entity.Snapshot{Levels: []entity.ProductLevel{level(1, 5, -1, 6)}}
	requests := []entity.OrderRequest{req("a", 1, 6)}
	responses := []entity.OrderResponse{entity.Fulfilled(requests[0], "i")}

	r := simulation.Verify(before, after, requests, responses)

	joined := ""
	for _, v := range r.Violations {
		joined += v + "\n"
	}
	assert.Contains(t, joined, "I1")
	assert.Contains(t, joined, "I2")
	assert.Zero(t, r.Mismatch)
}

func TestReport_Print(t *testing.T) {
	r := simulation.Report{
		Guard:                 "sharded",
		TotalBefore:           52_075_923,
		TotalAfter:            33_670_312,
		SuccessfulQuantitySum: 18_405_611,
		ExpectedDecrease:      18_405_611,
		SuccessCount:          3,
		FailureCount:          1,
		Rejections:            map[entity.RejectReason]int{entity.ReasonNotFound: 1},
		ReservedValue:         decimal.RequireFromString("12.5"),
		Violations:            []string{"I3: ejemplo"},
	}
	var buf bytes.Buffer
	r.Print(&buf, language.English)

	out := buf.String()
	assert.Contains(t, out, "52,075,923")
	assert.Contains(t, out, "Diferencia (mismatch): 0")
	assert.Contains(t, out, "NotFound=1")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "VIOLACIÓN: I3: ejemplo")
}

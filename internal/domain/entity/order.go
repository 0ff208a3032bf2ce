package entity

import "fmt"

// OrderRequest es un pedido de reserva generado por la carga de trabajo.
// Es un valor inmutable que se consume una sola vez.
type OrderRequest struct {
	ID         string // UUID, identifica el pedido para verificar I4
	CustomerID int
	ProductID  int
	Quantity   int64
}

func (r OrderRequest) String() string {
	return fmt.Sprintf("order %s (customer=%d product=%d qty=%d)", r.ID, r.CustomerID, r.ProductID, r.Quantity)
}

// RejectReason motivo tipado de rechazo de un pedido.
type RejectReason string

const (
	ReasonNone              RejectReason = ""
	ReasonNotFound          RejectReason = "NotFound"
	ReasonInsufficientStock RejectReason = "InsufficientStock"
	// ReasonCanceled solo aparece cuando el contexto del llamador se cancela
	// mientras espera un slot de admisión o el guard del almacén.
	ReasonCanceled RejectReason = "Canceled"
)

// RequestState estado de un pedido dentro del harness.
type RequestState string

const (
	StatePending   RequestState = "pending"
	StateFulfilled RequestState = "fulfilled"
	StateRejected  RequestState = "rejected"
)

// OrderResponse resultado terminal de un pedido. Se produce exactamente una vez
// por OrderRequest y no se modifica después de creado.
type OrderResponse struct {
	Success    bool
	Request    OrderRequest
	Reason     RejectReason
	InstanceID string // instancia de servicio que atendió el pedido
}

// Fulfilled construye una respuesta exitosa.
func Fulfilled(req OrderRequest, instanceID string) OrderResponse {
	return OrderResponse{Success: true, Request: req, InstanceID: instanceID}
}

// Rejected construye una respuesta de rechazo con su motivo.
func Rejected(req OrderRequest, instanceID string, reason RejectReason) OrderResponse {
	return OrderResponse{Success: false, Request: req, Reason: reason, InstanceID: instanceID}
}

// ErrorMessage devuelve el motivo de rechazo como texto; vacío si el pedido fue exitoso.
func (r OrderResponse) ErrorMessage() string {
	return string(r.Reason)
}

// State mapea la respuesta a su estado terminal. El valor cero de
// OrderResponse (sin Request.ID) se considera pendiente.
func (r OrderResponse) State() RequestState {
	switch {
	case r.Success:
		return StateFulfilled
	case r.Reason != ReasonNone:
		return StateRejected
	default:
		return StatePending
	}
}

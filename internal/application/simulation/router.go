package simulation

import (
	"math/rand"

	"github.com/jhoicas/inventory-reservation/internal/domain/entity"
)

// Router elige la instancia (índice en [0, n)) que atiende el pedido index.
type Router interface {
	Route(index int, req entity.OrderRequest) int
}

// HashRouter enrutamiento determinista: depende solo de la semilla y del
// índice del pedido, no del orden de planificación de las goroutines.
type HashRouter struct {
	seed uint64
	n    int
}

// NewHashRouter construye el router reproducible para n instancias.
func NewHashRouter(seed int64, n int) HashRouter {
	return HashRouter{seed: uint64(seed), n: n}
}

// Route aplica splitmix64 sobre seed^index.
func (r HashRouter) Route(index int, _ entity.OrderRequest) int {
	z := r.seed ^ uint64(index)
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int(z % uint64(r.n))
}

// RandomRouter enrutamiento aleatorio real, como política de producción.
// No es reproducible; las pruebas usan HashRouter.
type RandomRouter struct {
	n int
}

// NewRandomRouter construye el router aleatorio para n instancias.
func NewRandomRouter(n int) RandomRouter {
	return RandomRouter{n: n}
}

// Route elige una instancia uniforme.
func (r RandomRouter) Route(int, entity.OrderRequest) int {
	return rand.Intn(r.n)
}

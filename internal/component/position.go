// component/position.go
package component

// Position: компонент позиции (мировые координаты)
type Position struct {
	X, Y float64
}

// internal/entity/ecs.go
package entity

import (
	"go-power-towers/internal/component"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/types"
)

// ECS allocates entity IDs and stores per-entity components. Buildings and
// towers share the ID space with their network nodes.
type ECS struct {
	NextID        types.EntityID
	Positions     map[types.EntityID]*component.Position
	Towers        map[types.EntityID]*component.Tower
	PowerAdapters map[types.EntityID]*energy.TowerPowerAdapter
}

func NewECS() *ECS {
	return &ECS{
		NextID:        1,
		Positions:     make(map[types.EntityID]*component.Position),
		Towers:        make(map[types.EntityID]*component.Tower),
		PowerAdapters: make(map[types.EntityID]*energy.TowerPowerAdapter),
	}
}

func (ecs *ECS) NewEntity() types.EntityID {
	id := ecs.NextID
	ecs.NextID++
	return id
}

// RemoveEntity drops every component of id.
func (ecs *ECS) RemoveEntity(id types.EntityID) {
	delete(ecs.Positions, id)
	delete(ecs.Towers, id)
	delete(ecs.PowerAdapters, id)
}

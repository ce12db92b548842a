// internal/event/types.go
package event

const (
	NodeRegistered    EventType = "NodeRegistered"    // Data: types.EntityID
	NodeUnregistered  EventType = "NodeUnregistered"  // Data: types.EntityID
	PowerConnected    EventType = "PowerConnected"    // Data: energy.Connection
	PowerDisconnected EventType = "PowerDisconnected" // Data: energy.Connection
	NetworkState      EventType = "NetworkState"      // Data: energy.NetworkState, once per tick

	BuildingPlaced   EventType = "BuildingPlaced"   // Data: building.Placed
	BuildingRemoved  EventType = "BuildingRemoved"  // Data: types.EntityID
	BuildingUpgraded EventType = "BuildingUpgraded" // Data: building.Upgraded
	ConnectionMode   EventType = "ConnectionMode"   // Data: building.ConnectionModeState

	TowerPlaced  EventType = "TowerPlaced"  // Data: types.EntityID
	TowerRemoved EventType = "TowerRemoved" // Data: types.EntityID

	GoldChanged EventType = "GoldChanged" // Data: int balance
	Toast       EventType = "Toast"       // Data: ToastMessage
)

// ToastKind classifies a user-facing message.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// ToastMessage is the payload of a Toast event.
type ToastMessage struct {
	Message string
	Kind    ToastKind
}

// internal/types/types.go
package types

// EntityID identifies power nodes and towers. Zero is never allocated.
type EntityID uint64

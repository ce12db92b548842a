package component

// Combat holds the attack stats of a tower.
type Combat struct {
	Damage   float64
	FireRate float64 // выстрелов в секунду
	Range    float64 // в клетках
}

// DPS is damage per second.
func (c Combat) DPS() float64 {
	return c.Damage * c.FireRate
}

package game

// Projectile 子弹，仅存在于本地
type Projectile struct {
	Position          Vector3
	Velocity          Vector3
	RemainingLifetime int
}

// advanceProjectiles 推进所有子弹并移除寿命耗尽者
func advanceProjectiles(ps []Projectile) []Projectile {
	alive := ps[:0]
	for _, b := range ps {
		b.RemainingLifetime--
		b.Position = b.Position.Add(b.Velocity)
		if b.RemainingLifetime <= 0 {
			continue
		}
		alive = append(alive, b)
	}
	return alive
}

package combat

import "math/rand/v2"

// Roller produces a die roll from 1 to sides. Injected so tests can pin
// initiative rolls.
type Roller func(sides int) int

// RollDie rolls one die with the given number of sides.
func RollDie(sides int) int {
	return rand.IntN(sides) + 1
}

// RollInitiative rolls a d20 and adds the dexterity modifier, with a
// minimum result of 1.
func RollInitiative(roll Roller, dexMod int) float64 {
	total := roll(20) + dexMod
	if total < 1 {
		total = 1
	}
	return float64(total)
}

package journal

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var adjectives = []string{
	"Brave", "Clever", "Wild", "Swift", "Bold", "Hungry", "Sly", "Coiled",
	"Fierce", "Gentle", "Silent", "Rapid", "Calm", "Proud", "Wise", "Greedy",
	"Lucky", "Sneaky", "Cunning", "Bright", "Dark", "Golden", "Silver", "Royal",
	"Ancient", "Scaly", "Quick", "Slow", "Tiny", "Giant", "Striped", "Spotted",
}

var serpents = []string{
	"Python", "Cobra", "Viper", "Mamba", "Adder", "Boa", "Krait", "Taipan",
	"Asp", "Anaconda", "Rattler", "Sidewinder", "Racer", "Kingsnake", "Garter", "Copperhead",
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomName creates a session name in the form AdjectiveSnakeNumber
func RandomName() string {
	rngMu.Lock()
	defer rngMu.Unlock()
	adjective := adjectives[rng.Intn(len(adjectives))]
	serpent := serpents[rng.Intn(len(serpents))]
	number := rng.Intn(100)
	return fmt.Sprintf("%s%s%d", adjective, serpent, number)
}

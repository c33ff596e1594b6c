package util

import (
	"fmt"
	"math/rand"
	"time"
)

var adjectives = []string{
	"Fast", "Slow", "Quick", "Lucky", "Bold", "Sly", "Happy", "Funny",
	"Red", "Blue", "Green", "Fuzzy", "Tall", "Grand", "Prime", "Wild",
}

var animals = []string{
	"Dog", "Cat", "Mouse", "Shark", "Hippo", "Lion", "Tiger",
	"Bear", "Otter", "Snake", "Lizard", "Bird", "Okapi", "Eagle", "Wolf", "Fox",
}

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

// GetRandomName returns a random name by combining an adjective with an animal
// The result is always a valid username: letters and digits, at most 12 characters.
func GetRandomName() string {
	adjective := adjectives[random.Intn(len(adjectives))]
	animal := animals[random.Intn(len(animals))]

	return fmt.Sprintf("%s%s%d", adjective, animal, random.Intn(10))
}

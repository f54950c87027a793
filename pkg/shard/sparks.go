package shard

import "math/rand/v2"

// Sparks are the prompts a new shard answers.
var Sparks = []string{
	"Which hue best reflects the emotion you carry today?",
	"Name a moment that cracked your heart.",
	"Years later, what memory is still just as clear?",
	"What is your deepest aspiration?",
	"Describe a part of yourself that's been reforged by pressure.",
	"What makes you glow?",
	"Which moment do you reflect on daily?",
	"Has anyone ever made you melt? Are they still in your life?",
	"If you could etch one truth forever, what would it say?",
	"Is your home full of light, or dark and moody?",
	"Which part of you is fragile like glass?",
	"Name a ritual that smooths your furrowed brow.",
	"Have you ever broken something beyond repair?",
	"Some people have a hard exterior, what about you?",
	"What moment made your path clear?",
	"With whom are you comfortable being transparent?",
}

// RandomSpark picks a spark using r, or the global source when r is nil.
func RandomSpark(r *rand.Rand) string {
	if r == nil {
		return Sparks[rand.IntN(len(Sparks))]
	}
	return Sparks[r.IntN(len(Sparks))]
}

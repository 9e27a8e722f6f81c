package templating

import "math/rand/v2"

// sampleUnique draws one word from pool, preferring words drawn fewer than
// maxRepeat times in this batch. When every word is at the cap it falls back
// to the least used word, ties broken by shuffle order. The drawn word's
// counter is always incremented. pool itself is never reordered.
func sampleUnique(rng *rand.Rand, pool []string, usage *Usage, maxRepeat int) string {
	shuffled := append([]string(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	candidates := make([]string, 0, len(shuffled))
	for _, w := range shuffled {
		if usage.Words[w] < maxRepeat {
			candidates = append(candidates, w)
		}
	}

	var choice string
	if len(candidates) > 0 {
		choice = candidates[rng.IntN(len(candidates))]
	} else {
		choice = shuffled[0]
		for _, w := range shuffled[1:] {
			if usage.Words[w] < usage.Words[choice] {
				choice = w
			}
		}
	}
	usage.Words[choice]++
	return choice
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}

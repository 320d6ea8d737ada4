package assessment

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Mock produces randomized assessments of the same shape as model
// output, for exercising the UI without the model present. Scores stay
// in [25,85]; concerns are a random-size, order-preserving pick from the
// category's fixed list.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates a mock analyzer. A nil source falls back to a
// time-seeded one.
func NewMock(src rand.Source) *Mock {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Mock{rng: rand.New(src)}
}

// Analyze ignores image content entirely and never fails.
func (m *Mock) Analyze(imagesAnalyzed int) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	score := 25 + m.rng.Intn(61)
	category := Categorize(score)
	pool := ConcernsFor(category)

	k := 1 + m.rng.Intn(len(pool))
	picked := m.rng.Perm(len(pool))[:k]
	sort.Ints(picked)

	concerns := make([]string, 0, k)
	for _, i := range picked {
		concerns = append(concerns, pool[i])
	}

	return Result{
		Score:          score,
		RiskCategory:   category,
		Concerns:       concerns,
		ImagesAnalyzed: imagesAnalyzed,
	}
}

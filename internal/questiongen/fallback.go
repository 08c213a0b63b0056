package questiongen

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/dataready/internal/interview"
)

// Fallback picks questions from the built-in pools. It never fails.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback returns a Fallback seeded with seed. A zero seed uses the
// current time.
func NewFallback(seed uint64) *Fallback {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewFallbackRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewFallbackRand returns a Fallback drawing from rng.
func NewFallbackRand(rng *rand.Rand) *Fallback {
	return &Fallback{rng: rng}
}

// Generate picks uniformly among pool questions not yet asked. When the
// pool is exhausted it picks from the whole pool and accepts a repeat.
func (f *Fallback) Generate(_ context.Context, ictx interview.Context) (*interview.Question, error) {
	s := ictx.Session
	pool := Pool(s.Setup.TargetRole, s.Setup.CloudPreference)

	available := make([]PoolEntry, 0, len(pool))
	for _, e := range pool {
		if !s.IsQuestionAsked(e.Text) {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		available = pool
	}

	f.mu.Lock()
	pick := available[f.rng.IntN(len(available))]
	f.mu.Unlock()

	return &interview.Question{
		ID:              NewID(),
		Text:            pick.Text,
		Category:        "system_design",
		SkillID:         pick.SkillID,
		Type:            interview.QuestionScenario,
		Difficulty:      interview.DifficultyLabel(s.Difficulty),
		DifficultyScore: s.Difficulty,
		ExpectedPoints:  []string{"Clear explanation", "Practical considerations", "Trade-off analysis"},
		Source:          SourceFallback,
	}, nil
}

package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
)

type fakeTurns struct {
	mu      sync.Mutex
	turns   []core.Turn
	nextID  int64
	failAdd bool
	pruned  []time.Time
}

func (f *fakeTurns) AddTurn(_ context.Context, turn core.Turn) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return 0, errors.New("disk full")
	}
	f.nextID++
	turn.ID = f.nextID
	turn.CreatedAt = time.Now()
	f.turns = append(f.turns, turn)
	return turn.ID, nil
}

func (f *fakeTurns) NearestUserTurns(_ context.Context, vec []float32, excludeID int64, k int) ([]core.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Turn
	for _, t := range f.turns {
		if t.Role != core.RoleUser || t.ID == excludeID || len(t.Embedding) != len(vec) {
			continue
		}
		t.Distance = l2(t.Embedding, vec)
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].ID < out[j].ID
		}
		return out[i].Distance < out[j].Distance
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeTurns) RecentTurns(_ context.Context, limit int, excludeID int64) ([]core.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Turn
	for i := len(f.turns) - 1; i >= 0 && len(out) < limit; i-- {
		if f.turns[i].ID == excludeID {
			continue
		}
		out = append([]core.Turn{f.turns[i]}, out...)
	}
	return out, nil
}

func (f *fakeTurns) DeleteTurnsBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, before)
	return 0, nil
}

func (f *fakeTurns) all() []core.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Turn(nil), f.turns...)
}

type fakeKnowledge struct {
	mu        sync.Mutex
	fragments []core.KnowledgeFragment
	failAdd   bool
	pruned    []time.Time
}

func (f *fakeKnowledge) AddFragments(_ context.Context, fragments []core.KnowledgeFragment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return errors.New("constraint failed")
	}
	for _, fr := range fragments {
		fr.ID = int64(len(f.fragments) + 1)
		f.fragments = append(f.fragments, fr)
	}
	return nil
}

func (f *fakeKnowledge) NearestFragments(_ context.Context, vec []float32, k int) ([]core.KnowledgeFragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.KnowledgeFragment
	for _, fr := range f.fragments {
		if len(fr.Embedding) != len(vec) {
			continue
		}
		fr.Distance = l2(fr.Embedding, vec)
		out = append(out, fr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeKnowledge) DocumentFragments(_ context.Context, documentID string) ([]core.KnowledgeFragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.KnowledgeFragment
	for _, fr := range f.fragments {
		if fr.DocumentID == documentID {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (f *fakeKnowledge) DeleteFragmentsBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, before)
	return 2, nil
}

// fakeEmbedder maps known texts to fixed vectors; unknown texts get the zero vector.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
	failOn  map[string]bool
	dims    int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string, _ core.EmbedPurpose) ([]float32, error) {
	if e.fail || e.failOn[text] {
		return nil, errors.New("embedding quota exceeded")
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

func (e *fakeEmbedder) Dims() int {
	if e.dims == 0 {
		return 2
	}
	return e.dims
}

type fakeModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	bundles []core.PromptBundle
	models  []string
}

func (m *fakeModel) Generate(_ context.Context, bundle core.PromptBundle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles = append(m.bundles, bundle)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *fakeModel) Models(context.Context) ([]string, error) {
	if m.models == nil {
		return nil, errors.New("listing not supported")
	}
	return m.models, nil
}

func (m *fakeModel) Name() string    { return "gemini-test" }
func (m *fakeModel) Available() bool { return true }

func (m *fakeModel) lastBundle() core.PromptBundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bundles[len(m.bundles)-1]
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		ContextWindow: 10,
		MemoryK:       3,
		KnowledgeK:    3,
		HistoryLimit:  50,
	}
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

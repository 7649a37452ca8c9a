// internal/platform/workerpool/schedulers_test.go
package workerpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name     string
	priority int
	weight   int
}

func (f fakeTask) Name() string  { return f.name }
func (f fakeTask) Priority() int { return f.priority }
func (f fakeTask) Weight() int   { return f.weight }

// funcTask no es comparable; HybridScheduler no debe usarlo como clave de map.
type funcTask struct {
	fakeTask
	fn func()
}

func names[T Task](tasks []T) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name()
	}
	return out
}

func sample() []fakeTask {
	return []fakeTask{
		{"whois", 5, 60},
		{"dns", 10, 10},
		{"crtsh", 5, 80},
		{"rdap", 10, 30},
		{"webmeta", 1, 5},
	}
}

func TestSchedulers(t *testing.T) {
	tests := []struct {
		scheduler Scheduler
		expected  []string
	}{
		{NewPriorityScheduler(), []string{"dns", "rdap", "whois", "crtsh", "webmeta"}},
		{NewWeightedScheduler(), []string{"webmeta", "dns", "rdap", "whois", "crtsh"}},
		{NewHybridScheduler(0.0), []string{"dns", "rdap", "crtsh", "whois", "webmeta"}},
		{NewFIFOScheduler(), []string{"whois", "dns", "crtsh", "rdap", "webmeta"}},
	}

	for _, tt := range tests {
		t.Run(tt.scheduler.Name(), func(t *testing.T) {
			ordered := Apply(tt.scheduler, sample())
			assert.Equal(t, tt.expected, names(ordered))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Apply(NewPriorityScheduler(), in)
	assert.Equal(t, "whois", in[0].name)
}

func TestHybridScheduler_NonComparableTasks(t *testing.T) {
	in := []funcTask{
		{fakeTask{"a", 1, 90}, func() {}},
		{fakeTask{"b", 9, 10}, func() {}},
	}
	assert.NotPanics(t, func() {
		out := Apply(NewHybridScheduler(0.5), in)
		assert.Equal(t, []string{"b", "a"}, names(out))
	})
}

func TestNewHybridScheduler_ClampsBalance(t *testing.T) {
	assert.Equal(t, 0.0, NewHybridScheduler(-1).BalanceFactor)
	assert.Equal(t, 1.0, NewHybridScheduler(2).BalanceFactor)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "priority", "Weighted", "hybrid", "fifo"} {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := ByName("random")
	assert.Error(t, err)
}

func TestApply_Empty(t *testing.T) {
	assert.Empty(t, Apply[fakeTask](nil, nil))
}

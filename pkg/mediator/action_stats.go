package mediator

import (
	"math"
	"sort"
)

// Action usage analytics. Degenerate inputs (no recorded actions)
// resolve to the documented neutral value, commonly 0.0 or "".

// ActionStats returns a defensive copy of the action usage counters.
// Mutating the returned map never affects the mediator's state.
func (m *Mediator) ActionStats() map[string]int {
	out := make(map[string]int, len(m.actionCounts))
	for k, v := range m.actionCounts {
		out[k] = v
	}
	return out
}

// MostUsedAction returns the action with the highest count; ties
// resolve to the lexicographically smallest name. Empty counters
// yield "".
func (m *Mediator) MostUsedAction() string {
	best := ""
	bestCount := -1
	for _, name := range m.sortedActionNames() {
		if m.actionCounts[name] > bestCount {
			best = name
			bestCount = m.actionCounts[name]
		}
	}
	return best
}

// LeastUsedAction returns the action with the lowest count; ties
// resolve to the lexicographically smallest name. Empty counters
// yield "".
func (m *Mediator) LeastUsedAction() string {
	best := ""
	bestCount := math.MaxInt
	for _, name := range m.sortedActionNames() {
		if m.actionCounts[name] < bestCount {
			best = name
			bestCount = m.actionCounts[name]
		}
	}
	return best
}

// ActionEntropy returns the Shannon entropy (bits) of the action usage
// distribution
func (m *Mediator) ActionEntropy() float64 {
	total := m.totalActions()
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, count := range m.actionCounts {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// ActionEntropyNormalized returns the entropy divided by its maximum
// for the number of distinct actions used, yielding a value in [0,1].
// Fewer than two distinct actions yield 0.
func (m *Mediator) ActionEntropyNormalized() float64 {
	distinct := len(m.actionCounts)
	if distinct < 2 {
		return 0
	}
	return m.ActionEntropy() / math.Log2(float64(distinct))
}

// ActionDiversityScore returns the number of distinct actions used
// divided by the total number of applications
func (m *Mediator) ActionDiversityScore() float64 {
	total := m.totalActions()
	if total == 0 {
		return 0
	}
	return float64(len(m.actionCounts)) / float64(total)
}

// ActionDiversityRatio returns the number of distinct actions used
// divided by the number of action kinds the mediator knows
func (m *Mediator) ActionDiversityRatio() float64 {
	if len(m.actionCounts) == 0 {
		return 0
	}
	return float64(len(m.actionCounts)) / float64(len(actionPriority))
}

// ActionBalanceScore returns 1 minus the normalized gap between the
// most and least used action, so a perfectly even distribution scores 1
func (m *Mediator) ActionBalanceScore() float64 {
	total := m.totalActions()
	if total == 0 {
		return 0
	}
	min, max := math.MaxInt, 0
	for _, count := range m.actionCounts {
		if count < min {
			min = count
		}
		if count > max {
			max = count
		}
	}
	return 1 - float64(max-min)/float64(total)
}

// ActionConcentrationRatio returns the share of total usage carried by
// the topK most used actions. topK values outside (0, distinct] are
// clamped into range.
func (m *Mediator) ActionConcentrationRatio(topK int) float64 {
	total := m.totalActions()
	if total == 0 || topK <= 0 {
		return 0
	}
	counts := make([]int, 0, len(m.actionCounts))
	for _, c := range m.actionCounts {
		counts = append(counts, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	if topK > len(counts) {
		topK = len(counts)
	}
	sum := 0
	for _, c := range counts[:topK] {
		sum += c
	}
	return float64(sum) / float64(total)
}

// ActionGiniCoefficient returns the Gini coefficient of the usage
// counts: 0 for a perfectly even distribution, approaching 1 as usage
// concentrates on one action
func (m *Mediator) ActionGiniCoefficient() float64 {
	n := len(m.actionCounts)
	total := m.totalActions()
	if n == 0 || total == 0 {
		return 0
	}
	counts := make([]int, 0, n)
	for _, c := range m.actionCounts {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	cumulative := 0.0
	for i, c := range counts {
		cumulative += float64(c) * float64(2*(i+1)-n-1)
	}
	return cumulative / (float64(n) * float64(total))
}

// ActionUniformityIndex returns 1 minus the mean absolute deviation
// from the uniform count, normalized so identical counts yield 1
func (m *Mediator) ActionUniformityIndex() float64 {
	n := len(m.actionCounts)
	total := m.totalActions()
	if n == 0 || total == 0 {
		return 0
	}
	uniform := float64(total) / float64(n)
	deviation := 0.0
	for _, c := range m.actionCounts {
		deviation += math.Abs(float64(c) - uniform)
	}
	// The worst case concentrates everything on one action.
	worst := 2 * uniform * float64(n-1)
	if worst == 0 {
		return 1
	}
	return 1 - deviation/worst
}

func (m *Mediator) totalActions() int {
	total := 0
	for _, c := range m.actionCounts {
		total += c
	}
	return total
}

func (m *Mediator) sortedActionNames() []string {
	names := make([]string, 0, len(m.actionCounts))
	for name := range m.actionCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

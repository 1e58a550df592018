package deepresearch

import "sort"

// sortDirectionsByPriorityDesc returns a copy of directions ordered by
// priority descending, stable on ties so sibling order from the
// extractor is preserved.
func sortDirectionsByPriorityDesc(directions []ResearchDirection) []ResearchDirection {
	sorted := make([]ResearchDirection, len(directions))
	copy(sorted, directions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// mergeLearnings groups by exact trimmed content and keeps the max
// reliability (§3, §9 "weighted merge instead of dedup"). Order follows
// first appearance across the inputs, so the report's appearance-order
// sort (§4.9) stays stable.
func mergeLearnings(groups ...[]WeightedLearning) []WeightedLearning {
	order := make([]string, 0)
	best := make(map[string]WeightedLearning)
	for _, g := range groups {
		for _, l := range g {
			key := l.trimmedContent()
			if key == "" {
				continue
			}
			existing, ok := best[key]
			if !ok {
				order = append(order, key)
				best[key] = WeightedLearning{Content: key, Reliability: clamp01(l.Reliability)}
				continue
			}
			if r := clamp01(l.Reliability); r > existing.Reliability {
				existing.Reliability = r
				best[key] = existing
			}
		}
	}
	out := make([]WeightedLearning, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// mergeSourceMeta groups by url and keeps the record with the max
// reliability score (§3).
func mergeSourceMeta(groups ...[]SourceMetadata) []SourceMetadata {
	order := make([]string, 0)
	best := make(map[string]SourceMetadata)
	for _, g := range groups {
		for _, m := range g {
			if m.URL == "" {
				continue
			}
			existing, ok := best[m.URL]
			if !ok {
				order = append(order, m.URL)
				best[m.URL] = m
				continue
			}
			if m.ReliabilityScore > existing.ReliabilityScore {
				best[m.URL] = m
			}
		}
	}
	out := make([]SourceMetadata, 0, len(order))
	for _, url := range order {
		out = append(out, best[url])
	}
	return out
}

// mergeVisitedURLs is a set union, order-preserving by first appearance.
func mergeVisitedURLs(groups ...[]string) []string {
	order := make([]string, 0)
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, u := range g {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			order = append(order, u)
		}
	}
	return order
}

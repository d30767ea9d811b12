package state

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FilterTopics returns the topics matching query, keeping their order. Fuzzy
// matches are preferred; plain substring matching is the fallback.
func FilterTopics(topics []string, query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return cloneStrings(topics)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, topics)
	if len(ranks) > 0 {
		matches := make(map[int]struct{}, len(ranks))
		for _, rank := range ranks {
			matches[rank.OriginalIndex] = struct{}{}
		}
		filtered := make([]string, 0, len(matches))
		for idx, topic := range topics {
			if _, ok := matches[idx]; ok {
				filtered = append(filtered, topic)
			}
		}
		return filtered
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]string, 0, len(topics))
	for _, topic := range topics {
		if strings.Contains(strings.ToLower(topic), lower) {
			filtered = append(filtered, topic)
		}
	}
	return filtered
}

// BestMatchIndex returns the index of the topic that best matches query, or
// -1 when topics is empty.
func BestMatchIndex(topics []string, query string) int {
	if len(topics) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, topic := range topics {
		if strings.EqualFold(topic, trimmed) {
			return i
		}
	}
	for i, topic := range topics {
		if strings.HasPrefix(strings.ToLower(topic), lower) {
			return i
		}
	}
	for i, topic := range topics {
		if strings.Contains(strings.ToLower(topic), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, topics)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance ||
			(rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return best.OriginalIndex
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	dup := make([]string, len(in))
	copy(dup, in)
	return dup
}

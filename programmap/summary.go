package programmap

import (
	"sort"
	"strings"
)

const summaryTopTokens = 3

// ClusterSummary describes one cluster for display.
type ClusterSummary struct {
	ID        int      `json:"id"`
	Label     string   `json:"label"`
	Members   []string `json:"members"`
	TopTokens []string `json:"topTokens"`
}

// Summarize labels each cluster by the heaviest tokens of its centroid.
func Summarize(records []ProgramRecord, vocab Vocabulary, c *Clustering) []ClusterSummary {
	out := make([]ClusterSummary, c.K)
	for id := range out {
		out[id] = ClusterSummary{ID: id, Members: []string{}}
	}
	for i, a := range c.Assignments {
		if i < len(records) {
			out[a].Members = append(out[a].Members, records[i].Name)
		}
	}
	for id := range out {
		if len(out[id].Members) == 0 {
			out[id].Label = "(empty)"
			out[id].TopTokens = []string{}
			continue
		}
		out[id].TopTokens = topTokens(vocab, c.Centroids[id], summaryTopTokens)
		if len(out[id].TopTokens) == 0 {
			out[id].Label = "(no attributes)"
			continue
		}
		out[id].Label = strings.Join(out[id].TopTokens, " / ")
	}
	return out
}

func topTokens(vocab Vocabulary, centroid []float64, limit int) []string {
	idx := make([]int, 0, len(centroid))
	for i, w := range centroid {
		if w > 0 && i < len(vocab) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return centroid[idx[a]] > centroid[idx[b]]
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]string, len(idx))
	for i, col := range idx {
		out[i] = vocab[col]
	}
	return out
}

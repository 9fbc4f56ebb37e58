package similarity

import (
	"strings"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// Cluster groups the indexed ideas greedily in index order. The first
// unassigned idea anchors a cluster and claims every later unassigned idea
// whose similarity to it passes the cluster threshold. Singletons are dropped,
// so every idea belongs to at most one returned cluster.
func (ix *Index) Cluster() []models.IdeaCluster {
	assigned := make([]bool, len(ix.docs))
	clusters := make([]models.IdeaCluster, 0)

	for i := range ix.docs {
		if assigned[i] {
			continue
		}
		members := []int{i}
		for j := i + 1; j < len(ix.docs); j++ {
			if assigned[j] {
				continue
			}
			if ix.pairScore(ix.docs[i], ix.docs[j]) >= ix.cfg.ClusterThreshold {
				members = append(members, j)
			}
		}
		if len(members) < 2 {
			continue
		}

		ids := make([]string, 0, len(members))
		ideas := make([]models.Idea, 0, len(members))
		for _, member := range members {
			assigned[member] = true
			ids = append(ids, ix.docs[member].idea.ID)
			ideas = append(ideas, ix.docs[member].idea)
		}

		anchor := ix.docs[i].idea
		clusters = append(clusters, models.IdeaCluster{
			ID:       "cluster-" + anchor.ID,
			Label:    Label(ideas),
			AnchorID: anchor.ID,
			IdeaIDs:  ids,
		})
	}

	return clusters
}

// Label picks the most frequent tag across ideas, falling back to the most
// frequent category. Ties go to whichever value appeared first.
func Label(ideas []models.Idea) string {
	tags := make([]string, 0)
	for _, idea := range ideas {
		for _, tag := range idea.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}
	if label := mostFrequent(tags); label != "" {
		return label
	}

	categories := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		if idea.Category != "" {
			categories = append(categories, string(idea.Category))
		}
	}
	if label := mostFrequent(categories); label != "" {
		return label
	}
	return string(models.CategoryOther)
}

func mostFrequent(values []string) string {
	counts := make(map[string]int, len(values))
	first := make(map[string]string, len(values))
	order := make([]string, 0, len(values))
	for _, value := range values {
		key := strings.ToLower(value)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			first[key] = value
		}
		counts[key]++
	}

	best := ""
	bestCount := 0
	for _, key := range order {
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}
	return first[best]
}

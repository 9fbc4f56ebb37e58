package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

func sampleIdeas() []models.Idea {
	return []models.Idea{
		{
			ID:          "bakery-1",
			Title:       "Neighbourhood bakery in Islamabad",
			Description: "Open a bakery in Islamabad selling fresh bread and pastries every morning",
			Category:    models.CategoryBusiness,
			Tags:        []string{"bakery", "food"},
			PainPoints:  []string{"No fresh bread nearby"},
		},
		{
			ID:          "tutor-1",
			Title:       "Peer tutoring marketplace",
			Description: "An app matching university students with peer tutors for exam preparation",
			Category:    models.CategoryEducation,
			Tags:        []string{"education", "marketplace"},
			PainPoints:  []string{"Private tutors are expensive"},
		},
		{
			ID:          "bakery-2",
			Title:       "Neighborhood bakery in Islamabad",
			Description: "Open a bakery in Islamabad that sells fresh bread and pastries each morning",
			Category:    models.CategoryBusiness,
			Tags:        []string{"bakery", "breakfast"},
			PainPoints:  []string{"No fresh bread close by"},
		},
	}
}

func TestQueryEmptyIndexOrQuery(t *testing.T) {
	require.Nil(t, Build(nil, DefaultConfig()).Query("bakery"))

	index := Build(sampleIdeas(), DefaultConfig())
	require.Nil(t, index.Query(""))
	require.Nil(t, index.Query("   ...  "))
}

func TestQueryReturnsBestMatch(t *testing.T) {
	index := Build(sampleIdeas(), DefaultConfig())

	match := index.Query("peer tutoring for university students")
	require.NotNil(t, match)
	require.Equal(t, "tutor-1", match.Idea.ID)
	require.Greater(t, match.Score, 0.45)
	require.LessOrEqual(t, match.Score, 1.0)
}

func TestQueryBelowThresholdReturnsNil(t *testing.T) {
	index := Build(sampleIdeas(), DefaultConfig())
	require.Nil(t, index.Query("quantum satellite propulsion"))
}

func TestClusterGroupsNearDuplicates(t *testing.T) {
	index := Build(sampleIdeas(), DefaultConfig())
	clusters := index.Cluster()

	require.Len(t, clusters, 1)
	require.Equal(t, "cluster-bakery-1", clusters[0].ID)
	require.Equal(t, "bakery-1", clusters[0].AnchorID)
	require.Equal(t, []string{"bakery-1", "bakery-2"}, clusters[0].IdeaIDs)
	require.Equal(t, "bakery", clusters[0].Label)
}

func TestClusterTwoIdenticalIdeas(t *testing.T) {
	ideas := []models.Idea{
		{ID: "a", Title: "Dog walking app", Description: "Connect busy owners with dog walkers", Category: models.CategoryTechnology},
		{ID: "b", Title: "Dog walking app", Description: "Connect busy owners with dog walkers", Category: models.CategoryTechnology},
	}
	clusters := Build(ideas, DefaultConfig()).Cluster()

	require.Len(t, clusters, 1)
	require.ElementsMatch(t, []string{"a", "b"}, clusters[0].IdeaIDs)
	require.Equal(t, "technology", clusters[0].Label)
}

func TestClusterMembershipIsExclusive(t *testing.T) {
	ideas := []models.Idea{
		{ID: "1", Title: "Dog walking app", Description: "Connect owners with dog walkers"},
		{ID: "2", Title: "Dog walking app", Description: "Connect owners with dog walkers"},
		{ID: "3", Title: "Dog walking app", Description: "Connect owners with dog walkers"},
	}
	clusters := Build(ideas, DefaultConfig()).Cluster()

	seen := map[string]int{}
	for _, cluster := range clusters {
		for _, id := range cluster.IdeaIDs {
			seen[id]++
		}
	}
	for id, count := range seen {
		require.Equal(t, 1, count, id)
	}
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0].IdeaIDs, 3)
}

func TestLabelTieBreaksByFirstOccurrence(t *testing.T) {
	label := Label([]models.Idea{
		{Tags: []string{"Food", "retail"}},
		{Tags: []string{"retail", "food"}},
	})
	require.Equal(t, "Food", label)

	require.Equal(t, "other", Label(nil))
}

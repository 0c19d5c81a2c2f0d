package posts_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/posts"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func ids(ps []domain.Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}

	return out
}

var fixture = []domain.Post{
	{ID: "a", Title: "Go generics", Excerpt: "Type parameters", Body: "All about Go", Category: "Backend Development", PostDate: day(3)},
	{ID: "b", Title: "Postgres tips", Excerpt: "Indexes", Body: "Vacuum and more", Category: "Database", PostDate: day(1)},
	{ID: "c", Title: "React hooks", Excerpt: "State", Body: "useEffect explained", Category: "Web Development", PostDate: day(5)},
	{ID: "d", Title: "Kubernetes", Excerpt: "Pods and GO services", Body: "Deployments", Category: "DevOps", PostDate: day(2)},
	{ID: "e", Title: "SQL joins", Excerpt: "Inner and outer", Body: "Relational algebra", Category: "database", PostDate: day(4)},
}

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		query     posts.Query
		perPage   int
		wantIDs   []string
		wantTotal int
		wantPages int
	}{
		{
			name:      "Defaults sort newest first",
			query:     posts.Query{},
			wantIDs:   []string{"c", "e", "a", "d", "b"},
			wantTotal: 5,
			wantPages: 1,
		},
		{
			name:      "Oldest first",
			query:     posts.Query{Sort: posts.SortOldest},
			wantIDs:   []string{"b", "d", "a", "e", "c"},
			wantTotal: 5,
			wantPages: 1,
		},
		{
			name:      "Category filter ignores case",
			query:     posts.Query{Category: "DATABASE"},
			wantIDs:   []string{"e", "b"},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "Category all disables filter",
			query:     posts.Query{Category: "All"},
			wantIDs:   []string{"c", "e", "a", "d", "b"},
			wantTotal: 5,
			wantPages: 1,
		},
		{
			name:      "Search matches title, excerpt and body without case",
			query:     posts.Query{Search: "go"},
			wantIDs:   []string{"a", "d"},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "Search and category combine",
			query:     posts.Query{Search: "go", Category: "DevOps"},
			wantIDs:   []string{"d"},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name:      "Second page",
			query:     posts.Query{Page: 2},
			perPage:   2,
			wantIDs:   []string{"a", "d"},
			wantTotal: 5,
			wantPages: 3,
		},
		{
			name:      "Last partial page",
			query:     posts.Query{Page: 3},
			perPage:   2,
			wantIDs:   []string{"b"},
			wantTotal: 5,
			wantPages: 3,
		},
		{
			name:      "Page past the end is empty",
			query:     posts.Query{Page: 7},
			perPage:   2,
			wantIDs:   []string{},
			wantTotal: 5,
			wantPages: 3,
		},
		{
			name:      "Huge page is empty",
			query:     posts.Query{Page: math.MaxInt/9 + 2},
			perPage:   9,
			wantIDs:   []string{},
			wantTotal: 5,
			wantPages: 1,
		},
		{
			name:      "Page below one is clamped",
			query:     posts.Query{Page: -3},
			perPage:   2,
			wantIDs:   []string{"c", "e"},
			wantTotal: 5,
			wantPages: 3,
		},
		{
			name:      "No match",
			query:     posts.Query{Search: "rust"},
			wantIDs:   []string{},
			wantTotal: 0,
			wantPages: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := posts.Apply(fixture, tt.query, tt.perPage)

			if diff := cmp.Diff(tt.wantIDs, ids(got.Posts)); diff != "" {
				t.Errorf("Apply() posts mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantPages, got.TotalPages)
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	before := ids(fixture)

	posts.Apply(fixture, posts.Query{Sort: posts.SortOldest}, 2)

	if diff := cmp.Diff(before, ids(fixture)); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestApply_DefaultPageSize(t *testing.T) {
	many := make([]domain.Post, 0, 20)
	for i := range 20 {
		many = append(many, domain.Post{ID: fmt.Sprint(i), PostDate: day(1)})
	}

	got := posts.Apply(many, posts.Query{}, 0)

	assert.Len(t, got.Posts, posts.DefaultPerPage)
	assert.Equal(t, 3, got.TotalPages)
}

func TestQuery_Normalize(t *testing.T) {
	got := posts.Query{Category: "  ", Search: " go ", Sort: "bogus", Page: 0}.Normalize()

	want := posts.Query{Category: posts.CategoryAll, Search: "go", Sort: posts.SortNewest, Page: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsCategory(t *testing.T) {
	assert.True(t, posts.IsCategory("DevOps"))
	assert.False(t, posts.IsCategory("devops"))
	assert.False(t, posts.IsCategory("Cooking"))
}

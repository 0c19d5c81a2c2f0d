// Package posts implements the list operations of the blog view (filter,
// search, sort, paginate) and the rules of the post forms.
package posts

import (
	"slices"
	"strings"

	"github.com/openkcm/blog-client/internal/domain"
)

const (
	// DefaultPerPage is the page size of the blog list.
	DefaultPerPage = 9

	// CategoryAll disables the category filter.
	CategoryAll = "all"

	SortNewest = "newest"
	SortOldest = "oldest"
)

// Categories are the categories a post can be filed under.
var Categories = []string{
	"Web Development",
	"Database",
	"Backend Development",
	"Data Science",
	"Mobile Development",
	"DevOps",
}

// Query selects a page of posts.
type Query struct {
	Category string `json:"category"`
	Search   string `json:"search"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
}

// Page is one page of filtered posts.
type Page struct {
	Posts      []domain.Post `json:"posts"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
	Query      Query         `json:"query"`
}

// Normalize fills in defaults: category "all", sort "newest", page 1.
func (q Query) Normalize() Query {
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = CategoryAll
	}

	q.Search = strings.TrimSpace(q.Search)

	if q.Sort != SortOldest {
		q.Sort = SortNewest
	}

	if q.Page < 1 {
		q.Page = 1
	}

	return q
}

// Apply filters, sorts and paginates posts. The input slice is not modified.
// A page past the end returns an empty page.
func Apply(all []domain.Post, q Query, perPage int) Page {
	q = q.Normalize()
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	filtered := make([]domain.Post, 0, len(all))
	for _, p := range all {
		if matchesCategory(p, q.Category) && matchesSearch(p, q.Search) {
			filtered = append(filtered, p)
		}
	}

	slices.SortStableFunc(filtered, func(a, b domain.Post) int {
		if q.Sort == SortOldest {
			return a.PostDate.Compare(b.PostDate)
		}

		return b.PostDate.Compare(a.PostDate)
	})

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage

	start, end := total, total
	if q.Page <= totalPages {
		start = (q.Page - 1) * perPage
		end = min(start+perPage, total)
	}

	return Page{
		Posts:      filtered[start:end],
		Page:       q.Page,
		TotalPages: totalPages,
		Total:      total,
		Query:      q,
	}
}

func matchesCategory(p domain.Post, category string) bool {
	if strings.EqualFold(category, CategoryAll) {
		return true
	}

	return strings.EqualFold(p.Category, category)
}

func matchesSearch(p domain.Post, search string) bool {
	if search == "" {
		return true
	}

	needle := strings.ToLower(search)
	for _, field := range []string{p.Title, p.Excerpt, p.Body} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	return slices.Contains(Categories, name)
}

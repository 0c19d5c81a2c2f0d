package posts_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/blog-client/internal/posts"
)

func validNewForm() posts.NewForm {
	return posts.NewForm{
		Title:    "Hello world",
		Body:     "A body that is long enough to pass.",
		Category: "DevOps",
		PostDate: "2024-05-01",
		ReadTime: "5",
		Excerpt:  "Short excerpt",
		Tags:     "go, devops",
	}
}

func TestValidateNew(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *posts.NewForm)
		want   posts.FieldErrors
	}{
		{
			name:   "Valid form",
			modify: func(*posts.NewForm) {},
			want:   nil,
		},
		{
			name: "Everything missing",
			modify: func(f *posts.NewForm) {
				*f = posts.NewForm{}
			},
			want: posts.FieldErrors{
				"title":    "Title is required",
				"body":     "Body is required",
				"category": "Category is required",
				"readTime": "Read time is required",
				"excerpt":  "Excerpt is required",
			},
		},
		{
			name: "Too short",
			modify: func(f *posts.NewForm) {
				f.Title = "Hey"
				f.Body = "Too short"
				f.Excerpt = "Tiny"
			},
			want: posts.FieldErrors{
				"title":   "Title must be at least 5 characters long",
				"body":    "Body must be at least 20 characters long",
				"excerpt": "Excerpt must be at least 10 characters long",
			},
		},
		{
			name: "Whitespace only title is missing",
			modify: func(f *posts.NewForm) {
				f.Title = "      "
			},
			want: posts.FieldErrors{"title": "Title is required"},
		},
		{
			name: "Unknown category",
			modify: func(f *posts.NewForm) {
				f.Category = "Cooking"
			},
			want: posts.FieldErrors{
				"category": "Category must be one of: Web Development, Database, Backend Development, Data Science, Mobile Development, DevOps",
			},
		},
		{
			name: "Read time not a number",
			modify: func(f *posts.NewForm) {
				f.ReadTime = "five"
			},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Read time zero",
			modify: func(f *posts.NewForm) {
				f.ReadTime = "0"
			},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Read time NaN",
			modify: func(f *posts.NewForm) {
				f.ReadTime = "NaN"
			},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Read time infinite",
			modify: func(f *posts.NewForm) {
				f.ReadTime = "Inf"
			},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Malformed post date",
			modify: func(f *posts.NewForm) {
				f.PostDate = "01/05/2024"
			},
			want: posts.FieldErrors{"postDate": "Post date must be a date in YYYY-MM-DD format"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validNewForm()
			tt.modify(&f)

			got := posts.ValidateNew(f)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateNew() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateEdit(t *testing.T) {
	tests := []struct {
		name string
		form posts.EditForm
		want posts.FieldErrors
	}{
		{
			name: "Valid form",
			form: posts.EditForm{Title: "Hello world", Body: "A body that is long enough to pass.", ReadTime: "2.5", Excerpt: "Short excerpt"},
			want: nil,
		},
		{
			name: "Category is not checked",
			form: posts.EditForm{Title: "Hello world", Body: "A body that is long enough to pass.", ReadTime: "3", Excerpt: "Short excerpt"},
			want: nil,
		},
		{
			name: "Read time NaN",
			form: posts.EditForm{Title: "Hello world", Body: "A body that is long enough to pass.", ReadTime: "NaN", Excerpt: "Short excerpt"},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Read time infinite",
			form: posts.EditForm{Title: "Hello world", Body: "A body that is long enough to pass.", ReadTime: "Inf", Excerpt: "Short excerpt"},
			want: posts.FieldErrors{"readTime": "Read time must be a positive number"},
		},
		{
			name: "Invalid fields",
			form: posts.EditForm{Title: "Hi", Body: "", ReadTime: "-1", Excerpt: "tiny"},
			want: posts.FieldErrors{
				"title":    "Title must be at least 5 characters long",
				"body":     "Body is required",
				"readTime": "Read time must be a positive number",
				"excerpt":  "Excerpt must be at least 10 characters long",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := posts.ValidateEdit(tt.form)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateEdit() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadTimeMinutes(t *testing.T) {
	assert.Equal(t, 5, posts.ReadTimeMinutes("5"))
	assert.Equal(t, 2, posts.ReadTimeMinutes(" 2.7 "))
	assert.Equal(t, 1, posts.ReadTimeMinutes("0.2"))
	assert.Equal(t, 0, posts.ReadTimeMinutes("abc"))
	assert.Equal(t, 0, posts.ReadTimeMinutes("-3"))
	assert.Equal(t, 0, posts.ReadTimeMinutes("NaN"))
	assert.Equal(t, 0, posts.ReadTimeMinutes("+Inf"))
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Trims each tag", input: " go ,devops ", want: []string{"go", "devops"}},
		{name: "Keeps inner spaces", input: "machine learning, go", want: []string{"machine learning", "go"}},
		{name: "Empty entries dropped", input: "go,, ,sql,", want: []string{"go", "sql"}},
		{name: "Empty input", input: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, posts.ParseTags(tt.input)); diff != "" {
				t.Errorf("ParseTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Comma separated", input: "go, devops ,sql", want: []string{"go", "devops", "sql"}},
		{name: "JSON encoded list", input: `["go","web dev"]`, want: []string{"go", "webdev"}},
		{name: "Empty entries dropped", input: "go,, ,sql,", want: []string{"go", "sql"}},
		{name: "Empty input", input: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, posts.SplitTags(tt.input)); diff != "" {
				t.Errorf("SplitTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package posts

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// PostDateLayout is the layout of the post date form field.
const PostDateLayout = time.DateOnly

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

// NewForm is the submission of the create view.
type NewForm struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	PostDate string `json:"postDate"`
	ReadTime string `json:"readTime"`
	Excerpt  string `json:"excerpt"`
	Tags     string `json:"tags"`
}

// EditForm is the submission of the edit view.
type EditForm struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ReadTime string `json:"readTime"`
	Excerpt  string `json:"excerpt"`
}

// ValidateNew checks a create submission. A nil map means the form is valid.
func ValidateNew(f NewForm) FieldErrors {
	errs := FieldErrors{}

	validateText(errs, "title", "Title", f.Title, 5)
	validateText(errs, "body", "Body", f.Body, 20)

	switch {
	case f.Category == "":
		errs["category"] = "Category is required"
	case !IsCategory(f.Category):
		errs["category"] = "Category must be one of: " + strings.Join(Categories, ", ")
	}

	if f.PostDate != "" {
		if _, err := time.Parse(PostDateLayout, f.PostDate); err != nil {
			errs["postDate"] = "Post date must be a date in YYYY-MM-DD format"
		}
	}

	validateReadTime(errs, f.ReadTime)
	validateText(errs, "excerpt", "Excerpt", f.Excerpt, 10)

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// ValidateEdit checks an edit submission. A nil map means the form is valid.
func ValidateEdit(f EditForm) FieldErrors {
	errs := FieldErrors{}

	validateText(errs, "title", "Title", f.Title, 5)
	validateText(errs, "body", "Body", f.Body, 20)
	validateReadTime(errs, f.ReadTime)
	validateText(errs, "excerpt", "Excerpt", f.Excerpt, 10)

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// ReadTimeMinutes parses a validated read time.
func ReadTimeMinutes(s string) int {
	v, ok := parseReadTime(s)
	if !ok {
		return 0
	}

	return max(int(v), 1)
}

// parseReadTime accepts finite positive numbers only.
func parseReadTime(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}

	return v, true
}

func validateText(errs FieldErrors, field, label, value string, minLen int) {
	switch {
	case strings.TrimSpace(value) == "":
		errs[field] = label + " is required"
	case len([]rune(value)) < minLen:
		errs[field] = label + " must be at least " + strconv.Itoa(minLen) + " characters long"
	}
}

func validateReadTime(errs FieldErrors, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs["readTime"] = "Read time is required"
		return
	}

	if _, ok := parseReadTime(value); !ok {
		errs["readTime"] = "Read time must be a positive number"
	}
}

// ParseTags splits submitted tag input on commas. Each tag is trimmed and
// empty entries are dropped; spaces inside a tag are kept.
func ParseTags(s string) []string {
	tags := make([]string, 0)
	for tag := range strings.SplitSeq(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// SplitTags normalises a tag payload received from the backend. Brackets,
// quotes and whitespace are stripped, empty entries are dropped.
func SplitTags(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '[' || r == ']' || r == '"' || unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)

	tags := make([]string, 0)
	for tag := range strings.SplitSeq(cleaned, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

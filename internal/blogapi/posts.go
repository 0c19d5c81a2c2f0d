package blogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/serviceerr"
)

// NewPost is the multipart payload of the create endpoint.
type NewPost struct {
	Title          string
	Body           string
	Category       string
	PostDate       string
	ReadTime       int
	Excerpt        string
	Tags           []string
	AuthorName     string
	AuthorImageURL string
	FeaturedImage  *File
}

// PostUpdate is the JSON payload of the update endpoint.
type PostUpdate struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ReadTime int    `json:"readTime"`
	Excerpt  string `json:"excerpt"`
}

func (c *Client) ListPosts(ctx context.Context, token string) ([]domain.Post, error) {
	return c.fetchPosts(ctx, token, "listing posts", "/posts")
}

// MyPosts lists the posts written by the token owner.
func (c *Client) MyPosts(ctx context.Context, token string) ([]domain.Post, error) {
	return c.fetchPosts(ctx, token, "listing own posts", "/posts/blogs/user")
}

func (c *Client) GetPost(ctx context.Context, token, id string) (domain.Post, error) {
	resp, err := c.request(ctx, token).
		SetPathParam("id", id).
		Get("/posts/{id}")
	if err := check(ctx, "fetching post", resp, err); err != nil {
		return domain.Post{}, err
	}

	var post domain.Post
	if err := decode(resp.Body(), &post); err != nil {
		return domain.Post{}, fmt.Errorf("fetching post: %w", serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	return post, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, p NewPost) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("creating post: marshaling tags: %w", err)
	}

	authorImageURL := p.AuthorImageURL
	if authorImageURL == "" {
		authorImageURL = domain.DefaultAuthorImageURL
	}

	req := c.request(ctx, token).
		SetMultipartFormData(map[string]string{
			"title":          p.Title,
			"body":           p.Body,
			"category":       p.Category,
			"postDate":       p.PostDate,
			"readTime":       strconv.Itoa(p.ReadTime),
			"excerpt":        p.Excerpt,
			"tags":           string(encodedTags),
			"authorName":     p.AuthorName,
			"authorImageURL": authorImageURL,
		})

	if p.FeaturedImage != nil {
		req.SetMultipartField("featuredImage", p.FeaturedImage.Name, p.FeaturedImage.ContentType, p.FeaturedImage.Content)
	}

	resp, err := req.Post("/posts/")

	return check(ctx, "creating post", resp, err)
}

func (c *Client) UpdatePost(ctx context.Context, token, id string, u PostUpdate) error {
	resp, err := c.request(ctx, token).
		SetPathParam("id", id).
		SetBody(u).
		Put("/posts/{id}")

	return check(ctx, "updating post", resp, err)
}

func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	resp, err := c.request(ctx, token).
		SetPathParam("id", id).
		Delete("/posts/{id}")

	return check(ctx, "deleting post", resp, err)
}

func (c *Client) fetchPosts(ctx context.Context, token, op, path string) ([]domain.Post, error) {
	resp, err := c.request(ctx, token).Get(path)
	if err := check(ctx, op, resp, err); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0)
	if err := decode(resp.Body(), &posts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	return posts, nil
}

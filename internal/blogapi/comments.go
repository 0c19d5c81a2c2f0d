package blogapi

import (
	"context"
	"fmt"

	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/serviceerr"
)

func (c *Client) ListComments(ctx context.Context, token, postID string) ([]domain.Comment, error) {
	resp, err := c.request(ctx, token).
		SetPathParam("postId", postID).
		Get("/comments/{postId}")
	if err := check(ctx, "listing comments", resp, err); err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0)
	if err := decode(resp.Body(), &comments); err != nil {
		return nil, fmt.Errorf("listing comments: %w", serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	return comments, nil
}

// AddComment posts a comment and returns it as stored by the backend.
func (c *Client) AddComment(ctx context.Context, token, postID string, comment domain.Comment) (domain.Comment, error) {
	resp, err := c.request(ctx, token).
		SetPathParam("postId", postID).
		SetBody(map[string]string{
			"text":           comment.Text,
			"userName":       comment.UserName,
			"userProfilePic": comment.UserProfilePic,
		}).
		Post("/comments/{postId}")
	if err := check(ctx, "adding comment", resp, err); err != nil {
		return domain.Comment{}, err
	}

	var stored domain.Comment
	if err := decode(resp.Body(), &stored); err != nil {
		return domain.Comment{}, fmt.Errorf("adding comment: %w", serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	return stored, nil
}

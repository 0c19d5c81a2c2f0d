// Package domain holds the blog entities exchanged with the backend and
// rendered by the views.
package domain

import "time"

// DefaultAuthorImageURL is used when the author has no profile picture.
const DefaultAuthorImageURL = "https://via.placeholder.com/150"

// Post is a blog post. Field names follow the backend payload.
type Post struct {
	ID               string    `json:"_id"              mapstructure:"_id"`
	Title            string    `json:"Title"            mapstructure:"Title"`
	Excerpt          string    `json:"Excerpt"          mapstructure:"Excerpt"`
	Body             string    `json:"Body"             mapstructure:"Body"`
	Category         string    `json:"Category"         mapstructure:"Category"`
	PostDate         time.Time `json:"PostDate"         mapstructure:"PostDate"`
	ReadTime         int       `json:"ReadTime"         mapstructure:"ReadTime"`
	Tags             []string  `json:"Tags"             mapstructure:"Tags"`
	FeaturedImageURL string    `json:"FeaturedImageURL" mapstructure:"FeaturedImageURL"`
	AuthorName       string    `json:"AuthorName"       mapstructure:"AuthorName"`
	AuthorImageURL   string    `json:"AuthorImageURL"   mapstructure:"AuthorImageURL"`
}

// Comment belongs to a post.
type Comment struct {
	ID             string    `json:"_id,omitempty"            mapstructure:"_id"`
	Text           string    `json:"text"                     mapstructure:"text"`
	UserName       string    `json:"userName"                 mapstructure:"userName"`
	UserProfilePic string    `json:"userProfilePic,omitempty" mapstructure:"userProfilePic"`
	CreatedAt      time.Time `json:"createdAt,omitzero"       mapstructure:"createdAt"`
}

// User is the profile of the signed-in user.
type User struct {
	Name           string `json:"name"                     mapstructure:"name"`
	Email          string `json:"email,omitempty"          mapstructure:"email"`
	Bio            string `json:"bio,omitempty"            mapstructure:"bio"`
	ProfilePicture string `json:"profilePicture,omitempty" mapstructure:"profilePicture"`
}

// AvatarURL returns the profile picture or DefaultAuthorImageURL.
func (u User) AvatarURL() string {
	if u.ProfilePicture == "" {
		return DefaultAuthorImageURL
	}

	return u.ProfilePicture
}

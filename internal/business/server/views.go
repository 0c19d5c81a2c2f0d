package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/blogapi"
	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/guard"
	"github.com/openkcm/blog-client/internal/navigation"
	"github.com/openkcm/blog-client/internal/posts"
	"github.com/openkcm/blog-client/internal/serviceerr"
	"github.com/openkcm/blog-client/internal/session"
)

const myBlogsPath = "/my-blogs"

// Backend is the blog backend as used by the views.
type Backend interface {
	Login(ctx context.Context, creds blogapi.Credentials) (string, error)
	Register(ctx context.Context, reg blogapi.Registration) error
	ListPosts(ctx context.Context, token string) ([]domain.Post, error)
	MyPosts(ctx context.Context, token string) ([]domain.Post, error)
	GetPost(ctx context.Context, token, id string) (domain.Post, error)
	CreatePost(ctx context.Context, token string, p blogapi.NewPost) error
	UpdatePost(ctx context.Context, token, id string, u blogapi.PostUpdate) error
	DeletePost(ctx context.Context, token, id string) error
	ListComments(ctx context.Context, token, postID string) ([]domain.Comment, error)
	AddComment(ctx context.Context, token, postID string, comment domain.Comment) (domain.Comment, error)
}

// Profiles resolves the profile of a token owner.
type Profiles interface {
	Get(ctx context.Context, token string) (domain.User, error)
}

// Session is the session store as used by the views.
type Session interface {
	guard.Session
	Snapshot() session.Snapshot
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context)
}

var (
	_ = Backend(&blogapi.Client{})
	_ = Session(&session.Store{})
)

type views struct {
	backend  Backend
	profiles Profiles
	sess     Session
	perPage  int
}

type registerForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
}

type commentForm struct {
	Text string `json:"text"`
}

type sessionResponse struct {
	State         string             `json:"state"`
	Ready         bool               `json:"ready"`
	Authenticated bool               `json:"authenticated"`
	Token         *session.TokenInfo `json:"token,omitempty"`
}

// token returns the current token. The guard only lets authenticated requests
// through, so a missing token means the session was cleared concurrently.
func (v *views) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, ok := v.sess.Token()
	if !ok {
		http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
		return "", false
	}

	return token, true
}

// backendFailed writes err. A rejected token ends the session.
func (v *views) backendFailed(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if errors.Is(err, serviceerr.ErrUnauthorized) {
		slogctx.Warn(ctx, "Backend rejected the session token, logging out", "error", err)
		v.sess.Logout(ctx)

		if navigation.Navigated(ctx) {
			return
		}
	}

	writeError(ctx, w, err)
}

// profile returns the current user or an empty profile when it cannot be
// fetched. A rejected token is returned as error.
func (v *views) profile(ctx context.Context, token string) (domain.User, error) {
	user, err := v.profiles.Get(ctx, token)
	if err != nil {
		if errors.Is(err, serviceerr.ErrUnauthorized) {
			return domain.User{}, err
		}

		slogctx.Warn(ctx, "Could not fetch the current user", "error", err)
		return domain.User{}, nil
	}

	return user, nil
}

func (v *views) getLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"view":          "login",
		"authenticated": v.sess.Snapshot().Authenticated,
	})
}

func (v *views) postLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creds blogapi.Credentials
	if err := bindForm(w, r, &creds); err != nil {
		writeError(ctx, w, err)
		return
	}

	fieldErrors := posts.FieldErrors{}
	if strings.TrimSpace(creds.Email) == "" {
		fieldErrors["email"] = "Email is required"
	}
	if creds.Password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if len(fieldErrors) > 0 {
		writeFieldErrors(ctx, w, fieldErrors)
		return
	}

	token, err := v.backend.Login(ctx, creds)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := v.sess.Login(ctx, token); err != nil {
		writeError(ctx, w, serviceerr.ErrBackendError.WithDescription(err.Error()))
		return
	}

	if !navigation.Navigated(ctx) {
		writeJSON(ctx, w, http.StatusOK, map[string]string{"message": "Logged in"})
	}
}

func (v *views) getRegister(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"view": "register"})
}

func (v *views) postRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form registerForm
	if err := bindForm(w, r, &form); err != nil {
		writeError(ctx, w, err)
		return
	}

	fieldErrors := posts.FieldErrors{}
	if strings.TrimSpace(form.Email) == "" {
		fieldErrors["email"] = "Email is required"
	}
	if form.Password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if strings.TrimSpace(form.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	if len(fieldErrors) > 0 {
		writeFieldErrors(ctx, w, fieldErrors)
		return
	}

	picture, release, err := formFile(r, "profilePicture")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer release()

	err = v.backend.Register(ctx, blogapi.Registration{
		Email:          form.Email,
		Password:       form.Password,
		Name:           form.Name,
		Bio:            form.Bio,
		ProfilePicture: picture,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, map[string]string{"message": "Registration successful"})
}

func (v *views) postLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	v.sess.Logout(ctx)

	if !navigation.Navigated(ctx) {
		writeJSON(ctx, w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (v *views) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := v.sess.Snapshot()

	resp := sessionResponse{
		State:         snap.State.String(),
		Ready:         snap.Ready,
		Authenticated: snap.Authenticated,
	}

	if token, ok := v.sess.Token(); ok {
		info, err := session.InspectToken(token)
		if err != nil {
			slogctx.Debug(ctx, "Session token is not a readable JWT", "error", err)
		} else {
			resp.Token = &info
		}
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (v *views) getHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	var q posts.Query
	if err := bindForm(w, r, &q); err != nil {
		writeError(ctx, w, err)
		return
	}

	all, err := v.backend.ListPosts(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	user, err := v.profile(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"user":       user,
		"categories": posts.Categories,
		"page":       posts.Apply(all, q, v.perPage),
	})
}

func (v *views) getPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	post, err := v.backend.GetPost(ctx, token, id)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	comments, err := v.backend.ListComments(ctx, token, id)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"post":     post,
		"comments": comments,
	})
}

func (v *views) postComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	var form commentForm
	if err := bindForm(w, r, &form); err != nil {
		writeError(ctx, w, err)
		return
	}

	text := strings.TrimSpace(form.Text)
	if text == "" {
		writeFieldErrors(ctx, w, posts.FieldErrors{"text": "Comment is required"})
		return
	}

	user, err := v.profile(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	comment, err := v.backend.AddComment(ctx, token, chi.URLParam(r, "id"), domain.Comment{
		Text:           text,
		UserName:       user.Name,
		UserProfilePic: user.ProfilePicture,
	})
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, comment)
}

func (v *views) getCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	user, err := v.profile(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"view":       "create",
		"author":     user,
		"categories": posts.Categories,
	})
}

func (v *views) postCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	var form posts.NewForm
	if err := bindForm(w, r, &form); err != nil {
		writeError(ctx, w, err)
		return
	}

	if fieldErrors := posts.ValidateNew(form); fieldErrors != nil {
		writeFieldErrors(ctx, w, fieldErrors)
		return
	}

	image, release, err := formFile(r, "featuredImage")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer release()

	user, err := v.profile(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	err = v.backend.CreatePost(ctx, token, blogapi.NewPost{
		Title:          form.Title,
		Body:           form.Body,
		Category:       form.Category,
		PostDate:       form.PostDate,
		ReadTime:       posts.ReadTimeMinutes(form.ReadTime),
		Excerpt:        form.Excerpt,
		Tags:           posts.ParseTags(form.Tags),
		AuthorName:     user.Name,
		AuthorImageURL: user.AvatarURL(),
		FeaturedImage:  image,
	})
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, map[string]string{"message": "Post created successfully"})
}

func (v *views) getMyBlogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	mine, err := v.backend.MyPosts(ctx, token)
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	if mine == nil {
		mine = []domain.Post{}
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"posts": mine})
}

func (v *views) postDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	if err := v.backend.DeletePost(ctx, token, chi.URLParam(r, "postId")); err != nil {
		v.backendFailed(w, r, err)
		return
	}

	http.Redirect(w, r, myBlogsPath, http.StatusSeeOther)
}

func (v *views) getEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	post, err := v.backend.GetPost(ctx, token, chi.URLParam(r, "postId"))
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"view": "edit",
		"post": post,
	})
}

func (v *views) postEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := v.token(w, r)
	if !ok {
		return
	}

	var form posts.EditForm
	if err := bindForm(w, r, &form); err != nil {
		writeError(ctx, w, err)
		return
	}

	if fieldErrors := posts.ValidateEdit(form); fieldErrors != nil {
		writeFieldErrors(ctx, w, fieldErrors)
		return
	}

	err := v.backend.UpdatePost(ctx, token, chi.URLParam(r, "postId"), blogapi.PostUpdate{
		Title:    form.Title,
		Body:     form.Body,
		ReadTime: posts.ReadTimeMinutes(form.ReadTime),
		Excerpt:  form.Excerpt,
	})
	if err != nil {
		v.backendFailed(w, r, err)
		return
	}

	http.Redirect(w, r, myBlogsPath, http.StatusSeeOther)
}

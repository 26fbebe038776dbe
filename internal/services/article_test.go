package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
)

func validArticleRequest() *CreateArticleRequest {
	return &CreateArticleRequest{
		Title:     "Как стать волонтёром",
		Content:   "<p>" + strings.Repeat("Волонтёрство начинается с малого. ", 5) + "</p><script>alert(1)</script>",
		Category:  "Руководства",
		Published: true,
		Tags:      []string{"новичкам"},
	}
}

func TestArticleService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewArticleService(f.db)
	admin := f.user(t, models.RoleAdmin)

	article, err := svc.Create(validArticleRequest(), principalOf(admin))
	require.NoError(t, err)
	assert.Equal(t, "kak-stat-volonterom", article.Slug)
	assert.NotContains(t, article.Content, "<script>")
	assert.Contains(t, article.Content, "<p>")
	require.NotNil(t, article.AuthorID)
	assert.Equal(t, admin.ID, *article.AuthorID)

	second, err := svc.Create(validArticleRequest(), principalOf(admin))
	require.NoError(t, err)
	assert.Equal(t, "kak-stat-volonterom-2", second.Slug)

	third, err := svc.Create(validArticleRequest(), principalOf(admin))
	require.NoError(t, err)
	assert.Equal(t, "kak-stat-volonterom-3", third.Slug)
}

func TestArticleService_Create_Rules(t *testing.T) {
	f := newFixture(t)
	svc := NewArticleService(f.db)

	_, err := svc.Create(validArticleRequest(), principalOf(f.user(t, models.RoleModerator)))
	requireAppError(t, err, response.ErrForbidden)

	req := validArticleRequest()
	req.Content = "коротко"
	_, err = svc.Create(req, principalOf(f.user(t, models.RoleAdmin)))
	requireAppError(t, err, response.ErrValidation)

	req = validArticleRequest()
	req.VideoURL = "youtube"
	_, err = svc.Create(req, principalOf(f.user(t, models.RoleAdmin)))
	requireAppError(t, err, response.ErrValidation)
}

func TestArticleService_ListAndGet(t *testing.T) {
	f := newFixture(t)
	svc := NewArticleService(f.db)
	admin := principalOf(f.user(t, models.RoleAdmin))

	published, err := svc.Create(validArticleRequest(), admin)
	require.NoError(t, err)
	draftReq := validArticleRequest()
	draftReq.Title = "Черновик статьи"
	draftReq.Published = false
	draftReq.Category = "Новости"
	draft, err := svc.Create(draftReq, admin)
	require.NoError(t, err)

	items, err := svc.List(&ArticleListRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, published.ID, items[0].ID)

	items, err = svc.List(&ArticleListRequest{Published: ptr(false)}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1, "anonymous callers never see drafts")
	assert.Equal(t, published.ID, items[0].ID)

	moderator := principalOf(f.user(t, models.RoleModerator))
	items, err = svc.List(&ArticleListRequest{}, &moderator)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.List(&ArticleListRequest{Published: ptr(false)}, &moderator)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, draft.ID, items[0].ID)

	items, err = svc.List(&ArticleListRequest{Category: "Новости"}, &moderator)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.GetBySlug(draft.Slug, nil)
	requireAppError(t, err, response.ErrNotFound)
	got, err := svc.GetBySlug(draft.Slug, &moderator)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	_, err = svc.GetBySlug("missing", &moderator)
	requireAppError(t, err, response.ErrNotFound)
}

func TestArticleService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewArticleService(f.db)
	admin := principalOf(f.user(t, models.RoleAdmin))
	article, err := svc.Create(validArticleRequest(), admin)
	require.NoError(t, err)

	requireAppError(t, svc.Delete(article.ID, principalOf(f.user(t, models.RoleModerator))), response.ErrForbidden)
	require.NoError(t, svc.Delete(article.ID, admin))
	requireAppError(t, svc.Delete(article.ID, admin), response.ErrNotFound)
}

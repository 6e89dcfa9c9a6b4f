package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/kb-nav/internal/models"
	"github.com/romangod6/kb-nav/internal/navigation"
	"github.com/romangod6/kb-nav/internal/storage"
	"github.com/romangod6/kb-nav/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store    *storage.MemoryStore
	tech     *models.Category
	life     *models.Category
	articles map[string]*models.Article
}

// newFixture seeds: tech 2021-01-01, life 2021-02-01, tech 2021-03-01.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:    storage.NewMemoryStore(),
		tech:     models.NewCategory("tech"),
		life:     models.NewCategory("life"),
		articles: make(map[string]*models.Article),
	}
	require.NoError(t, f.store.CreateCategory(ctx, f.tech))
	require.NoError(t, f.store.CreateCategory(ctx, f.life))

	for _, row := range []struct {
		name     string
		category *models.Category
		date     string
	}{
		{"first", f.tech, "2021-01-01"},
		{"between", f.life, "2021-02-01"},
		{"last", f.tech, "2021-03-01"},
	} {
		published, err := time.Parse("2006-01-02", row.date)
		require.NoError(t, err)

		a := models.NewArticle()
		a.Name = row.name
		a.URL = "/blog/" + row.name
		a.CategoryID = row.category.ID
		a.PublishedAt = published
		require.NoError(t, f.store.CreateArticle(ctx, a))
		f.articles[row.name] = a
	}
	return f
}

func serve(t *testing.T, store storage.Store, policy navigation.OrderPolicy, path string) *httptest.ResponseRecorder {
	t.Helper()
	server := NewServer(0, store, policy, utils.NewWriterLogger(io.Discard, utils.LevelDebug))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := serve(t, storage.NewMemoryStore(), navigation.OrderStrict, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestGetNeighbors_SkipsOtherCategory(t *testing.T) {
	f := newFixture(t)
	last := f.articles["last"]

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles/"+last.ID.String()+"/neighbors")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[NeighborsResponse](t, rec)
	require.NotNil(t, resp.Article)
	assert.Equal(t, last.ID, resp.Article.ID)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, f.articles["first"].ID, resp.Previous.ID)
	assert.Equal(t, "/blog/first", resp.Previous.URL)
	assert.Nil(t, resp.Next)
}

func TestGetNeighbors_OnlyArticleInCategory(t *testing.T) {
	f := newFixture(t)
	between := f.articles["between"]

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles/"+between.ID.String()+"/neighbors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"previous":null`)
	assert.Contains(t, rec.Body.String(), `"next":null`)
}

func TestGetNeighbors_Errors(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles/not-a-uuid/neighbors")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f.store, navigation.OrderStrict, "/api/articles/"+uuid.NewString()+"/neighbors")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// reversedStore hands out the collection newest first.
type reversedStore struct {
	*storage.MemoryStore
}

func (s reversedStore) ListArticlesByDate(ctx context.Context) ([]*models.Article, error) {
	all, err := s.MemoryStore.ListArticlesByDate(ctx)
	slices.Reverse(all)
	return all, err
}

func TestGetNeighbors_OrderPolicy(t *testing.T) {
	f := newFixture(t)
	store := reversedStore{f.store}
	path := "/api/articles/" + f.articles["first"].ID.String() + "/neighbors"

	rec := serve(t, store, navigation.OrderStrict, path)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, store, navigation.OrderResort, path)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[NeighborsResponse](t, rec)
	assert.Nil(t, resp.Previous)
	require.NotNil(t, resp.Next)
	assert.Equal(t, f.articles["last"].ID, resp.Next.ID)
}

func TestGetCategoryTrail(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/categories/"+f.tech.ID.String()+"/trail")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TrailResponse](t, rec)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "tech", resp.Category.Name)
	require.Len(t, resp.Entries, 2)

	first, last := resp.Entries[0], resp.Entries[1]
	assert.Equal(t, f.articles["first"].ID, first.Article.ID)
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.Equal(t, f.articles["last"].ID, first.Next.ID)

	assert.Equal(t, f.articles["last"].ID, last.Article.ID)
	require.NotNil(t, last.Previous)
	assert.Equal(t, f.articles["first"].ID, last.Previous.ID)
	assert.Nil(t, last.Next)
}

func TestGetCategoryTrail_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/categories/"+uuid.NewString()+"/trail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListArticles_Paginates(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles?page=1&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []models.Article `json:"data"`
		Page  int              `json:"page"`
		Limit int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "last", resp.Data[0].Name)
	assert.Equal(t, "between", resp.Data[1].Name)
}

func TestSearchArticles(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f.store, navigation.OrderStrict, "/api/articles/search?q=betw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"between"`)
	assert.NotContains(t, rec.Body.String(), `"name":"first"`)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decode[[]models.Category](t, rec)
	require.Len(t, categories, 2)
	assert.Equal(t, "life", categories[0].Name)

	rec = serve(t, f.store, navigation.OrderStrict, "/api/categories/"+f.life.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, f.store, navigation.OrderStrict, "/api/categories/"+f.tech.ID.String()+"/articles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"first"`)
	assert.NotContains(t, rec.Body.String(), `"name":"between"`)
}

func TestGetArticle(t *testing.T) {
	f := newFixture(t)
	first := f.articles["first"]

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles/"+first.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Article](t, rec)
	assert.Equal(t, first.ID, got.ID)

	rec = serve(t, f.store, navigation.OrderStrict, "/api/articles/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListArticles_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, f.store, navigation.OrderStrict, "/api/articles?page=9223372036854775807&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Article `json:"data"`
		Page int              `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
	assert.Equal(t, math.MaxInt/10, resp.Page)
}

func TestGetPaginationParams(t *testing.T) {
	for query, want := range map[string][2]int{
		"":                                  {1, 10},
		"?page=0&limit=0":                   {1, 10},
		"?page=3&limit=25":                  {3, 25},
		"?page=-4&limit=500":                {1, 10},
		"?page=9223372036854775807":         {math.MaxInt / 10, 10},
		"?page=9223372036854775807&limit=1": {math.MaxInt, 1},
	} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/articles"+query, nil)

		page, limit := getPaginationParams(c)
		assert.Equal(t, want, [2]int{page, limit}, query)
	}
}

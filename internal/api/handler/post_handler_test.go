package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/api/handler"
	"github.com/d60-Lab/inkwell/internal/api/router"
	"github.com/d60-Lab/inkwell/internal/config"
	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
	"github.com/d60-Lab/inkwell/internal/service"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Category{},
		&model.PostCategory{},
		&model.Comment{},
	))

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT = config.JWTConfig{Secret: "test-secret", TTLHours: 1}

	postRepo := repository.NewPostRepository(db)
	postCatRepo := repository.NewPostCategoryRepository(db)
	catRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	h := handler.New(
		service.NewAuthService(userRepo, cfg.JWT),
		service.NewPostService(db, postRepo, postCatRepo, catRepo, userRepo, nil, nil),
		service.NewCategoryService(db, catRepo),
		service.NewCommentService(commentRepo, postRepo, userRepo),
		nil,
	)
	return router.Setup(cfg, h)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":            username + "@example.com",
		"username":         username,
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "alice")

	// 建一篇已发布的私有文章
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/posts", token, gin.H{
		"title":     "My First Post",
		"content":   "<p>hi</p>",
		"published": true,
		"is_public": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post model.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Regexp(t, `^my-first-post-\d{6}$`, post.Slug)

	// 匿名访问私有文章：404，与不存在不可区分
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/blog/"+post.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/blog/definitely-missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 任意登录用户按 slug 可读
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/blog/"+post.Slug, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 私有文章不进公开列表
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Zero(t, listing.Total)

	// 切到公开后进入列表
	w, _ = doJSON(t, r, http.MethodPatch, "/api/v1/posts/"+post.ID+"/visibility", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.EqualValues(t, 1, listing.Total)
}

func TestNonAuthorMutationsRejected(t *testing.T) {
	r := newTestServer(t)
	alice := registerUser(t, r, "alice")
	mallory := registerUser(t, r, "mallory")

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/posts", alice, gin.H{
		"title":   "Owned",
		"content": "c",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var post model.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))

	w, _ = doJSON(t, r, http.MethodPut, "/api/v1/posts/"+post.ID, mallory, gin.H{
		"title":   "stolen",
		"content": "c",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/posts/"+post.ID, mallory, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 未登录直接 401
	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommentFlowOverHTTP(t *testing.T) {
	r := newTestServer(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/posts", alice, gin.H{
		"title":     "Commentable",
		"content":   "c",
		"published": true,
		"is_public": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var post model.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", bob, gin.H{
		"content": "first!",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	assert.Len(t, comments, 1)
}

func TestValidationErrorsAreFieldLevel(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "alice")

	// binding 层挡掉缺 title
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/posts", token, gin.H{"content": "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "title")

	// 服务层挡掉全空白 title
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/posts", token, gin.H{"title": "  ", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "title")
}

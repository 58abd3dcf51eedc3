package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/waveline/waveline/config"
	"github.com/waveline/waveline/models"
	"github.com/waveline/waveline/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "router-test-secret")
	os.Setenv("GIN_MODE", "test")
	// Keep the per-IP bucket out of the way; every request in the suite
	// comes from the same test client address.
	os.Setenv("RATE_LIMIT_PER_MINUTE", "600")

	cfg := config.Get()
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "waveline_api_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.StaleFile{},
	))
	return SetupRouter(db)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func registerAndLogin(t *testing.T, r *gin.Engine, username, email, name string) string {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"name":     name,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func createPost(t *testing.T, r *gin.Engine, token, content string) uint {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", content))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotZero(t, data.Post.ID)
	return data.Post.ID
}

func TestSocialFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	tokenA := registerAndLogin(t, r, "usera", "a@example.com", "User A")

	// Duplicate handle is a conflict.
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "usera",
		"email":    "other@example.com",
		"name":     "Someone",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password and unknown handle fail identically.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "usera", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "ghost", "password": "secret-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Anonymous requests never reach the feed.
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	postID := createPost(t, r, tokenA, "hello")

	tokenB := registerAndLogin(t, r, "userb", "b@example.com", "User B")

	// B likes, then takes the like back.
	var likeData struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/posts/1/like", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &likeData))
	assert.True(t, likeData.Liked)
	assert.EqualValues(t, 1, likeData.LikeCount)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/posts/1/like", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &likeData))
	assert.False(t, likeData.Liked)
	assert.EqualValues(t, 0, likeData.LikeCount)

	// B comments; the response carries the presentation view.
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/posts/1/comments", tokenB, gin.H{"content": "nice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var commentData struct {
		Comment struct {
			Content    string `json:"content"`
			AuthorName string `json:"author_name"`
		} `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &commentData))
	assert.Equal(t, "nice", commentData.Comment.Content)
	assert.Equal(t, "User B", commentData.Comment.AuthorName)

	// Blank comments are rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/posts/1/comments", tokenB, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Post detail shows the comment and the settled like state.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/posts/1", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		LikeCount int64 `json:"like_count"`
		Liked     bool  `json:"liked"`
		Comments  []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.EqualValues(t, 0, detail.LikeCount)
	assert.False(t, detail.Liked)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "nice", detail.Comments[0].Content)

	// The feed has A's post on top with the author resolved.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/feed", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feedData struct {
		Items []struct {
			Post   models.Post `json:"post"`
			Author struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &feedData))
	require.NotEmpty(t, feedData.Items)
	assert.Equal(t, postID, feedData.Items[0].Post.ID)
	assert.Equal(t, "hello", feedData.Items[0].Post.Content)
	assert.Equal(t, "usera", feedData.Items[0].Author.Username)

	// Search matches both accounts on the shared substring, none on blank.
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/search?q=user", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var searchData struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &searchData))
	assert.Len(t, searchData.Users, 2)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/search?q=", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	searchData.Users = nil
	require.NoError(t, json.Unmarshal(env.Data, &searchData))
	assert.Empty(t, searchData.Users)

	// Logout revokes the token for good.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", tokenA, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "alice99", "alice@example.com", "Alice")

	createPost(t, r, token, "my first post")

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/users/alice99", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		User struct {
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"user"`
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice99", profile.User.Username)
	assert.Equal(t, "Alice", profile.User.Name)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "my first post", profile.Posts[0].Content)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/users/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

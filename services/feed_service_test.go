package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/waveline/models"
)

func TestAssembleFeedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	feed := NewFeedService(db)

	alice := mustRegister(t, accounts, "alice99", "alice@example.com", "Alice")
	bob := mustRegister(t, accounts, "bob", "bob@example.com", "Bob")

	base := time.Now().Add(-time.Hour)
	for i, fixture := range []struct {
		userID  uint
		content string
	}{
		{alice.ID, "oldest"},
		{bob.ID, "middle"},
		{alice.ID, "newest"},
	} {
		post := models.Post{UserID: fixture.userID, Content: fixture.content, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(&post).Error)
	}

	items, err := feed.AssembleFeed()
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "newest", items[0].Post.Content)
	assert.Equal(t, "alice99", items[0].Author.Username)
	assert.Equal(t, "middle", items[1].Post.Content)
	assert.Equal(t, "bob", items[1].Author.Username)
	assert.Equal(t, "oldest", items[2].Post.Content)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Post.CreatedAt.After(items[i-1].Post.CreatedAt),
			"feed order must be non-increasing by creation time")
	}

	// A freshly published post leads the next assembly.
	_, err = content.CreatePost(bob.ID, "breaking news", "")
	require.NoError(t, err)

	items, err = feed.AssembleFeed()
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "breaking news", items[0].Post.Content)
}

func TestAssembleFeedEmpty(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)

	items, err := feed.AssembleFeed()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAssembleFeedDanglingAuthor(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)

	// A post referencing a user that does not exist is a broken invariant
	// and must surface as an integrity error, not be skipped or panic.
	require.NoError(t, db.Create(&models.Post{UserID: 9999, Content: "orphan"}).Error)

	_, err := feed.AssembleFeed()
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestAssembleComment(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	feed := NewFeedService(db)

	alice := mustRegister(t, accounts, "alice99", "alice@example.com", "Alice")
	post, err := content.CreatePost(alice.ID, "hello", "")
	require.NoError(t, err)
	comment, err := content.CreateComment(post.ID, alice.ID, "nice")
	require.NoError(t, err)

	view, err := feed.AssembleComment(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice", view.Content)
	assert.Equal(t, "Alice", view.AuthorName)
	assert.Equal(t, "alice99", view.AuthorUsername)
	assert.Equal(t, models.DefaultAvatar, view.AvatarFile)
	assert.Equal(t, comment.CreatedAt.Format("January 02, 2006 at 15:04"), view.CreatedAt)
}

func TestAssembleCommentMissing(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)

	_, err := feed.AssembleComment(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssembleCommentsInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	feed := NewFeedService(db)

	alice := mustRegister(t, accounts, "alice99", "alice@example.com", "Alice")
	bob := mustRegister(t, accounts, "bob", "bob@example.com", "Bob")
	post, err := content.CreatePost(alice.ID, "hello", "")
	require.NoError(t, err)

	_, err = content.CreateComment(post.ID, bob.ID, "first!")
	require.NoError(t, err)
	_, err = content.CreateComment(post.ID, alice.ID, "thanks")
	require.NoError(t, err)

	views, err := feed.AssembleComments(post.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "first!", views[0].Content)
	assert.Equal(t, "bob", views[0].AuthorUsername)
	assert.Equal(t, "thanks", views[1].Content)
	assert.Equal(t, "alice99", views[1].AuthorUsername)
}

package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/waveline/models"
)

func TestToggleTwiceReturnsToBaseline(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	likes := NewLikeService(db)

	author := mustRegister(t, accounts, "alice99", "alice@example.com", "Alice")
	viewer := mustRegister(t, accounts, "bob", "bob@example.com", "Bob")
	post, err := content.CreatePost(author.ID, "hello", "")
	require.NoError(t, err)

	liked, count, err := likes.Toggle(viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	liked, count, err = likes.Toggle(viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)
}

func TestToggleCountsDistinctUsers(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	likes := NewLikeService(db)

	author := mustRegister(t, accounts, "author", "author@example.com", "Author")
	post, err := content.CreatePost(author.ID, "popular", "")
	require.NoError(t, err)

	const n = 5
	for i := 0; i < n; i++ {
		viewer := mustRegister(t, accounts,
			fmt.Sprintf("viewer%d", i),
			fmt.Sprintf("viewer%d@example.com", i),
			fmt.Sprintf("Viewer %d", i))
		liked, count, err := likes.Toggle(viewer.ID, post.ID)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.EqualValues(t, i+1, count)
	}

	count, err := likes.Count(post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, count)
}

func TestToggleMissingPost(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	likes := NewLikeService(db)

	viewer := mustRegister(t, accounts, "bob", "bob@example.com", "Bob")

	_, _, err := likes.Toggle(viewer.ID, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTogglesKeepPairUnique(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	likes := NewLikeService(db)

	author := mustRegister(t, accounts, "alice99", "alice@example.com", "Alice")
	viewer := mustRegister(t, accounts, "bob", "bob@example.com", "Bob")
	post, err := content.CreatePost(author.ID, "contended", "")
	require.NoError(t, err)

	const (
		workers = 4
		rounds  = 10
	)
	errs := make(chan error, workers*rounds)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, _, err := likes.Toggle(viewer.ID, post.ID); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle failed under concurrency: %v", err)
	}

	// Whatever the interleaving, the pair never holds more than one row.
	var rows int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", viewer.ID, post.ID).
		Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))

	// And the reported state matches storage.
	liked, err := likes.Liked(viewer.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, rows == 1, liked)
}

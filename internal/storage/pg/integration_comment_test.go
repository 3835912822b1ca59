package pg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"

	_ "github.com/lib/pq"
)

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	essayId := generateEssayId(t)
	author := generateAddress(t)

	t.Run("top-level comment", func(t *testing.T) {
		comment, err := storage.CreateComment(ctx, domain.CommentCreationData{
			EssayId:     essayId,
			Content:     "First!",
			Author:      author,
			Signature:   "0xsig",
			MessageHash: "0xhash",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, comment.Id)
		assert.Equal(t, 0, comment.Depth)
		assert.Nil(t, comment.ParentId)
		assert.False(t, comment.CreatedAt.IsZero())
		assert.Equal(t, 0, comment.Score)
	})

	t.Run("reply to top-level comment", func(t *testing.T) {
		parent := createTestComment(t, essayId, nil, author)
		reply, err := storage.CreateComment(ctx, domain.CommentCreationData{
			EssayId:     essayId,
			Content:     "A reply",
			ParentId:    &parent.Id,
			Author:      author,
			Signature:   "0xsig",
			MessageHash: "0xhash",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, reply.Depth)
		require.NotNil(t, reply.ParentId)
		assert.Equal(t, parent.Id, *reply.ParentId)
	})

	t.Run("reply to a reply is rejected", func(t *testing.T) {
		parent := createTestComment(t, essayId, nil, author)
		reply := createTestComment(t, essayId, &parent.Id, author)

		_, err := storage.CreateComment(ctx, domain.CommentCreationData{
			EssayId:     essayId,
			Content:     "Too deep",
			ParentId:    &reply.Id,
			Author:      author,
			Signature:   "0xsig",
			MessageHash: "0xhash",
		})
		requireConflictError(t, err)
	})

	t.Run("nonexistent parent", func(t *testing.T) {
		missing := domain.CommentId("no-such-comment")
		_, err := storage.CreateComment(ctx, domain.CommentCreationData{
			EssayId:     essayId,
			Content:     "Orphan",
			ParentId:    &missing,
			Author:      author,
			Signature:   "0xsig",
			MessageHash: "0xhash",
		})
		requireNotFoundError(t, err)
	})
}

func TestEditComment(t *testing.T) {
	ctx := context.Background()
	essayId := generateEssayId(t)
	author := generateAddress(t)

	t.Run("owner can edit", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)

		edited, err := storage.EditComment(ctx, comment.Id, "Updated content", author)
		require.NoError(t, err)
		assert.Equal(t, "Updated content", edited.Content)
		assert.True(t, edited.IsEdited)
		require.NotNil(t, edited.EditedAt)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)

		_, err := storage.EditComment(ctx, comment.Id, "Hijacked", generateAddress(t))
		require.Error(t, err)
		assert.Equal(t, 403, internal_errors.StatusOf(err))
	})

	t.Run("deleted comment cannot be edited", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)
		createTestComment(t, essayId, &comment.Id, author) // reply forces soft delete

		mode, err := storage.DeleteComment(ctx, comment.Id, author)
		require.NoError(t, err)
		require.Equal(t, domain.DeletionSoft, mode)

		_, err = storage.EditComment(ctx, comment.Id, "Necromancy", author)
		requireConflictError(t, err)
	})

	t.Run("nonexistent comment", func(t *testing.T) {
		_, err := storage.EditComment(ctx, "no-such-comment", "Anything", author)
		requireNotFoundError(t, err)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	essayId := generateEssayId(t)
	author := generateAddress(t)

	t.Run("hard delete without replies", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)
		_, err := storage.CastVote(ctx, comment.Id, generateAddress(t), domain.Upvote)
		require.NoError(t, err)

		mode, err := storage.DeleteComment(ctx, comment.Id, author)
		require.NoError(t, err)
		assert.Equal(t, domain.DeletionHard, mode)

		// row and its votes are gone
		var exists bool
		err = storage.db.QueryRow(`SELECT EXISTS (SELECT FROM comments WHERE id = $1)`, comment.Id).Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "comment row should be deleted")
		err = storage.db.QueryRow(`SELECT EXISTS (SELECT FROM votes WHERE comment_id = $1)`, comment.Id).Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "vote rows should be deleted")
	})

	t.Run("soft delete with replies keeps counters", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)
		createTestComment(t, essayId, &comment.Id, author)
		_, err := storage.CastVote(ctx, comment.Id, generateAddress(t), domain.Upvote)
		require.NoError(t, err)

		mode, err := storage.DeleteComment(ctx, comment.Id, author)
		require.NoError(t, err)
		assert.Equal(t, domain.DeletionSoft, mode)

		page, err := storage.ListComments(ctx, essayId, domain.SortByRecent, 50, 0, "")
		require.NoError(t, err)
		deleted := findComment(t, page, comment.Id)
		assert.Equal(t, domain.DeletedContent, deleted.Content)
		assert.True(t, deleted.IsDeleted)
		assert.Equal(t, 1, deleted.UpvoteCount, "soft delete must not touch counters")
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		comment := createTestComment(t, essayId, nil, author)
		_, err := storage.DeleteComment(ctx, comment.Id, generateAddress(t))
		require.Error(t, err)
		assert.Equal(t, 403, internal_errors.StatusOf(err))
	})

	t.Run("nonexistent comment", func(t *testing.T) {
		_, err := storage.DeleteComment(ctx, "no-such-comment", author)
		requireNotFoundError(t, err)
	})
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	essayId := generateEssayId(t)
	author := generateAddress(t)

	first := createTestComment(t, essayId, nil, author)
	second := createTestComment(t, essayId, nil, author)
	reply := createTestComment(t, essayId, &first.Id, author)

	// second gets two upvotes, first gets one
	_, err := storage.CastVote(ctx, second.Id, generateAddress(t), domain.Upvote)
	require.NoError(t, err)
	_, err = storage.CastVote(ctx, second.Id, generateAddress(t), domain.Upvote)
	require.NoError(t, err)
	voter := generateAddress(t)
	_, err = storage.CastVote(ctx, first.Id, voter, domain.Upvote)
	require.NoError(t, err)

	t.Run("sort by score", func(t *testing.T) {
		page, err := storage.ListComments(ctx, essayId, domain.SortByScore, 50, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total, "replies count toward the total")
		require.Len(t, page.Comments, 2, "only top-level comments at the top")
		assert.Equal(t, second.Id, page.Comments[0].Id)
		assert.Equal(t, first.Id, page.Comments[1].Id)
	})

	t.Run("sort by recent", func(t *testing.T) {
		page, err := storage.ListComments(ctx, essayId, domain.SortByRecent, 50, 0, "")
		require.NoError(t, err)
		require.Len(t, page.Comments, 2)
		assert.Equal(t, second.Id, page.Comments[0].Id, "newest first")
	})

	t.Run("replies nested under their parent", func(t *testing.T) {
		page, err := storage.ListComments(ctx, essayId, domain.SortByScore, 50, 0, "")
		require.NoError(t, err)
		parent := findComment(t, page, first.Id)
		require.Len(t, parent.Replies, 1)
		assert.Equal(t, reply.Id, parent.Replies[0].Id)
	})

	t.Run("viewer votes annotated", func(t *testing.T) {
		page, err := storage.ListComments(ctx, essayId, domain.SortByScore, 50, 0, voter)
		require.NoError(t, err)
		withVote := findComment(t, page, first.Id)
		require.NotNil(t, withVote.ViewerVote)
		assert.Equal(t, domain.Upvote, *withVote.ViewerVote)
		withoutVote := findComment(t, page, second.Id)
		assert.Nil(t, withoutVote.ViewerVote)
	})

	t.Run("pagination of top-level comments", func(t *testing.T) {
		page, err := storage.ListComments(ctx, essayId, domain.SortByRecent, 1, 1, "")
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Comments, 1)
		assert.Equal(t, first.Id, page.Comments[0].Id)
	})

	t.Run("empty essay", func(t *testing.T) {
		page, err := storage.ListComments(ctx, generateEssayId(t), domain.SortByScore, 50, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Comments)
	})
}

func findComment(t *testing.T, page domain.CommentPage, id domain.CommentId) domain.CommentView {
	t.Helper()
	for _, c := range page.Comments {
		if c.Id == id {
			return c
		}
	}
	t.Fatalf("comment %s not found in page", id)
	return domain.CommentView{}
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
)

// CreateComment inserts a comment, deriving depth from the parent. Replies to
// replies are rejected so threads stay exactly two levels deep.
func (s *Storage) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	depth := 0
	if data.ParentId != nil {
		var parentDepth int
		err = tx.QueryRowContext(ctx,
			"SELECT depth FROM comments WHERE id = $1", *data.ParentId,
		).Scan(&parentDepth)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Comment{}, internal_errors.NotFound("Parent comment not found")
			}
			return domain.Comment{}, fmt.Errorf("failed to look up parent: %w", err)
		}
		if parentDepth != 0 {
			return domain.Comment{}, internal_errors.Conflict("Cannot reply to a reply (max 2 levels)")
		}
		depth = 1
	}

	comment := domain.Comment{
		Id:          uuid.NewString(),
		EssayId:     data.EssayId,
		ParentId:    data.ParentId,
		Depth:       depth,
		Content:     data.Content,
		Author:      data.Author,
		EnsName:     data.EnsName,
		Signature:   data.Signature,
		MessageHash: data.MessageHash,
	}
	err = tx.QueryRowContext(ctx, `
	INSERT INTO comments(id, essay_id, parent_id, depth, content, author_address, ens_name, signature, message_hash)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at`,
		comment.Id, comment.EssayId, comment.ParentId, comment.Depth, comment.Content,
		comment.Author, comment.EnsName, comment.Signature, comment.MessageHash,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Comment{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return comment, nil
}

// EditComment replaces the content of requester's own live comment.
func (s *Storage) EditComment(ctx context.Context, id domain.CommentId, content string, requester domain.Address) (domain.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := lockComment(ctx, tx, id)
	if err != nil {
		return domain.Comment{}, err
	}
	if comment.Author != requester {
		return domain.Comment{}, internal_errors.Authorization("Not authorized to edit this comment")
	}
	if comment.IsDeleted {
		return domain.Comment{}, internal_errors.Conflict("Cannot edit deleted comment")
	}

	var editedAt time.Time
	err = tx.QueryRowContext(ctx, `
	UPDATE comments SET
		content = $2,
		is_edited = TRUE,
		edited_at = now()
	WHERE id = $1
	RETURNING edited_at`, id, content).Scan(&editedAt)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to update comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Comment{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &editedAt
	return comment, nil
}

// DeleteComment soft-deletes when replies reference the comment (content
// replaced by the sentinel, counters untouched) and hard-deletes otherwise,
// removing every vote in the same transaction.
func (s *Storage) DeleteComment(ctx context.Context, id domain.CommentId, requester domain.Address) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := lockComment(ctx, tx, id)
	if err != nil {
		return "", err
	}
	if comment.Author != requester {
		return "", internal_errors.Authorization("Not authorized to delete this comment")
	}

	var hasReplies bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM comments WHERE parent_id = $1)", id,
	).Scan(&hasReplies)
	if err != nil {
		return "", fmt.Errorf("failed to check replies: %w", err)
	}

	deletionType := domain.DeletionHard
	if hasReplies {
		deletionType = domain.DeletionSoft
		_, err = tx.ExecContext(ctx, `
		UPDATE comments SET
			content = $2,
			is_deleted = TRUE
		WHERE id = $1`, id, domain.DeletedContent)
		if err != nil {
			return "", fmt.Errorf("failed to soft delete comment: %w", err)
		}
	} else {
		// no orphaned votes may survive a hard delete
		if _, err = tx.ExecContext(ctx, "DELETE FROM votes WHERE comment_id = $1", id); err != nil {
			return "", fmt.Errorf("failed to delete votes: %w", err)
		}
		if _, err = tx.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id); err != nil {
			return "", fmt.Errorf("failed to delete comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deletionType, nil
}

// ListComments returns a page of top-level comments with replies nested under
// each, plus the total comment count for the essay. Replies are always
// chronological regardless of the top-level sort.
func (s *Storage) ListComments(ctx context.Context, essayId domain.EssayId, sortBy domain.SortOrder, limit, offset int, viewer domain.Address) (domain.CommentPage, error) {
	page := domain.CommentPage{EssayId: essayId, Comments: []domain.CommentView{}}

	order := "score DESC, created_at DESC"
	if sortBy == domain.SortByRecent {
		order = "created_at DESC"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT %s
	FROM comments
	WHERE essay_id = $1 AND depth = 0
	ORDER BY %s
	LIMIT $2 OFFSET $3`, commentColumns, order), essayId, limit, offset)
	if err != nil {
		return page, fmt.Errorf("failed to fetch comments: %w", err)
	}
	defer rows.Close()

	parentIds := []string{}
	index := map[domain.CommentId]int{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return page, err
		}
		index[c.Id] = len(page.Comments)
		page.Comments = append(page.Comments, c.View())
		parentIds = append(parentIds, c.Id)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to iterate comments: %w", err)
	}

	if len(parentIds) > 0 {
		replyRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM comments
		WHERE parent_id = ANY($1)
		ORDER BY created_at ASC`, commentColumns), pq.Array(parentIds))
		if err != nil {
			return page, fmt.Errorf("failed to fetch replies: %w", err)
		}
		defer replyRows.Close()

		for replyRows.Next() {
			reply, err := scanComment(replyRows)
			if err != nil {
				return page, err
			}
			i := index[*reply.ParentId]
			page.Comments[i].Replies = append(page.Comments[i].Replies, reply.View())
		}
		if err := replyRows.Err(); err != nil {
			return page, fmt.Errorf("failed to iterate replies: %w", err)
		}
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE essay_id = $1", essayId,
	).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("failed to count comments: %w", err)
	}

	if viewer != "" {
		if err := s.annotateViewerVotes(ctx, &page, viewer); err != nil {
			return page, err
		}
	}
	return page, nil
}

// annotateViewerVotes marks each view with the viewer's current vote so
// clients can render active vote state without a second request.
func (s *Storage) annotateViewerVotes(ctx context.Context, page *domain.CommentPage, viewer domain.Address) error {
	ids := []string{}
	for i := range page.Comments {
		ids = append(ids, page.Comments[i].Id)
		for j := range page.Comments[i].Replies {
			ids = append(ids, page.Comments[i].Replies[j].Id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT comment_id, vote_type
	FROM votes
	WHERE voter_address = $1 AND comment_id = ANY($2)`, viewer, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to fetch viewer votes: %w", err)
	}
	defer rows.Close()

	voted := map[domain.CommentId]domain.VoteType{}
	for rows.Next() {
		var id domain.CommentId
		var vt domain.VoteType
		if err := rows.Scan(&id, &vt); err != nil {
			return fmt.Errorf("failed to scan viewer vote: %w", err)
		}
		voted[id] = vt
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate viewer votes: %w", err)
	}

	for i := range page.Comments {
		if vt, ok := voted[page.Comments[i].Id]; ok {
			page.Comments[i].ViewerVote = &vt
		}
		for j := range page.Comments[i].Replies {
			if vt, ok := voted[page.Comments[i].Replies[j].Id]; ok {
				page.Comments[i].Replies[j].ViewerVote = &vt
			}
		}
	}
	return nil
}

const commentColumns = `id, essay_id, parent_id, depth, content, author_address, ens_name,
	is_edited, is_deleted, upvote_count, downvote_count, score, created_at, edited_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.Id, &c.EssayId, &c.ParentId, &c.Depth, &c.Content, &c.Author, &c.EnsName,
		&c.IsEdited, &c.IsDeleted, &c.UpvoteCount, &c.DownvoteCount, &c.Score, &c.CreatedAt, &c.EditedAt)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to scan comment: %w", err)
	}
	return c, nil
}

// lockComment fetches a comment row FOR UPDATE so counter and lifecycle
// mutations on the same comment are linearized.
func lockComment(ctx context.Context, tx *sql.Tx, id domain.CommentId) (domain.Comment, error) {
	var c domain.Comment
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT %s
	FROM comments
	WHERE id = $1
	FOR UPDATE`, commentColumns), id).Scan(
		&c.Id, &c.EssayId, &c.ParentId, &c.Depth, &c.Content, &c.Author, &c.EnsName,
		&c.IsEdited, &c.IsDeleted, &c.UpvoteCount, &c.DownvoteCount, &c.Score, &c.CreatedAt, &c.EditedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Comment{}, internal_errors.NotFound("Comment not found")
		}
		return domain.Comment{}, fmt.Errorf("failed to lock comment: %w", err)
	}
	return c, nil
}

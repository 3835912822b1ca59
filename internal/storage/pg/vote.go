package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/readproof-dev/readproof/internal/domain"
	internal_errors "github.com/readproof-dev/readproof/internal/errors"
)

// voteCounterClampTotal counts how often a decrement had to be floored at
// zero. Steady-state it never fires; a non-zero value means counters were
// corrupted at some earlier point and is worth investigating.
var voteCounterClampTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vote_counter_clamp_total",
	Help: "Times a vote counter decrement was clamped at zero",
})

const uniqueViolation = "23505"

// CastVote records a vote, or switches an existing vote of the opposite
// type. The comment row is locked first so the counter read-modify-write is
// linearized; the (comment_id, voter_address) primary key catches concurrent
// first-time votes.
func (s *Storage) CastVote(ctx context.Context, commentId domain.CommentId, voter domain.Address, voteType domain.VoteType) (domain.VoteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	comment, err := lockComment(ctx, tx, commentId)
	if err != nil {
		return domain.VoteResult{}, err
	}

	var existing domain.VoteType
	err = tx.QueryRowContext(ctx, `
	SELECT vote_type FROM votes
	WHERE comment_id = $1 AND voter_address = $2
	FOR UPDATE`, commentId, voter).Scan(&existing)

	up, down := comment.UpvoteCount, comment.DownvoteCount
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
		INSERT INTO votes(comment_id, voter_address, vote_type)
		VALUES($1, $2, $3)`, commentId, voter, voteType)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return domain.VoteResult{}, internal_errors.Conflict("Already voted with this type")
			}
			return domain.VoteResult{}, fmt.Errorf("failed to insert vote: %w", err)
		}
		if voteType == domain.Upvote {
			up++
		} else {
			down++
		}

	case err != nil:
		return domain.VoteResult{}, fmt.Errorf("failed to look up vote: %w", err)

	case existing == voteType:
		// duplicate same-type votes fail loudly, they surface client bugs
		return domain.VoteResult{}, internal_errors.Conflict("Already voted with this type")

	default:
		// switch: exactly one decrement and one increment
		if existing == domain.Upvote {
			up = clampDecrement(up, commentId)
			down++
		} else {
			down = clampDecrement(down, commentId)
			up++
		}
		_, err = tx.ExecContext(ctx, `
		UPDATE votes SET vote_type = $3, updated_at = now()
		WHERE comment_id = $1 AND voter_address = $2`, commentId, voter, voteType)
		if err != nil {
			return domain.VoteResult{}, fmt.Errorf("failed to switch vote: %w", err)
		}
	}

	result, err := updateCounters(ctx, tx, commentId, up, down)
	if err != nil {
		return domain.VoteResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	result.UserVote = &voteType
	return result, nil
}

// RetractVote removes the voter's vote and decrements the matching counter.
// A vote whose comment is already gone is still cleaned up and reports zero.
func (s *Storage) RetractVote(ctx context.Context, commentId domain.CommentId, voter domain.Address) (domain.VoteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// lock order comment -> vote, same as CastVote
	comment, commentErr := lockComment(ctx, tx, commentId)
	commentGone := internal_errors.KindOf(commentErr) == internal_errors.KindNotFound
	if commentErr != nil && !commentGone {
		return domain.VoteResult{}, commentErr
	}

	var voteType domain.VoteType
	err = tx.QueryRowContext(ctx, `
	SELECT vote_type FROM votes
	WHERE comment_id = $1 AND voter_address = $2
	FOR UPDATE`, commentId, voter).Scan(&voteType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VoteResult{}, internal_errors.NotFound("Vote not found")
		}
		return domain.VoteResult{}, fmt.Errorf("failed to look up vote: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
	DELETE FROM votes
	WHERE comment_id = $1 AND voter_address = $2`, commentId, voter); err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to delete vote: %w", err)
	}

	result := domain.VoteResult{}
	if !commentGone {
		up, down := comment.UpvoteCount, comment.DownvoteCount
		if voteType == domain.Upvote {
			up = clampDecrement(up, commentId)
		} else {
			down = clampDecrement(down, commentId)
		}
		result, err = updateCounters(ctx, tx, commentId, up, down)
		if err != nil {
			return domain.VoteResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// updateCounters persists the counters and the derived score so reads never
// need a join.
func updateCounters(ctx context.Context, tx *sql.Tx, commentId domain.CommentId, up, down int) (domain.VoteResult, error) {
	score := up - down
	_, err := tx.ExecContext(ctx, `
	UPDATE comments SET
		upvote_count = $2,
		downvote_count = $3,
		score = $4
	WHERE id = $1`, commentId, up, down, score)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("failed to update counters: %w", err)
	}
	return domain.VoteResult{Score: score, UpvoteCount: up, DownvoteCount: down}, nil
}

// clampDecrement floors a counter at zero. The clamp firing means the
// counter disagreed with the vote records before this call.
func clampDecrement(count int, commentId domain.CommentId) int {
	if count <= 0 {
		voteCounterClampTotal.Inc()
		slog.Warn("vote counter clamped at zero, counters were inconsistent", "comment_id", commentId)
		return 0
	}
	return count - 1
}

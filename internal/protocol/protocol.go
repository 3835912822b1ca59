// Package protocol defines the canonical text templates clients sign for each
// action, and the extraction rules the server applies to cross-check the
// signed payload against the structured request. The server never rebuilds
// the message; it parses the exact string the client signed.
package protocol

import (
	"fmt"
	"strings"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/errors"
)

// noParent is the placeholder clients put in the Parent Comment line of a
// top-level comment.
const noParent = "none"

// Template builders. The server only needs them in tests and documentation;
// clients construct the same strings independently.

func AttestMessage(title string, essayId domain.EssayId, ts int64) string {
	return fmt.Sprintf("I have read: %s\nEssay ID: %s\nTimestamp: %d", title, essayId, ts)
}

func PostCommentMessage(title string, essayId domain.EssayId, parentId *domain.CommentId, content string, ts int64) string {
	parent := noParent
	if parentId != nil {
		parent = *parentId
	}
	return fmt.Sprintf("I want to comment on: %s\nEssay ID: %s\nParent Comment: %s\nContent: %s\nTimestamp: %d",
		title, essayId, parent, content, ts)
}

func EditCommentMessage(commentId domain.CommentId, content string, ts int64) string {
	return fmt.Sprintf("Edit comment: %s\nNew content: %s\nTimestamp: %d", commentId, content, ts)
}

func DeleteCommentMessage(commentId domain.CommentId, ts int64) string {
	return fmt.Sprintf("Delete comment: %s\nTimestamp: %d", commentId, ts)
}

func VoteMessage(commentId domain.CommentId, voteType domain.VoteType, ts int64) string {
	return fmt.Sprintf("Vote on comment: %s\nVote type: %s\nTimestamp: %d", commentId, voteType, ts)
}

func UnvoteMessage(commentId domain.CommentId, ts int64) string {
	return fmt.Sprintf("Remove vote on comment: %s\nTimestamp: %d", commentId, ts)
}

// Cross-checks. Each verifies that the ids (and payload, for content-bearing
// actions) embedded in the signed message equal the ones supplied in the
// structured request, so a signature for one target cannot be replayed
// against another.

func VerifyAttest(message string, essayId domain.EssayId) error {
	return matchField(message, "Essay ID:", essayId, "essay id")
}

func VerifyPostComment(message string, essayId domain.EssayId, parentId *domain.CommentId, content string) error {
	if err := matchField(message, "Essay ID:", essayId, "essay id"); err != nil {
		return err
	}
	parent := noParent
	if parentId != nil {
		parent = *parentId
	}
	if err := matchField(message, "Parent Comment:", parent, "parent comment id"); err != nil {
		return err
	}
	return matchContent(message, "Content:", content)
}

func VerifyEditComment(message string, commentId domain.CommentId, content string) error {
	if err := matchField(message, "Edit comment:", commentId, "comment id"); err != nil {
		return err
	}
	return matchContent(message, "New content:", content)
}

func VerifyDeleteComment(message string, commentId domain.CommentId) error {
	return matchField(message, "Delete comment:", commentId, "comment id")
}

func VerifyVote(message string, commentId domain.CommentId, voteType domain.VoteType) error {
	if err := matchField(message, "Vote on comment:", commentId, "comment id"); err != nil {
		return err
	}
	return matchField(message, "Vote type:", string(voteType), "vote type")
}

func VerifyUnvote(message string, commentId domain.CommentId) error {
	return matchField(message, "Remove vote on comment:", commentId, "comment id")
}

// extractLine returns the trimmed remainder of the first line starting with
// marker.
func extractLine(message, marker string) (string, bool) {
	idx := strings.Index(message, marker)
	if idx < 0 {
		return "", false
	}
	rest := message[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest), true
}

// extractBlock returns everything between marker and the final Timestamp
// line. Content may span multiple lines, so a line-based extraction would
// truncate it.
func extractBlock(message, marker string) (string, bool) {
	start := strings.Index(message, marker)
	if start < 0 {
		return "", false
	}
	rest := message[start+len(marker):]
	end := strings.LastIndex(rest, "\nTimestamp:")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func matchField(message, marker, want, what string) error {
	got, ok := extractLine(message, marker)
	if !ok {
		return errors.Replay(what + " not found in signed message")
	}
	if got != want {
		return errors.Replay(what + " mismatch in signed message")
	}
	return nil
}

func matchContent(message, marker, want string) error {
	got, ok := extractBlock(message, marker)
	if !ok {
		return errors.Replay("content not found in signed message")
	}
	if got != strings.TrimSpace(want) {
		return errors.Replay("content mismatch in signed message")
	}
	return nil
}

package domain

import "strings"

type (
	// Address is a lowercase-normalized 0x-prefixed wallet address.
	// It is the unit of authorship, ownership and vote uniqueness;
	// there is no separate account entity.
	Address = string

	EssayId   = string
	CommentId = string
	VoteType  = string
	SortOrder = string
)

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

const (
	SortByScore  SortOrder = "score"
	SortByRecent SortOrder = "recent"
)

// DeletedContent is the reserved sentinel written by soft delete.
const DeletedContent = "[deleted]"

const (
	DeletionSoft = "soft"
	DeletionHard = "hard"
)

// NormalizeAddress lowercases an address so every comparison and storage key
// uses the same form.
func NormalizeAddress(addr Address) Address {
	return strings.ToLower(addr)
}

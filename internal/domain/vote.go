package domain

import "time"

// Vote is unique per (CommentId, Voter). It is created on first vote,
// mutated in place on a type switch and removed on retraction or when its
// comment is hard-deleted.
type Vote struct {
	CommentId CommentId
	Voter     Address
	Type      VoteType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteResult reports the comment counters after a vote mutation.
type VoteResult struct {
	Score         int       `json:"score"`
	UpvoteCount   int       `json:"upvoteCount"`
	DownvoteCount int       `json:"downvoteCount"`
	UserVote      *VoteType `json:"userVote,omitempty"`
}

package domain

import "time"

type Comment struct {
	Id            CommentId
	EssayId       EssayId
	ParentId      *CommentId // nil for top-level comments
	Depth         int        // 0 or 1, derived from ParentId
	Content       string
	Author        Address
	EnsName       *string
	IsEdited      bool
	IsDeleted     bool
	UpvoteCount   int
	DownvoteCount int
	Score         int // always UpvoteCount - DownvoteCount
	CreatedAt     time.Time
	EditedAt      *time.Time
	Signature     string // retained for audit, never re-verified
	MessageHash   string // retained for audit
}

// to iterate thru layers: handler -> service -> storage
type CommentCreationData struct {
	EssayId     EssayId
	Content     string
	ParentId    *CommentId
	Author      Address
	EnsName     *string
	Signature   string
	MessageHash string
}

// CommentView is the caller-facing projection. Signature material never
// leaves the storage layer through it.
type CommentView struct {
	Id            CommentId     `json:"commentId"`
	EssayId       EssayId       `json:"essayId"`
	ParentId      *CommentId    `json:"parentCommentId"`
	Depth         int           `json:"depth"`
	Content       string        `json:"content"`
	Author        Address       `json:"userAddress"`
	EnsName       *string       `json:"ensName"`
	IsEdited      bool          `json:"isEdited"`
	IsDeleted     bool          `json:"isDeleted"`
	UpvoteCount   int           `json:"upvoteCount"`
	DownvoteCount int           `json:"downvoteCount"`
	Score         int           `json:"score"`
	CreatedAt     time.Time     `json:"createdAt"`
	EditedAt      *time.Time    `json:"editedAt"`
	ViewerVote    *VoteType     `json:"viewerVote,omitempty"`
	Replies       []CommentView `json:"replies,omitempty"`
}

func (c *Comment) View() CommentView {
	return CommentView{
		Id:            c.Id,
		EssayId:       c.EssayId,
		ParentId:      c.ParentId,
		Depth:         c.Depth,
		Content:       c.Content,
		Author:        c.Author,
		EnsName:       c.EnsName,
		IsEdited:      c.IsEdited,
		IsDeleted:     c.IsDeleted,
		UpvoteCount:   c.UpvoteCount,
		DownvoteCount: c.DownvoteCount,
		Score:         c.Score,
		CreatedAt:     c.CreatedAt,
		EditedAt:      c.EditedAt,
	}
}

type CommentPage struct {
	EssayId  EssayId       `json:"essayId"`
	Total    int           `json:"totalComments"`
	Comments []CommentView `json:"comments"`
}

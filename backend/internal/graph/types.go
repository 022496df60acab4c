package graph

import "time"

// ============================================================================
// Node projections
// ============================================================================

// User is the typed projection of a :User node
type User struct {
	ID             string    `json:"userId"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"createdAt"`
	IsAdmin        bool      `json:"isAdmin"`

	// Friends is derived from FRIEND edges for the response at hand; it is never persisted.
	Friends []User `json:"friends,omitempty"`
}

// Post is the typed projection of a :Post node
type Post struct {
	ID        string    `json:"postId"`
	ImageURL  string    `json:"imageURL"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
	LikeCount int64     `json:"likeCount"`
}

// Comment is the typed projection of a :Comment node together with the
// ends of its AUTHORED and BELONGS_TO edges
type Comment struct {
	ID             string    `json:"commentId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	LikeCount      int64     `json:"likeCount"`
	AuthorID       string    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	PostID         string    `json:"postId"`
}

// LikeResult is the state of a LIKES edge after a toggle
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// TargetKind names the node types a user can like
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid reports whether k is a likeable kind
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

func (k TargetKind) label() string {
	if k == TargetComment {
		return "Comment"
	}
	return "Post"
}

func (k TargetKind) key() string {
	if k == TargetComment {
		return "commentId"
	}
	return "postId"
}

// ============================================================================
// Creation inputs
// ============================================================================

// NewUser carries the fields of a user about to be registered
type NewUser struct {
	Username       string
	FullName       string
	Email          string
	PasswordHash   string
	ProfilePicture string
	Bio            string
	IsAdmin        bool
}

// NewPost carries the fields of a post about to be published
type NewPost struct {
	AuthorID string
	ImageURL string
	Caption  string
}

// NewComment carries the fields of a comment about to be added
type NewComment struct {
	AuthorID string
	PostID   string
	Content  string
}

// PostFilter narrows ListPosts; a zero filter lists every post
type PostFilter struct {
	AuthorID string
}

// ============================================================================
// Partial patches
// ============================================================================

// UserPatch lists the user fields that may change after registration.
// Nil fields are left untouched.
type UserPatch struct {
	FullName       *string
	Email          *string
	Bio            *string
	ProfilePicture *string
}

func (p UserPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setIf(fields, "fullName", p.FullName)
	setIf(fields, "email", p.Email)
	setIf(fields, "bio", p.Bio)
	setIf(fields, "profilePicture", p.ProfilePicture)
	return fields
}

// PostPatch lists the editable post fields
type PostPatch struct {
	Caption  *string
	ImageURL *string
}

func (p PostPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setIf(fields, "caption", p.Caption)
	setIf(fields, "imageURL", p.ImageURL)
	return fields
}

// CommentPatch lists the editable comment fields
type CommentPatch struct {
	Content *string
}

func (p CommentPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setIf(fields, "content", p.Content)
	return fields
}

func setIf(fields map[string]interface{}, name string, value *string) {
	if value != nil {
		fields[name] = *value
	}
}

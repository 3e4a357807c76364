package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post types. The type is fixed at creation and partitions which variant
// block is meaningful.
const (
	PostTypeGeneral = "general"
	PostTypeEvent   = "event"
	PostTypeStudy   = "study"
	PostTypeReel    = "reel"
)

// DefaultMaxMembers caps study group membership when the creator does not
// set a limit.
const DefaultMaxMembers = 10

// Post represents a social media post stored in MongoDB. Author name and
// avatar are a snapshot taken at creation time and are not refreshed when
// the profile later changes.
type Post struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type         string             `json:"type" bson:"type"`
	AuthorID     string             `json:"author_id" bson:"author_id"`
	AuthorName   string             `json:"author_name" bson:"author_name"`
	AuthorAvatar *string            `json:"author_avatar" bson:"author_avatar"`
	Content      string             `json:"content" bson:"content"`
	ImageURL     *string            `json:"image_url,omitempty" bson:"image_url,omitempty"`
	VideoURL     *string            `json:"video_url,omitempty" bson:"video_url,omitempty"`

	Likes    []string  `json:"likes" bson:"likes"`
	SavedBy  []string  `json:"saved_by" bson:"saved_by"`
	Comments []Comment `json:"comments" bson:"comments"`
	Members  []string  `json:"members" bson:"members"`

	Event *EventDetails `json:"event,omitempty" bson:"event,omitempty"`
	Study *StudyDetails `json:"study,omitempty" bson:"study,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// EventDetails is only meaningful when Type == "event".
type EventDetails struct {
	Title    string `json:"title" bson:"title"`
	Date     string `json:"date" bson:"date"`
	Time     string `json:"time" bson:"time"`
	Location string `json:"location" bson:"location"`
}

// StudyDetails is only meaningful when Type == "study".
type StudyDetails struct {
	GroupName     string `json:"group_name" bson:"group_name"`
	Course        string `json:"course" bson:"course"`
	MeetingTime   string `json:"meeting_time" bson:"meeting_time"`
	StudyLocation string `json:"study_location" bson:"study_location"`
	MaxMembers    int    `json:"max_members" bson:"max_members"`
}

// Comment is an append-only entry embedded in its post. Comments are never
// edited or deleted.
type Comment struct {
	ID         string    `json:"id" bson:"id"`
	AuthorID   string    `json:"author_id" bson:"author_id"`
	AuthorName string    `json:"author_name" bson:"author_name"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// MaxMembers returns the effective membership cap for a study post.
func (p *Post) MaxMembers() int {
	if p.Study == nil || p.Study.MaxMembers <= 0 {
		return DefaultMaxMembers
	}
	return p.Study.MaxMembers
}

// CreatePostRequest defines the request body for creating a new post.
// The variant blocks are optional even for their own type; missing study
// details fall back to defaults.
type CreatePostRequest struct {
	Type     string        `json:"type" validate:"required,oneof=general event study reel"`
	Content  string        `json:"content" validate:"required,min=1,max=2000"`
	ImageURL *string       `json:"image_url,omitempty" validate:"omitempty,max=500"`
	VideoURL *string       `json:"video_url,omitempty" validate:"omitempty,max=500"`
	Event    *EventDetails `json:"event,omitempty"`
	Study    *StudyDetails `json:"study,omitempty"`
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/sluggram/backend/internal/apperror"
	"github.com/sluggram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Engagement set fields a user id can be toggled in or out of.
const (
	FieldLikes   = "likes"
	FieldSavedBy = "saved_by"
)

// authorListLimit caps the unskipped author/saved listings.
const authorListLimit = 100

// PostRepository defines the interface for post data operations. Engagement
// mutations are atomic set operations so concurrent writers cannot drop each
// other's changes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, postType string, skip, limit int64) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	ListSavedBy(ctx context.Context, userID string) ([]models.Post, error)
	Delete(ctx context.Context, id string) error
	AddToSet(ctx context.Context, id, field, userID string) (*models.Post, error)
	RemoveFromSet(ctx context.Context, id, field, userID string) (*models.Post, error)
	AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error)
	JoinStudyGroup(ctx context.Context, id, userID string) (*models.Post, error)
	LeaveStudyGroup(ctx context.Context, id, userID string) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB.
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository.
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// parsePostID validates the string form of a post id. A malformed id is an
// invalid argument, not a missing post.
func parsePostID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.Invalid("invalid post ID")
	}
	return objID, nil
}

// Create inserts a new post.
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetByID retrieves a post by ID.
func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// List retrieves posts sorted by created_at descending, optionally filtered
// by type. skip/limit bounds are the caller's responsibility.
func (r *MongoPostRepository) List(ctx context.Context, postType string, skip, limit int64) ([]models.Post, error) {
	filter := bson.M{}
	if postType != "" {
		filter["type"] = postType
	}
	return r.find(ctx, filter, skip, limit)
}

// ListByAuthor retrieves a user's posts, newest first, capped at 100.
func (r *MongoPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID}, 0, authorListLimit)
}

// ListSavedBy retrieves the posts a user has saved, newest first, capped at 100.
func (r *MongoPostRepository) ListSavedBy(ctx context.Context, userID string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"saved_by": userID}, 0, authorListLimit)
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete permanently removes a post. Authorization is the caller's concern.
func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	objID, err := parsePostID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

// AddToSet atomically adds userID to an engagement set and returns the
// updated post. $addToSet is idempotent per element, so a racing duplicate
// add cannot double-insert.
func (r *MongoPostRepository) AddToSet(ctx context.Context, id, field, userID string) (*models.Post, error) {
	return r.updateOne(ctx, id, bson.M{
		"$addToSet": bson.M{field: userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveFromSet atomically removes userID from an engagement set and returns
// the updated post.
func (r *MongoPostRepository) RemoveFromSet(ctx context.Context, id, field, userID string) (*models.Post, error) {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{field: userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// AddComment appends a comment and returns the updated post. Append order is
// arrival order.
func (r *MongoPostRepository) AddComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error) {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (r *MongoPostRepository) updateOne(ctx context.Context, id string, update bson.M) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// JoinStudyGroup adds userID to a study post's members inside a single
// conditional update: the push only matches while the member count is below
// the cap, so two racing joins cannot overfill the group. A failed match is
// re-read to tell "gone" from "full"; if the re-read shows room, the miss
// raced a concurrent leave and the update is retried once.
func (r *MongoPostRepository) JoinStudyGroup(ctx context.Context, id, userID string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":     objID,
		"type":    models.PostTypeStudy,
		"members": bson.M{"$ne": userID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": "$members"},
			bson.M{"$ifNull": bson.A{"$study.max_members", models.DefaultMaxMembers}},
		}},
	}

	for attempt := 0; attempt < 2; attempt++ {
		update := bson.M{
			"$push": bson.M{"members": userID},
			"$set":  bson.M{"updated_at": time.Now()},
		}

		var post models.Post
		err = r.collection.FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&post)
		if err == nil {
			return &post, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}

		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		retry, joinErr := classifyJoinMiss(current, userID)
		if !retry {
			if joinErr != nil {
				return nil, joinErr
			}
			return current, nil
		}
	}
	return nil, apperror.CapacityExceeded("study group is full")
}

// classifyJoinMiss inspects a post after a conditional join matched nothing.
// retry is true when the group has room for userID, meaning the miss raced a
// concurrent leave and the join should be attempted again. A nil error with
// retry false means a concurrent join by the same user already succeeded and
// the toggle target state is reached.
func classifyJoinMiss(post *models.Post, userID string) (retry bool, err error) {
	if post.Type != models.PostTypeStudy {
		return false, apperror.Invalid("can only join study group posts")
	}
	if slices.Contains(post.Members, userID) {
		return false, nil
	}
	if len(post.Members) >= post.MaxMembers() {
		return false, apperror.CapacityExceeded("study group is full")
	}
	return true, nil
}

// LeaveStudyGroup removes userID from a study post's members. Groups may go
// empty; there is no last-member guard.
func (r *MongoPostRepository) LeaveStudyGroup(ctx context.Context, id, userID string) (*models.Post, error) {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sluggram/backend/internal/apperror"
	"github.com/sluggram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user profile operations.
type UserRepository interface {
	GetOrCreate(ctx context.Context, seed *models.User) (*models.User, error)
	GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error)
	GetByIDOrSubject(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, subjectID string, update *models.UpdateProfileRequest) (*models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// GetOrCreate returns the profile for seed.Auth0ID, inserting it on first
// access. Two concurrent first requests can both attempt the insert; the
// unique index on auth0_id rejects the loser, which then re-reads and
// returns the winner's document.
func (r *MongoUserRepository) GetOrCreate(ctx context.Context, seed *models.User) (*models.User, error) {
	existing, err := r.GetBySubjectID(ctx, seed.Auth0ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	seed.ID = primitive.NewObjectID()
	seed.CreatedAt = time.Now()
	seed.UpdatedAt = seed.CreatedAt
	if _, err := r.collection.InsertOne(ctx, seed); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.GetBySubjectID(ctx, seed.Auth0ID)
		}
		return nil, err
	}
	return seed, nil
}

// GetBySubjectID retrieves a user by their identity provider subject id.
func (r *MongoUserRepository) GetBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"auth0_id": subjectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("user", subjectID)
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDOrSubject resolves a public profile by internal ObjectID first,
// falling back to the subject id when the value is not a valid ObjectID or
// no document matches it.
func (r *MongoUserRepository) GetByIDOrSubject(ctx context.Context, id string) (*models.User, error) {
	if objID, err := primitive.ObjectIDFromHex(id); err == nil {
		var user models.User
		err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
		if err == nil {
			return &user, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}
	return r.GetBySubjectID(ctx, id)
}

// UpdateProfile applies the non-nil fields of update to the user's profile
// and refreshes updated_at.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, subjectID string, update *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Major != nil {
		set["major"] = *update.Major
	}
	if update.GraduationYear != nil {
		set["graduation_year"] = *update.GraduationYear
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"auth0_id": subjectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("user", subjectID)
		}
		return nil, err
	}
	return &user, nil
}

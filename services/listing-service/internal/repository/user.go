package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
)

// ErrNoUserFields is returned when an update carries nothing to change.
var ErrNoUserFields = errors.New("no user fields to update")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUserByPhone(ctx context.Context, phone string, params UpdateUserParams) (*model.User, error)
	DeleteUserByPhone(ctx context.Context, phone string) (*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	FullName              *string
	CompanyName           *string
	Logo                  *string
	LogoColor             *string
	Phone                 *string
	FirstName             *string
	LastName              *string
	Verified              *bool
	ClearVerificationCode bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	return decodeUser(r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID}))
}

func (r *userMongoRepository) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	return decodeUser(r.db.Collection(userCollection).FindOne(ctx, bson.M{"phone": phone}))
}

func (r *userMongoRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.db.Collection(userCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userMongoRepository) UpdateUserByPhone(
	ctx context.Context,
	phone string,
	params UpdateUserParams,
) (*model.User, error) {
	// Build update query
	updateMap := bson.M{}
	if params.FullName != nil {
		updateMap["fullName"] = *params.FullName
	}
	if params.CompanyName != nil {
		updateMap["companyName"] = *params.CompanyName
	}
	if params.Logo != nil {
		updateMap["logo"] = *params.Logo
	}
	if params.LogoColor != nil {
		updateMap["logoColor"] = *params.LogoColor
	}
	if params.Phone != nil {
		updateMap["phone"] = *params.Phone
	}
	if params.FirstName != nil {
		updateMap["firstName"] = *params.FirstName
	}
	if params.LastName != nil {
		updateMap["lastName"] = *params.LastName
	}
	if params.Verified != nil {
		updateMap["verified"] = *params.Verified
	}

	if len(updateMap) == 0 && !params.ClearVerificationCode {
		return nil, ErrNoUserFields
	}

	updateMap["updatedAt"] = time.Now().UTC()

	update := bson.M{"$set": updateMap}
	if params.ClearVerificationCode {
		update["$unset"] = bson.M{"verificationCode": ""}
	}

	return decodeUser(r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"phone": phone},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *userMongoRepository) DeleteUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	return decodeUser(r.db.Collection(userCollection).FindOneAndDelete(ctx, bson.M{"phone": phone}))
}

func decodeUser(result *mongo.SingleResult) (*model.User, error) {
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type userDoc struct {
	Email     string    `bson:"_id"`
	Name      string    `bson:"name,omitempty"`
	Image     string    `bson:"image,omitempty"`
	Role      string    `bson:"role"`
	Status    string    `bson:"status,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toUserDoc(u *user.User) userDoc {
	return userDoc{
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func (d userDoc) toDomain() *user.User {
	return &user.User{
		Email:     d.Email,
		Name:      d.Name,
		Image:     d.Image,
		Role:      user.Role(d.Role),
		Status:    user.Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{coll: s.users}
}

func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	_, err := r.coll.InsertOne(ctx, toUserDoc(u))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.KindConflict, "user repository: email already registered")
	}
	if err != nil {
		return unavailable("insert user", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, email string) (*user.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find user", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.Email}, toUserDoc(u))
	if err != nil {
		return unavailable("update user", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListOthers(ctx context.Context, email string) ([]*user.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$ne": email}})
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode users", err)
	}
	out := make([]*user.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

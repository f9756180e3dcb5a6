package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type itemDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Category    string    `bson:"category,omitempty"`
	Description string    `bson:"description,omitempty"`
	ImageURL    string    `bson:"imageUrl,omitempty"`
	Price       int64     `bson:"price"`
	Quantity    int       `bson:"quantity"`
	SellerEmail string    `bson:"sellerEmail"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func toItemDoc(i *catalog.Item) itemDoc {
	return itemDoc{
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Quantity:    i.Quantity,
		SellerEmail: i.SellerEmail,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (d itemDoc) toDomain() *catalog.Item {
	return &catalog.Item{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Price:       d.Price,
		Quantity:    d.Quantity,
		SellerEmail: d.SellerEmail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type ItemRepository struct {
	coll *mongo.Collection
}

func NewItemRepository(s *Store) *ItemRepository {
	return &ItemRepository{coll: s.plants}
}

func (r *ItemRepository) Insert(ctx context.Context, item *catalog.Item) error {
	_, err := r.coll.InsertOne(ctx, toItemDoc(item))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.KindConflict, "item repository: id already exists")
	}
	if err != nil {
		return unavailable("insert item", err)
	}
	return nil
}

func (r *ItemRepository) Get(ctx context.Context, id string) (*catalog.Item, error) {
	var doc itemDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find item", err)
	}
	return doc.toDomain(), nil
}

// AdjustQuantity applies the delta with a guarded $inc: for decrements
// the filter requires quantity >= |delta|, so two racing decrements can
// never drive the count negative.
func (r *ItemRepository) AdjustQuantity(ctx context.Context, id string, delta int) (*catalog.Item, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc itemDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the item is missing or the guard refused; a plain
		// lookup distinguishes the two.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, catalog.ErrInsufficientStock
	}
	if err != nil {
		return nil, unavailable("adjust quantity", err)
	}
	return doc.toDomain(), nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*catalog.Item, error) {
	return r.find(ctx, bson.M{})
}

func (r *ItemRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]*catalog.Item, error) {
	return r.find(ctx, bson.M{"sellerEmail": sellerEmail})
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M) ([]*catalog.Item, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, unavailable("list items", err)
	}
	defer cur.Close(ctx)

	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode items", err)
	}
	out := make([]*catalog.Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return unavailable("delete item", err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

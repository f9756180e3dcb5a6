package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type orderDoc struct {
	ID            string    `bson:"_id"`
	CustomerEmail string    `bson:"customerEmail"`
	ItemID        string    `bson:"itemId"`
	Quantity      int       `bson:"quantity"`
	Price         int64     `bson:"price"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// enrichedOrderDoc carries the unwound lookup result of the customer
// orders pipeline.
type enrichedOrderDoc struct {
	orderDoc `bson:",inline"`
	Item     itemDoc `bson:"item"`
}

func toOrderDoc(o *order.Order) orderDoc {
	return orderDoc{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		ItemID:        o.ItemID,
		Quantity:      o.Quantity,
		Price:         o.Price,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (d orderDoc) toDomain() *order.Order {
	return &order.Order{
		ID:            d.ID,
		CustomerEmail: d.CustomerEmail,
		ItemID:        d.ItemID,
		Quantity:      d.Quantity,
		Price:         d.Price,
		Status:        order.Status(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{coll: s.orders}
}

func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	_, err := r.coll.InsertOne(ctx, toOrderDoc(o))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.New(apperr.KindConflict, "order repository: id already exists")
	}
	if err != nil {
		return unavailable("insert order", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var doc orderDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find order", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) MarkCancelled(ctx context.Context, id string) (*order.Order, error) {
	return r.transition(ctx, id, order.StatusCancelled)
}

func (r *OrderRepository) MarkDelivered(ctx context.Context, id string) (*order.Order, error) {
	return r.transition(ctx, id, order.StatusDelivered)
}

// transition flips pending → target in one conditional update, so a
// cancel racing an external delivery can never overwrite a terminal
// status.
func (r *OrderRepository) transition(ctx context.Context, id string, target order.Status) (*order.Order, error) {
	filter := bson.M{"_id": id, "status": string(order.StatusPending)}
	update := bson.M{"$set": bson.M{
		"status":    string(target),
		"updatedAt": time.Now().UTC(),
	}}

	var doc orderDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		existing, getErr := r.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, order.CancelRefusal(existing.Status)
	}
	if err != nil {
		return nil, unavailable("update order status", err)
	}
	return doc.toDomain(), nil
}

// ListByCustomer joins orders with the plants collection and drops
// orders whose item has been deleted, matching the unwound lookup the
// read path requires. Natural collection order preserves insertion
// order.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerEmail string) ([]*order.CustomerOrder, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "customerEmail", Value: customerEmail}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: plantsCollection},
			{Key: "localField", Value: "itemId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "item"},
		}}},
		{{Key: "$unwind", Value: "$item"}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, unavailable("aggregate customer orders", err)
	}
	defer cur.Close(ctx)

	var docs []enrichedOrderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode customer orders", err)
	}

	out := make([]*order.CustomerOrder, 0, len(docs))
	for _, d := range docs {
		out = append(out, &order.CustomerOrder{
			Order:        *d.orderDoc.toDomain(),
			ItemName:     d.Item.Name,
			ItemCategory: d.Item.Category,
			ItemImage:    d.Item.ImageURL,
		})
	}
	return out, nil
}

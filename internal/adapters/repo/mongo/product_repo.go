// Package mongo adapts the external products collection to domain.ProductRepo.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artisanswear/artisans/internal/domain"
)

type ProductRepo struct{ coll *mongo.Collection }

func NewProductRepo(coll *mongo.Collection) *ProductRepo { return &ProductRepo{coll: coll} }

// productDoc is the wire shape of one record. The store assigns _id; all
// other fields are written as-is, schemaless on the store side.
type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       string             `bson:"price"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Images      []string           `bson:"images"`
}

func toDoc(p domain.Product) productDoc {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productDoc{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Images:      images,
	}
}

func (d productDoc) toProduct() domain.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
		Images:      images,
	}
}

func (r *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	list := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toProduct())
	}
	return list, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (string, error) {
	res, err := r.coll.InsertOne(ctx, toDoc(p))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWrite, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", domain.ErrWrite, res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *ProductRepo) Update(ctx context.Context, id string, p domain.Product) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", domain.ErrWrite, id)
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toDoc(p))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrite, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s: %w", domain.ErrWrite, id, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", domain.ErrWrite, id)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrite, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: product %s: %w", domain.ErrWrite, id, domain.ErrNotFound)
	}
	return nil
}

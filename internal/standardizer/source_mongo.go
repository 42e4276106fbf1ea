package standardizer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/listing-cleaner/app/models"
)

// MongoSource đọc dữ liệu tham chiếu từ collection admin_units
type MongoSource struct {
	Collection *mongo.Collection
}

// Load implements Source
func (s MongoSource) Load(ctx context.Context) (*Reference, error) {
	if s.Collection == nil {
		return nil, eris.New("mongo source: collection is nil")
	}
	filter := bson.M{"level": bson.M{"$in": []int{models.LevelProvince, models.LevelDistrict, models.LevelWard}}}
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "code", Value: 1}})

	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, eris.Wrap(err, "find admin units")
	}
	defer cursor.Close(ctx)

	var units []models.AdminUnit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, eris.Wrap(err, "decode admin units")
	}
	return split(units), nil
}

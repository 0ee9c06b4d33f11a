// Package store persists leader activity and leader positions per
// tracked wallet, and hands out a namespaced key/value config collection
// for cross-restart bookkeeping (e.g. which private-key revision is in
// use). Callers depend on the Store interface; MongoStore is the only
// implementation, matching the document-store shape of the original
// trade monitor.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

const databaseName = "polymarket_copytrading"

// Store is the narrow persistence surface the copy engine needs. Every
// method is scoped to a leader wallet except the config methods, which
// are shared across leaders.
type Store interface {
	CountActivities(ctx context.Context, leader string) (int64, error)
	InsertActivity(ctx context.Context, leader string, activity *model.LeaderActivity) error
	FindActivityByTx(ctx context.Context, leader, txHash string) (*model.LeaderActivity, bool, error)
	FindUnprocessedTrades(ctx context.Context, leader string) ([]model.LeaderActivity, error)
	ClaimActivity(ctx context.Context, leader string, id any) (bool, error)
	MarkActivityExecuted(ctx context.Context, leader string, id any, myBoughtSize string) error
	MarkHistoricalProcessed(ctx context.Context, leader string) (int64, error)

	UpsertPosition(ctx context.Context, leader string, pos model.LeaderPosition) error
	Positions(ctx context.Context, leader string) ([]model.LeaderPosition, error)

	FindOpenBuysForAsset(ctx context.Context, leader, assetID, conditionID string) ([]model.LeaderActivity, error)
	ReduceBoughtSize(ctx context.Context, leader, assetID, conditionID string, remainingFraction string) (int64, error)

	SetConfig(ctx context.Context, key, value string) error

	// Ping reports whether the store is reachable, for the Supervisor's
	// startup system check.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}

// MongoStore backs Store with a MongoDB database. Each tracked leader
// wallet gets its own pair of activity/position collections, matching
// the original bot's per-trader collection-per-wallet layout.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and registers the decimal codec so every
// decimal.Decimal field round-trips as a string, never a lossy float64.
func Connect(ctx context.Context, uri string) (*MongoStore, error) {
	rb := bson.NewRegistryBuilder()
	registerDecimalCodec(rb)
	registry := rb.Build()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(registry))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(databaseName)}, nil
}

func (s *MongoStore) activityCollection(leader string) *mongo.Collection {
	return s.db.Collection("activities_" + strings.ToLower(leader))
}

func (s *MongoStore) positionCollection(leader string) *mongo.Collection {
	return s.db.Collection("positions_" + strings.ToLower(leader))
}

func (s *MongoStore) configCollection() *mongo.Collection {
	return s.db.Collection("configs")
}

func (s *MongoStore) CountActivities(ctx context.Context, leader string) (int64, error) {
	return s.activityCollection(leader).EstimatedDocumentCount(ctx)
}

func (s *MongoStore) InsertActivity(ctx context.Context, leader string, activity *model.LeaderActivity) error {
	_, err := s.activityCollection(leader).InsertOne(ctx, activity)
	return err
}

func (s *MongoStore) FindActivityByTx(ctx context.Context, leader, txHash string) (*model.LeaderActivity, bool, error) {
	var out model.LeaderActivity
	err := s.activityCollection(leader).FindOne(ctx, bson.M{"transactionHash": txHash}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

func (s *MongoStore) FindUnprocessedTrades(ctx context.Context, leader string) ([]model.LeaderActivity, error) {
	filter := bson.M{"bot": false, "botExecutedTime": int64(0)}
	cur, err := s.activityCollection(leader).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.LeaderActivity
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimActivity marks an unprocessed activity as in-flight (botExecutedTime
// = 1) so a concurrent Executor tick doesn't pick it up again while the
// first one is still working it. Returns false if another caller already
// claimed it.
func (s *MongoStore) ClaimActivity(ctx context.Context, leader string, id any) (bool, error) {
	filter := bson.M{"_id": id, "botExecutedTime": int64(0)}
	update := bson.M{"$set": bson.M{"botExecutedTime": int64(1)}}
	res, err := s.activityCollection(leader).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) MarkActivityExecuted(ctx context.Context, leader string, id any, myBoughtSize string) error {
	update := bson.M{"$set": bson.M{
		"bot":             true,
		"botExecutedTime": time.Now().UnixMilli(),
		"myBoughtSize":    myBoughtSize,
	}}
	_, err := s.activityCollection(leader).UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (s *MongoStore) MarkHistoricalProcessed(ctx context.Context, leader string) (int64, error) {
	filter := bson.M{"bot": false}
	update := bson.M{"$set": bson.M{"bot": true, "botExecutedTime": int64(999)}}
	res, err := s.activityCollection(leader).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) UpsertPosition(ctx context.Context, leader string, pos model.LeaderPosition) error {
	filter := bson.M{"asset": pos.AssetID, "conditionId": pos.ConditionID}
	update := bson.M{"$set": pos}
	opts := options.Update().SetUpsert(true)
	_, err := s.positionCollection(leader).UpdateOne(ctx, filter, update, opts)
	return err
}

func (s *MongoStore) Positions(ctx context.Context, leader string) ([]model.LeaderPosition, error) {
	cur, err := s.positionCollection(leader).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.LeaderPosition
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOpenBuysForAsset returns BUY activities the bot executed on the
// operator's behalf for this asset (optionally scoped to one market) that
// still carry a positive tracked purchase basis.
func (s *MongoStore) FindOpenBuysForAsset(ctx context.Context, leader, assetID, conditionID string) ([]model.LeaderActivity, error) {
	filter := bson.M{
		"asset": assetID,
		"side":  string(model.SideBuy),
		"bot":   true,
		"myBoughtSize": bson.M{"$exists": true},
	}
	if conditionID != "" {
		filter["conditionId"] = conditionID
	}
	cur, err := s.activityCollection(leader).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var all []model.LeaderActivity
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}

	// myBoughtSize is stored as a decimal string, so ">0" is checked here
	// rather than pushed into the Mongo filter, which would compare
	// lexicographically.
	out := make([]model.LeaderActivity, 0, len(all))
	for _, a := range all {
		if a.MyBoughtSize.IsPositive() {
			out = append(out, a)
		}
	}
	return out, nil
}

// ReduceBoughtSize scales every matching tracked-basis record's
// myBoughtSize by remainingFraction, modelling a proportional sell
// against accumulated purchase basis. Callers compute the fraction;
// the store only applies it uniformly across matching rows, mirroring
// the bulk update the original bot issues after a sell.
func (s *MongoStore) ReduceBoughtSize(ctx context.Context, leader, assetID, conditionID string, remainingFraction string) (int64, error) {
	rows, err := s.FindOpenBuysForAsset(ctx, leader, assetID, conditionID)
	if err != nil {
		return 0, err
	}
	frac, err := strconv.ParseFloat(remainingFraction, 64)
	if err != nil {
		return 0, fmt.Errorf("parse remaining fraction: %w", err)
	}

	var modified int64
	for _, row := range rows {
		remaining := row.MyBoughtSize.Mul(decimalFromFloat(frac))
		if frac <= 0.01 {
			remaining = decimal.Zero
		}
		update := bson.M{"$set": bson.M{"myBoughtSize": remaining.String()}}
		res, err := s.activityCollection(leader).UpdateOne(ctx, bson.M{"_id": row.ID}, update)
		if err != nil {
			return modified, err
		}
		modified += res.ModifiedCount
	}
	return modified, nil
}

var privateKeySeqPattern = regexp.MustCompile(`_(\d+)$`)

// SetConfig stores a key/value row. PRIVATE_KEY values are versioned as
// PRIVATE_KEY_<n> and deduplicated by value, matching the original bot's
// key-rotation bookkeeping.
func (s *MongoStore) SetConfig(ctx context.Context, key, value string) error {
	coll := s.configCollection()
	finalKey := key

	if key == "PRIVATE_KEY" {
		existing := coll.FindOne(ctx, bson.M{"key": primitiveRegex("^PRIVATE_KEY_[0-9]+$"), "value": value})
		var found bson.M
		if err := existing.Decode(&found); err == nil {
			return nil
		} else if err != mongo.ErrNoDocuments {
			return err
		}

		next, err := s.nextSequenceNumber(ctx, "PRIVATE_KEY")
		if err != nil {
			return err
		}
		finalKey = fmt.Sprintf("PRIVATE_KEY_%d", next)
	}

	_, err := coll.InsertOne(ctx, bson.M{"key": finalKey, "value": value, "timestamp": time.Now()})
	return err
}

func (s *MongoStore) nextSequenceNumber(ctx context.Context, prefix string) (int, error) {
	cur, err := s.configCollection().Find(ctx, bson.M{"key": primitiveRegex("^" + prefix + "_[0-9]+$")})
	if err != nil {
		return 1, err
	}
	defer cur.Close(ctx)

	max := 0
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		key, _ := doc["key"].(string)
		m := privateKeySeqPattern.FindStringSubmatch(key)
		if len(m) != 2 {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// Ping reports whether the underlying MongoDB connection is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

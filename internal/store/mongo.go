package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// UserStore はMongoDBのusersコレクションを操作します。
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore は UserStore を作成します。
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// EnsureIndexes はユーザー名のユニークインデックスを用意します。
// フェデレーションのみのユーザーは username を持たないため部分インデックスにします。
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"username": bson.M{"$type": "string"}}),
	}
	if _, err := s.coll.Indexes().CreateOne(ctx, model); err != nil {
		return storeError(err)
	}
	return nil
}

// Insert は新しいユーザーを保存します。
// ユーザー名が重複している場合は ErrDuplicateUsername を返します。
func (s *UserStore) Insert(ctx context.Context, user *User) (*User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, storeError(err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return user, nil
}

// FindByUsername はユーザー名でレコードを検索します。
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeError(err)
	}
	return &user, nil
}

// FindByID は文字列IDでレコードを検索します。
func (s *UserStore) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var user User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeError(err)
	}
	return &user, nil
}

// FindOrCreateByGoogleID はGoogleのsubject idでレコードを検索し、
// 存在しなければ作成して返します。upsert 1回で完結するため、初回ログインが
// 同時に走っても重複レコードは生まれません。
func (s *UserStore) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*User, error) {
	filter := bson.M{"googleId": googleID}
	update := bson.M{"$setOnInsert": bson.M{
		"googleId":  googleID,
		"createdAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user User
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, storeError(err)
	}
	return &user, nil
}

// SetSecret は指定ユーザーのsecretを上書き保存します（ユーザーあたり1件）。
func (s *UserStore) SetSecret(ctx context.Context, id string, secret string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"secret": secret}},
	)
	if err != nil {
		return storeError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSecrets はsecretを持つ全ユーザーのsecret本文だけを返します。
// 射影でsecret以外のフィールドを落とし、所有者情報は一切返しません。
func (s *UserStore) ListSecrets(ctx context.Context) ([]string, error) {
	filter := bson.M{"secret": bson.M{"$type": "string", "$ne": ""}}
	opts := options.Find().SetProjection(bson.M{"secret": 1, "_id": 0})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	var secrets []string
	for cursor.Next(ctx) {
		var doc struct {
			Secret string `bson:"secret"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError(err)
		}
		secrets = append(secrets, doc.Secret)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError(err)
	}
	return secrets, nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

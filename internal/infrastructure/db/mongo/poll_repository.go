package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

const collectionPolls = "polls"

// PollRepository stores polls with their embedded responses.
type PollRepository struct {
	col *mongo.Collection
}

func NewPollRepository(db *mongo.Database) *PollRepository {
	return &PollRepository{col: db.Collection(collectionPolls)}
}

type responseDoc struct {
	MemberID   primitive.ObjectID `bson:"member_id"`
	Choice     string             `bson:"choice"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

type pollDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	CreatedAt time.Time          `bson:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Responses []responseDoc      `bson:"responses"`
}

func (d pollDoc) toDomain() *domain.Poll {
	p := &domain.Poll{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
		Responses: make([]domain.Response, 0, len(d.Responses)),
	}
	for _, r := range d.Responses {
		p.Responses = append(p.Responses, domain.Response{
			MemberID:   r.MemberID.Hex(),
			Choice:     domain.Choice(r.Choice),
			RecordedAt: r.RecordedAt,
		})
	}
	return p
}

func (r *PollRepository) Create(ctx context.Context, p *domain.Poll) (*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := pollDoc{
		ID:        primitive.NewObjectID(),
		Title:     p.Title,
		CreatedAt: p.CreatedAt.UTC(),
		ExpiresAt: p.ExpiresAt.UTC(),
		Responses: make([]responseDoc, 0, len(p.Responses)),
	}
	for _, resp := range p.Responses {
		mid, err := primitive.ObjectIDFromHex(resp.MemberID)
		if err != nil {
			return nil, domain.Invalid("invalid member id in response")
		}
		doc.Responses = append(doc.Responses, responseDoc{MemberID: mid, Choice: string(resp.Choice), RecordedAt: resp.RecordedAt.UTC()})
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translateWriteErr("insert poll", err)
	}
	return doc.toDomain(), nil
}

func (r *PollRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	oid, err := objectID(id, domain.ErrPollNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc pollDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("find poll: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns polls newest first. With OpenAt set only polls whose
// expires_at is strictly after it are returned.
func (r *PollRepository) List(ctx context.Context, filter ports.PollFilter) ([]*domain.Poll, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if !filter.OpenAt.IsZero() {
		q["expires_at"] = bson.M{"$gt": filter.OpenAt.UTC()}
	}

	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find polls: %w", err)
	}
	defer cur.Close(ctx)

	var docs []pollDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode polls: %w", err)
	}

	out := make([]*domain.Poll, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// UpsertResponse performs the keyed upsert as guarded single-document
// updates. Both updates carry expires_at > now in their filter, so the
// expiry check and the write are one atomic operation on the server.
func (r *PollRepository) UpsertResponse(ctx context.Context, pollID string, resp domain.Response, now time.Time) (bool, error) {
	oid, err := objectID(pollID, domain.ErrPollNotFound)
	if err != nil {
		return false, err
	}
	mid, err := primitive.ObjectIDFromHex(resp.MemberID)
	if err != nil {
		return false, domain.Invalid("invalid member id")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	open := bson.M{"$gt": now.UTC()}
	rec := responseDoc{MemberID: mid, Choice: string(resp.Choice), RecordedAt: resp.RecordedAt.UTC()}

	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": oid, "expires_at": open, "responses.member_id": mid},
			bson.M{"$set": bson.M{
				"responses.$.choice":      rec.Choice,
				"responses.$.recorded_at": rec.RecordedAt,
			}},
		)
		if err != nil {
			return false, translateWriteErr("update response", err)
		}
		if res.MatchedCount > 0 {
			return false, nil
		}

		res, err = r.col.UpdateOne(ctx,
			bson.M{"_id": oid, "expires_at": open, "responses.member_id": bson.M{"$ne": mid}},
			bson.M{"$push": bson.M{"responses": rec}},
		)
		if err != nil {
			return false, translateWriteErr("push response", err)
		}
		if res.MatchedCount > 0 {
			return true, nil
		}

		// Neither guard matched. Find out why before retrying.
		var doc pollDoc
		err = r.col.FindOne(ctx, bson.M{"_id": oid},
			options.FindOne().SetProjection(bson.M{"expires_at": 1}),
		).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, domain.ErrPollNotFound
		}
		if err != nil {
			return false, fmt.Errorf("reload poll: %w", err)
		}
		if !now.Before(doc.ExpiresAt) {
			return false, domain.ErrPollClosed
		}
		// A concurrent submission by the same member pushed first; the
		// next pass overwrites it.
	}
	return false, fmt.Errorf("upsert response: poll %s changed concurrently", pollID)
}

func (r *PollRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrPollNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *PollRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete polls: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes used by the open-poll filter and the
// response guard.
func (r *PollRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

var _ ports.PollRepository = (*PollRepository)(nil)

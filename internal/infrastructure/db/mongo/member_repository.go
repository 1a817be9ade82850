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

const collectionMembers = "members"

// MemberRepository is the credential store.
type MemberRepository struct {
	col *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{col: db.Collection(collectionMembers)}
}

type voteDoc struct {
	PollID  string    `bson:"poll_id"`
	Choice  string    `bson:"choice"`
	VotedAt time.Time `bson:"voted_at"`
}

type memberDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Username     string              `bson:"username"`
	PasswordHash string              `bson:"password_hash"`
	Role         string              `bson:"role"`
	MealPackage  *primitive.ObjectID `bson:"meal_package,omitempty"`
	TotalPaid    float64             `bson:"total_paid"`
	Votes        []voteDoc           `bson:"votes"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func toMemberDoc(m *domain.Member) (memberDoc, error) {
	doc := memberDoc{
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		TotalPaid:    m.TotalPaid,
		Votes:        make([]voteDoc, 0, len(m.Votes)),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.MealPackageID != nil {
		oid, err := primitive.ObjectIDFromHex(*m.MealPackageID)
		if err != nil {
			return memberDoc{}, domain.Invalid("invalid meal package id")
		}
		doc.MealPackage = &oid
	}
	for _, v := range m.Votes {
		doc.Votes = append(doc.Votes, voteDoc{PollID: v.PollID, Choice: string(v.Choice), VotedAt: v.VotedAt.UTC()})
	}
	return doc, nil
}

func (d memberDoc) toDomain() *domain.Member {
	m := &domain.Member{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		TotalPaid:    d.TotalPaid,
		Votes:        make([]domain.VoteRecord, 0, len(d.Votes)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.MealPackage != nil {
		id := d.MealPackage.Hex()
		m.MealPackageID = &id
	}
	for _, v := range d.Votes {
		m.Votes = append(m.Votes, domain.VoteRecord{PollID: v.PollID, Choice: domain.Choice(v.Choice), VotedAt: v.VotedAt})
	}
	return m
}

func (r *MemberRepository) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMemberDoc(m)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, translateWriteErr("insert member", err)
	}
	return doc.toDomain(), nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*domain.Member, error) {
	oid, err := objectID(id, domain.ErrMemberNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MemberRepository) findOne(ctx context.Context, filter bson.M) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc memberDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MemberRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Member, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*domain.Member{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
}

// List returns members oldest first.
func (r *MemberRepository) List(ctx context.Context, filter ports.MemberFilter) ([]*domain.Member, error) {
	q := bson.M{}
	if filter.Role != "" {
		q["role"] = filter.Role
	}
	return r.find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *MemberRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := r.col.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	defer cur.Close(ctx)

	var docs []memberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	out := make([]*domain.Member, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *MemberRepository) Update(ctx context.Context, id string, upd ports.MemberUpdate) (*domain.Member, error) {
	oid, err := objectID(id, domain.ErrMemberNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.TotalPaid != nil {
		set["total_paid"] = *upd.TotalPaid
	}
	if upd.ClearMealPackage {
		update["$unset"] = bson.M{"meal_package": ""}
	} else if upd.MealPackageID != nil {
		pkg, err := primitive.ObjectIDFromHex(*upd.MealPackageID)
		if err != nil {
			return nil, domain.Invalid("invalid meal package id")
		}
		set["meal_package"] = pkg
	}
	update["$set"] = set

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update)
}

// AddPayment increments total_paid server-side so concurrent payments
// never lose an update.
func (r *MemberRepository) AddPayment(ctx context.Context, id string, amount float64) (*domain.Member, error) {
	oid, err := objectID(id, domain.ErrMemberNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{"total_paid": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MemberRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc memberDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, translateWriteErr("update member", err)
	}
	return doc.toDomain(), nil
}

// UpsertVote keeps at most one vote record per poll on the member document:
// an existing record is overwritten in place, otherwise one is pushed. A
// record newer than vote is left alone, so a late write never rolls the
// mirror back to an older choice.
func (r *MemberRepository) UpsertVote(ctx context.Context, memberID string, vote domain.VoteRecord) error {
	oid, err := objectID(memberID, domain.ErrMemberNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := voteDoc{PollID: vote.PollID, Choice: string(vote.Choice), VotedAt: vote.VotedAt.UTC()}
	notNewer := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"v.poll_id": rec.PollID, "v.voted_at": bson.M{"$lte": rec.VotedAt}}},
	})

	for attempt := 0; attempt < 2; attempt++ {
		// Matches whenever the poll already has a record; the array filter
		// decides whether it is old enough to overwrite.
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": oid, "votes.poll_id": vote.PollID},
			bson.M{"$set": bson.M{"votes.$[v].choice": rec.Choice, "votes.$[v].voted_at": rec.VotedAt}},
			notNewer,
		)
		if err != nil {
			return translateWriteErr("update vote", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		res, err = r.col.UpdateOne(ctx,
			bson.M{"_id": oid, "votes.poll_id": bson.M{"$ne": vote.PollID}},
			bson.M{"$push": bson.M{"votes": rec}},
		)
		if err != nil {
			return translateWriteErr("push vote", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		// Neither matched: the member is gone, or a concurrent writer
		// pushed the record between the two updates.
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("count member: %w", err)
		}
		if n == 0 {
			return domain.ErrMemberNotFound
		}
	}
	return fmt.Errorf("upsert vote: member %s changed concurrently", memberID)
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrMemberNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique username index.
func (r *MemberRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}

var _ ports.MemberRepository = (*MemberRepository)(nil)

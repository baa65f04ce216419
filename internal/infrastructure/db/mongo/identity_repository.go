package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aquario/identity-service/internal/core/domain"
)

const identityCollection = "identities"

// IdentityRepository is the Mongo CredentialStore. Emails are stored
// normalised and protected by a unique index, which is the only guard
// against two concurrent registrations of the same address.
type IdentityRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewIdentityRepository(db *mongo.Database, timeout time.Duration) *IdentityRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &IdentityRepository{coll: db.Collection(identityCollection), timeout: timeout}
}

type mongoIdentity struct {
	ID              string `bson:"_id"`
	FullName        string `bson:"full_name"`
	Email           string `bson:"email"`
	PasswordHash    string `bson:"password_hash"`
	Role            string `bson:"role"`
	CenterID        string `bson:"center_id"`
	Bio             string `bson:"bio,omitempty"`
	ProfileImageURL string `bson:"profile_image_url,omitempty"`
	CourseID        string `bson:"course_id,omitempty"`
	Term            int    `bson:"term,omitempty"`
	CreatedAt       int64  `bson:"created_at"`
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := toIdentityDoc(identity)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, storeError("insert identity", err)
	}

	return fromIdentityDoc(doc), nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, storeError("find identity", err)
	}
	return fromIdentityDoc(&doc), nil
}

// EnsureIndexes creates the unique email index on the identities collection.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func toIdentityDoc(u *domain.Identity) *mongoIdentity {
	return &mongoIdentity{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           domain.NormalizeEmail(u.Email),
		PasswordHash:    u.PasswordHash,
		Role:            string(u.Role),
		CenterID:        u.CenterID,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		CourseID:        u.CourseID,
		Term:            u.Term,
		CreatedAt:       u.CreatedAt.Unix(),
	}
}

func fromIdentityDoc(d *mongoIdentity) *domain.Identity {
	return &domain.Identity{
		ID:              d.ID,
		FullName:        d.FullName,
		Email:           d.Email,
		PasswordHash:    d.PasswordHash,
		Role:            domain.Role(d.Role),
		CenterID:        d.CenterID,
		Bio:             d.Bio,
		ProfileImageURL: d.ProfileImageURL,
		CourseID:        d.CourseID,
		Term:            d.Term,
		CreatedAt:       unixToTime(d.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

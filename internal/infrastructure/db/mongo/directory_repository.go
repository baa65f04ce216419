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

const (
	centerCollection = "centers"
	courseCollection = "courses"
)

// DirectoryRepository reads centers and courses. Both collections are
// maintained by the platform's admin tooling; this service never writes them.
type DirectoryRepository struct {
	centers *mongo.Collection
	courses *mongo.Collection
	timeout time.Duration
}

func NewDirectoryRepository(db *mongo.Database, timeout time.Duration) *DirectoryRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DirectoryRepository{
		centers: db.Collection(centerCollection),
		courses: db.Collection(courseCollection),
		timeout: timeout,
	}
}

type mongoCenter struct {
	ID      string `bson:"_id"`
	Name    string `bson:"name"`
	Acronym string `bson:"acronym"`
}

type mongoCourse struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	CenterID string `bson:"center_id"`
}

func (r *DirectoryRepository) FindCenter(ctx context.Context, id string) (*domain.Center, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoCenter
	if err := r.centers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCenterNotFound
		}
		return nil, storeError("find center", err)
	}
	return &domain.Center{ID: doc.ID, Name: doc.Name, Acronym: doc.Acronym}, nil
}

func (r *DirectoryRepository) ListCenters(ctx context.Context) ([]domain.Center, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.centers.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeError("list centers", err)
	}
	var docs []mongoCenter
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError("list centers", err)
	}

	out := make([]domain.Center, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Center{ID: d.ID, Name: d.Name, Acronym: d.Acronym})
	}
	return out, nil
}

func (r *DirectoryRepository) FindCourse(ctx context.Context, id string) (*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc mongoCourse
	if err := r.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, storeError("find course", err)
	}
	return &domain.Course{ID: doc.ID, Name: doc.Name, CenterID: doc.CenterID}, nil
}

func (r *DirectoryRepository) ListCoursesByCenter(ctx context.Context, centerID string) ([]domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.courses.Find(ctx, bson.M{"center_id": centerID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeError("list courses", err)
	}
	var docs []mongoCourse
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError("list courses", err)
	}

	out := make([]domain.Course, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Course{ID: d.ID, Name: d.Name, CenterID: d.CenterID})
	}
	return out, nil
}

// EnsureIndexes indexes courses by center for the per-center listing.
func (r *DirectoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.courses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "center_id", Value: 1}},
	})
	return err
}

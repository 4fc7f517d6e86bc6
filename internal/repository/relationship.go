package repository

import (
	"context"
	"fmt"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"gorm.io/gorm"
)

// RelationshipRepository manages the per-user edge sets: follows, ignore
// lists and bookmarks. The composite primary key of each join table rejects
// duplicate edges.
type RelationshipRepository interface {
	Add(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error
	Remove(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error
	Exists(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) (bool, error)
	ListObjectIDs(ctx context.Context, kind models.EdgeKind, subjectID uint, limit, offset int) ([]uint, error)
	CountObjects(ctx context.Context, kind models.EdgeKind, subjectID uint) (int64, error)
	ListSubjectIDs(ctx context.Context, kind models.EdgeKind, objectID uint, limit, offset int) ([]uint, error)
	CountSubjects(ctx context.Context, kind models.EdgeKind, objectID uint) (int64, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func edgeWhere(kind models.EdgeKind) string {
	return fmt.Sprintf("%s = ? AND %s = ?", kind.SubjectColumn(), kind.ObjectColumn())
}

func (r *relationshipRepository) Add(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error {
	if err := r.db.WithContext(ctx).Create(kind.NewRow(subjectID, objectID)).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(models.ReasonAlreadyExists,
				fmt.Sprintf("This %s already exists", kind.Noun()))
		}
		return dbError(err)
	}
	observability.NewRepoLogger(kind.Table()).LogCreate(ctx, map[string]any{
		kind.SubjectColumn(): subjectID, kind.ObjectColumn(): objectID,
	})
	return nil
}

func (r *relationshipRepository) Remove(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) error {
	res := r.db.WithContext(ctx).Where(edgeWhere(kind), subjectID, objectID).Delete(kind.Model())
	if res.Error != nil {
		return dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.AppError{
			Code:    models.CodeNotFound,
			Message: fmt.Sprintf("This %s doesn't exist", kind.Noun()),
		}
	}
	observability.NewRepoLogger(kind.Table()).LogDelete(ctx, map[string]any{
		kind.SubjectColumn(): subjectID, kind.ObjectColumn(): objectID,
	})
	return nil
}

func (r *relationshipRepository) Exists(ctx context.Context, kind models.EdgeKind, subjectID, objectID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(kind.Model()).Where(edgeWhere(kind), subjectID, objectID).Count(&n).Error
	if err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

func (r *relationshipRepository) pluck(ctx context.Context, kind models.EdgeKind, matchCol, pluckCol string, id uint, limit, offset int) ([]uint, error) {
	ids := []uint{}
	q := r.db.WithContext(ctx).Model(kind.Model()).
		Where(matchCol+" = ?", id).
		Order("created_at DESC").
		Order(pluckCol + " DESC")
	if err := page(q, limit, offset).Pluck(pluckCol, &ids).Error; err != nil {
		return nil, dbError(err)
	}
	return ids, nil
}

func (r *relationshipRepository) count(ctx context.Context, kind models.EdgeKind, matchCol string, id uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(kind.Model()).Where(matchCol+" = ?", id).Count(&n).Error; err != nil {
		return 0, dbError(err)
	}
	return n, nil
}

// ListObjectIDs returns what subjectID points at, most recent edge first.
func (r *relationshipRepository) ListObjectIDs(ctx context.Context, kind models.EdgeKind, subjectID uint, limit, offset int) ([]uint, error) {
	return r.pluck(ctx, kind, kind.SubjectColumn(), kind.ObjectColumn(), subjectID, limit, offset)
}

func (r *relationshipRepository) CountObjects(ctx context.Context, kind models.EdgeKind, subjectID uint) (int64, error) {
	return r.count(ctx, kind, kind.SubjectColumn(), subjectID)
}

// ListSubjectIDs returns who points at objectID. For follows these are the
// object's followers.
func (r *relationshipRepository) ListSubjectIDs(ctx context.Context, kind models.EdgeKind, objectID uint, limit, offset int) ([]uint, error) {
	return r.pluck(ctx, kind, kind.ObjectColumn(), kind.SubjectColumn(), objectID, limit, offset)
}

func (r *relationshipRepository) CountSubjects(ctx context.Context, kind models.EdgeKind, objectID uint) (int64, error) {
	return r.count(ctx, kind, kind.ObjectColumn(), objectID)
}

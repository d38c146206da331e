package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

// ContentFilter narrows List results. Zero values mean "no filter".
type ContentFilter struct {
	CloneID  uuid.UUID
	Platform string
	Status   string
	Search   string
	Sort     string
	Order    string
	Offset   int
	Limit    int
}

var contentSortColumns = map[string]string{
	"created_at":         "created_at",
	"authenticity_score": "authenticity_score",
	"word_count":         "word_count",
	"platform":           "platform",
	"status":             "status",
}

type ContentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, content *types.Content) error
	GetByID(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.Content, error)
	List(ctx context.Context, tx *gorm.DB, filter ContentFilter) ([]*types.Content, int64, error)
	Save(ctx context.Context, tx *gorm.DB, content *types.Content) error
	Delete(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) error
	CreateVersion(ctx context.Context, tx *gorm.DB, version *types.ContentVersion) error
	NextVersionNumber(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (int, error)
	ListVersions(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) ([]*types.ContentVersion, error)
	GetVersionByNumber(ctx context.Context, tx *gorm.DB, contentID uuid.UUID, versionNumber int) (*types.ContentVersion, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *contentRepo) Create(ctx context.Context, tx *gorm.DB, content *types.Content) error {
	return r.conn(tx).WithContext(ctx).Create(content).Error
}

func (r *contentRepo) GetByID(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (*types.Content, error) {
	var content types.Content
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", contentID).
		First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) List(ctx context.Context, tx *gorm.DB, filter ContentFilter) ([]*types.Content, int64, error) {
	query := r.conn(tx).WithContext(ctx).Model(&types.Content{})
	if filter.CloneID != uuid.Nil {
		query = query.Where("clone_id = ?", filter.CloneID)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("content_current LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol, ok := contentSortColumns[filter.Sort]
	if !ok {
		sortCol = "created_at"
	}
	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}
	query = query.Order(sortCol + " " + direction)

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(limit)

	var results []*types.Content
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *contentRepo) Save(ctx context.Context, tx *gorm.DB, content *types.Content) error {
	return r.conn(tx).WithContext(ctx).Save(content).Error
}

func (r *contentRepo) Delete(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("content_id = ?", contentID).Delete(&types.ContentVersion{}).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", contentID).Delete(&types.Content{}).Error
}

func (r *contentRepo) CreateVersion(ctx context.Context, tx *gorm.DB, version *types.ContentVersion) error {
	return r.conn(tx).WithContext(ctx).Create(version).Error
}

func (r *contentRepo) NextVersionNumber(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (int, error) {
	var current int
	err := r.conn(tx).WithContext(ctx).
		Model(&types.ContentVersion{}).
		Where("content_id = ?", contentID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *contentRepo) ListVersions(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) ([]*types.ContentVersion, error) {
	var results []*types.ContentVersion
	err := r.conn(tx).WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("version_number DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentRepo) GetVersionByNumber(ctx context.Context, tx *gorm.DB, contentID uuid.UUID, versionNumber int) (*types.ContentVersion, error) {
	var version types.ContentVersion
	err := r.conn(tx).WithContext(ctx).
		Where("content_id = ? AND version_number = ?", contentID, versionNumber).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

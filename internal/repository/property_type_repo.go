package repository

import (
	"context"

	"gorm.io/gorm"

	"nhadat_dev_v1/internal/model"
)

// ==================== 房产类型仓储 ====================

// PropertyTypeRepository 房产类型参考数据仓储接口（只读使用）
type PropertyTypeRepository interface {
	ListAll(ctx context.Context) ([]model.PropertyType, error)
	GetBySlug(ctx context.Context, slug string) (*model.PropertyType, error)
	Upsert(ctx context.Context, pt *model.PropertyType) error
	Count(ctx context.Context) (int64, error)
}

type propertyTypeRepo struct {
	db *gorm.DB
}

// NewPropertyTypeRepository 创建房产类型仓储
func NewPropertyTypeRepository(db *gorm.DB) PropertyTypeRepository {
	return &propertyTypeRepo{db: db}
}

func (r *propertyTypeRepo) ListAll(ctx context.Context) ([]model.PropertyType, error) {
	var types []model.PropertyType
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&types).Error
	return types, err
}

func (r *propertyTypeRepo) GetBySlug(ctx context.Context, slug string) (*model.PropertyType, error) {
	var pt model.PropertyType
	if err := r.db.WithContext(ctx).First(&pt, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *propertyTypeRepo) Upsert(ctx context.Context, pt *model.PropertyType) error {
	return r.db.WithContext(ctx).Save(pt).Error
}

func (r *propertyTypeRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PropertyType{}).Count(&count).Error
	return count, err
}

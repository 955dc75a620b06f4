package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nhadat_dev_v1/internal/model"
)

// ==================== 仓储接口 ====================

// ListingRepository 房源仓储接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	Update(ctx context.Context, listing *model.Listing) error
	// GetByIDForOwner 按 ID 取房源，限定归属人；他人房源按未找到处理
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*model.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]model.Listing, int64, error)

	// 草稿清理相关
	FindStaleDrafts(ctx context.Context, before time.Time) ([]*model.Listing, error)
	MarkInactive(ctx context.Context, id string) error
}

// ContactRepository 房源联系方式仓储接口
type ContactRepository interface {
	Create(ctx context.Context, contact *model.ListingContact) error
	Update(ctx context.Context, contact *model.ListingContact) error
	GetByListingID(ctx context.Context, listingID string) (*model.ListingContact, error)
}

// ==================== 过滤条件 ====================

// ListingFilter 房源列表过滤条件
type ListingFilter struct {
	OwnerID  string
	Purpose  string
	Status   string
	District string
	Page     int
	PageSize int
}

// ==================== Listing 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB
}

// NewListingRepository 创建房源仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) Update(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) List(ctx context.Context, filter ListingFilter) ([]model.Listing, int64, error) {
	var listings []model.Listing
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Listing{})

	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Purpose != "" {
		query = query.Where("purpose = ?", filter.Purpose)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// FindStaleDrafts 查找长时间未动的草稿
func (r *listingRepo) FindStaleDrafts(ctx context.Context, before time.Time) ([]*model.Listing, error) {
	var listings []*model.Listing
	err := r.db.WithContext(ctx).
		Where("updated_at < ? AND status = ?", before, model.ListingStatusDraft).
		Find(&listings).Error
	return listings, err
}

// MarkInactive 下架房源
func (r *listingRepo) MarkInactive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Update("status", model.ListingStatusInactive).Error
}

// ==================== Contact 仓储实现 ====================

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepository 创建联系方式仓储
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *model.ListingContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepo) Update(ctx context.Context, contact *model.ListingContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepo) GetByListingID(ctx context.Context, listingID string) (*model.ListingContact, error) {
	var contact model.ListingContact
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

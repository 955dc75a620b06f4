package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
	"nhadat_dev_v1/internal/wizard"
)

// ==================== 错误定义 ====================

var (
	// ErrMissingSession 调用方没有带会话身份（前置条件，不在核心内兜底）
	ErrMissingSession = errors.New("缺少用户会话")
	// ErrDraftMinimum 存草稿的最低要求
	ErrDraftMinimum = errors.New("草稿至少需要选择交易目的和房产类型")
	// ErrSubmitNeedsImage 新发布提交必须至少一张图
	ErrSubmitNeedsImage = errors.New("提交前请至少上传一张图片")
)

// PartialWriteError 两段写的后半段失败：房源行已写入，联系行失败
// 没有跨表事务，不回滚第一段；向用户明示重试
type PartialWriteError struct {
	ListingID string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("房源已保存(ID=%s)，但联系方式保存失败，请重试: %v", e.ListingID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// ==================== 服务实现 ====================

// purposeLabels 草稿占位标题里的目的文案
var purposeLabels = map[string]string{
	model.PurposeForSale: "bán",
	model.PurposeForRent: "cho thuê",
}

// ListingService 持久化编排器
// 把向导表单状态转换成房源行 + 联系行两条记录，
// 决定 DRAFT / PENDING_APPROVAL 状态与新建/更新路径；
// 反方向上把已存房源还原成表单状态供编辑模式使用
type ListingService struct {
	listings repository.ListingRepository
	contacts repository.ContactRepository
	schema   *SchemaService
	storage  wizard.Uploader
}

// NewListingService 创建房源服务
func NewListingService(
	listings repository.ListingRepository,
	contacts repository.ContactRepository,
	schema *SchemaService,
	storage wizard.Uploader,
) *ListingService {
	return &ListingService{
		listings: listings,
		contacts: contacts,
		schema:   schema,
		storage:  storage,
	}
}

// ==================== 存草稿 ====================

// SaveDraft 保存草稿
// 只要求目的和类型两个字段；其余必填列用占位值补齐，
// 用户随时可以把半成品存起来
func (s *ListingService) SaveDraft(ctx context.Context, ownerID string, st *wizard.DraftState) (string, error) {
	if ownerID == "" {
		return "", ErrMissingSession
	}
	if st.Purpose == "" || st.PropertyTypeID == "" {
		return "", ErrDraftMinimum
	}

	row, err := s.buildRow(ctx, ownerID, st)
	if err != nil {
		return "", err
	}
	s.fillDraftPlaceholders(ctx, row, st)
	row.MarkDraft()

	if err := s.writeListing(ctx, row, st.IsEditing()); err != nil {
		return "", fmt.Errorf("保存草稿失败: %w", err)
	}

	// 联系方式有内容才落联系表
	contact := &model.ListingContact{
		ListingID: row.ID,
		Name:      st.Contact.Name,
		Phone:     st.Contact.Phone,
		Email:     st.Contact.Email,
	}
	if !contact.IsEmpty() {
		if err := s.writeContact(ctx, contact); err != nil {
			return "", &PartialWriteError{ListingID: row.ID, Err: err}
		}
	}

	return row.ID, nil
}

// ==================== 提交 ====================

// Submit 提交审核
// 最后一道强校验（与分步谓词有意冗余）；先传图，传图失败时
// 不写任何记录；然后房源行、联系行两段顺序写，无跨表事务
func (s *ListingService) Submit(ctx context.Context, ownerID string, st *wizard.DraftState, images *wizard.ImagePipeline) (string, error) {
	if ownerID == "" {
		return "", ErrMissingSession
	}
	if st.Purpose == "" || st.PropertyTypeID == "" {
		return "", ErrDraftMinimum
	}
	if !st.IsEditing() && images.Count() == 0 {
		return "", ErrSubmitNeedsImage
	}

	row, err := s.buildRow(ctx, ownerID, st)
	if err != nil {
		return "", err
	}
	if err := row.CanSubmit(); err != nil {
		return "", fmt.Errorf("提交校验未通过: %w", err)
	}

	// 编辑模式下新图追加在已有图之后，上限按合并后的总数算
	if len(row.Images)+images.Count() > model.MaxListingImages {
		return "", fmt.Errorf("%w: 已有 %d 张，本次新增 %d 张，上限 %d 张",
			wizard.ErrTooManyImages, len(row.Images), images.Count(), model.MaxListingImages)
	}

	// 先整批传图，任何一张失败即中止，记录一条不写
	if images.Count() > 0 {
		cover, urls, err := images.Upload(ctx, s.storage, ownerID)
		if err != nil {
			return "", fmt.Errorf("图片上传失败，提交已中止: %w", err)
		}
		// 编辑模式：新图追加在已有图之后，封面保持首图
		row.Images = append(row.Images, urls...)
		if row.CoverImage == "" {
			row.CoverImage = cover
		}
	}

	row.MarkPending()

	if err := s.writeListing(ctx, row, st.IsEditing()); err != nil {
		return "", fmt.Errorf("提交失败: %w", err)
	}

	contact := &model.ListingContact{
		ListingID: row.ID,
		Name:      st.Contact.Name,
		Phone:     st.Contact.Phone,
		Email:     st.Contact.Email,
	}
	if err := s.writeContact(ctx, contact); err != nil {
		log.Printf("[ListingService] 房源 %s 联系方式写入失败: %v", row.ID, err)
		return "", &PartialWriteError{ListingID: row.ID, Err: err}
	}

	return row.ID, nil
}

// ==================== 我的房源 ====================

// ListByOwner 当前用户的房源分页列表（"我的房源"页数据源）
// OwnerID 由调用方从登录态取出，强制进过滤条件
func (s *ListingService) ListByOwner(ctx context.Context, ownerID string, filter repository.ListingFilter) ([]model.Listing, int64, error) {
	if ownerID == "" {
		return nil, 0, ErrMissingSession
	}
	filter.OwnerID = ownerID
	return s.listings.List(ctx, filter)
}

// ==================== 编辑模式回填 ====================

// LoadForEdit 把已存房源还原成向导表单状态
// 按归属人限定查询，他人房源一律按未找到处理；
// 存储里超出当前 schema 的属性键不回填（schema 演进前后兼容）
func (s *ListingService) LoadForEdit(ctx context.Context, listingID, ownerID string) (*wizard.DraftState, error) {
	if ownerID == "" {
		return nil, ErrMissingSession
	}

	row, err := s.listings.GetByIDForOwner(ctx, listingID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("房源不存在: %w", err)
	}

	st := wizard.NewDraftState(s.schema.IsEligible)
	st.Purpose = row.Purpose
	st.PropertyTypeID = row.PropertyTypeID
	st.Location = wizard.Location{
		Province:    row.Province,
		District:    row.District,
		Ward:        row.Ward,
		Street:      row.Street,
		ProjectName: row.ProjectName,
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
	}
	st.Area = row.Area
	st.Furnishing = row.Furnishing
	st.Amenities = append([]string{}, row.Amenities...)
	st.Price = wizard.Price{Amount: row.PriceAmount, Unit: row.PriceUnit}
	st.Fees = append([]model.Fee{}, row.Fees...)
	st.Content = wizard.Content{
		Title:             row.Title,
		Description:       row.Description,
		ProminentFeatures: append([]string{}, row.ProminentFeatures...),
	}
	st.EditingListingID = row.ID
	st.HasExistingMedia = len(row.Images) > 0
	st.ExistingImageCount = len(row.Images)

	// 属性包逐键回填，过滤掉当前 schema 不认识的键
	if len(row.Attributes) > 0 {
		var stored map[string]interface{}
		if err := json.Unmarshal(row.Attributes, &stored); err == nil {
			st.Attributes = s.filterAttributes(ctx, row.Purpose, row.PropertyTypeID, stored)
		}
	}

	// 联系行可能不存在（纯草稿），不存在不算错误
	contact, err := s.contacts.GetByListingID(ctx, row.ID)
	if err == nil {
		st.Contact = wizard.Contact{Name: contact.Name, Phone: contact.Phone, Email: contact.Email}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("读取联系方式失败: %w", err)
	}

	return st, nil
}

// ==================== 内部构造 ====================

// buildRow 把表单状态拍平成房源行
// 动态属性在这里按当前 schema 过滤：类型切换后残留的键被静默丢弃
func (s *ListingService) buildRow(ctx context.Context, ownerID string, st *wizard.DraftState) (*model.Listing, error) {
	row := &model.Listing{
		OwnerID:           ownerID,
		Purpose:           st.Purpose,
		PropertyTypeID:    st.PropertyTypeID,
		Province:          st.Location.Province,
		District:          st.Location.District,
		Ward:              st.Location.Ward,
		Street:            st.Location.Street,
		ProjectName:       st.Location.ProjectName,
		Latitude:          st.Location.Latitude,
		Longitude:         st.Location.Longitude,
		Area:              st.Area,
		Furnishing:        st.Furnishing,
		Amenities:         append([]string{}, st.Amenities...),
		ProminentFeatures: append([]string{}, st.Content.ProminentFeatures...),
		PriceAmount:       st.Price.Amount,
		PriceUnit:         st.Price.Unit,
		Fees:              append(model.FeeList{}, st.Fees...),
		Title:             st.Content.Title,
		Description:       st.Content.Description,
	}

	if st.IsEditing() {
		// 编辑模式下保留已有ID与已有图片
		existing, err := s.listings.GetByIDForOwner(ctx, st.EditingListingID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("房源不存在: %w", err)
		}
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		row.Images = existing.Images
		row.CoverImage = existing.CoverImage
	} else {
		row.ID = uuid.NewString()
		row.Images = StringSliceEmpty()
	}

	filtered := s.filterAttributes(ctx, st.Purpose, st.PropertyTypeID, st.Attributes)
	attrJSON, err := json.Marshal(filtered)
	if err != nil {
		return nil, fmt.Errorf("序列化属性失败: %w", err)
	}
	row.Attributes = attrJSON

	return row, nil
}

// StringSliceEmpty 空图片列表（避免 NULL 列）
func StringSliceEmpty() model.StringSlice {
	return model.StringSlice{}
}

// filterAttributes 只保留当前 (目的, 类型) schema 内的键
func (s *ListingService) filterAttributes(ctx context.Context, purpose, typeID string, attrs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if len(attrs) == 0 {
		return out
	}
	schema, err := s.schema.AttributeSchema(ctx, purpose, typeID)
	if err != nil {
		return out
	}
	allowed := make(map[string]bool, len(schema))
	for _, key := range schema {
		allowed[key] = true
	}
	for key, value := range attrs {
		if allowed[key] {
			out[key] = value
		}
	}
	return out
}

// fillDraftPlaceholders 给草稿的非空列补占位值，不阻塞用户保存半成品
func (s *ListingService) fillDraftPlaceholders(ctx context.Context, row *model.Listing, st *wizard.DraftState) {
	if row.Title == "" {
		typeName := st.PropertyTypeID
		if pt := s.typeBySlug(ctx, st.PropertyTypeID); pt != nil {
			typeName = pt.Name
		}
		row.Title = fmt.Sprintf("[Nháp] %s %s", purposeLabels[st.Purpose], typeName)
	}
	if row.PriceUnit == "" {
		row.PriceUnit = model.PriceUnitTotal
	}
}

// typeBySlug 从 schema 快照里找类型（草稿占位文案用，找不到不报错）
func (s *ListingService) typeBySlug(ctx context.Context, slug string) *model.PropertyType {
	types, err := s.schema.snapshot(ctx)
	if err != nil {
		return nil
	}
	for i := range types {
		if types[i].Slug == slug {
			return &types[i]
		}
	}
	return nil
}

// writeListing 新建或更新房源行
func (s *ListingService) writeListing(ctx context.Context, row *model.Listing, editing bool) error {
	if editing {
		return s.listings.Update(ctx, row)
	}
	return s.listings.Create(ctx, row)
}

// writeContact 联系行按存在与否决定新建/更新
func (s *ListingService) writeContact(ctx context.Context, contact *model.ListingContact) error {
	existing, err := s.contacts.GetByListingID(ctx, contact.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.contacts.Create(ctx, contact)
		}
		return err
	}
	existing.Name = contact.Name
	existing.Phone = contact.Phone
	existing.Email = contact.Email
	return s.contacts.Update(ctx, existing)
}

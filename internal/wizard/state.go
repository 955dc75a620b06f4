package wizard

import (
	"nhadat_dev_v1/internal/model"
)

// ==================== 表单状态 ====================

// Location 位置信息
type Location struct {
	Province    string   `json:"province"`
	District    string   `json:"district"`
	Ward        string   `json:"ward"`
	Street      string   `json:"street"`
	ProjectName string   `json:"project_name"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Price 价格
type Price struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"` // total | per_sqm | per_month
}

// Content 文案
type Content struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	ProminentFeatures []string `json:"prominent_features"`
}

// Contact 联系方式
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// EligibilityFunc 判断某类型在某目的下是否可选
// 由 SchemaService 注入，状态仓库自身不访问数据库
type EligibilityFunc func(purpose, propertyTypeID string) bool

// DraftState 向导的单一事实来源：所有步骤的字段都由它持有
// setter 不做任何校验（校验全部在分步谓词里），只维护两条耦合规则：
//  1. 切换目的时，若已选类型在新目的下不再可选则清空类型
//  2. 切换类型时不立即裁剪动态属性，落库时按当前 schema 过滤
type DraftState struct {
	Purpose        string                 `json:"purpose"`
	PropertyTypeID string                 `json:"property_type_id"`
	Location       Location               `json:"location"`
	Area           float64                `json:"area"`
	Attributes     map[string]interface{} `json:"attributes"`
	Furnishing     string                 `json:"furnishing"`
	Amenities      []string               `json:"amenities"`
	Price          Price                  `json:"price"`
	Fees           []model.Fee            `json:"fees"`
	Content        Content                `json:"content"`
	Contact        Contact                `json:"contact"`

	// 编辑模式
	EditingListingID   string `json:"editing_listing_id,omitempty"`
	HasExistingMedia   bool   `json:"has_existing_media,omitempty"`
	ExistingImageCount int    `json:"existing_image_count,omitempty"`

	eligible EligibilityFunc
}

// NewDraftState 创建空白表单状态
func NewDraftState(eligible EligibilityFunc) *DraftState {
	return &DraftState{
		Attributes: make(map[string]interface{}),
		Amenities:  []string{},
		Fees:       []model.Fee{},
		Price:      Price{Unit: model.PriceUnitTotal},
		eligible:   eligible,
	}
}

// IsEditing 是否编辑已有房源
func (s *DraftState) IsEditing() bool {
	return s.EditingListingID != ""
}

// ==================== setter（耦合规则） ====================

// SetPurpose 设置交易目的
// 已选类型在新目的下仍可选时保留，否则清空
func (s *DraftState) SetPurpose(purpose string) {
	s.Purpose = purpose
	if s.PropertyTypeID == "" {
		return
	}
	if s.eligible != nil && !s.eligible(purpose, s.PropertyTypeID) {
		s.PropertyTypeID = ""
	}
}

// SetPropertyType 设置房产类型
// 故意不裁剪 Attributes：用户来回切换类型时不丢已填内容，
// 超出 schema 的键在落库时被过滤掉
func (s *DraftState) SetPropertyType(typeID string) {
	s.PropertyTypeID = typeID
}

// SetAttribute 写入一个动态属性
func (s *DraftState) SetAttribute(key string, value interface{}) {
	if s.Attributes == nil {
		s.Attributes = make(map[string]interface{})
	}
	if value == nil {
		delete(s.Attributes, key)
		return
	}
	s.Attributes[key] = value
}

// HasAmenity 是否勾选了某配套
func (s *DraftState) HasAmenity(key string) bool {
	for _, a := range s.Amenities {
		if a == key {
			return true
		}
	}
	return false
}

// ToggleAmenity 勾选/取消配套设施
func (s *DraftState) ToggleAmenity(key string, on bool) {
	if on {
		if !s.HasAmenity(key) {
			s.Amenities = append(s.Amenities, key)
		}
		return
	}
	for i, a := range s.Amenities {
		if a == key {
			s.Amenities = append(s.Amenities[:i], s.Amenities[i+1:]...)
			return
		}
	}
}

package dto

import "nhadat_dev_v1/internal/model"

// ==================== 请求 DTO ====================

// OpenWizardRequest 打开向导会话
// 带 edit_listing_id 时进入编辑模式，从已存房源回填表单
type OpenWizardRequest struct {
	EditListingID string `json:"edit_listing_id,omitempty"`
}

// LocationDTO 位置
type LocationDTO struct {
	Province    *string  `json:"province,omitempty"`
	District    *string  `json:"district,omitempty"`
	Ward        *string  `json:"ward,omitempty"`
	Street      *string  `json:"street,omitempty"`
	ProjectName *string  `json:"project_name,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// PriceDTO 价格
type PriceDTO struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
}

// ContactDTO 联系方式
type ContactDTO struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UpdateFieldsRequest 部分字段更新
// setter 不做校验（校验在分步谓词里），nil 字段不触碰
type UpdateFieldsRequest struct {
	Purpose           *string                `json:"purpose,omitempty"`
	PropertyTypeID    *string                `json:"property_type_id,omitempty"`
	Location          *LocationDTO           `json:"location,omitempty"`
	Area              *float64               `json:"area,omitempty"`
	Attributes        map[string]interface{} `json:"attributes,omitempty"`
	Furnishing        *string                `json:"furnishing,omitempty"`
	Amenities         []string               `json:"amenities,omitempty"`
	Price             *PriceDTO              `json:"price,omitempty"`
	Title             *string                `json:"title,omitempty"`
	Description       *string                `json:"description,omitempty"`
	ProminentFeatures []string               `json:"prominent_features,omitempty"`
	Contact           *ContactDTO            `json:"contact,omitempty"`
}

// GoToStepRequest 跳转到指定步骤
type GoToStepRequest struct {
	Step string `json:"step" binding:"required"`
}

// SuggestContentRequest AI 文案生成的补充指令
type SuggestContentRequest struct {
	Instruction string `json:"instruction,omitempty"`
}

// SuggestContentResponse AI 生成的文案草稿，前端回填后用户可再编辑
type SuggestContentResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

// FeeRequest 费用编辑对话框
// 区间计费时前端提交 min_amount/max_amount，内部映射到 amount/max_amount
type FeeRequest struct {
	Category         string  `json:"category" binding:"required"`
	FeeName          string  `json:"fee_name"`
	PaymentFrequency string  `json:"payment_frequency"`
	IsRequired       string  `json:"is_required"`
	IsRefundable     string  `json:"is_refundable,omitempty"`
	FeeType          string  `json:"fee_type"`
	Amount           float64 `json:"amount,omitempty"`
	MinAmount        float64 `json:"min_amount,omitempty"`
	MaxAmount        float64 `json:"max_amount,omitempty"`
}

// ToFee 映射为内部费用模型
func (r *FeeRequest) ToFee() model.Fee {
	fee := model.Fee{
		Category:         r.Category,
		FeeName:          r.FeeName,
		PaymentFrequency: r.PaymentFrequency,
		IsRequired:       r.IsRequired,
		IsRefundable:     r.IsRefundable,
		FeeType:          r.FeeType,
		Amount:           r.Amount,
		MaxAmount:        r.MaxAmount,
	}
	if r.FeeType == model.FeeTypeRange {
		fee.Amount = r.MinAmount
		fee.MaxAmount = r.MaxAmount
	}
	return fee
}

// ReorderImagesRequest 图片重排
type ReorderImagesRequest struct {
	Order []int `json:"order" binding:"required"`
}

// SelectImagesFromURLRequest 粘贴外链图片，服务端拉取后进入同一条图片管线
type SelectImagesFromURLRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,dive,url"`
}

// ==================== 响应 DTO ====================

// ProgressVO 进度
type ProgressVO struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

// ImageVO 图片预览项
type ImageVO struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// WizardStateResponse 向导会话快照
type WizardStateResponse struct {
	SessionID   string      `json:"session_id"`
	CurrentStep string      `json:"current_step"`
	Steps       []string    `json:"steps"`
	Progress    ProgressVO  `json:"progress"`
	State       interface{} `json:"state"`
	Images      []ImageVO   `json:"images"`
	StepError   string      `json:"step_error,omitempty"`
	Editing     bool        `json:"editing"`
}

// SaveResultResponse 保存结果
type SaveResultResponse struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
}

// PropertyTypeVO 类型选择项
type PropertyTypeVO struct {
	Slug   string   `json:"slug"`
	Name   string   `json:"name"`
	Schema []string `json:"schema"`
}

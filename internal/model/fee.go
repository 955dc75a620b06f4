package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ==================== 费用常量 ====================

const (
	// 费用分类（固定四类）
	FeeCategoryAdministrative = "administrative" // 管理费
	FeeCategoryParking        = "parking"        // 停车费
	FeeCategoryUtilities      = "utilities"      // 水电杂费
	FeeCategoryOther          = "other"          // 其他

	// 缴费周期
	FeeFrequencyMonthly   = "monthly"
	FeeFrequencyQuarterly = "quarterly"
	FeeFrequencyYearly    = "yearly"
	FeeFrequencyOneTime   = "one-time"

	// 是否必缴
	FeeRequiredIncluded = "included" // 已含在租金/售价内
	FeeRequiredRequired = "required"
	FeeRequiredOptional = "optional"

	// 是否可退
	FeeRefundable    = "refundable"
	FeeNonRefundable = "non-refundable"

	// 计费方式
	FeeTypeFlat        = "flat"          // 固定金额
	FeeTypeFlatPerItem = "flat-per-item" // 按件固定
	FeeTypeRange       = "range"         // 区间
)

// FeeCategories 固定的四个费用分类
var FeeCategories = []string{
	FeeCategoryAdministrative,
	FeeCategoryParking,
	FeeCategoryUtilities,
	FeeCategoryOther,
}

// ValidFeeCategory 检查费用分类取值
func ValidFeeCategory(c string) bool {
	for _, v := range FeeCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ==================== 费用模型 ====================

// Fee 附加费用
// 在向导内整体以 JSON 随房源落库，生命周期跟随所属房源
type Fee struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	FeeName          string  `json:"fee_name"`
	PaymentFrequency string  `json:"payment_frequency"`
	IsRequired       string  `json:"is_required"`
	IsRefundable     string  `json:"is_refundable,omitempty"`
	FeeType          string  `json:"fee_type"`
	Amount           float64 `json:"amount"`
	MaxAmount        float64 `json:"max_amount,omitempty"`
}

// Validate 保存前校验
func (f *Fee) Validate() error {
	if !ValidFeeCategory(f.Category) {
		return errors.New("无效的费用分类")
	}
	if f.FeeName == "" {
		return errors.New("费用名称不能为空")
	}
	if f.PaymentFrequency == "" {
		return errors.New("请选择缴费周期")
	}
	if f.FeeType == "" {
		return errors.New("请选择计费方式")
	}
	switch f.FeeType {
	case FeeTypeRange:
		if f.Amount <= 0 || f.MaxAmount <= 0 {
			return errors.New("区间计费需要同时填写下限和上限")
		}
		if f.Amount > f.MaxAmount {
			return errors.New("费用下限不能大于上限")
		}
	case FeeTypeFlat, FeeTypeFlatPerItem:
		if f.Amount <= 0 {
			return errors.New("请填写费用金额")
		}
	default:
		return errors.New("无效的计费方式")
	}
	return nil
}

// FeeList 费用列表（JSON 存储）
type FeeList []Fee

// Value 值接收者，见 listing.go StringSlice.Value 的说明
func (l FeeList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *FeeList) Scan(value interface{}) error {
	if value == nil {
		*l = FeeList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, sok := value.(string); sok {
			bytes = []byte(str)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(bytes, l)
}

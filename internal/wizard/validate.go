package wizard

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"nhadat_dev_v1/internal/model"
)

// ==================== 校验策略 ====================

// Policy 可配置的校验阈值
// 描述最短长度在不同入口页面观察到 80 和 300 两种取值，
// 这里统一成一个策略值，不在代码里写死两份
type Policy struct {
	MinDescriptionLen int // 描述最短字符数
	MaxImages         int // 图片上限
}

// DefaultPolicy 默认策略
func DefaultPolicy() Policy {
	return Policy{
		MinDescriptionLen: 80,
		MaxImages:         model.MaxListingImages,
	}
}

// ==================== 分步校验谓词 ====================

// ValidateStep 对单个步骤执行校验谓词
// 纯函数：只读取表单状态和图片数量，不触达外部服务
// imageCount 为待上传图片数（编辑模式下已有图片时图片步骤放行）
func ValidateStep(step StepID, st *DraftState, imageCount int, policy Policy) error {
	switch step {
	case StepTypePurpose:
		if st.Purpose == "" {
			return errors.New("请选择交易目的")
		}
		if st.PropertyTypeID == "" {
			return errors.New("请选择房产类型")
		}
	case StepLocation:
		if st.Location.Province == "" || st.Location.District == "" || st.Location.Ward == "" {
			return errors.New("请完整选择省/区/坊")
		}
		if st.Location.Street == "" {
			return errors.New("请填写街道地址")
		}
	case StepLegalDirection:
		// 字段全部可选，步骤本身是否出现由类型 schema 决定
	case StepPhysical:
		if st.Area <= 0 {
			return errors.New("请填写面积")
		}
	case StepAmenities:
		// 装修情况是唯一必选的互斥单选组，其余配套均为可选
		if st.Furnishing == "" {
			return errors.New("请选择装修/家具情况")
		}
	case StepPrice:
		if st.Price.Amount <= 0 {
			return errors.New("请填写价格")
		}
	case StepFees:
		// 费用步骤始终可跳过
	case StepMediaContent:
		if st.Content.Title == "" {
			return errors.New("请填写标题")
		}
		if n := utf8.RuneCountInString(st.Content.Description); n < policy.MinDescriptionLen {
			return fmt.Errorf("描述至少需要 %d 个字符，当前 %d 个", policy.MinDescriptionLen, n)
		}
		if imageCount == 0 && !st.HasExistingMedia {
			return errors.New("请至少上传一张图片")
		}
	case StepContact:
		if st.Contact.Name == "" || st.Contact.Phone == "" || st.Contact.Email == "" {
			return errors.New("请完整填写联系人、电话和邮箱")
		}
	default:
		return fmt.Errorf("未知步骤: %s", step)
	}
	return nil
}

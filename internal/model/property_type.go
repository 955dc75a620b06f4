package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 房产类型参考数据 ====================

// PropertyType 房产类型（只读参考数据，向导只读不写）
// SaleMeta / RentMeta 保存该目的下的资格元数据，存在两种历史格式：
//  1. 裸的字段键数组: ["bedrooms","floors"]
//  2. 对象格式: {"available": true, "filters": ["bedrooms","floors"]}
// 两种格式都在 SchemaService 边界归一化，下游只见统一结构
type PropertyType struct {
	Slug      string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string         `gorm:"size:128;not null;comment:显示名"`
	SaleMeta  datatypes.JSON `gorm:"comment:出售资格元数据"`
	RentMeta  datatypes.JSON `gorm:"comment:出租资格元数据"`
}

func (*PropertyType) TableName() string {
	return "property_types"
}

// MetaFor 取指定目的的原始元数据
func (t *PropertyType) MetaFor(purpose string) datatypes.JSON {
	if purpose == PurposeForRent {
		return t.RentMeta
	}
	return t.SaleMeta
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 状态常量 ====================

const (
	// 房源状态
	ListingStatusDraft           = "draft"            // 草稿
	ListingStatusPendingApproval = "pending_approval" // 待审核
	ListingStatusActive          = "active"           // 已上架
	ListingStatusInactive        = "inactive"         // 已下架
	ListingStatusSoldRented      = "sold_rented"      // 已售/已租

	// 交易目的
	PurposeForSale = "for_sale" // 出售
	PurposeForRent = "for_rent" // 出租

	// 价格单位
	PriceUnitTotal    = "total"   // 总价
	PriceUnitPerSqm   = "per_sqm" // 每平米
	PriceUnitPerMonth = "per_month"
)

// ValidPurpose 检查交易目的取值
func ValidPurpose(p string) bool {
	return p == PurposeForSale || p == PurposeForRent
}

// MaxListingImages 单个房源的图片上限，已落库的与待上传的合并计数
const MaxListingImages = 10

// ==================== JSON 类型 ====================

// StringSlice 字符串切片（JSON 存储）
type StringSlice []string

// Value 值接收者：结构体字段按值传给驱动，指针方法集不生效
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
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
	return json.Unmarshal(bytes, s)
}

// ==================== 数据库模型 ====================

// Listing 房源记录
// 向导保存后的落库形态：草稿与提交共用一张表，仅状态不同
type Listing struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`
	OwnerID   string    `gorm:"size:36;index;not null;comment:发布人ID"`

	// 交易目的与类型
	Purpose        string `gorm:"size:16;index;not null;comment:出售/出租"`
	PropertyTypeID string `gorm:"size:64;index;not null;comment:房产类型slug"`

	// 位置
	Province    string   `gorm:"size:128;comment:省/直辖市"`
	District    string   `gorm:"size:128;index;comment:区县"`
	Ward        string   `gorm:"size:128;comment:坊/乡"`
	Street      string   `gorm:"size:255;comment:街道门牌"`
	ProjectName string   `gorm:"size:255;comment:楼盘/项目名"`
	Latitude    *float64 `gorm:"comment:纬度"`
	Longitude   *float64 `gorm:"comment:经度"`

	// 物理属性
	Area       float64        `gorm:"comment:面积(平米)"`
	Attributes datatypes.JSON `gorm:"comment:动态属性包(仅含当前schema内的键)"`

	// 配套设施
	Furnishing        string         `gorm:"size:64;comment:装修/家具情况(单选)"`
	Amenities         pq.StringArray `gorm:"type:text[];comment:配套设施"`
	ProminentFeatures pq.StringArray `gorm:"type:text[];comment:亮点"`

	// 价格与费用
	PriceAmount float64 `gorm:"comment:价格"`
	PriceUnit   string  `gorm:"size:16;default:total;comment:价格单位"`
	Fees        FeeList `gorm:"type:json;comment:附加费用"`

	// 媒体与文案
	Images      StringSlice `gorm:"type:json;comment:图片URL列表"`
	CoverImage  string      `gorm:"size:2048;comment:封面图URL"`
	Title       string      `gorm:"size:255;not null;comment:标题"`
	Description string      `gorm:"type:text;comment:描述"`

	Status string `gorm:"size:32;index;default:draft;comment:状态"`
}

func (*Listing) TableName() string {
	return "listings"
}

// ListingContact 房源联系方式（独立表，与房源一对一）
type ListingContact struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	ListingID string `gorm:"size:36;uniqueIndex;not null;comment:房源ID"`
	Name      string `gorm:"size:128;comment:联系人"`
	Phone     string `gorm:"size:32;comment:电话"`
	Email     string `gorm:"size:255;comment:邮箱"`
}

func (*ListingContact) TableName() string {
	return "listing_contacts"
}

// ==================== 辅助方法 ====================

// IsEmpty 联系信息是否为空（为空则不落联系表）
func (c *ListingContact) IsEmpty() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

// CanSubmit 提交前最后一道校验（与分步校验相互独立、有意冗余）
func (l *Listing) CanSubmit() error {
	if l.Title == "" {
		return errors.New("标题不能为空")
	}
	if l.Description == "" {
		return errors.New("描述不能为空")
	}
	if l.PriceAmount <= 0 {
		return errors.New("请填写价格")
	}
	if l.Area <= 0 {
		return errors.New("请填写面积")
	}
	if l.District == "" {
		return errors.New("请选择区县")
	}
	return nil
}

// MarkPending 标记为待审核
func (l *Listing) MarkPending() {
	l.Status = ListingStatusPendingApproval
}

// MarkDraft 标记为草稿
func (l *Listing) MarkDraft() {
	l.Status = ListingStatusDraft
}

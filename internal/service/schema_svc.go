package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
)

// ==================== 归一化资格元数据 ====================

// Eligibility 归一化后的资格元数据
// 参考数据里存在两种历史格式，统一成这一种带标记的内部表示，
// 下游（推进器、落库过滤、类型选择接口）只见这一个形状
type Eligibility struct {
	Available      bool
	RequiredFields []string
}

// normalizeEligibility 把两种历史格式都归一化
//  1. 裸数组 ["bedrooms","floors"] → 可选，字段即数组内容
//  2. 对象 {"available":true,"filters":[...]} → 按 available 判定
// 空/缺失/解析失败 → 不可选
func normalizeEligibility(raw datatypes.JSON) Eligibility {
	if len(raw) == 0 {
		return Eligibility{}
	}

	var fields []string
	if err := json.Unmarshal(raw, &fields); err == nil {
		return Eligibility{Available: true, RequiredFields: fields}
	}

	var obj struct {
		Available bool     `json:"available"`
		Filters   []string `json:"filters"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return Eligibility{Available: obj.Available, RequiredFields: obj.Filters}
	}

	return Eligibility{}
}

// ==================== 排序优先级 ====================

// 类型展示的固定优先级，出售和出租各一份；
// 不在清单内的类型按 slug 字母序排在后面
var salePriority = []string{
	"can-ho",      // 公寓
	"nha-rieng",   // 独立屋
	"nha-mat-pho", // 临街屋
	"biet-thu",    // 别墅
	"dat",         // 土地
	"dat-nen",     // 项目地块
	"shophouse",
	"van-phong", // 办公
	"kho-xuong", // 仓库厂房
}

var rentPriority = []string{
	"can-ho",
	"nha-rieng",
	"phong-tro", // 出租房间
	"nha-mat-pho",
	"van-phong",
	"shophouse",
	"kho-xuong",
	"biet-thu",
}

// 含这些键的 schema 才会出现法律状态/朝向步骤
var legalStepKeys = map[string]bool{
	"legal_status":      true,
	"direction":         true,
	"balcony_direction": true,
}

func priorityFor(purpose string) []string {
	if purpose == model.PurposeForRent {
		return rentPriority
	}
	return salePriority
}

// ==================== SchemaService ====================

// SchemaService 属性 schema 解析器
// 输入 (目的, 类型)，裁决类型可选性并给出适用的动态属性字段集。
// 参考数据整表很小且只读，带 TTL 缓存在内存里
type SchemaService struct {
	repo repository.PropertyTypeRepository
	ttl  time.Duration

	mu       sync.RWMutex
	cached   []model.PropertyType
	loadedAt time.Time
}

// NewSchemaService 创建 schema 服务
func NewSchemaService(repo repository.PropertyTypeRepository) *SchemaService {
	return &SchemaService{
		repo: repo,
		ttl:  10 * time.Minute,
	}
}

// snapshot 取参考数据快照，过期则重新加载
func (s *SchemaService) snapshot(ctx context.Context) ([]model.PropertyType, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.loadedAt) < s.ttl {
		defer s.mu.RUnlock()
		return s.cached, nil
	}
	s.mu.RUnlock()

	types, err := s.repo.ListAll(ctx)
	if err != nil {
		// 加载失败时退回旧快照，绝不让过期缓存变成硬错误
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.cached != nil {
			return s.cached, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cached = types
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return types, nil
}

// Invalidate 清空缓存（后台改了参考数据后调用）
func (s *SchemaService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// EligiblePropertyTypes 某目的下可选的类型，按固定优先级排序
// 这是类型选择 UI 唯一的可选集，资格不符在选择入口就被挡住
func (s *SchemaService) EligiblePropertyTypes(ctx context.Context, purpose string) ([]model.PropertyType, error) {
	types, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.PropertyType, 0, len(types))
	for _, t := range types {
		if normalizeEligibility(t.MetaFor(purpose)).Available {
			eligible = append(eligible, t)
		}
	}

	priority := priorityFor(purpose)
	rank := func(slug string) int {
		for i, p := range priority {
			if p == slug {
				return i
			}
		}
		return len(priority)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := rank(eligible[i].Slug), rank(eligible[j].Slug)
		if ri != rj {
			return ri < rj
		}
		return eligible[i].Slug < eligible[j].Slug
	})

	return eligible, nil
}

// AttributeSchema 某 (目的, 类型) 下适用的动态属性字段集
// 未知类型或该目的下不可选 → 空 schema，不视为错误
func (s *SchemaService) AttributeSchema(ctx context.Context, purpose, propertyTypeID string) ([]string, error) {
	types, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if t.Slug != propertyTypeID {
			continue
		}
		e := normalizeEligibility(t.MetaFor(purpose))
		if !e.Available {
			return []string{}, nil
		}
		return e.RequiredFields, nil
	}
	return []string{}, nil
}

// ==================== 向导裁决接口（wizard.SchemaSource） ====================

// IsEligible 类型在目的下是否可选
func (s *SchemaService) IsEligible(purpose, propertyTypeID string) bool {
	types, err := s.snapshot(context.Background())
	if err != nil {
		return false
	}
	for _, t := range types {
		if t.Slug == propertyTypeID {
			return normalizeEligibility(t.MetaFor(purpose)).Available
		}
	}
	return false
}

// RequiresLegalStep 类型的 schema 是否含法律状态/朝向类字段
// 不含则向导双向跳过对应步骤
func (s *SchemaService) RequiresLegalStep(purpose, propertyTypeID string) bool {
	schema, err := s.AttributeSchema(context.Background(), purpose, propertyTypeID)
	if err != nil {
		return false
	}
	for _, key := range schema {
		if legalStepKeys[key] {
			return true
		}
	}
	return false
}

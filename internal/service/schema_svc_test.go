package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
)

// ==================== 测试辅助 ====================

func setupSchemaTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.PropertyType{})
	return db
}

// 两种历史格式刻意混用：can-ho 裸数组、nha-mat-pho/dat 对象格式
func seedSchemaTypes(t *testing.T, db *gorm.DB) {
	types := []model.PropertyType{
		{
			Slug:     "can-ho",
			Name:     "Căn hộ chung cư",
			SaleMeta: []byte(`["legal_status","direction","balcony_direction","bedrooms"]`),
			RentMeta: []byte(`["bedrooms","bathrooms"]`),
		},
		{
			Slug:     "nha-mat-pho",
			Name:     "Nhà mặt phố",
			SaleMeta: []byte(`["legal_status","floors"]`),
			RentMeta: []byte(`{"available":true,"filters":["floors","frontage"]}`),
		},
		{
			Slug:     "dat",
			Name:     "Đất",
			SaleMeta: []byte(`["legal_status","direction","land_type"]`),
			RentMeta: []byte(`{"available":false,"filters":[]}`),
		},
		{
			Slug:     "kho-xuong",
			Name:     "Kho, nhà xưởng",
			SaleMeta: []byte(`{"available":true,"filters":["road_width","ceiling_height"]}`),
			RentMeta: []byte(`{"available":true,"filters":["road_width"]}`),
		},
	}
	for _, pt := range types {
		if err := db.Create(&pt).Error; err != nil {
			t.Fatalf("写入种子类型失败: %v", err)
		}
	}
}

func newSchemaService(t *testing.T) *SchemaService {
	db := setupSchemaTestDB(t)
	seedSchemaTypes(t, db)
	return NewSchemaService(repository.NewPropertyTypeRepository(db))
}

// ==================== 元数据归一化 ====================

func TestNormalizeEligibility(t *testing.T) {
	t.Run("裸数组格式", func(t *testing.T) {
		e := normalizeEligibility([]byte(`["bedrooms","floors"]`))
		if !e.Available {
			t.Fatal("裸数组存在即可选")
		}
		if len(e.RequiredFields) != 2 {
			t.Fatalf("字段集不对: %v", e.RequiredFields)
		}
	})

	t.Run("对象格式可选", func(t *testing.T) {
		e := normalizeEligibility([]byte(`{"available":true,"filters":["floors"]}`))
		if !e.Available || len(e.RequiredFields) != 1 {
			t.Fatalf("归一化不对: %+v", e)
		}
	})

	t.Run("对象格式不可选", func(t *testing.T) {
		e := normalizeEligibility([]byte(`{"available":false,"filters":["floors"]}`))
		if e.Available {
			t.Fatal("available=false 应不可选")
		}
	})

	t.Run("空与非法输入不可选", func(t *testing.T) {
		for _, raw := range [][]byte{nil, []byte(``), []byte(`not json`), []byte(`123`)} {
			if normalizeEligibility(raw).Available {
				t.Fatalf("输入 %q 应不可选", raw)
			}
		}
	})
}

// ==================== 可选集与排序 ====================

func TestSchemaService_EligiblePropertyTypes(t *testing.T) {
	svc := newSchemaService(t)
	ctx := context.Background()

	t.Run("出售按优先级排序", func(t *testing.T) {
		types, err := svc.EligiblePropertyTypes(ctx, model.PurposeForSale)
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		got := make([]string, len(types))
		for i, pt := range types {
			got[i] = pt.Slug
		}
		want := []string{"can-ho", "nha-mat-pho", "dat", "kho-xuong"}
		if len(got) != len(want) {
			t.Fatalf("可选集不对: %v", got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("排序不对: got %v want %v", got, want)
			}
		}
	})

	t.Run("土地不可出租", func(t *testing.T) {
		types, err := svc.EligiblePropertyTypes(ctx, model.PurposeForRent)
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		for _, pt := range types {
			if pt.Slug == "dat" {
				t.Fatal("dat 不应出现在出租可选集里")
			}
		}
		if len(types) != 3 {
			t.Fatalf("出租可选集应为 3 个, 实际 %d", len(types))
		}
	})
}

// ==================== 属性 schema ====================

func TestSchemaService_AttributeSchema(t *testing.T) {
	svc := newSchemaService(t)
	ctx := context.Background()

	t.Run("同一类型两种目的字段集不同", func(t *testing.T) {
		sale, err := svc.AttributeSchema(ctx, model.PurposeForSale, "can-ho")
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		rent, err := svc.AttributeSchema(ctx, model.PurposeForRent, "can-ho")
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if len(sale) != 4 || len(rent) != 2 {
			t.Fatalf("字段集不对: sale=%v rent=%v", sale, rent)
		}
	})

	t.Run("未知类型返回空而非错误", func(t *testing.T) {
		schema, err := svc.AttributeSchema(ctx, model.PurposeForSale, "lau-dai")
		if err != nil {
			t.Fatalf("未知类型不应报错: %v", err)
		}
		if len(schema) != 0 {
			t.Fatalf("未知类型应返回空 schema: %v", schema)
		}
	})

	t.Run("目的下不可选返回空", func(t *testing.T) {
		schema, err := svc.AttributeSchema(ctx, model.PurposeForRent, "dat")
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if len(schema) != 0 {
			t.Fatalf("不可选组合应返回空 schema: %v", schema)
		}
	})
}

// ==================== 向导裁决接口 ====================

func TestSchemaService_IsEligible(t *testing.T) {
	svc := newSchemaService(t)

	cases := []struct {
		purpose, typeID string
		want            bool
	}{
		{model.PurposeForSale, "dat", true},
		{model.PurposeForRent, "dat", false},
		{model.PurposeForRent, "can-ho", true},
		{model.PurposeForSale, "lau-dai", false},
	}
	for _, c := range cases {
		if got := svc.IsEligible(c.purpose, c.typeID); got != c.want {
			t.Fatalf("IsEligible(%s, %s) = %v, 期望 %v", c.purpose, c.typeID, got, c.want)
		}
	}
}

func TestSchemaService_RequiresLegalStep(t *testing.T) {
	svc := newSchemaService(t)

	// can-ho 出售 schema 含 legal_status → 需要
	if !svc.RequiresLegalStep(model.PurposeForSale, "can-ho") {
		t.Fatal("can-ho 出售应需要法律/朝向步骤")
	}
	// can-ho 出租 schema 只有 bedrooms/bathrooms → 不需要
	if svc.RequiresLegalStep(model.PurposeForRent, "can-ho") {
		t.Fatal("can-ho 出租不应需要法律/朝向步骤")
	}
	// kho-xuong 两种目的都不含相关键
	if svc.RequiresLegalStep(model.PurposeForSale, "kho-xuong") {
		t.Fatal("kho-xuong 不应需要法律/朝向步骤")
	}
}

// ==================== 缓存 ====================

func TestSchemaService_InvalidatePicksUpChanges(t *testing.T) {
	db := setupSchemaTestDB(t)
	seedSchemaTypes(t, db)
	repo := repository.NewPropertyTypeRepository(db)
	svc := NewSchemaService(repo)
	ctx := context.Background()

	if _, err := svc.EligiblePropertyTypes(ctx, model.PurposeForSale); err != nil {
		t.Fatalf("预热缓存失败: %v", err)
	}

	// 改参考数据后必须 Invalidate 才可见
	if err := repo.Upsert(ctx, &model.PropertyType{
		Slug:     "phong-tro",
		Name:     "Phòng trọ",
		SaleMeta: []byte(`{"available":false,"filters":[]}`),
		RentMeta: []byte(`{"available":true,"filters":["bathrooms"]}`),
	}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	before, _ := svc.EligiblePropertyTypes(ctx, model.PurposeForRent)
	svc.Invalidate()
	after, _ := svc.EligiblePropertyTypes(ctx, model.PurposeForRent)

	if len(after) != len(before)+1 {
		t.Fatalf("Invalidate 后应看到新类型: before=%d after=%d", len(before), len(after))
	}
}

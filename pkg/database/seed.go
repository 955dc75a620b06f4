package database

import (
	"context"
	"log"

	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
)

// ==================== 参考数据种子 ====================

// 类型目录的初始数据。
// 注意资格元数据的两种历史格式在这里刻意并存：
// 早期类型用裸数组（出现即可选），后补的类型用 {available, filters} 对象，
// 线上参考库两种都有，归一化工作全部交给 SchemaService
var propertyTypeSeeds = []model.PropertyType{
	{
		Slug:     "can-ho",
		Name:     "Căn hộ chung cư",
		SaleMeta: []byte(`["legal_status","direction","balcony_direction","bedrooms","bathrooms","floor"]`),
		RentMeta: []byte(`["bedrooms","bathrooms","floor","balcony_direction"]`),
	},
	{
		Slug:     "nha-rieng",
		Name:     "Nhà riêng",
		SaleMeta: []byte(`["legal_status","direction","bedrooms","bathrooms","floors","frontage"]`),
		RentMeta: []byte(`["bedrooms","bathrooms","floors"]`),
	},
	{
		Slug:     "nha-mat-pho",
		Name:     "Nhà mặt phố",
		SaleMeta: []byte(`["legal_status","direction","bedrooms","bathrooms","floors","frontage","road_width"]`),
		RentMeta: []byte(`{"available":true,"filters":["floors","frontage","road_width"]}`),
	},
	{
		Slug:     "biet-thu",
		Name:     "Biệt thự, liền kề",
		SaleMeta: []byte(`["legal_status","direction","bedrooms","bathrooms","floors","villa_type"]`),
		RentMeta: []byte(`{"available":true,"filters":["bedrooms","bathrooms","floors"]}`),
	},
	{
		// 土地只卖不租
		Slug:     "dat",
		Name:     "Đất",
		SaleMeta: []byte(`["legal_status","direction","land_type","frontage","road_width"]`),
		RentMeta: []byte(`{"available":false,"filters":[]}`),
	},
	{
		Slug:     "dat-nen",
		Name:     "Đất nền dự án",
		SaleMeta: []byte(`{"available":true,"filters":["legal_status","direction","land_type","frontage"]}`),
		RentMeta: []byte(`{"available":false,"filters":[]}`),
	},
	{
		Slug:     "shophouse",
		Name:     "Shophouse, nhà phố thương mại",
		SaleMeta: []byte(`{"available":true,"filters":["legal_status","direction","floors","frontage"]}`),
		RentMeta: []byte(`{"available":true,"filters":["floors","frontage"]}`),
	},
	{
		Slug:     "van-phong",
		Name:     "Văn phòng",
		SaleMeta: []byte(`{"available":true,"filters":["floor","office_grade"]}`),
		RentMeta: []byte(`{"available":true,"filters":["floor","office_grade"]}`),
	},
	{
		Slug:     "kho-xuong",
		Name:     "Kho, nhà xưởng",
		SaleMeta: []byte(`{"available":true,"filters":["road_width","ceiling_height"]}`),
		RentMeta: []byte(`{"available":true,"filters":["road_width","ceiling_height"]}`),
	},
	{
		// 出租房间只租不卖
		Slug:     "phong-tro",
		Name:     "Phòng trọ",
		SaleMeta: []byte(`{"available":false,"filters":[]}`),
		RentMeta: []byte(`{"available":true,"filters":["bathrooms"]}`),
	},
}

// SeedPropertyTypes 写入类型目录初始数据（已有数据则跳过）
func SeedPropertyTypes(ctx context.Context, repo repository.PropertyTypeRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, pt := range propertyTypeSeeds {
		if err := repo.Upsert(ctx, &pt); err != nil {
			return err
		}
	}

	log.Printf("[DB] 已写入 %d 条类型目录种子数据", len(propertyTypeSeeds))
	return nil
}

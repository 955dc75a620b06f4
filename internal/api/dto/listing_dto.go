package dto

import (
	"time"

	"nhadat_dev_v1/internal/model"
)

// ==================== 请求 DTO ====================

// ListMyListingsRequest "我的房源"列表查询参数
type ListMyListingsRequest struct {
	Purpose  string `form:"purpose" binding:"omitempty,oneof=for_sale for_rent"`
	Status   string `form:"status" binding:"omitempty,oneof=draft pending_approval active inactive sold_rented"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ==================== 响应 DTO ====================

// ListingSummaryVO 列表页单项摘要
type ListingSummaryVO struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Purpose        string    `json:"purpose"`
	PropertyTypeID string    `json:"property_type_id"`
	District       string    `json:"district"`
	Province       string    `json:"province"`
	PriceAmount    float64   `json:"price_amount"`
	PriceUnit      string    `json:"price_unit"`
	CoverImage     string    `json:"cover_image,omitempty"`
	ImageCount     int       `json:"image_count"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListingListResponse 分页列表
type ListingListResponse struct {
	Items    []ListingSummaryVO `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ToListingSummary 行记录转列表摘要
func ToListingSummary(row *model.Listing) ListingSummaryVO {
	return ListingSummaryVO{
		ID:             row.ID,
		Title:          row.Title,
		Purpose:        row.Purpose,
		PropertyTypeID: row.PropertyTypeID,
		District:       row.District,
		Province:       row.Province,
		PriceAmount:    row.PriceAmount,
		PriceUnit:      row.PriceUnit,
		CoverImage:     row.CoverImage,
		ImageCount:     len(row.Images),
		Status:         row.Status,
		UpdatedAt:      row.UpdatedAt,
	}
}

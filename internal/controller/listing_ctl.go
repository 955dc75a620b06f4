package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nhadat_dev_v1/internal/api/dto"
	"nhadat_dev_v1/internal/middleware"
	"nhadat_dev_v1/internal/repository"
	"nhadat_dev_v1/internal/service"
)

// ListingController "我的房源"控制器
// 发布向导落库后，经纪人在这里看自己的草稿和在售房源
type ListingController struct {
	listings *service.ListingService
}

func NewListingController(listings *service.ListingService) *ListingController {
	return &ListingController{listings: listings}
}

// MyListings 我的房源列表
// @Summary 当前用户的房源分页列表，可按用途/状态过滤
// @Tags Listing
// @Produce json
// @Param purpose query string false "for_sale 或 for_rent"
// @Param status query string false "房源状态"
// @Param page query int false "页码，默认1"
// @Param page_size query int false "页大小，默认20"
// @Success 200 {object} dto.ListingListResponse
// @Router /api/listings [get]
func (ctrl *ListingController) MyListings(c *gin.Context) {
	var req dto.ListMyListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	rows, total, err := ctrl.listings.ListByOwner(c.Request.Context(), middleware.CurrentOwnerID(c), repository.ListingFilter{
		Purpose:  req.Purpose,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "加载房源列表失败: " + err.Error(),
		})
		return
	}

	items := make([]dto.ListingSummaryVO, 0, len(rows))
	for i := range rows {
		items = append(items, dto.ToListingSummary(&rows[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.ListingListResponse{
			Items:    items,
			Total:    total,
			Page:     req.Page,
			PageSize: req.PageSize,
		},
	})
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nhadat_dev_v1/internal/api/dto"
	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/service"
)

// CatalogController 类型目录控制器
type CatalogController struct {
	schema *service.SchemaService
}

func NewCatalogController(schema *service.SchemaService) *CatalogController {
	return &CatalogController{schema: schema}
}

// ListPropertyTypes 按用途列出可选类型
// @Summary 列出指定用途下可发布的房源类型（按约定顺序）
// @Tags Catalog
// @Produce json
// @Param purpose query string true "for_sale 或 for_rent"
// @Success 200 {array} dto.PropertyTypeVO
// @Router /api/property-types [get]
func (ctrl *CatalogController) ListPropertyTypes(c *gin.Context) {
	purpose := c.Query("purpose")
	if purpose != model.PurposeForSale && purpose != model.PurposeForRent {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "purpose 必须是 for_sale 或 for_rent",
		})
		return
	}

	types, err := ctrl.schema.EligiblePropertyTypes(c.Request.Context(), purpose)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "加载类型目录失败: " + err.Error(),
		})
		return
	}

	items := make([]dto.PropertyTypeVO, 0, len(types))
	for _, pt := range types {
		schema, err := ctrl.schema.AttributeSchema(c.Request.Context(), purpose, pt.Slug)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "加载属性结构失败: " + err.Error(),
			})
			return
		}
		items = append(items, dto.PropertyTypeVO{
			Slug:   pt.Slug,
			Name:   pt.Name,
			Schema: schema,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    items,
	})
}

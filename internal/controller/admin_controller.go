package controller

import (
	"qa-paper-be/internal/pkg/serverutils"
	"qa-paper-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Languages(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
	KnowledgeStats(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) IAdminController {
	return &adminController{adminService: adminService}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Get("languages", c.Languages)
	h.Get("logs", c.Logs)
	h.Get("knowledge/stats", c.KnowledgeStats)
}

func (c *adminController) Languages(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Supported languages", c.adminService.Languages()))
}

func (c *adminController) Logs(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.adminService.Logs(level, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", res))
}

func (c *adminController) KnowledgeStats(ctx *fiber.Ctx) error {
	res, err := c.adminService.KnowledgeStats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Knowledge base stats", res))
}

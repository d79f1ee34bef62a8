package controller

import (
	"io"

	"qa-paper-be/internal/dto"
	"qa-paper-be/internal/pkg/serverutils"
	"qa-paper-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	Result(ctx *fiber.Ctx) error
	Artifact(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type jobController struct {
	jobService service.IJobService
}

func NewJobController(jobService service.IJobService) IJobController {
	return &jobController{jobService: jobService}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Post("", c.Create)
	h.Get("artifact/:artifactId", c.Artifact)
	h.Get(":id/status", c.Status)
	h.Get(":id/progress", c.Progress)
	h.Get(":id/result", c.Result)
	h.Delete(":id", c.Delete)
}

// Create accepts either a JSON body carrying the questions as text or a
// multipart upload with a "file" part.
func (c *jobController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateJobRequest

	if file, err := ctx.FormFile("file"); err == nil {
		req.Format = ctx.FormValue("format", "text")
		req.Language = ctx.FormValue("language", "en")
		req.Provider = ctx.FormValue("provider", "")

		f, err := file.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to open upload")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to read upload")
		}
		req.Text = string(data)
	} else {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.jobService.CreateJob(ctx.Context(), []byte(req.Text), req.Format, req.Language, req.Provider, req.Metadata)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Job accepted", res))
}

func (c *jobController) Status(ctx *fiber.Ctx) error {
	res, err := c.jobService.Status(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session status", res))
}

func (c *jobController) Progress(ctx *fiber.Ctx) error {
	res, err := c.jobService.ProgressLog(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Progress log", res))
}

func (c *jobController) Result(ctx *fiber.Ctx) error {
	res, err := c.jobService.Result(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session result", res))
}

func (c *jobController) Artifact(ctx *fiber.Ctx) error {
	data, err := c.jobService.Artifact(ctx.Context(), ctx.Params("artifactId"))
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return ctx.Send(data)
}

func (c *jobController) Delete(ctx *fiber.Ctx) error {
	res, err := c.jobService.Delete(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", res))
}

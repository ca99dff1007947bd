package controller

import (
	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/pkg/serverutils"
	"rickshaw-client/internal/service"
	"rickshaw-client/pkg/intake"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const uploadField = "image"

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	SwitchMode(ctx *fiber.Ctx) error
	SetImageURL(ctx *fiber.Ctx) error
	SelectFile(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	RejectOversized(ctx *fiber.Ctx, sessionID uuid.UUID) error
}

type analysisController struct {
	service service.ISubmissionService
}

func NewAnalysisController(service service.ISubmissionService) IAnalysisController {
	return &analysisController{service: service}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1/session")
	h.Use(c.ensureSession)
	h.Get("", c.Show)
	h.Put("mode", c.SwitchMode)
	h.Put("url", c.SetImageURL)
	h.Post("file", c.SelectFile)
	h.Post("submit", c.Submit)
	h.Delete("", c.Reset)
}

// ensureSession makes sure the cookie's session exists before any mutation.
func (c *analysisController) ensureSession(ctx *fiber.Ctx) error {
	c.service.Open(ctx.UserContext(), serverutils.SessionID(ctx))
	return ctx.Next()
}

func (c *analysisController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Snapshot(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *analysisController) SwitchMode(ctx *fiber.Ctx) error {
	var req dto.SwitchModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SwitchMode(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success switch input mode", res))
}

func (c *analysisController) SetImageURL(ctx *fiber.Ctx) error {
	var req dto.SetImageURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetImageURL(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set image url", res))
}

// SelectFile accepts a multipart upload. A rejected file still answers 200: the
// snapshot's error field carries the user-facing message.
func (c *analysisController) SelectFile(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile(uploadField)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing multipart field '"+uploadField+"'")
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.service.SelectFile(
		ctx.UserContext(),
		serverutils.SessionID(ctx),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success select file", res))
}

// Submit starts an analysis. With ?wait=true it answers after the cycle settles;
// otherwise it answers 202 right away and the live stream reports the outcome.
func (c *analysisController) Submit(ctx *fiber.Ctx) error {
	sessionID := serverutils.SessionID(ctx)

	if len(ctx.Body()) > 0 {
		var req dto.SubmitRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
		if req.ImageURL != nil {
			if _, err := c.service.SetImageURL(ctx.UserContext(), sessionID, &dto.SetImageURLRequest{ImageURL: *req.ImageURL}); err != nil {
				return err
			}
		}
	}

	cycle, err := c.service.Submit(ctx.UserContext(), sessionID)
	if err != nil {
		return err
	}

	if ctx.QueryBool("wait", false) {
		res, err := cycle.Wait(ctx.UserContext())
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Analysis settled", res))
	}

	select {
	case <-cycle.Done():
		res, _ := cycle.Wait(ctx.UserContext())
		return ctx.JSON(serverutils.SuccessResponse("Analysis settled", res))
	default:
		res := serverutils.SuccessResponse("Analysis started", cycle.Started)
		res.Code = fiber.StatusAccepted
		return ctx.Status(fiber.StatusAccepted).JSON(res)
	}
}

func (c *analysisController) Reset(ctx *fiber.Ctx) error {
	res, err := c.service.Reset(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

// RejectOversized answers an upload the server refused to read because it exceeded the
// body limit. The session still records the size message so the page can show it.
func (c *analysisController) RejectOversized(ctx *fiber.Ctx, sessionID uuid.UUID) error {
	c.service.Open(ctx.UserContext(), sessionID)
	res, err := c.service.RejectFile(ctx.UserContext(), sessionID, intake.MsgImageTooBig)
	if err != nil {
		return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(serverutils.ErrorResponse(fiber.StatusRequestEntityTooLarge, intake.MsgImageTooBig))
	}
	return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(serverutils.BaseResponse[dto.SessionSnapshot]{
		Success: false,
		Code:    fiber.StatusRequestEntityTooLarge,
		Message: intake.MsgImageTooBig,
		Data:    res,
	})
}

package handler

import (
	"errors"

	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/swap"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/pkg/validator"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SwapHandler struct {
	uc usecase.SwapUsecase
	v  *validator.Validator
}

func NewSwapHandler(uc usecase.SwapUsecase, v *validator.Validator) *SwapHandler {
	if v == nil {
		v = validator.New()
	}
	return &SwapHandler{uc: uc, v: v}
}

func (h *SwapHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/swaps")
	grp.Post("/", h.Propose)
	grp.Get("/active", h.ListActive)
	grp.Get("/completed", h.ListCompleted)
	grp.Get("/:id", h.Get)
	grp.Post("/:id/respond", h.Respond)
	grp.Post("/:id/cancel", h.Cancel)
	grp.Post("/:id/complete", h.Complete)
	grp.Patch("/:id/progress", h.UpdateProgress)
}

func (h *SwapHandler) Propose(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.ProposeSwapRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	counterpart, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid counterpart id", nil, err)
	}

	created, err := h.uc.Propose(c.Context(), userID, usecase.ProposeSwapInput{
		CounterpartID:  counterpart,
		SkillOffered:   req.SkillOffered,
		SkillRequested: req.SkillRequested,
		Message:        req.Message,
	})
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Swap proposed", dto.NewSwapResponse(created))
}

func (h *SwapHandler) Respond(c fiber.Ctx) error {
	userID, swapID, err := swapRequestIDs(c)
	if err != nil {
		return err
	}

	var req dto.RespondSwapRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.Respond(c.Context(), userID, swapID, req.Decision)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapResponse(updated))
}

func (h *SwapHandler) Cancel(c fiber.Ctx) error {
	userID, swapID, err := swapRequestIDs(c)
	if err != nil {
		return err
	}

	updated, err := h.uc.Cancel(c.Context(), userID, swapID)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapResponse(updated))
}

func (h *SwapHandler) Complete(c fiber.Ctx) error {
	userID, swapID, err := swapRequestIDs(c)
	if err != nil {
		return err
	}

	var req dto.CompleteSwapRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	res, err := h.uc.Complete(c.Context(), userID, swapID, req.Rating, req.Feedback)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CompleteSwapResponse{
		Swap:      dto.NewSwapResponse(res.Swap),
		BothRated: res.BothRated,
	})
}

func (h *SwapHandler) UpdateProgress(c fiber.Ctx) error {
	userID, swapID, err := swapRequestIDs(c)
	if err != nil {
		return err
	}

	var req dto.SwapProgressRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateProgress(c.Context(), userID, swapID, *req.Progress)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapResponse(updated))
}

func (h *SwapHandler) Get(c fiber.Ctx) error {
	userID, swapID, err := swapRequestIDs(c)
	if err != nil {
		return err
	}

	v, err := h.uc.Get(c.Context(), userID, swapID)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapResponse(v))
}

func (h *SwapHandler) ListActive(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	views, err := h.uc.ListActive(c.Context(), userID)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapListResponse(views))
}

func (h *SwapHandler) ListCompleted(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	views, err := h.uc.ListCompleted(c.Context(), userID)
	if err != nil {
		return mapSwapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSwapListResponse(views))
}

func (h *SwapHandler) bind(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.v.Struct(out); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", verr.Fields, err)
		}
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return nil
}

func swapRequestIDs(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid swap id", nil, err)
	}
	return userID, swapID, nil
}

func mapSwapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	// ErrSkillNotOwned wraps ErrValidation, so it must be matched first.
	switch {
	case errors.Is(err, swap.ErrSkillNotOwned):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)
	case errors.Is(err, swap.ErrValidation):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, swap.ErrAuthorization):
		return middleware.NewAppError(fiber.StatusForbidden, err.Error(), nil, err)
	case errors.Is(err, swap.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, swap.ErrInvalidState),
		errors.Is(err, swap.ErrConflict),
		errors.Is(err, swap.ErrAlreadyRated):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

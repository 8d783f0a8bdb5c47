package engagement

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		state, err := svc.ToggleLike(c.Context(), c.Params("id"), userID)
		if err != nil {
			if errors.Is(err, ErrMissingUser) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(state)
	})

	r.Get("/posts/:id/like", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		state, err := svc.LikeState(c.Context(), c.Params("id"), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return c.JSON(state)
	})

	r.Post("/posts/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var body struct {
			AuthorName string `json:"author_name"`
			Body       string `json:"body"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		comment, err := svc.AddComment(c.Context(), c.Params("id"), userID, body.AuthorName, body.Body)
		if err != nil {
			if errors.Is(err, ErrMissingUser) || errors.Is(err, ErrEmptyComment) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Get("/posts/:id/comments", func(c *fiber.Ctx) error {
		comments, err := svc.Comments(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if comments == nil {
			comments = []Comment{}
		}
		return c.JSON(comments)
	})
}

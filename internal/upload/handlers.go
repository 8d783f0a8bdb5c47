package upload

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/abasiman/stylofitApp/internal/post"
)

func RegisterRoutes(r fiber.Router, p *Pipeline, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image unreadable")
		}
		defer file.Close()
		image, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image unreadable")
		}

		var tags []post.Tag
		if raw := c.FormValue("tags"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &tags); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid tags")
			}
		}

		result, err := p.Begin(c.Context(), BeginRequest{
			UserID:       userID,
			AuthorName:   c.FormValue("author_name"),
			AuthorAvatar: c.FormValue("author_avatar"),
			Caption:      c.FormValue("caption"),
			Tags:         tags,
			Image:        image,
		})
		if err != nil {
			if errors.Is(err, ErrNoImage) || errors.Is(err, ErrNoTags) || errors.Is(err, ErrMissingUser) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(result)
	})

	r.Post("/:id/confirm", authMiddleware, func(c *fiber.Ctx) error {
		created, err := p.Confirm(c.Context(), c.Params("id"))
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownUpload):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, ErrBlocked):
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			default:
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/:id/cancel", authMiddleware, func(c *fiber.Ctx) error {
		if err := p.Cancel(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

package social

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type followRequest struct {
	FollowingID string `json:"following_id"`
}

// The follower is always the authenticated user; the body only names the
// target, so one account cannot edit another account's edges.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/follow", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user")
		}
		var req followRequest
		if err := c.BodyParser(&req); err != nil || req.FollowingID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "following_id required")
		}
		if err := svc.Follow(c.Context(), userID, req.FollowingID); err != nil {
			if errors.Is(err, ErrSelfFollow) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Post("/unfollow", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user")
		}
		var req followRequest
		if err := c.BodyParser(&req); err != nil || req.FollowingID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "following_id required")
		}
		if err := svc.Unfollow(c.Context(), userID, req.FollowingID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/users/:id/followers", func(c *fiber.Ctx) error {
		members, err := svc.Followers(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if members == nil {
			members = []Member{}
		}
		return c.JSON(members)
	})

	r.Get("/users/:id/following", func(c *fiber.Ctx) error {
		members, err := svc.Following(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if members == nil {
			members = []Member{}
		}
		return c.JSON(members)
	})

	r.Get("/users/:id/is-following", func(c *fiber.Ctx) error {
		followerID := c.Query("follower_id")
		if followerID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "follower_id required")
		}
		following, err := svc.IsFollowing(c.Context(), followerID, c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"is_following": following})
	})
}

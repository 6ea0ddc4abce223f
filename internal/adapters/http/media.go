package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

// TravelMediaHandler lists the media of a travel by order index.
func TravelMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		media, err := deps.Media.ListByTravel(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.JSON(media)
	}
}

func SaveMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.SaveMediaInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		m, err := deps.Media.Save(c.UserContext(), in)
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func UpdateMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch ports.MediaPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		m, err := deps.Media.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return errFrom(c, err, "media not found")
		}
		return c.JSON(m)
	}
}

func DeleteMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Media.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err, "")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadURLHandler issues a signed, expiring upload URL.
func UploadURLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticket, err := deps.Media.GenerateUploadURL(c.UserContext())
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(ticket)
	}
}

// UploadHandler stores the request body sent to a signed upload URL.
func UploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return errBadRequest(c, "empty upload")
		}
		metrics.UploadBytes.Observe(float64(len(body)))
		id, err := deps.Media.Upload(c.UserContext(), c.Params("token"), c.Get(fiber.HeaderContentType), bytes.NewReader(body))
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"storage_id": id})
	}
}

// FileHandler serves a stored blob. Blobs never change once written.
func FileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blob, err := deps.Media.File(c.UserContext(), c.Params("storageId"))
		if err != nil {
			return errFrom(c, err, "file not found")
		}
		c.Set(fiber.HeaderContentType, blob.ContentType)
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
		return c.Send(blob.Data)
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
)

// ListTravelsHandler returns published travels ordered by visit date.
func ListTravelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		travels, err := deps.Travels.ListPublished(c.UserContext())
		if err != nil {
			return errFrom(c, err, "")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(travels)
		if offset >= total {
			travels = travels[:0]
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			travels = travels[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: travels, Pagination: pg})
	}
}

// TravelsByDateRangeHandler returns published travels visited between
// start and end, both inclusive.
func TravelsByDateRangeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		travels, err := deps.Travels.ListByDateRange(c.UserContext(), c.Query("start"), c.Query("end"))
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.JSON(travels)
	}
}

// GetTravelHandler returns a travel with its media.
func GetTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := deps.Travels.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "travel not found")
		}
		return c.JSON(detail)
	}
}

func CreateTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.CreateTravelInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t, err := deps.Travels.Create(c.UserContext(), in)
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func UpdateTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch ports.TravelPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t, err := deps.Travels.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return errFrom(c, err, "travel not found")
		}
		return c.JSON(t)
	}
}

// DeleteTravelHandler removes a travel and its media.
func DeleteTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Travels.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err, "travel not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SeedHandler inserts the sample travels.
func SeedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Travels.Seed(c.UserContext(), deps.Fixtures)
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "sample travels created",
			"count":   res.Count,
			"travels": res.Travels,
		})
	}
}

// ClearHandler removes every travel.
func ClearHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Travels.ClearAll(c.UserContext())
		if err != nil {
			return errFrom(c, err, "")
		}
		return c.JSON(fiber.Map{"message": "all travels cleared", "count": n})
	}
}

package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetAdminID reads the acting admin's id placed in locals by the admin JWT
// middleware. Used for audit attribution (tariff audit log, payment rows).
func GetAdminID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("admin_id")
	switch v := raw.(type) {
	case uuid.UUID:
		if v != uuid.Nil {
			return v, nil
		}
	case string:
		if id, err := uuid.Parse(v); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("admin id not found in token")
}

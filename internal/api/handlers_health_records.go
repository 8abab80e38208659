package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetHealthRecords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	includeGlobal := c.QueryBool("includeGlobal", false)

	records, err := handler.records.GetRecords(c.Context(), currentUserID(c), limit, includeGlobal)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(records)
}

func (handler *Handler) CanGenerateHealthRecord(c *fiber.Ctx) error {
	eligibility, err := handler.records.CanGenerate(currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(eligibility)
}

func (handler *Handler) GenerateHealthRecord(c *fiber.Ctx) error {
	record, err := handler.records.Generate(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (handler *Handler) GetGlobalHealthRecord(c *fiber.Ctx) error {
	record, err := handler.records.GetGlobalRecord(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	if record == nil {
		return c.JSON(nil)
	}
	return c.JSON(record)
}

func (handler *Handler) GetHealthRecord(c *fiber.Ctx) error {
	record, err := handler.records.GetRecord(c.Params("id"), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(record)
}

func (handler *Handler) DeleteHealthRecord(c *fiber.Ctx) error {
	if err := handler.records.DeleteParcial(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return serviceError(c, err)
	}
	// Deleting a record does not give the monthly quota slot back, and the
	// entries it consumed stay consumed. Clients surface this to the user.
	return c.JSON(fiber.Map{
		"deleted": true,
		"message": "Record deleted. The monthly generation slot is not restored and the analyzed mood entries are not released.",
	})
}

func (handler *Handler) RegenerateHealthRecord(c *fiber.Ctx) error {
	record, err := handler.records.Regenerate(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(record)
}

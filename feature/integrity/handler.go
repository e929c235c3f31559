package integrity

import (
	"postcard-sync/core/logger"
	"postcard-sync/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/media", h.HandleMediaCheck)
}

// HandleIntegrityCheck runs every check without fixing anything.
// @Summary Run All Integrity Checks
// @Description Performs the storage, schema and media checks.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if exists, err := h.service.CheckStorage(ctx); err != nil {
		report["storage"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = fiber.Map{"status": "checked", "exists": exists}
	}

	if missing, err := h.service.CheckSchema(); err != nil {
		report["schema"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = fiber.Map{"status": "checked", "missing": missing}
	}

	if media, err := h.service.CheckMedia(ctx); err != nil {
		report["media"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["media"] = mediaBody("checked", media)
	}

	return c.JSON(report)
}

// HandleStorageCheck checks and optionally creates the media bucket.
// @Summary Check Storage
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	exists, err := h.service.CheckStorage(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !exists {
		l.Warn("Media bucket missing", zap.String("bucket", h.service.bucket))
		if fix {
			if err := h.service.FixStorage(c.Context()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "fixed", "exists": true})
		}
	}

	return c.JSON(fiber.Map{"status": "checked", "exists": exists})
}

// HandleSchemaCheck checks the card tables.
// @Summary Check Schema
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	missing, err := h.service.CheckSchema()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "checked", "missing": missing})
}

// HandleMediaCheck checks photo content and optionally removes orphans.
// @Summary Check Media
// @Description Compares stored photo content with the photos of every card.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Remove orphaned objects"
// @Success 200 {object} checks.MediaReport "Media Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/media [get]
func (h *Handler) HandleMediaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckMedia(c.Context())
	if err != nil {
		l.Error("Media check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Orphans) > 0 && fix {
		removed, err := h.service.FixMedia(c.Context(), report)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to remove orphans",
				"details": err.Error(),
				"removed": removed,
			})
		}
		return c.JSON(mediaBody("fixed", report))
	}

	return c.JSON(mediaBody("checked", report))
}

func mediaBody(status string, r *checks.MediaReport) fiber.Map {
	return fiber.Map{
		"status":  status,
		"photos":  r.Photos,
		"stored":  r.Stored,
		"missing": r.Missing,
		"orphans": r.Orphans,
	}
}

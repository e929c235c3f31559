package card

import (
	"bytes"
	"errors"
	"net/url"

	"postcard-sync/core/logger"
	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"
	"postcard-sync/feature/media"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for cards.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CardView is a card as returned by the API.
type CardView struct {
	*models.Card
	DisplayTitle  string `json:"display_title"`
	Collaborative bool   `json:"collaborative"`
}

// CollaborativeRequest is the body of PUT /cards/{uuid}/collaborative.
type CollaborativeRequest struct {
	Collaborative bool `json:"collaborative"`
}

func (h *Handler) view(c *models.Card) CardView {
	return CardView{Card: c, DisplayTitle: h.service.DisplayTitle(c), Collaborative: IsCollaborative(c)}
}

// RegisterRoutes registers the card routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/cards")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/:uuid", h.HandleGet)
	group.Patch("/:uuid", h.HandleEdit)
	group.Put("/:uuid/collaborative", h.HandleSetCollaborative)
	group.Get("/:uuid/share", h.HandleShare)
	group.Post("/:uuid/pull", h.HandlePull)
	group.Post("/:uuid/push", h.HandlePush)
	group.Get("/:uuid/photos/:key/content", h.HandleGetPhoto)
	group.Put("/:uuid/photos/:key/content", h.HandlePutPhoto)
}

// HandleCreate creates a draft card.
// @Summary Create Card
// @Description Create a local draft card stamped with the configured author.
// @Tags cards
// @Accept json
// @Produce json
// @Param card body NewCard true "Initial attributes"
// @Success 201 {object} CardView "Created card"
// @Failure 422 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cards [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in NewCard
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	card, err := h.service.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, "Card creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(card))
}

// HandleList lists cards newest first.
// @Summary List Cards
// @Tags cards
// @Produce json
// @Param published query bool false "Hide drafts"
// @Param limit query int false "Maximum number of cards"
// @Success 200 {array} CardView "Cards"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cards [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	cards, err := h.service.List(c.Context(), ListOptions{
		PublishedOnly: c.QueryBool("published", false),
		Limit:         c.QueryInt("limit", 0),
	})
	if err != nil {
		return h.fail(c, "Card listing failed", err)
	}
	views := make([]CardView, 0, len(cards))
	for i := range cards {
		views = append(views, h.view(&cards[i]))
	}
	return c.JSON(views)
}

// HandleGet returns one card with its photos.
// @Summary Get Card
// @Tags cards
// @Produce json
// @Param uuid path string true "Card UUID"
// @Success 200 {object} CardView "Card"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /cards/{uuid} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	card, err := h.service.Get(c.Context(), c.Params("uuid"))
	if err != nil {
		return h.fail(c, "Card lookup failed", err)
	}
	return c.JSON(h.view(card))
}

// HandleEdit applies a local edit.
// @Summary Edit Card
// @Description Change title, timing or location locally. The card is marked dirty until the next push.
// @Tags cards
// @Accept json
// @Produce json
// @Param uuid path string true "Card UUID"
// @Param edit body Edit true "Changes"
// @Success 200 {object} CardView "Card"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 422 {object} map[string]string "Invalid input"
// @Router /cards/{uuid} [patch]
func (h *Handler) HandleEdit(c *fiber.Ctx) error {
	var e Edit
	if err := c.BodyParser(&e); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	card, err := h.service.Edit(c.Context(), c.Params("uuid"), e)
	if err != nil {
		return h.fail(c, "Card edit failed", err)
	}
	return c.JSON(h.view(card))
}

// HandleSetCollaborative toggles the card privacy.
// @Summary Set Collaborative
// @Tags cards
// @Accept json
// @Produce json
// @Param uuid path string true "Card UUID"
// @Param body body CollaborativeRequest true "Toggle"
// @Success 200 {object} CardView "Card"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /cards/{uuid}/collaborative [put]
func (h *Handler) HandleSetCollaborative(c *fiber.Ctx) error {
	var req CollaborativeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	card, err := h.service.SetCollaborative(c.Context(), c.Params("uuid"), req.Collaborative)
	if err != nil {
		return h.fail(c, "Privacy update failed", err)
	}
	return c.JSON(h.view(card))
}

// HandleShare returns the absolute link of a pulled card.
// @Summary Share Card
// @Description Resolve the card web_url against the remote base url.
// @Tags cards
// @Produce json
// @Param uuid path string true "Card UUID"
// @Success 200 {object} ShareLink "Share link"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Card not pulled yet"
// @Router /cards/{uuid}/share [get]
func (h *Handler) HandleShare(c *fiber.Ctx) error {
	link, err := h.service.Share(c.Context(), c.Params("uuid"))
	if err != nil {
		return h.fail(c, "Share link failed", err)
	}
	return c.JSON(link)
}

// HandlePull reconciles the card with the remote document.
// @Summary Pull Card
// @Tags sync
// @Produce json
// @Param uuid path string true "Card UUID"
// @Success 200 {object} reconcile.Result "Cycle result"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Photo list could not be applied"
// @Failure 502 {object} map[string]string "Remote unavailable"
// @Router /cards/{uuid}/pull [post]
func (h *Handler) HandlePull(c *fiber.Ctx) error {
	res, err := h.service.Pull(c.Context(), c.Params("uuid"))
	if err != nil {
		return h.fail(c, "Pull failed", err)
	}
	return c.JSON(res)
}

// HandlePush publishes the card.
// @Summary Push Card
// @Tags sync
// @Produce json
// @Param uuid path string true "Card UUID"
// @Success 200 {object} reconcile.Result "Cycle result"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 502 {object} map[string]string "Remote unavailable"
// @Router /cards/{uuid}/push [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	res, err := h.service.Push(c.Context(), c.Params("uuid"))
	if err != nil {
		return h.fail(c, "Push failed", err)
	}
	return c.JSON(res)
}

// HandleGetPhoto streams the stored content of a photo.
// @Summary Get Photo Content
// @Tags media
// @Produce octet-stream
// @Param uuid path string true "Card UUID"
// @Param key path string true "Photo key (URL escaped)"
// @Success 200 {file} binary "Content"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /cards/{uuid}/photos/{key}/content [get]
func (h *Handler) HandleGetPhoto(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	obj, err := h.service.OpenPhoto(c.Context(), c.Params("uuid"), key)
	if err != nil {
		return h.fail(c, "Photo lookup failed", err)
	}
	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	if obj.ETag != "" {
		c.Set(fiber.HeaderETag, obj.ETag)
	}
	size := int(obj.Size)
	if obj.Size <= 0 {
		size = -1
	}
	// fasthttp closes the stream once it has been sent
	return c.SendStream(obj, size)
}

// HandlePutPhoto stores the content of a photo.
// @Summary Store Photo Content
// @Tags media
// @Accept octet-stream
// @Param uuid path string true "Card UUID"
// @Param key path string true "Photo key (URL escaped)"
// @Success 204 "Stored"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /cards/{uuid}/photos/{key}/content [put]
func (h *Handler) HandlePutPhoto(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	body := c.Body()
	err = h.service.StorePhoto(c.Context(), c.Params("uuid"), key, bytes.NewReader(body), int64(len(body)), c.Get(fiber.HeaderContentType))
	if err != nil {
		return h.fail(c, "Photo upload failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// fail logs err and writes its status mapping.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(h.service.Logger(), c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err), zap.String("outcome", reconcile.Outcome(err)))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   err.Error(),
		"outcome": reconcile.Outcome(err),
	})
}

// StatusFor maps a card or sync error to an HTTP status.
func StatusFor(err error) int {
	var (
		fetchErr  *reconcile.FetchError
		submitErr *reconcile.SubmitError
		childErr  *reconcile.ChildReconcileError
	)
	switch {
	case errors.Is(err, ErrInvalid):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrNotPublished):
		return fiber.StatusConflict
	case errors.As(err, &childErr):
		return fiber.StatusConflict
	case errors.As(err, &fetchErr), errors.As(err, &submitErr):
		return fiber.StatusBadGateway
	case errors.Is(err, reconcile.ErrNotFound), errors.Is(err, media.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

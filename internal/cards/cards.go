/*
Package cards exposes card generation, template listing and history over
HTTP. Generation failures degrade to a fallback card; catalog misses,
invalid input and storage failures are reported to the client.
*/
package cards

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"HabitCards_V0.1/internal/cardstore"
	"HabitCards_V0.1/internal/catalog"
	"HabitCards_V0.1/internal/generator"
	"HabitCards_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

// DefaultLanguage applies when a request names none.
const DefaultLanguage = "RU"

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// GenerateCardRequest is the body of POST /generate-card and POST /generate.
// Every field is optional.
type GenerateCardRequest struct {
	Goal     string `json:"goal"`
	Energy   string `json:"energy"`
	Language string `json:"language"`
	Category string `json:"category"`
	UserID   string `json:"userId"`

	// Free-form hints of the template-less workflow.
	ActionType  string `json:"actionType"`
	Engagement  string `json:"engagement"`
	SessionType string `json:"sessionType"`
	BaseMeaning string `json:"baseMeaning"`
}

// normalize trims every field and applies the default language.
func (r *GenerateCardRequest) normalize() {
	for _, f := range []*string{&r.Goal, &r.Energy, &r.Category, &r.UserID,
		&r.ActionType, &r.Engagement, &r.SessionType, &r.BaseMeaning} {
		*f = strings.TrimSpace(*f)
	}
	r.Language = catalog.NormalizeLanguage(r.Language)
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
}

// freeform reports whether the request asks for the template-less workflow:
// no category, but free-form hints.
func (r *GenerateCardRequest) freeform() bool {
	return r.Category == "" && (r.ActionType != "" || r.BaseMeaning != "")
}

func (r *GenerateCardRequest) freeformInput() generator.FreeformInput {
	return generator.FreeformInput{
		ActionType:  r.ActionType,
		Goal:        r.Goal,
		Energy:      r.Energy,
		Engagement:  r.Engagement,
		SessionType: r.SessionType,
		BaseMeaning: r.BaseMeaning,
		Language:    r.Language,
	}
}

// CardResponse is the success body of POST /generate-card.
type CardResponse struct {
	Success bool                    `json:"success"`
	Card    cardstore.GeneratedCard `json:"card"`
}

// LegacyCardResponse is the body of POST /generate: the flat shape older
// mobile clients read, plus the stored card's id.
type LegacyCardResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Duration      int    `json:"duration,omitempty"`
	IsAiGenerated bool   `json:"isAiGenerated"`
}

type TemplatesResponse struct {
	Success   bool               `json:"success"`
	Templates []catalog.Template `json:"templates"`
}

type TemplateResponse struct {
	Success  bool             `json:"success"`
	Template catalog.Template `json:"template"`
}

type HistoryResponse struct {
	Success bool                      `json:"success"`
	Cards   []cardstore.GeneratedCard `json:"cards"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

/*=================================================================================
									HANDLERS
=================================================================================*/

// Handler wires the catalog, generator and store into echo handlers.
type Handler struct {
	Catalog   *catalog.Catalog
	Generator *generator.Generator
	Store     cardstore.Store

	HistoryDefaultLimit int
	HistoryMaxLimit     int
}

// GenerateCardHandler handles POST /generate-card.
func (h *Handler) GenerateCardHandler(c echo.Context) error {
	log := utility.GetLogger(c)

	var req GenerateCardRequest
	if err := c.Bind(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind generate-card body")
		return fail(c, http.StatusBadRequest, "Invalid request format")
	}
	req.normalize()

	card, err := h.generate(c.Request().Context(), req)
	if err != nil {
		return h.failFor(c, err)
	}
	return c.JSON(http.StatusOK, CardResponse{Success: true, Card: card})
}

// LegacyGenerateHandler handles POST /generate, the template-less endpoint
// of the first mobile releases.
func (h *Handler) LegacyGenerateHandler(c echo.Context) error {
	log := utility.GetLogger(c)

	var req GenerateCardRequest
	if err := c.Bind(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind generate body")
		return fail(c, http.StatusBadRequest, "Invalid request format")
	}
	req.normalize()
	req.Category = ""

	card, err := h.generateFreeform(c.Request().Context(), req)
	if err != nil {
		return h.failFor(c, err)
	}
	return c.JSON(http.StatusOK, LegacyCardResponse{
		ID:            card.ID,
		Title:         card.Title,
		Description:   card.Description,
		Duration:      card.DurationSeconds,
		IsAiGenerated: card.IsAiGenerated,
	})
}

// ListTemplatesHandler handles GET /templates?language=&category=.
func (h *Handler) ListTemplatesHandler(c echo.Context) error {
	ctx := c.Request().Context()

	language := catalog.NormalizeLanguage(c.QueryParam("language"))
	if language == "" {
		language = DefaultLanguage
	}

	var (
		templates []catalog.Template
		err       error
	)
	if category := c.QueryParam("category"); strings.TrimSpace(category) != "" {
		templates, err = h.Catalog.ListByCategoryAndLanguage(ctx, category, language)
	} else {
		templates, err = h.Catalog.ListByLanguage(ctx, language)
	}
	if err != nil {
		return h.failFor(c, err)
	}
	if templates == nil {
		templates = []catalog.Template{}
	}
	return c.JSON(http.StatusOK, TemplatesResponse{Success: true, Templates: templates})
}

// CreateTemplateHandler handles POST /templates.
func (h *Handler) CreateTemplateHandler(c echo.Context) error {
	var fields catalog.TemplateFields
	if err := c.Bind(&fields); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request format")
	}

	t, err := h.Catalog.Add(c.Request().Context(), fields)
	if err != nil {
		return h.failFor(c, err)
	}

	utility.GetLogger(c).Info().Int64("template_id", t.ID).Str("category", t.Category).Str("language", t.Language).Msg("Template added")
	return c.JSON(http.StatusCreated, TemplateResponse{Success: true, Template: t})
}

// HistoryHandler handles GET /history?userId=&limit=.
func (h *Handler) HistoryHandler(c echo.Context) error {
	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}
	limit = cardstore.ClampLimit(limit, h.HistoryDefaultLimit, h.HistoryMaxLimit)

	userID := strings.TrimSpace(c.QueryParam("userId"))
	cards, err := h.Store.ListRecent(c.Request().Context(), userID, limit)
	if err != nil {
		return h.failFor(c, err)
	}
	return c.JSON(http.StatusOK, HistoryResponse{Success: true, Cards: cards})
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// generate runs the request lifecycle: pick, generate, persist.
func (h *Handler) generate(ctx context.Context, req GenerateCardRequest) (cardstore.GeneratedCard, error) {
	if req.freeform() {
		return h.generateFreeform(ctx, req)
	}

	tpl, err := h.Catalog.Pick(ctx, req.Category, req.Language)
	if err != nil {
		return cardstore.GeneratedCard{}, err
	}

	draft := h.Generator.GenerateFromTemplate(ctx, tpl, generator.UserContext{
		Goal:     req.Goal,
		Energy:   req.Energy,
		Language: req.Language,
		UserID:   req.UserID,
	})

	return h.Store.Save(ctx, draft, cardstore.SaveContext{
		TemplateID:  tpl.ID,
		Category:    tpl.Category,
		Difficulty:  tpl.Difficulty,
		Tags:        tpl.Tags,
		Language:    tpl.Language,
		UserGoal:    req.Goal,
		EnergyLevel: req.Energy,
		UserID:      req.UserID,
	})
}

func (h *Handler) generateFreeform(ctx context.Context, req GenerateCardRequest) (cardstore.GeneratedCard, error) {
	draft := h.Generator.GenerateFreeform(ctx, req.freeformInput())

	return h.Store.Save(ctx, draft, cardstore.SaveContext{
		Category:    catalog.NormalizeCategory(req.ActionType),
		Language:    req.Language,
		UserGoal:    req.Goal,
		EnergyLevel: req.Energy,
		UserID:      req.UserID,
	})
}

// failFor maps a domain error to its HTTP status and logs it.
func (h *Handler) failFor(c echo.Context, err error) error {
	log := utility.GetLogger(c)

	var verr *catalog.ValidationError
	var perr *cardstore.PersistenceError
	switch {
	case errors.Is(err, catalog.ErrEmptyCatalog):
		log.Info().Err(err).Msg("No template for request")
		return fail(c, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		log.Error().Err(err).Msg("Card persistence failed")
		return fail(c, http.StatusInternalServerError, "Failed to store card, please retry")
	default:
		log.Error().Err(err).Msg("Request failed")
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: msg})
}

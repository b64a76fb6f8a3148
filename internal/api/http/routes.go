// Package httpapi is the thin presentation layer over the board core. It is
// the only package allowed to know about the HTTP toolkit; the stores, the
// pipeline, the resolver and the reorder protocol stay transport-free.
package httpapi

import (
	"errors"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/localweather/cityboard/internal/board"
	"github.com/localweather/cityboard/internal/cards"
	"github.com/localweather/cityboard/internal/notify"
	"github.com/localweather/cityboard/internal/reorder"
	"github.com/localweather/cityboard/internal/search"
	"github.com/localweather/cityboard/internal/session"
	"github.com/localweather/cityboard/internal/storage"
)

var validate = validator.New()

// Deps bundles everything the handlers need.
type Deps struct {
	KV       storage.KV
	Pipeline *cards.Pipeline
	Resolver *search.Resolver
	Sessions *session.Manager
	Notifier notify.Sink
}

type handlers struct {
	Deps

	mu       sync.Mutex
	gestures map[string]*reorder.Gesture // one in-flight gesture per session token
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handlers{Deps: deps, gestures: make(map[string]*reorder.Gesture)}
	if h.Notifier == nil {
		h.Notifier = notify.NopSink{}
	}

	v1 := app.Group("/api/v1")
	v1.Use(h.resolveUser)

	v1.Post("/session", h.createSession)
	v1.Delete("/session", h.deleteSession)

	v1.Get("/board/entries", h.listEntries)
	v1.Post("/board/entries", h.addEntry)
	v1.Delete("/board/entries/:index", h.removeEntry)
	v1.Patch("/board/entries/:index", h.updateEntry)
	v1.Post("/board/entries/:index/move", h.moveEntry)
	v1.Delete("/board", h.clearBoard)
	v1.Get("/board/cards", h.renderCards)

	v1.Post("/board/gesture/start", h.gestureStart)
	v1.Post("/board/gesture/hover", h.gestureHover)
	v1.Post("/board/gesture/drop", h.gestureDrop)
	v1.Post("/board/gesture/cancel", h.gestureCancel)

	v1.Get("/search", h.searchPlaces)

	v1.Get("/favorites", h.listFavorites)
	v1.Post("/favorites/toggle", h.toggleFavorite)
	v1.Post("/favorites/move", h.moveFavorite)
	v1.Post("/favorites/:index/promote", h.promoteFavorite)
}

// resolveUser maps the session token header to the user identifier that
// namespaces storage. A missing or stale token leaves the identifier empty;
// the storage layer then behaves as "no storage available".
func (h *handlers) resolveUser(c *fiber.Ctx) error {
	token := c.Get("X-Session-Token")
	userID := ""
	if token != "" && h.Sessions != nil {
		if uid, err := h.Sessions.Lookup(token); err == nil {
			userID = uid
		} else if !errors.Is(err, session.ErrNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "session lookup failed")
		}
	}
	c.Locals("token", token)
	c.Locals("userID", userID)
	return c.Next()
}

func (h *handlers) boardStore(c *fiber.Ctx) *board.Store {
	return board.NewStore(storage.ForUser(h.KV, c.Locals("userID").(string)))
}

func (h *handlers) favoritesStore(c *fiber.Ctx) *board.Favorites {
	return board.NewFavorites(storage.ForUser(h.KV, c.Locals("userID").(string)))
}

// --- sessions ---

type sessionRequest struct {
	Username string `json:"username" validate:"required"`
}

func (h *handlers) createSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	token, err := h.Sessions.Create(req.Username)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}

func (h *handlers) deleteSession(c *fiber.Ctx) error {
	token := c.Locals("token").(string)
	if token != "" {
		if err := h.Sessions.Delete(token); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to delete session")
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- board entries ---

type candidateRequest struct {
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code" validate:"required"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

func (r candidateRequest) toEntry() board.Entry {
	return board.Entry{
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		CountryCode: r.CountryCode,
		Lat:         board.Coord(r.Lat),
		Lon:         board.Coord(r.Lon),
		DisplayName: r.DisplayName,
	}
}

func (h *handlers) listEntries(c *fiber.Ctx) error {
	entries := h.boardStore(c).Entries()
	if entries == nil {
		entries = []board.Entry{}
	}
	return c.JSON(entries)
}

func (h *handlers) addEntry(c *fiber.Ctx) error {
	var req candidateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	store := h.boardStore(c)
	candidate := board.Normalize(req.toEntry())

	if board.IsDuplicate(candidate, store.Entries()) {
		h.Notifier.Notify(notify.KindDuplicateRejected, "board", candidate.City)
		return fiber.NewError(fiber.StatusConflict, "city already on the board")
	}

	entry, err := store.Add(candidate)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save entry")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handlers) removeEntry(c *fiber.Ctx) error {
	index, err := parseIndex(c)
	if err != nil {
		return err
	}
	if err := h.boardStore(c).Remove(index); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to remove entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) updateEntry(c *fiber.Ctx) error {
	index, err := parseIndex(c)
	if err != nil {
		return err
	}

	var patch board.Patch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.boardStore(c).Update(index, patch); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type moveRequest struct {
	To int `json:"to"`
}

func (h *handlers) moveEntry(c *fiber.Ctx) error {
	from, err := parseIndex(c)
	if err != nil {
		return err
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	store := h.boardStore(c)
	n := len(store.Entries())
	if from < 0 || from >= n || req.To < 0 || req.To >= n {
		// The board store clamps or drops these itself; the notice is the
		// only visible trace.
		h.Notifier.Notify(notify.KindInvalidReorder, "board",
			"move "+strconv.Itoa(from)+" -> "+strconv.Itoa(req.To))
	}
	if err := store.Move(from, req.To); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to move entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) clearBoard(c *fiber.Ctx) error {
	if err := h.boardStore(c).Clear(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to clear board")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) renderCards(c *fiber.Ctx) error {
	entries := h.boardStore(c).Entries()
	rendered := h.Pipeline.RenderBoard(c.Context(), entries)
	if rendered == nil {
		rendered = []cards.Card{}
	}
	return c.JSON(rendered)
}

// --- reorder gesture ---

type gestureStartRequest struct {
	Source int `json:"source"`
}

func (h *handlers) gestureStart(c *fiber.Ctx) error {
	var req gestureStartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	store := h.boardStore(c)
	g := reorder.New(store)
	if err := g.Begin(len(store.Entries()), req.Source); err != nil {
		h.Notifier.Notify(notify.KindInvalidReorder, "board", err.Error())
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.mu.Lock()
	h.gestures[c.Locals("token").(string)] = g
	h.mu.Unlock()

	return c.JSON(fiber.Map{"order": g.RenderedOrder()})
}

type gestureHoverRequest struct {
	Target int `json:"target"`
}

func (h *handlers) gestureHover(c *fiber.Ctx) error {
	var req gestureHoverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	g, err := h.gesture(c)
	if err != nil {
		return err
	}
	if err := g.HoverOver(req.Target); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"order": g.RenderedOrder()})
}

func (h *handlers) gestureDrop(c *fiber.Ctx) error {
	g, err := h.gesture(c)
	if err != nil {
		return err
	}
	defer h.clearGesture(c)

	moved, err := g.Drop()
	if err != nil {
		if errors.Is(err, reorder.ErrNotDragging) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to commit move")
	}
	return c.JSON(fiber.Map{"moved": moved})
}

func (h *handlers) gestureCancel(c *fiber.Ctx) error {
	g, err := h.gesture(c)
	if err != nil {
		return err
	}
	g.Cancel()
	h.clearGesture(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) gesture(c *fiber.Ctx) (*reorder.Gesture, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.gestures[c.Locals("token").(string)]
	if !ok {
		return nil, fiber.NewError(fiber.StatusConflict, "no drag gesture in progress")
	}
	return g, nil
}

func (h *handlers) clearGesture(c *fiber.Ctx) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.gestures, c.Locals("token").(string))
}

// --- search ---

func (h *handlers) searchPlaces(c *fiber.Ctx) error {
	places, err := h.Resolver.Resolve(c.Context(), c.Query("q"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "geocoding lookup failed")
	}
	if places == nil {
		places = []search.Place{}
	}
	return c.JSON(places)
}

// --- favorites ---

func (h *handlers) listFavorites(c *fiber.Ctx) error {
	favorites := h.favoritesStore(c).All()
	if favorites == nil {
		favorites = []board.Entry{}
	}
	return c.JSON(favorites)
}

func (h *handlers) toggleFavorite(c *fiber.Ctx) error {
	var req candidateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	added, err := h.favoritesStore(c).Toggle(req.toEntry())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update favorites")
	}
	return c.JSON(fiber.Map{"favorited": added})
}

type moveFavoriteRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *handlers) moveFavorite(c *fiber.Ctx) error {
	var req moveFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	favorites := h.favoritesStore(c)
	n := len(favorites.All())
	if req.From < 0 || req.From >= n || req.To < 0 || req.To >= n {
		h.Notifier.Notify(notify.KindInvalidReorder, "favorites",
			"move "+strconv.Itoa(req.From)+" -> "+strconv.Itoa(req.To))
	}
	if err := favorites.Move(req.From, req.To); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to move favorite")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// promoteFavorite puts a favorite onto the board. When it already matches a
// board entry nothing is inserted and the matching index is reported, so the
// consumer can scroll to the existing card.
func (h *handlers) promoteFavorite(c *fiber.Ctx) error {
	index, err := parseIndex(c)
	if err != nil {
		return err
	}

	favorites := h.favoritesStore(c).All()
	if index < 0 || index >= len(favorites) {
		return fiber.NewError(fiber.StatusNotFound, "no favorite at that index")
	}
	favorite := favorites[index]

	store := h.boardStore(c)
	for _, e := range store.Entries() {
		if board.IsDuplicate(favorite, []board.Entry{e}) {
			return c.JSON(fiber.Map{"added": false, "existing_index": e.DisplayIndex})
		}
	}

	entry, err := store.Add(favorite)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save entry")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": true, "entry": entry})
}

func parseIndex(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}
	return index, nil
}

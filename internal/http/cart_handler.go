package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
)

type CartService interface {
	AddItem(ctx context.Context, title, priceText, image string) (cart.AddResult, error)
	RemoveLine(ctx context.Context, index int) (cart.RemoveResult, error)
	Clear(ctx context.Context) error
	Snapshot() cart.Snapshot
}

type Checkout interface {
	Start(ctx context.Context) error
	Processing() bool
}

type NotificationBoard interface {
	Current() (notify.Notification, bool)
}

type CartHandler struct {
	cart     CartService
	checkout Checkout
	board    NotificationBoard
	catalog  *catalog.Catalog
}

func NewCartHandler(c CartService, co Checkout, board NotificationBoard, cat *catalog.Catalog) *CartHandler {
	return &CartHandler{cart: c, checkout: co, board: board, catalog: cat}
}

type lineResponse struct {
	Index           int     `json:"index"`
	Title           string  `json:"title"`
	Image           string  `json:"image"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	PriceDisplay    string  `json:"priceDisplay"`
	Subtotal        float64 `json:"subtotal"`
	SubtotalDisplay string  `json:"subtotalDisplay"`
}

type cartResponse struct {
	CartID       string         `json:"cartId"`
	Items        []lineResponse `json:"items"`
	ItemCount    int            `json:"itemCount"`
	Total        float64        `json:"totalAmount"`
	TotalDisplay string         `json:"totalDisplay"`
	Processing   bool           `json:"checkoutProcessing"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (h *CartHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "package-cart"})
}

func (h *CartHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": h.cart.Snapshot().ItemCount})
}

type addItemRequest struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Image string `json:"image"`
}

// AddItem accepts a full card ({title, price, image}) or just a title that
// is resolved against the catalog.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if body.Price == "" && strings.TrimSpace(body.Title) != "" && h.catalog != nil {
		pkg, err := h.catalog.Find(body.Title)
		if err != nil {
			writeError(w, http.StatusNotFound, "package not found")
			return
		}
		body.Price = pkg.Price
		if body.Image == "" {
			body.Image = pkg.Image
		}
	}

	if _, err := h.cart.AddItem(r.Context(), body.Title, body.Price, body.Image); err != nil {
		var perr *cart.PriceParseError
		switch {
		case errors.Is(err, cart.ErrEmptyTitle):
			writeError(w, http.StatusBadRequest, "missing title")
		case errors.As(err, &perr):
			writeError(w, http.StatusUnprocessableEntity, "invalid price")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	if _, err := h.cart.RemoveLine(r.Context(), index); err != nil {
		var oor *cart.IndexOutOfRangeError
		if errors.As(err, &oor) {
			writeError(w, http.StatusNotFound, "cart line not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	err := h.checkout.Start(r.Context())
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, checkout.ErrInProgress):
		writeError(w, http.StatusConflict, "checkout already in progress")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to start checkout")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "processing"})
	}
}

func (h *CartHandler) CurrentNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := h.board.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *CartHandler) cartView() cartResponse {
	snap := h.cart.Snapshot()
	resp := cartResponse{
		CartID:       snap.CartID,
		Items:        make([]lineResponse, 0, len(snap.Lines)),
		ItemCount:    snap.ItemCount,
		Total:        snap.Total.InexactFloat64(),
		TotalDisplay: cart.FormatPrice(snap.Total),
		UpdatedAt:    snap.UpdatedAt,
	}
	if h.checkout != nil {
		resp.Processing = h.checkout.Processing()
	}
	for i, l := range snap.Lines {
		sub := l.Subtotal().Round(2)
		resp.Items = append(resp.Items, lineResponse{
			Index:           i,
			Title:           l.Title,
			Image:           l.Image,
			Quantity:        l.Quantity,
			Price:           l.UnitPrice.InexactFloat64(),
			PriceDisplay:    cart.FormatPrice(l.UnitPrice),
			Subtotal:        sub.InexactFloat64(),
			SubtotalDisplay: cart.FormatPrice(sub),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

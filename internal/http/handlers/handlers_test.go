package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/ThuanNgcodelor/merier-cart/internal/http"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/session"
	"github.com/ThuanNgcodelor/merier-cart/internal/http/sessioncookie"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/addresses"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/cart"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/checkout"
	"github.com/ThuanNgcodelor/merier-cart/internal/modules/orders"
	"github.com/ThuanNgcodelor/merier-cart/pkg/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const cookieName = "merier_cart"

type fakeCartService struct {
	mu    sync.Mutex
	truth cart.Snapshot
}

func (s *fakeCartService) FetchCart(_ context.Context) (cart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.truth
	out.Lines = append([]cart.Line(nil), s.truth.Lines...)
	return out, nil
}

func (s *fakeCartService) UpdateQuantity(_ context.Context, _ cart.LineKey, _ int) error {
	return nil
}

func (s *fakeCartService) RemoveLine(_ context.Context, lineID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.truth.Lines {
		if s.truth.Lines[i].ID == lineID {
			s.truth.Lines = append(s.truth.Lines[:i], s.truth.Lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeAddressService struct {
	list []addresses.Address
}

func (s *fakeAddressService) FetchAddresses(_ context.Context) ([]addresses.Address, error) {
	return s.list, nil
}

type fakeOrderService struct {
	mu        sync.Mutex
	lastDraft orders.Draft
	receipt   *orders.Receipt
	err       error
}

func (s *fakeOrderService) Create(_ context.Context, draft orders.Draft) (*orders.Receipt, error) {
	s.mu.Lock()
	s.lastDraft = draft
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *fakeOrderService) last() orders.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDraft
}

func stock(v int) *int { return &v }

func seededCart() cart.Snapshot {
	return cart.Snapshot{
		Lines: []cart.Line{
			{ID: "row-1", ProductID: "p1", Name: "Salmon Kibble", Quantity: 2, UnitPriceCents: 1000, LineTotalCents: 2000, Stock: stock(5)},
			{ID: "row-2", ProductID: "p2", SizeID: "s", Name: "Harness", Quantity: 1, UnitPriceCents: 2000, LineTotalCents: 2000, Stock: stock(1)},
		},
		TotalCents: 4000,
		Currency:   "USD",
	}
}

type testApp struct {
	router   *gin.Engine
	sessions *session.Manager
	cartSvc  *fakeCartService
	orderSvc *fakeOrderService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cartSvc := &fakeCartService{truth: seededCart()}
	addrSvc := &fakeAddressService{list: []addresses.Address{
		{ID: "addr-1", RecipientName: "Thuan", Street: "12 Pine St", IsDefault: true},
		{ID: "addr-2", RecipientName: "Thuan", Street: "88 Elm Ave"},
	}}
	orderSvc := &fakeOrderService{receipt: &orders.Receipt{ID: "ord-1", Status: "created", TotalCents: 4000, ItemCount: 2}}

	codec := sessioncookie.New([]byte("test-secret"), cookieName, false)
	sessions := session.NewManager(codec, func(id string, flashes *session.FlashBuffer) *session.Session {
		ctl := cart.NewController(cartSvc, flashes)
		flow := addresses.NewFlow(addrSvc)
		return &session.Session{
			ID:       id,
			Cart:     ctl,
			Flow:     flow,
			Checkout: checkout.NewOrchestrator(ctl, flow, orderSvc),
		}
	})
	t.Cleanup(sessions.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testApp{
		router:   router.NewRouter(logger, sessions),
		sessions: sessions,
		cartSvc:  cartSvc,
		orderSvc: orderSvc,
	}
}

func (a *testApp) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			found = ck // a clear+set pair leaves two headers; the last wins
		}
	}
	if found == nil {
		t.Fatal("session cookie not set")
	}
	return found
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) view.CartPage {
	t.Helper()
	var page view.CartPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

func TestGetCart_FirstContact(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ck := sessionCookie(t, w)
	assert.Contains(t, ck.Value, ".", "cookie value is signed")
	assert.True(t, ck.HttpOnly)

	page := decodePage(t, w)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "p1", page.Rows[0].ProductID)
	assert.Equal(t, "$40.00", page.Total)
	assert.False(t, page.AllSelected)
}

func TestSelection_PersistsAcrossRequests(t *testing.T) {
	app := newTestApp(t)

	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	w := app.do(t, http.MethodPost, "/cart/select", `{"key":"p1:no-size","checked":true}`, ck)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/cart", "", ck)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePage(t, w)
	assert.True(t, page.Rows[0].Selected)
	assert.Equal(t, 1, page.SelectedCount)
	assert.Equal(t, "$20.00", page.SelectedSubtotal)
}

func TestTamperedCookie_GetsFreshSession(t *testing.T) {
	app := newTestApp(t)

	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)
	ck.Value = "evil-session-id.forged-signature"

	w := app.do(t, http.MethodGet, "/cart", "", ck)
	require.Equal(t, http.StatusOK, w.Code)
	fresh := sessionCookie(t, w)
	assert.NotEqual(t, ck.Value, fresh.Value, "forged cookie is replaced, not honored")
}

func TestUpdateQuantity_AcceptedOptimistically(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	w := app.do(t, http.MethodPost, "/cart/items/quantity", `{"key":"p1:no-size","quantity":4}`, ck)
	require.Equal(t, http.StatusAccepted, w.Code)

	page := decodePage(t, w)
	assert.Equal(t, 4, page.Rows[0].Quantity)
	assert.True(t, page.Rows[0].Updating)
}

func TestUpdateQuantity_ValidationErrors(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	// missing quantity
	w := app.do(t, http.MethodPost, "/cart/items/quantity", `{"key":"p1:no-size"}`, ck)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Fields)

	// malformed key
	w = app.do(t, http.MethodPost, "/cart/items/quantity", `{"key":"p1","quantity":3}`, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// over stock (p2 has 1 left)
	w = app.do(t, http.MethodPost, "/cart/items/quantity", `{"key":"p2:s","quantity":3}`, ck)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "1")
}

func TestRemoveLine_ThroughHandler(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	w := app.do(t, http.MethodPost, "/cart/items/remove", `{"key":"p2:s"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)

	page := decodePage(t, w)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "p1", page.Rows[0].ProductID)
}

func TestCheckout_NothingSelectedCode(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	w := app.do(t, http.MethodPost, "/checkout", "", ck)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nothing_selected", body.Code)
}

func TestCheckout_HappyPathThroughHandlers(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	// confirm a shipping address through the picker
	w := app.do(t, http.MethodGet, "/checkout/addresses", "", ck)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/checkout/addresses/select", `{"address_id":"addr-2"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/checkout/addresses/confirm", "", ck)
	require.Equal(t, http.StatusOK, w.Code)

	// select everything and submit
	w = app.do(t, http.MethodPost, "/cart/select-all", `{"checked":true}`, ck)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/checkout", "", ck)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Receipt view.OrderReceipt `json:"receipt"`
		Cart    view.CartPage     `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ord-1", body.Receipt.ID)
	assert.Equal(t, "$40.00", body.Receipt.Total)
	assert.Equal(t, 0, body.Cart.SelectedCount, "selection consumed by the order")
}

func TestCheckout_DirectSubmitUsesAutoConfirmedDefault(t *testing.T) {
	app := newTestApp(t)

	// Never open the picker: the first cart fetch seeds the address book and
	// the sole default (addr-1) auto-confirms.
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	ck := sessionCookie(t, first)

	require.Equal(t, http.StatusOK,
		app.do(t, http.MethodPost, "/cart/select-all", `{"checked":true}`, ck).Code)

	w := app.do(t, http.MethodPost, "/checkout", "", ck)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "addr-1", app.orderSvc.last().AddressID)
}

func TestCheckout_InsufficientStockPayload(t *testing.T) {
	app := newTestApp(t)
	app.orderSvc.err = &orders.OutOfStockError{Items: []orders.OutOfStockItem{
		{ProductID: "p2", SizeID: "s", Requested: 1, Available: 0},
	}}

	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)
	require.Equal(t, http.StatusOK,
		app.do(t, http.MethodPost, "/cart/select-all", `{"checked":true}`, ck).Code)

	w := app.do(t, http.MethodPost, "/checkout", "", ck)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Code  string            `json:"code"`
		Items []view.StockIssue `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_stock", body.Code)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 0, body.Items[0].Available)
}

func TestPanicRendersErrorJSON(t *testing.T) {
	app := newTestApp(t)
	app.router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := app.do(t, http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code, "a panic must never look like success")

	var body struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Something unexpected happened.", body.Error)
	assert.NotEmpty(t, body.RequestID)
}

func TestAddressPicker_CancelKeepsConfirmed(t *testing.T) {
	app := newTestApp(t)
	first := app.do(t, http.MethodGet, "/cart", "", nil)
	ck := sessionCookie(t, first)

	// addr-1 auto-confirms (sole default); open, pick addr-2, then cancel
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/checkout/addresses", "", ck).Code)
	require.Equal(t, http.StatusOK,
		app.do(t, http.MethodPost, "/checkout/addresses/select", `{"address_id":"addr-2"}`, ck).Code)
	require.Equal(t, http.StatusNoContent,
		app.do(t, http.MethodPost, "/checkout/addresses/cancel", "", ck).Code)

	w := app.do(t, http.MethodGet, "/checkout/addresses", "", ck)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Addresses []view.AddressOption `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Addresses, 2)
	assert.True(t, body.Addresses[0].Confirmed, "addr-1 still confirmed after cancel")
	assert.False(t, body.Addresses[1].Confirmed)
}

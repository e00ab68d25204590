package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"tupperstock/internal/handlers"
	"tupperstock/internal/middleware"
	"tupperstock/internal/models"
	"tupperstock/internal/repositories"
	"tupperstock/internal/services"
	"tupperstock/pkg/mailer"
	"tupperstock/pkg/shopify"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testJWTSecret   = "test_jwt_secret"
	testFeeProduct  = int64(999)
	adminUsername   = "admin"
	adminPassword   = "s3cret-pass"
	caixaVariantGID = "gid://shopify/ProductVariant/11"
)

func productNode(id, title, handle string) string {
	return `{
  "id": "gid://shopify/Product/` + id + `",
  "title": "` + title + `",
  "handle": "` + handle + `",
  "description": "",
  "descriptionHtml": "",
  "vendor": "Tupperware",
  "productType": "",
  "tags": [],
  "totalInventory": 4,
  "availableForSale": true,
  "priceRange": {"minVariantPrice": {"amount": "12.5", "currencyCode": "EUR"}},
  "compareAtPriceRange": {"minVariantPrice": {"amount": "0.0", "currencyCode": "EUR"}},
  "images": {"edges": []},
  "variants": {"edges": [{"node": {"id": "gid://shopify/ProductVariant/11", "title": "1L", "availableForSale": true, "quantityAvailable": 4, "price": {"amount": "12.5"}, "selectedOptions": [], "image": null}}]},
  "options": []
}`
}

// fakeShop answers the Storefront and Admin calls the handlers make.
type fakeShop struct {
	mu          sync.Mutex
	stock       map[string]int
	orderStatus int
	orderBody   string
	orders      []map[string]models.OrderDraft
	stockSets   []map[string]any
	down        bool
}

func newFakeShop() *fakeShop {
	return &fakeShop{
		stock:       map[string]int{"11": 4},
		orderStatus: http.StatusCreated,
		orderBody:   `{"order":{"id":99,"name":"#1001","total_price":"25.00","currency":"EUR","customer":{"id":5,"first_name":"Ana","last_name":"Silva","email":"ana@example.com","phone":"+351912345678"},"tags":"pickup","created_at":"2025-01-01T10:00:00Z"}}`,
	}
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	if f.down {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"errors":"unavailable"}`)
		return
	}

	path := r.URL.Path
	switch {
	case path == "/api/2025-01/graphql.json" && bytes.Contains(body, []byte("getProducts")):
		io.WriteString(w, `{"data":{"products":{"pageInfo":{"hasNextPage":false,"hasPreviousPage":false},"edges":[{"node":`+
			productNode("1", "Caixa Hermética", "caixa-hermetica")+`},{"node":`+
			productNode("999", "Taxa de Entrega", "taxa-de-entrega")+`}]}}}`)
	case path == "/api/2025-01/graphql.json" && bytes.Contains(body, []byte("getProductByHandle")):
		if bytes.Contains(body, []byte(`"caixa-hermetica"`)) {
			io.WriteString(w, `{"data":{"product":`+productNode("1", "Caixa Hermética", "caixa-hermetica")+`}}`)
			return
		}
		io.WriteString(w, `{"data":{"product":null}}`)
	case path == "/admin/api/2025-01/graphql.json":
		io.WriteString(w, `{"data":{"shop":{"name":"TupperStock","id":"gid://shopify/Shop/1"}}}`)
	case strings.HasPrefix(path, "/admin/api/2025-01/variants/"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/admin/api/2025-01/variants/"), ".json")
		qty, ok := f.stock[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"errors":"Not Found"}`)
			return
		}
		io.WriteString(w, `{"variant":{"id":`+id+`,"product_id":1,"title":"1L","inventory_quantity":`+itoa(qty)+`,"inventory_item_id":77}}`)
	case path == "/admin/api/2025-01/products/999/variants.json":
		io.WriteString(w, `{"variants":[{"id":500,"product_id":999,"title":"Default"}]}`)
	case path == "/admin/api/2025-01/customers/search.json":
		io.WriteString(w, `{"customers":[]}`)
	case path == "/admin/api/2025-01/inventory_levels/set.json":
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)
		f.stockSets = append(f.stockSets, payload)
		io.WriteString(w, `{"inventory_level":{}}`)
	case path == "/admin/api/2025-01/orders.json":
		var posted map[string]models.OrderDraft
		_ = json.Unmarshal(body, &posted)
		f.orders = append(f.orders, posted)
		w.WriteHeader(f.orderStatus)
		io.WriteString(w, f.orderBody)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"errors":"Not Found"}`)
	}
}

// with runs fn while holding the lock the server handler takes.
func (f *fakeShop) with(fn func(s *fakeShop)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// recordingMailer keeps every message instead of sending it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "email-" + itoa(len(m.sent)), nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	app    *fiber.App
	shop   *fakeShop
	mailer *recordingMailer
}

// setupApp wires the handlers against an in-memory SQLite database and a
// fake Shopify server.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	shop := newFakeShop()
	srv := httptest.NewServer(shop)
	t.Cleanup(srv.Close)

	client, err := shopify.NewClient(shopify.Config{
		BaseURL:               srv.URL,
		AdminAccessToken:      "admin-token",
		StorefrontAccessToken: "storefront-token",
	})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Cart{}, &models.CartItem{}, &models.User{}))

	variantRepo := repositories.NewShopifyVariantRepository(client, 108441469312)
	cartService := services.NewCartService(repositories.NewGORMCartRepository(db))
	catalogService := services.NewCatalogService(
		repositories.NewShopifyProductRepository(client),
		repositories.NewShopifyCollectionRepository(client),
		nil, time.Minute, testFeeProduct,
	)
	inventoryService := services.NewInventoryService(variantRepo, testFeeProduct)

	m := &recordingMailer{}
	notificationService := services.NewNotificationService(m, "TupperStock <encomendas@tupperstock.pt>")
	orderService := services.NewOrderService(
		variantRepo,
		repositories.NewShopifyCustomerRepository(client),
		repositories.NewShopifyOrderRepository(client),
		inventoryService,
		services.NewDirectPublisher(notificationService),
		cartService,
		services.CheckoutConfig{DeliveryFeeProductID: testFeeProduct, PickupAddress1: "Rua da Loja 1", PickupCity: "Lisboa", PickupZip: "1000-001"},
	)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), testJWTSecret)
	require.NoError(t, authService.EnsureAdmin(adminUsername, "admin@tupperstock.pt", adminPassword))

	app := fiber.New()
	handlers.NewHealthHandler(client).RegisterRoutes(app)

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewInventoryHandler(inventoryService).RegisterRoutes(apiV1, auth)
	handlers.NewNotificationHandler(notificationService).RegisterRoutes(apiV1, auth)

	return &testEnv{app: app, shop: shop, mailer: m}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, fiber.MethodPost, "/api/v1/auth/login", handlers.LoginRequest{Username: adminUsername, Password: adminPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func pickupOrder() models.OrderRequest {
	return models.OrderRequest{
		Items: []models.OrderItemRequest{
			{ID: "gid://shopify/Product/1", Name: "Caixa Hermética", Quantity: 2, VariantID: caixaVariantGID},
		},
		DeliveryOption: models.DeliveryPickup,
		PickupForm: &models.PickupForm{
			Name:  "Ana Silva",
			Email: "ana@example.com",
			Phone: "912345678",
			Date:  "2025-01-10",
			Time:  "15:00",
		},
	}
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, fiber.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "TupperStock", body["shop"])

	env.shop.with(func(s *fakeShop) { s.down = true })
	resp, body = env.do(t, fiber.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestCatalogRoutes(t *testing.T) {
	env := setupApp(t)

	t.Run("list hides the delivery fee product", func(t *testing.T) {
		resp, body := env.do(t, fiber.MethodGet, "/api/v1/products", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		products, ok := body["products"].([]any)
		require.True(t, ok)
		require.Len(t, products, 1)
		assert.Equal(t, "Caixa Hermética", products[0].(map[string]any)["name"])
	})

	t.Run("product by handle", func(t *testing.T) {
		resp, body := env.do(t, fiber.MethodGet, "/api/v1/products/caixa-hermetica", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "caixa-hermetica", body["handle"])
	})

	t.Run("page size out of range", func(t *testing.T) {
		for _, first := range []string{"0", "-3", "abc", "251"} {
			resp, body := env.do(t, fiber.MethodGet, "/api/v1/products?first="+first, nil, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, first)
			assert.Equal(t, "first must be between 1 and 250", body["error"], first)
		}
	})

	t.Run("related products survive a listing failure", func(t *testing.T) {
		env := setupApp(t)
		env.shop.with(func(s *fakeShop) { s.down = true })

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/products/related?productId=gid://shopify/Product/1", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("unknown handle", func(t *testing.T) {
		resp, _ := env.do(t, fiber.MethodGet, "/api/v1/products/nao-existe", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCartFlow(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, fiber.MethodPost, "/api/v1/carts", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartID, ok := body["id"].(string)
	require.True(t, ok)

	item := models.CartProduct{
		ID:                "gid://shopify/Product/1",
		Name:              "Caixa Hermética",
		VariantID:         caixaVariantGID,
		QuantityAvailable: 2,
	}
	for i := 0; i < 2; i++ {
		resp, _ = env.do(t, fiber.MethodPost, "/api/v1/carts/"+cartID+"/items", item, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = env.do(t, fiber.MethodPost, "/api/v1/carts/"+cartID+"/items", item, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotNil(t, body["cart"])

	itemPath := "/api/v1/carts/" + cartID + "/items/" + url.PathEscape(caixaVariantGID)
	resp, body = env.do(t, fiber.MethodPatch, itemPath, map[string]int{"quantity": 1}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), items[0].(map[string]any)["quantity"])

	resp, _ = env.do(t, fiber.MethodPatch, itemPath, map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, fiber.MethodDelete, itemPath, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	resp, _ = env.do(t, fiber.MethodGet, "/api/v1/carts/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrder(t *testing.T) {
	t.Run("success decrements stock and emails the customer", func(t *testing.T) {
		env := setupApp(t)

		resp, body := env.do(t, fiber.MethodPost, "/api/v1/orders", pickupOrder(), "")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, true, body["success"])
		order := body["order"].(map[string]any)
		assert.Equal(t, "#1001", order["name"])

		env.shop.with(func(s *fakeShop) {
			require.Len(t, s.orders, 1)
			draft := s.orders[0]["order"]
			assert.Equal(t, "pickup", draft.Tags)
			assert.Equal(t, "EUR", draft.Currency)
			require.NotNil(t, draft.Customer)
			assert.Equal(t, "+351912345678", draft.Customer.Phone)

			require.Len(t, s.stockSets, 1)
			assert.Equal(t, float64(2), s.stockSets[0]["available"])
		})
		assert.Equal(t, 1, env.mailer.count())
	})

	t.Run("delivery adds the fee line", func(t *testing.T) {
		env := setupApp(t)
		req := pickupOrder()
		req.DeliveryOption = models.DeliveryDelivery
		req.PickupForm = nil
		req.DeliveryForm = &models.DeliveryForm{
			Name: "Ana Silva", Email: "ana@example.com", Phone: "912345678",
			Street: "Rua das Flores", Number: "12", City: "Porto", PostalCode: "4000-001",
		}

		resp, _ := env.do(t, fiber.MethodPost, "/api/v1/orders", req, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		env.shop.with(func(s *fakeShop) {
			lines := s.orders[0]["order"].LineItems
			require.Len(t, lines, 2)
			assert.Equal(t, int64(500), lines[1].VariantID)
		})
	})

	t.Run("insufficient stock", func(t *testing.T) {
		env := setupApp(t)
		env.shop.with(func(s *fakeShop) { s.stock["11"] = 1 })

		resp, body := env.do(t, fiber.MethodPost, "/api/v1/orders", pickupOrder(), "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Insufficient stock", body["message"])
		assert.Equal(t, float64(2), body["requestedQuantity"])
		assert.Equal(t, float64(1), body["availableQuantity"])
		env.shop.with(func(s *fakeShop) { assert.Empty(t, s.orders) })
	})

	t.Run("missing items", func(t *testing.T) {
		env := setupApp(t)
		req := pickupOrder()
		req.Items = nil

		resp, body := env.do(t, fiber.MethodPost, "/api/v1/orders", req, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No items in order", body["error"])
	})

	t.Run("phone already used", func(t *testing.T) {
		env := setupApp(t)
		env.shop.with(func(s *fakeShop) {
			s.orderStatus = http.StatusUnprocessableEntity
			s.orderBody = `{"errors":{"customer":["phone has already been taken"]}}`
		})

		resp, body := env.do(t, fiber.MethodPost, "/api/v1/orders", pickupOrder(), "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Phone number already exists", body["details"])
		assert.Contains(t, body["error"], "Este número de telefone")
		env.shop.with(func(s *fakeShop) { assert.Empty(t, s.stockSets) })
	})

	t.Run("platform rejection", func(t *testing.T) {
		env := setupApp(t)
		env.shop.with(func(s *fakeShop) {
			s.orderStatus = http.StatusUnprocessableEntity
			s.orderBody = `{"errors":{"line_items":["is invalid"]}}`
		})

		resp, body := env.do(t, fiber.MethodPost, "/api/v1/orders", pickupOrder(), "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Failed to create order via REST API", body["message"])
		assert.Equal(t, float64(http.StatusUnprocessableEntity), body["platformStatus"])
		assert.NotNil(t, body["details"])
	})
}

func TestAdminRoutes(t *testing.T) {
	env := setupApp(t)
	adjust := services.AdjustRequest{VariantID: caixaVariantGID, Quantity: 3, Action: services.ActionIncrement}

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := env.do(t, fiber.MethodPost, "/api/v1/auth/login", handlers.LoginRequest{Username: adminUsername, Password: "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no token", func(t *testing.T) {
		resp, _ := env.do(t, fiber.MethodPost, "/api/v1/inventory/adjust", adjust, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token without admin role", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":  1,
			"username": "cliente",
			"exp":      time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testJWTSecret))
		require.NoError(t, err)

		resp, _ := env.do(t, fiber.MethodPost, "/api/v1/inventory/adjust", adjust, signed)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	token := env.login(t)

	t.Run("adjust inventory", func(t *testing.T) {
		resp, body := env.do(t, fiber.MethodPost, "/api/v1/inventory/adjust", adjust, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(4), body["previousInventory"])
		assert.Equal(t, float64(7), body["newInventory"])
	})

	t.Run("adjust unknown variant", func(t *testing.T) {
		req := adjust
		req.VariantID = "gid://shopify/ProductVariant/12"
		resp, body := env.do(t, fiber.MethodPost, "/api/v1/inventory/adjust", req, token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Failed to get variant details", body["error"])
	})

	t.Run("test email usage", func(t *testing.T) {
		resp, body := env.do(t, fiber.MethodGet, "/api/v1/notifications/test-email", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body)
	})

	t.Run("send test email", func(t *testing.T) {
		resp, body := env.do(t, fiber.MethodPost, "/api/v1/notifications/test-email", map[string]string{"email": "ana@example.com"}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "delivery", body["testType"])
		assert.Equal(t, "Test delivery email sent successfully", body["message"])
		assert.Equal(t, 1, env.mailer.count())

		resp, _ = env.do(t, fiber.MethodPost, "/api/v1/notifications/test-email", map[string]string{"email": "ana@example.com", "testType": "drone"}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

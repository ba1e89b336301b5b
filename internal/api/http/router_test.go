package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/commerce-admin/internal/api/http/handlers"
	"github.com/spec-kit/commerce-admin/internal/auth"
	"github.com/spec-kit/commerce-admin/internal/config"
	"github.com/spec-kit/commerce-admin/internal/events"
	"github.com/spec-kit/commerce-admin/internal/observability"
	"github.com/spec-kit/commerce-admin/internal/ratelimit"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/internal/service"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	app   *fiber.App
	mr    *miniredis.Miniredis
	users repository.UserRepository
}

func newTestServer(t *testing.T, requestLimit int, checks map[string]handlers.Pinger) testServer {
	t.Helper()
	logger := zap.NewNop()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewMemoryStore()
	users := repository.NewMemoryUserRepository(store)
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, client, logger, config.NotificationConfig{OutboxKey: "outbox"}).RegisterHandlers()

	userSvc := service.NewUserService(service.UserDependencies{
		UserRepo:   users,
		Dispatcher: dispatcher,
		Hasher:     auth.NewHasher(bcrypt.MinCost),
		Logger:     logger,
	})
	cartSvc := service.NewCartService(service.CartDependencies{
		CartRepo: repository.NewMemoryCartRepository(store),
		UserRepo: users,
		Logger:   logger,
	})
	discountSvc := service.NewDiscountService(repository.NewMemoryDiscountRepository(store), logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("commerce-admin", "test", checks),
		Users:     handlers.NewUsersHandler(userSvc),
		Carts:     handlers.NewCartsHandler(cartSvc),
		Discounts: handlers.NewDiscountsHandler(discountSvc),
		Metrics:   metrics,
		RequestLimit: RequestLimit{
			Limiter:  ratelimit.NewLimiter(client, "rl:", logger),
			Requests: requestLimit,
			Window:   time.Minute,
		},
	})
	return testServer{app: app, mr: mr, users: users}
}

func (s testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func dataMessage(body map[string]any) any {
	data, _ := body["data"].(map[string]any)
	return data["message"]
}

func errorField(body map[string]any, field string) any {
	e, _ := body["error"].(map[string]any)
	return e[field]
}

func TestUsersAPI_LifecycleScenario(t *testing.T) {
	s := newTestServer(t, 10, nil)
	ctx := context.Background()

	status, body := s.do(t, fiber.MethodPost, "/users/request", map[string]string{"name": "Alice", "email": "a@x.com"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, service.MsgRequestSuccessfully, dataMessage(body))

	status, body = s.do(t, fiber.MethodPost, "/users/request", map[string]string{"name": "Alice", "email": "A@X.com"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, service.MsgEmailRequesting, errorField(body, "message"))

	alice, err := s.users.FindOne(ctx, repository.UserLookup{Email: "a@x.com"})
	require.NoError(t, err)

	status, body = s.do(t, fiber.MethodPost, "/users/"+alice.ID+"/approve", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, service.MsgUserApproved, dataMessage(body))

	status, body = s.do(t, fiber.MethodPost, "/users/"+alice.ID+"/approve", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, service.MsgRequestNotExisted, errorField(body, "message"))

	items, err := s.mr.List("outbox")
	require.NoError(t, err)
	require.Len(t, items, 1)

	alice, err = s.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	code := *alice.VerificationCode

	status, _ = s.do(t, fiber.MethodPost, "/users/activate", map[string]string{"verificationCode": code, "password": "newpass"})
	require.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, fiber.MethodPost, "/users/activate", map[string]string{"verificationCode": code, "password": "again1"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", errorField(body, "code"))
	assert.Equal(t, service.MsgUserActivated, errorField(body, "message"))
}

func TestUsersAPI_CreateGetListUpdateDelete(t *testing.T) {
	s := newTestServer(t, 10, nil)

	status, body := s.do(t, fiber.MethodPost, "/users", map[string]string{"name": "Manny", "email": "m@x.com", "role": "manager"})
	require.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]any)
	id := data["id"].(string)
	assert.Equal(t, true, data["isManager"])
	assert.Equal(t, false, data["isSuperuser"])
	assert.Equal(t, "IN_ACTIVE", data["status"])
	assert.NotEmpty(t, data["verificationCode"])
	assert.NotContains(t, data, "passwordHash")

	status, body = s.do(t, fiber.MethodGet, "/users/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "m@x.com", body["data"].(map[string]any)["email"])

	status, body = s.do(t, fiber.MethodGet, "/users?take=1&search=M@X&order=asc&sortBy=name", nil)
	require.Equal(t, fiber.StatusOK, status)
	meta := body["metadata"].(map[string]any)
	assert.Equal(t, float64(1), meta["total"])
	assert.Equal(t, "ASC", meta["order"])
	assert.Len(t, body["data"], 1)

	status, body = s.do(t, fiber.MethodGet, "/users?page=4611686018427387904", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorField(body, "code"))

	status, body = s.do(t, fiber.MethodGet, "/users?sortBy=secret", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorField(body, "code"))

	status, body = s.do(t, fiber.MethodPatch, "/users/"+id, map[string]string{"role": "USER"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["data"].(map[string]any)["isManager"])

	status, body = s.do(t, fiber.MethodDelete, "/users/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, service.MsgDeleteUserSuccessful, dataMessage(body))

	status, body = s.do(t, fiber.MethodGet, "/users/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, service.MsgUserNotExistedPlain, errorField(body, "message"))
}

func TestUsersAPI_ValidationErrors(t *testing.T) {
	s := newTestServer(t, 10, nil)

	status, body := s.do(t, fiber.MethodPost, "/users", map[string]string{"name": "X", "email": "nope", "role": "USER"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorField(body, "code"))
	details := errorField(body, "details").(map[string]any)
	assert.Contains(t, details, "email")

	status, body = s.do(t, fiber.MethodPost, "/users", map[string]string{"name": "X", "email": "x@x.com", "role": "owner"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, service.MsgRoleInvalid, errorField(body, "message"))
}

func TestUsersAPI_RequestIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2, nil)

	for i, email := range []string{"a@x.com", "b@x.com"} {
		status, _ := s.do(t, fiber.MethodPost, "/users/request", map[string]string{"name": "N", "email": email})
		require.Equal(t, fiber.StatusCreated, status, "request %d", i)
	}

	status, body := s.do(t, fiber.MethodPost, "/users/request", map[string]string{"name": "N", "email": "c@x.com"})
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errorField(body, "code"))
}

func TestCartsAndDiscountsAPI(t *testing.T) {
	s := newTestServer(t, 10, nil)

	_, body := s.do(t, fiber.MethodPost, "/users", map[string]string{"name": "Buyer", "email": "buyer@x.com", "role": "USER"})
	userID := body["data"].(map[string]any)["id"].(string)

	status, body := s.do(t, fiber.MethodPost, "/carts", map[string]string{"userId": userID})
	require.Equal(t, fiber.StatusCreated, status)
	cartID := body["data"].(map[string]any)["id"].(string)

	status, body = s.do(t, fiber.MethodPut, "/carts/"+cartID+"/products", map[string]any{
		"products": []map[string]any{{"productId": "p1", "quantity": 1}, {"productId": "p1", "quantity": 2}},
	})
	require.Equal(t, fiber.StatusOK, status)
	products := body["data"].(map[string]any)["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, float64(3), products[0].(map[string]any)["quantity"])

	status, _ = s.do(t, fiber.MethodPatch, "/carts/"+cartID+"/status", map[string]string{"status": "ORDERED"})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, fiber.MethodPatch, "/carts/"+cartID+"/status", map[string]string{"status": "CANCELED"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodGet, "/carts?userId="+userID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["metadata"].(map[string]any)["total"])

	status, _ = s.do(t, fiber.MethodPost, "/discounts", map[string]any{"code": "save10", "percent": 10})
	require.Equal(t, fiber.StatusCreated, status)
	status, body = s.do(t, fiber.MethodPost, "/discounts", map[string]any{"code": "SAVE10", "percent": 5})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, service.MsgDiscountExisted, errorField(body, "message"))

	status, body = s.do(t, fiber.MethodGet, "/discounts?active=true", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 10, map[string]handlers.Pinger{"postgres": okPinger{}, "redis": failingPinger{}})

	status, body := s.do(t, fiber.MethodGet, "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, fiber.MethodGet, "/health/ready", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	details := errorField(body, "details").(map[string]any)
	assert.Equal(t, "ok", details["postgres"])
	assert.Equal(t, "down", details["redis"])

	status, _ = s.do(t, fiber.MethodGet, "/no-such-route", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

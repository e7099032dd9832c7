package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quillstore/quill/internal/application/fulfillment/usecases"
	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/domain/product"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
	"github.com/quillstore/quill/internal/infrastructure/repository"
	"github.com/quillstore/quill/internal/infrastructure/webhook"
	"github.com/quillstore/quill/internal/shared/logger"
)

const testSigningSecret = "test-signing-secret"

type webhookTestEnv struct {
	engine      *gin.Engine
	db          *gorm.DB
	verifier    *webhook.Verifier
	accountRepo account.Repository
	productRepo product.Repository
	buyer       *account.Account
	productA    *product.Product
	productB    *product.Product
}

// setupWebhookTest wires the real pipeline end to end: sqlite-backed
// repositories, the real HMAC verifier, and the fulfillment use case
// mounted on a Gin engine.
func setupWebhookTest(t *testing.T) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AccountModel{},
		&models.ProductModel{},
		&models.EntitlementModel{},
	))

	log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))

	accountRepo := repository.NewAccountRepository(db, log)
	productRepo := repository.NewProductRepository(db, log)
	entitlementRepo := repository.NewEntitlementRepository(db, log)

	verifier, err := webhook.NewVerifier(testSigningSecret)
	require.NoError(t, err)

	processUC := usecases.NewProcessOrderEventUseCase(accountRepo, productRepo, entitlementRepo, log)
	handler := NewWebhookHandler(verifier, processUC, 25*time.Second, log)

	engine := gin.New()
	engine.POST("/webhooks/lemonsqueezy", handler.HandleOrderEvent)

	ctx := context.Background()

	buyer, err := account.NewProvisioned("acct_buyer1", "buyer@example.com", "Buyer One")
	require.NoError(t, err)
	require.NoError(t, accountRepo.Create(ctx, buyer))

	productA, err := product.NewProduct("Midnight Atlas", "midnight-atlas", "Aster", "An atlas.", 1500, "USD")
	require.NoError(t, err)
	require.NoError(t, productRepo.Create(ctx, productA))

	productB, err := product.NewProduct("Harbor Songs", "harbor-songs", "Aster", "A songbook.", 900, "USD")
	require.NoError(t, err)
	require.NoError(t, productRepo.Create(ctx, productB))

	return &webhookTestEnv{
		engine:      engine,
		db:          db,
		verifier:    verifier,
		accountRepo: accountRepo,
		productRepo: productRepo,
		buyer:       buyer,
		productA:    productA,
		productB:    productB,
	}
}

func (env *webhookTestEnv) orderCreatedBody(orderRef string) []byte {
	payload := map[string]any{
		"meta": map[string]any{
			"event_name": "order_created",
			"custom_data": map[string]any{
				"user_id":     env.buyer.SID(),
				"product_ids": fmt.Sprintf("%s,%s", env.productA.SID(), env.productB.SID()),
			},
		},
		"data": map[string]any{
			"id": orderRef,
			"attributes": map[string]any{
				"user_email": env.buyer.Email(),
				"status":     "paid",
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func (env *webhookTestEnv) post(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lemonsqueezy", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func (env *webhookTestEnv) entitlementCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.EntitlementModel{}).Count(&count).Error)
	return count
}

func decodeWebhookData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestWebhook_OrderCreatedGrantsAndRedelivery(t *testing.T) {
	env := setupWebhookTest(t)

	body := env.orderCreatedBody("order-9001")

	w := env.post(body, env.verifier.Sign(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeWebhookData(t, w)
	assert.Equal(t, float64(2), data["granted"])
	assert.Equal(t, float64(0), data["already_owned"])
	assert.Equal(t, int64(2), env.entitlementCount(t))

	// Provider redelivery of the same event: no new rows, still 200.
	w = env.post(body, env.verifier.Sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	data = decodeWebhookData(t, w)
	assert.Equal(t, float64(0), data["granted"])
	assert.Equal(t, float64(2), data["already_owned"])
	assert.Equal(t, int64(2), env.entitlementCount(t))
}

func TestWebhook_InvalidSignature(t *testing.T) {
	env := setupWebhookTest(t)

	body := env.orderCreatedBody("order-9002")

	t.Run("wrong signature", func(t *testing.T) {
		w := env.post(body, "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, int64(0), env.entitlementCount(t))
	})

	t.Run("missing signature", func(t *testing.T) {
		w := env.post(body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("signature over different body", func(t *testing.T) {
		other := env.orderCreatedBody("order-9003")
		w := env.post(body, env.verifier.Sign(other))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWebhook_MalformedPayload(t *testing.T) {
	env := setupWebhookTest(t)

	body := []byte(`{"meta": not-json`)

	// Valid signature over garbage: verification passes, parsing fails.
	w := env.post(body, env.verifier.Sign(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), env.entitlementCount(t))
}

func TestWebhook_IgnoredEventAcknowledged(t *testing.T) {
	env := setupWebhookTest(t)

	body := []byte(`{"meta":{"event_name":"subscription_created"},"data":{"id":"order-x"}}`)

	w := env.post(body, env.verifier.Sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), env.entitlementCount(t))
}

func TestWebhook_RefundFlow(t *testing.T) {
	env := setupWebhookTest(t)

	created := env.orderCreatedBody("order-9100")
	w := env.post(created, env.verifier.Sign(created))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(2), env.entitlementCount(t))

	refund := map[string]any{
		"meta": map[string]any{"event_name": "order_refunded"},
		"data": map[string]any{
			"id": "order-9100",
			"attributes": map[string]any{
				"user_email": env.buyer.Email(),
				"status":     "refunded",
			},
		},
	}
	body, _ := json.Marshal(refund)

	w = env.post(body, env.verifier.Sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeWebhookData(t, w)
	assert.Equal(t, float64(2), data["refunded"])

	var refunded int64
	require.NoError(t, env.db.Model(&models.EntitlementModel{}).
		Where("status = ?", "refunded").Count(&refunded).Error)
	assert.Equal(t, int64(2), refunded)
}

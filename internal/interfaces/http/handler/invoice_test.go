package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingapp "github.com/villahub/backend/internal/application/billing"
	"github.com/villahub/backend/internal/domain/community"
	"github.com/villahub/backend/internal/interfaces/http/dto"
)

type invoiceTestEnv struct {
	handler     *InvoiceHandler
	tenant      *community.Tenant
	invoiceRepo *fakeInvoiceRepo
	residents   *fakeResidentRepo
	units       *fakeUnitRepo
}

func newInvoiceTestEnv(t *testing.T, residentCount int) *invoiceTestEnv {
	t.Helper()

	tenant, err := community.NewTenant("Sunny Villa", "")
	require.NoError(t, err)

	units := newFakeUnitRepo()
	residents := newFakeResidentRepo(units)
	for i := 0; i < residentCount; i++ {
		unit, err := community.NewUnit(tenant.ID, string(rune('1'+i))+"01")
		require.NoError(t, err)
		require.NoError(t, units.Save(nil, unit))

		resident, err := community.NewResident(tenant.ID, unit.ID, "Resident "+unit.RoomNumber, "")
		require.NoError(t, err)
		require.NoError(t, residents.Save(nil, resident))
	}

	invoiceRepo := newFakeInvoiceRepo()
	svc := billingapp.NewInvoiceService(invoiceRepo, newFakeTenantRepo(tenant), residents, &fakePublisher{}, nil)

	return &invoiceTestEnv{
		handler:     NewInvoiceHandler(svc),
		tenant:      tenant,
		invoiceRepo: invoiceRepo,
		residents:   residents,
		units:       units,
	}
}

func (e *invoiceTestEnv) postInvoice(t *testing.T, req CreateInvoiceRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/tenants/x/invoices", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: e.tenant.ID.String()}}

	e.handler.Create(c)
	return w
}

func TestInvoiceHandler_Create_FixedPerUnit(t *testing.T) {
	env := newInvoiceTestEnv(t, 3)

	perUnit := int64(150000)
	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "FIXED",
		Memo:          "March maintenance fee",
		PerUnitAmount: &perUnit,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	invoice := data["Invoice"].(map[string]interface{})
	assert.Equal(t, "2026-03", invoice["billing_month"])
	assert.Equal(t, float64(450000), invoice["total_amount"])

	payments := data["Payments"].([]interface{})
	assert.Len(t, payments, 3)
}

func TestInvoiceHandler_Create_Variable(t *testing.T) {
	env := newInvoiceTestEnv(t, 3)

	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth: "2026-03",
		Type:         "VARIABLE",
		Items: []InvoiceItemRequest{
			{Label: "Electricity", Amount: 90000},
			{Label: "Water", Amount: 30000},
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	invoice := data["Invoice"].(map[string]interface{})
	assert.Equal(t, float64(120000), invoice["total_amount"])
}

func TestInvoiceHandler_Create_InvalidType(t *testing.T) {
	env := newInvoiceTestEnv(t, 1)

	perUnit := int64(1000)
	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "HOURLY",
		PerUnitAmount: &perUnit,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Create_BadBillingMonth(t *testing.T) {
	env := newInvoiceTestEnv(t, 1)

	perUnit := int64(1000)
	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "March 2026",
		Type:          "FIXED",
		PerUnitAmount: &perUnit,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Create_NoResidents(t *testing.T) {
	env := newInvoiceTestEnv(t, 0)

	perUnit := int64(1000)
	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "FIXED",
		PerUnitAmount: &perUnit,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Create_InvalidOverrideUnitID(t *testing.T) {
	env := newInvoiceTestEnv(t, 2)

	w := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth: "2026-03",
		Type:         "VARIABLE",
		Items:        []InvoiceItemRequest{{Label: "Repairs", Amount: 40000}},
		Overrides:    []InvoiceOverrideRequest{{UnitID: "nope"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_GetByID_WithPayments(t *testing.T) {
	env := newInvoiceTestEnv(t, 2)

	perUnit := int64(100000)
	created := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "FIXED",
		PerUnitAmount: &perUnit,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp dto.Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))
	invoiceID := createResp.Data.(map[string]interface{})["Invoice"].(map[string]interface{})["id"].(string)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tenants/x/invoices/y", nil)
	c.Params = gin.Params{
		{Key: "id", Value: env.tenant.ID.String()},
		{Key: "invoiceId", Value: invoiceID},
	}

	env.handler.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	payments := resp.Data.(map[string]interface{})["Payments"].([]interface{})
	assert.Len(t, payments, 2)
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	env := newInvoiceTestEnv(t, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tenants/x/invoices/y", nil)
	c.Params = gin.Params{
		{Key: "id", Value: env.tenant.ID.String()},
		{Key: "invoiceId", Value: uuid.New().String()},
	}

	env.handler.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_List_Success(t *testing.T) {
	env := newInvoiceTestEnv(t, 2)

	perUnit := int64(100000)
	for _, month := range []string{"2026-01", "2026-02"} {
		w := env.postInvoice(t, CreateInvoiceRequest{
			BillingMonth:  month,
			Type:          "FIXED",
			PerUnitAmount: &perUnit,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tenants/x/invoices?page=1&page_size=10", nil)
	c.Params = gin.Params{{Key: "id", Value: env.tenant.ID.String()}}

	env.handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestInvoiceHandler_Update_Success(t *testing.T) {
	env := newInvoiceTestEnv(t, 2)

	perUnit := int64(100000)
	created := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "FIXED",
		PerUnitAmount: &perUnit,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp dto.Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))
	invoiceID := createResp.Data.(map[string]interface{})["Invoice"].(map[string]interface{})["id"].(string)

	memo := "Corrected memo"
	body, _ := json.Marshal(UpdateInvoiceRequest{Memo: &memo})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/tenants/x/invoices/y", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{
		{Key: "id", Value: env.tenant.ID.String()},
		{Key: "invoiceId", Value: invoiceID},
	}

	env.handler.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Corrected memo", data["memo"])
}

func TestInvoiceHandler_Update_BlockedByCompletedPayment(t *testing.T) {
	env := newInvoiceTestEnv(t, 2)

	perUnit := int64(100000)
	created := env.postInvoice(t, CreateInvoiceRequest{
		BillingMonth:  "2026-03",
		Type:          "FIXED",
		PerUnitAmount: &perUnit,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp dto.Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))
	invoiceID := createResp.Data.(map[string]interface{})["Invoice"].(map[string]interface{})["id"].(string)
	env.invoiceRepo.hasCompleted[uuid.MustParse(invoiceID)] = true

	memo := "Too late"
	body, _ := json.Marshal(UpdateInvoiceRequest{Memo: &memo})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/tenants/x/invoices/y", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{
		{Key: "id", Value: env.tenant.ID.String()},
		{Key: "invoiceId", Value: invoiceID},
	}

	env.handler.Update(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvariantViolation, resp.Error.Code)
}

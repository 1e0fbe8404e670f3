package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaccount "github.com/cshub/backend/internal/application/account"
	"github.com/cshub/backend/internal/application/dashboard"
	appevent "github.com/cshub/backend/internal/application/event"
	importapp "github.com/cshub/backend/internal/application/import"
	appledger "github.com/cshub/backend/internal/application/ledger"
	apppipeline "github.com/cshub/backend/internal/application/pipeline"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/user"
	"github.com/cshub/backend/internal/infrastructure/config"
	"github.com/cshub/backend/internal/infrastructure/persistence"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string              `json:"code"`
		Message   string              `json:"message"`
		RequestID string              `json:"request_id"`
		Details   []shared.FieldError `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

type testAPI struct {
	engine *gin.Engine
	db     *persistence.Database
	users  *persistence.GormUserRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	customers := persistence.NewGormCustomerRepository(db.DB)
	users := persistence.NewGormUserRepository(db.DB)
	dispatcher := appevent.NewDispatcher(nil, zap.NewNop())

	accounts := appaccount.NewAccountService(customers, persistence.NewGormChurnRecordRepository(db.DB),
		persistence.NewGormAccountTransactionScope(db.DB), dispatcher)
	risks := appaccount.NewRiskService(persistence.NewGormRiskRepository(db.DB), customers, dispatcher)
	opps := apppipeline.NewOpportunityService(persistence.NewGormOpportunityRepository(db.DB), customers,
		persistence.NewGormPipelineTransactionScope(db.DB), dispatcher)
	invoices := appledger.NewInvoiceService(persistence.NewGormInvoiceRepository(db.DB), customers, dispatcher)

	ch := NewCustomerHandler(accounts)
	ih := NewCustomerImportHandler(importapp.NewCustomerImportService(accounts, users), 1024)
	inv := NewInvoiceHandler(invoices)
	rh := NewRiskHandler(risks)
	oh := NewOpportunityHandler(opps)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor(middleware.ActorConfig{}))
	engine.GET("/health", NewHealthHandler(db, "test").Health)

	api := engine.Group("/api/v1")
	api.POST("/customers", ch.Create)
	api.GET("/customers", ch.List)
	api.POST("/customers/bulk-upload", ih.BulkUpload)
	api.GET("/customers/:id", ch.Get)
	api.PUT("/customers/:id", ch.Update)
	api.PUT("/customers/:id/status", ch.ChangeStatus)
	api.PUT("/customers/:id/churn", ch.Churn)
	api.GET("/customers/:id/churn", ch.GetChurn)
	api.PUT("/customers/:id/health", ch.ChangeHealth)
	api.GET("/customers/:id/invoices", inv.List)
	api.POST("/customers/:id/invoices", inv.Create)
	api.GET("/customers/:id/invoices/summary", inv.Summary)
	api.GET("/customers/:id/invoices/:invoiceId", inv.Get)
	api.DELETE("/customers/:id/invoices/:invoiceId", inv.Delete)
	api.POST("/risks", rh.Create)
	api.GET("/risks", rh.List)
	api.POST("/opportunities", oh.Create)
	api.GET("/opportunities/:id", oh.Get)
	api.PUT("/opportunities/:id/stage", oh.MoveStage)
	api.GET("/opportunities/:id/history", oh.History)
	api.GET("/dashboard/stats", NewDashboardHandler(dashboard.NewService(persistence.NewGormStatsQuery(db.DB), nil, 0)).Stats)
	api.GET("/users", NewUserHandler(users).List)

	return &testAPI{engine: engine, db: db, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(t, req)
}

func (a *testAPI) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) createCustomer(t *testing.T, name string) string {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/v1/customers", `{"company_name":"`+name+`","arr":"120000"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c.ID
}

func TestCustomerHandler_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)
	id := api.createCustomer(t, "Acme Corp")

	w, env := api.do(t, http.MethodGet, "/api/v1/customers/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var c map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "Acme Corp", c["company_name"])
	assert.Equal(t, "Onboarding", c["account_status"])
	assert.Equal(t, "Healthy", c["health_status"])
}

func TestCustomerHandler_Errors(t *testing.T) {
	api := newTestAPI(t)
	api.createCustomer(t, "Acme Corp")

	t.Run("unknown customer is 404", func(t *testing.T) {
		w, env := api.do(t, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
		assert.NotEmpty(t, env.Error.RequestID)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		w, env := api.do(t, http.MethodGet, "/api/v1/customers/42", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
	})

	t.Run("every invalid field is reported", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/api/v1/customers", `{"company_name":"  ","health_score":150}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_VALIDATION", env.Error.Code)

		fields := make([]string, 0, len(env.Error.Details))
		for _, d := range env.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.Contains(t, fields, "company_name")
		assert.Contains(t, fields, "health_score")
	})

	t.Run("malformed json", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/api/v1/customers", `{"company_name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_JSON", env.Error.Code)
	})

	t.Run("duplicate company name is 409", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/api/v1/customers", `{"company_name":"Acme Corp"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_ALREADY_EXISTS", env.Error.Code)
	})
}

func TestCustomerHandler_List(t *testing.T) {
	api := newTestAPI(t)
	api.createCustomer(t, "Acme Corp")
	api.createCustomer(t, "Globex")

	w, env := api.do(t, http.MethodGet, "/api/v1/customers?page_size=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Total)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)

	w, _ = api.do(t, http.MethodGet, "/api/v1/customers?order_dir=sideways", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerHandler_Churn(t *testing.T) {
	api := newTestAPI(t)
	id := api.createCustomer(t, "Acme Corp")

	t.Run("churn without churn_data is rejected", func(t *testing.T) {
		w, env := api.do(t, http.MethodPut, "/api/v1/customers/"+id+"/status", `{"account_status":"Churn"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "churn_data", env.Error.Details[0].Field)

		_, env = api.do(t, http.MethodGet, "/api/v1/customers/"+id, "")
		assert.Contains(t, string(env.Data), `"account_status":"Onboarding"`)
	})

	t.Run("churn endpoint refuses another status", func(t *testing.T) {
		w, _ := api.do(t, http.MethodPut, "/api/v1/customers/"+id+"/churn", `{"account_status":"Live"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("churn records the reason", func(t *testing.T) {
		body := `{"churn_data":{
			"churn_type":"Logo Churn",
			"effective_churn_date":"2026-06-30T00:00:00Z",
			"revenue_impact":"120000",
			"primary_reason":"Price",
			"could_have_been_prevented":"Uncertain",
			"owner_responsible":"CS"}}`
		w, env := api.do(t, http.MethodPut, "/api/v1/customers/"+id+"/churn", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, string(env.Data), `"account_status":"Churn"`)

		w, env = api.do(t, http.MethodGet, "/api/v1/customers/"+id+"/churn", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"primary_reason":"Price"`)
	})

	t.Run("churned account cannot move", func(t *testing.T) {
		w, _ := api.do(t, http.MethodPut, "/api/v1/customers/"+id+"/status", `{"account_status":"Live"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCustomerHandler_ChangeHealthRequiresRisk(t *testing.T) {
	api := newTestAPI(t)
	id := api.createCustomer(t, "Acme Corp")

	w, env := api.do(t, http.MethodPut, "/api/v1/customers/"+id+"/health", `{"health_status":"At Risk"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/bulk-upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCustomerImportHandler_BulkUpload(t *testing.T) {
	api := newTestAPI(t)

	t.Run("reports row failures and keeps going", func(t *testing.T) {
		csv := "company_name,arr\nAcme,100\nGlobex,200\n,300\n"
		w, env := api.serve(t, uploadRequest(t, "customers.csv", csv))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result importapp.Result
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 1, result.ErrorCount)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Contains(t, result.Errors[0].Error, "company_name")
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/bulk-upload", nil)
		w, env := api.serve(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file", env.Error.Details[0].Field)
	})

	t.Run("wrong extension", func(t *testing.T) {
		w, _ := api.serve(t, uploadRequest(t, "customers.xlsx", "company_name\nAcme\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("file over the limit", func(t *testing.T) {
		w, _ := api.serve(t, uploadRequest(t, "big.csv", "company_name\n"+strings.Repeat("x", 2048)+"\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	customerID := api.createCustomer(t, "Acme Corp")
	base := "/api/v1/customers/" + customerID + "/invoices"

	w, env := api.do(t, http.MethodPost, base, `{
		"invoice_number":"INV-001",
		"invoice_date":"2026-01-01T00:00:00Z",
		"invoice_amount":"1000",
		"paid_amount":"250",
		"due_date":"2026-01-31T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv struct {
		ID          string `json:"id"`
		Outstanding string `json:"outstanding"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, "750", inv.Outstanding)

	w, env = api.do(t, http.MethodGet, base+"/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		InvoiceCount  int    `json:"invoice_count"`
		TotalInvoiced string `json:"total_invoiced"`
		TotalPaid     string `json:"total_paid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.InvoiceCount)
	assert.Equal(t, "1000", summary.TotalInvoiced)
	assert.Equal(t, "250", summary.TotalPaid)

	w, _ = api.do(t, http.MethodGet, base+"/"+inv.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/customers/"+uuid.NewString()+"/invoices/"+inv.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodDelete, base+"/"+inv.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(t, http.MethodGet, base+"/"+inv.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRiskHandler_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	customerID := api.createCustomer(t, "Acme Corp")
	risk := func(customer string) string {
		return `{"customer_id":"` + customer + `","title":"Champion left",` +
			`"category":"Relationship Risks","subcategory":"Champion turnover","severity":"High"}`
	}

	w, _ := api.do(t, http.MethodPost, "/api/v1/risks", risk(uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/v1/risks", `{"title":"Champion left"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/v1/risks", risk(customerID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := api.do(t, http.MethodGet, "/api/v1/risks?customer_id="+customerID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	w, env = api.do(t, http.MethodGet, "/api/v1/risks?customer_id="+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestOpportunityHandler_MoveStage(t *testing.T) {
	api := newTestAPI(t)
	customerID := api.createCustomer(t, "Acme Corp")

	w, env := api.do(t, http.MethodPost, "/api/v1/opportunities", `{"customer_id":"`+customerID+`","title":"Seat expansion","value":"50000"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opp struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &opp))
	assert.Equal(t, "Identified", opp.Stage)

	w, env = api.do(t, http.MethodPut, "/api/v1/opportunities/"+opp.ID+"/stage", `{"stage":"Qualified"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"stage":"Qualified"`)

	w, env = api.do(t, http.MethodGet, "/api/v1/opportunities/"+opp.ID+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, "Identified", last.From)
	assert.Equal(t, "Qualified", last.To)

	w, _ = api.do(t, http.MethodPut, "/api/v1/opportunities/"+opp.ID+"/stage", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardHandler_Stats(t *testing.T) {
	api := newTestAPI(t)
	api.createCustomer(t, "Acme Corp")

	w, env := api.do(t, http.MethodGet, "/api/v1/dashboard/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalCustomers int64 `json:"total_customers"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalCustomers)
}

func TestUserHandler_List(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	for _, u := range []*user.User{
		{BaseEntity: shared.NewBaseEntity(), Email: "csm@cshub.test", FullName: "Casey", Role: user.RoleCSM, IsActive: true},
		{BaseEntity: shared.NewBaseEntity(), Email: "am@cshub.test", FullName: "Avery", Role: user.RoleAM, IsActive: true},
		{BaseEntity: shared.NewBaseEntity(), Email: "old@cshub.test", FullName: "Former", Role: user.RoleCSM, IsActive: false},
	} {
		require.NoError(t, api.users.Save(ctx, u))
	}

	w, env := api.do(t, http.MethodGet, "/api/v1/users?role=CSM", "")
	require.Equal(t, http.StatusOK, w.Code)
	var users []UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "csm@cshub.test", users[0].Email)

	_, env = api.do(t, http.MethodGet, "/api/v1/users?role=CSM&all=true", "")
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)

	w, _ = api.do(t, http.MethodGet, "/api/v1/users?role=JANITOR", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type downDB struct{}

func (downDB) PingContext(context.Context) error { return assert.AnError }
func (downDB) Stats() (persistence.ConnectionStats, error) {
	return persistence.ConnectionStats{}, nil
}

func TestHealthHandler(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"database":"ok"`)
	assert.Contains(t, string(env.Data), `"pool"`)

	engine := gin.New()
	engine.GET("/health", NewHealthHandler(downDB{}, "test").Health)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"ERR_SERVICE_UNAVAILABLE"`)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"AccountStatus": "account_status",
		"CustomerID":    "customer_id",
		"ARR":           "arr",
		"Stage":         "stage",
	}
	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

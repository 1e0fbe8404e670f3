package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaccount "github.com/cshub/backend/internal/application/account"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/interfaces/http/dto"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	accounts *appaccount.AccountService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(accounts *appaccount.AccountService) *CustomerHandler {
	return &CustomerHandler{accounts: accounts}
}

// churnRequest is the body of PUT /customers/:id/churn. account_status may
// be omitted; when present it must be Churn.
type churnRequest struct {
	AccountStatus account.AccountStatus `json:"account_status"`
	ChurnData     *account.ChurnInput   `json:"churn_data"`
}

// Create godoc
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body account.CustomerInput true "Customer"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var in account.CustomerInput
	if !h.BindJSON(c, &in) {
		return
	}
	resp, err := h.accounts.CreateCustomer(c.Request.Context(), in, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search         query string false "Company name contains"
// @Param        account_status query string false "Account status"
// @Param        health_status  query string false "Health status"
// @Param        csm_owner_id   query string false "CSM owner"
// @Param        page           query int    false "Page" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var q appaccount.CustomerListFilter
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.accounts.ListCustomers(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.accounts.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update customer fields
// @Description  Partial update. Status fields are moved through /status and /health.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Customer ID"
// @Param        request body account.CustomerPatch true "Fields to change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var patch account.CustomerPatch
	if !h.BindJSON(c, &patch) {
		return
	}
	resp, err := h.accounts.UpdateCustomer(c.Request.Context(), id, patch, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus godoc
// @Summary      Change account status
// @Description  Moving to Churn requires churn_data and records the churn atomically.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                                   true "Customer ID"
// @Param        request body appaccount.ChangeAccountStatusRequest true "Target status"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers/{id}/status [put]
func (h *CustomerHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req appaccount.ChangeAccountStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.changeStatus(c, id, req)
}

// Churn godoc
// @Summary      Churn a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers/{id}/churn [put]
func (h *CustomerHandler) Churn(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req churnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.AccountStatus != "" && !req.AccountStatus.IsChurned() {
		h.HandleError(c, shared.NewValidationError("account_status", "account_status must be Churn"))
		return
	}
	h.changeStatus(c, id, appaccount.ChangeAccountStatusRequest{
		AccountStatus: account.AccountStatusChurn,
		ChurnData:     req.ChurnData,
	})
}

func (h *CustomerHandler) changeStatus(c *gin.Context, id uuid.UUID, req appaccount.ChangeAccountStatusRequest) {
	resp, err := h.accounts.ChangeAccountStatus(c.Request.Context(), id, req, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetChurn godoc
// @Summary      Get the churn record of a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id}/churn [get]
func (h *CustomerHandler) GetChurn(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.accounts.GetChurnRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeHealth godoc
// @Summary      Change health status
// @Description  Degrading health requires a risk, created in the same transaction.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                                  true "Customer ID"
// @Param        request body appaccount.ChangeHealthStatusRequest true "Target health"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /customers/{id}/health [put]
func (h *CustomerHandler) ChangeHealth(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req appaccount.ChangeHealthStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.accounts.ChangeHealthStatus(c.Request.Context(), id, req, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

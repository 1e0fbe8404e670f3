package handler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	importapp "github.com/cshub/backend/internal/application/import"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// DefaultMaxImportFileSize applies when no limit is configured
const DefaultMaxImportFileSize int64 = 10 << 20

// CustomerImportHandler handles the customer bulk upload
type CustomerImportHandler struct {
	BaseHandler
	importer    *importapp.CustomerImportService
	maxFileSize int64
}

// NewCustomerImportHandler creates a new CustomerImportHandler
func NewCustomerImportHandler(importer *importapp.CustomerImportService, maxFileSize int64) *CustomerImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxImportFileSize
	}
	return &CustomerImportHandler{importer: importer, maxFileSize: maxFileSize}
}

// BulkUpload godoc
// @Summary      Bulk upload customers from CSV
// @Description  Rows are imported independently. Row failures are reported in the result;
// @Description  only an unreadable file or a missing company_name column fails the request.
// @Tags         customers
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /customers/bulk-upload [post]
func (h *CustomerImportHandler) BulkUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.HandleError(c, shared.NewValidationError("file", "file required"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		h.HandleError(c, shared.NewValidationError("file", "file must be a .csv"))
		return
	}
	if header.Size > h.maxFileSize {
		h.HandleError(c, shared.NewValidationError("file",
			fmt.Sprintf("file exceeds the maximum size of %d bytes", h.maxFileSize)))
		return
	}

	f, err := header.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	result, err := h.importer.ImportCustomers(ctx, f, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.L(ctx).Info("Customer bulk upload",
		zap.String("filename", header.Filename),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount),
	)
	h.Success(c, result)
}

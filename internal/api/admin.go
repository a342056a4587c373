package api

import (
	"bytes"    // XLSX buffer
	"net/http" // HTTP status codes
	"time"     // Export file name

	"paywin/internal/middleware" // Authenticated user id
	"paywin/internal/service"    // Back-office use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RechargeCodesRequest asks for a batch of codes
type RechargeCodesRequest struct {
	Count  int   `json:"count" binding:"required"`       // Number of codes, 1-100
	Amount int64 `json:"amount" binding:"required,gt=0"` // Credit per code
}

// ListUsersHandler returns all profiles, paginated
func ListUsersHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paginate(c)
		list, err := admin.ListUsers(c.Request.Context(), p.window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.body("users", list.Items, list.Total))
	}
}

// ListTransactionsHandler returns all transactions, with optional filtering by user, type, or date
func ListTransactionsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := transactionFilter(c)
		if !ok {
			return
		}
		p := paginate(c)
		list, err := admin.ListTransactions(c.Request.Context(), filter, p.window())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p.body("transactions", list.Items, list.Total))
	}
}

// ExportTransactionsHandler downloads the filtered ledger as a workbook
func ExportTransactionsHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := transactionFilter(c)
		if !ok {
			return
		}
		var buf bytes.Buffer // Built fully before any byte is sent
		if err := admin.ExportTransactions(c.Request.Context(), filter, &buf); err != nil {
			respondError(c, err)
			return
		}
		name := "transactions-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// CreateRechargeCodesHandler issues a batch of single-use codes
func CreateRechargeCodesHandler(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RechargeCodesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		codes, err := admin.CreateRechargeCodes(c.Request.Context(), middleware.UserID(c), req.Count, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"codes": codes})
	}
}

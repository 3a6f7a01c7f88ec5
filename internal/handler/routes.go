package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, authHandler *AuthHandler, staffHandler *StaffHandler, customerHandler *CustomerHandler, loanTypeHandler *LoanTypeHandler, loanHandler *LoanHandler, feeHandler *FeeHandler, analyticsHandler *AnalyticsHandler, wsHandler *WebSocketHandler) {
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	adminOrManager := middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)
	anyStaff := middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager, domain.RoleAgent)

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())

	// Staff routes (admin only)
	staff := api.Group("/staff")
	staff.Use(authMiddleware.Authenticate(), adminOnly)
	staff.POST("", staffHandler.CreateStaff)
	staff.GET("", staffHandler.ListStaff)
	staff.GET("/:id", staffHandler.GetStaff)
	staff.DELETE("/:id", staffHandler.DeleteStaff)

	// Customer routes
	customers := api.Group("/customers")
	customers.Use(authMiddleware.Authenticate(), anyStaff)
	customers.POST("", customerHandler.CreateCustomer)
	customers.GET("", customerHandler.ListCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.PUT("/:id", customerHandler.UpdateCustomer, adminOrManager)
	customers.PATCH("/:id/account-status", customerHandler.SetAccountStatus, adminOnly)
	customers.DELETE("/:id", customerHandler.DeleteCustomer, adminOnly)

	// Loan type routes (read for all staff, writes admin only)
	loanTypes := api.Group("/loan-types")
	loanTypes.Use(authMiddleware.Authenticate(), anyStaff)
	loanTypes.GET("", loanTypeHandler.ListLoanTypes)
	loanTypes.GET("/:id", loanTypeHandler.GetLoanType)
	loanTypes.POST("", loanTypeHandler.CreateLoanType, adminOnly)
	loanTypes.PUT("/:id", loanTypeHandler.UpdateLoanType, adminOnly)
	loanTypes.DELETE("/:id", loanTypeHandler.DeleteLoanType, adminOnly)

	// Loan application routes. Lifecycle transitions are gated per role:
	// agents originate and do field work, managers verify and issue
	// contracts, admins approve and move money.
	loans := api.Group("/loans")
	loans.Use(authMiddleware.Authenticate(), anyStaff)
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.ListLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.POST("/:id/call-verify", loanHandler.CallVerify, adminOrManager)
	loans.POST("/:id/contract", loanHandler.GenerateContract, adminOrManager)
	loans.POST("/:id/signed-contract", loanHandler.UploadSignedContract)
	loans.POST("/:id/field-verify", loanHandler.FieldVerify)
	loans.POST("/:id/approve", loanHandler.Approve, adminOnly)
	loans.POST("/:id/reject", loanHandler.Reject, adminOrManager)
	loans.POST("/:id/disburse", loanHandler.Disburse, adminOnly)
	loans.POST("/:id/close", loanHandler.Close, adminOnly)
	loans.POST("/:id/emis/:emiNumber/pay", loanHandler.PayEmi)
	loans.POST("/:id/emis/:emiNumber/penalty", loanHandler.AddPenalty, adminOrManager)
	loans.DELETE("/:id", loanHandler.DeleteLoan, adminOnly)
	loans.GET("/:id/fees", feeHandler.GetLoanFees)
	loans.GET("/:id/schedule", loanHandler.GetSchedule)

	// Repayment views
	repayments := api.Group("/repayments")
	repayments.Use(authMiddleware.Authenticate(), anyStaff)
	repayments.GET("", loanHandler.ListSchedules)

	// Fee ledger routes
	fees := api.Group("/fees")
	fees.Use(authMiddleware.Authenticate(), anyStaff)
	fees.GET("", feeHandler.ListFees)
	fees.POST("/:id/complete", feeHandler.CompleteFeePayment)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.Use(authMiddleware.Authenticate(), adminOrManager)
	analytics.GET("/overview", analyticsHandler.Overview)

	// WebSocket endpoint (token validated via query parameter)
	e.GET("/ws", wsHandler.HandleWS)
}

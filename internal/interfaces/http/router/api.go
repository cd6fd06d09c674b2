package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/interfaces/http/handler"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler mounted below the API prefix
type Handlers struct {
	Auth         *handler.AuthHandler
	Account      *handler.AccountHandler
	Role         *handler.RoleHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	Customer     *handler.CustomerHandler
	Invoice      *handler.InvoiceHandler
	Payment      *handler.PaymentHandler
	Expense      *handler.ExpenseHandler
	Revenue      *handler.RevenueHandler
	Message      *handler.MessageHandler
	Notification *handler.NotificationHandler
	Activity     *handler.ActivityHandler
	System       *handler.SystemHandler
}

func can(module, action string) gin.HandlerFunc {
	return middleware.RequireAction(module, action)
}

// RegisterAPI declares the ledgerly routes on r. Authentication and the
// account status check are expected as router-wide middleware; this only
// adds the per-route permission checks.
func RegisterAPI(r *Router, h Handlers) {
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		PUT("/password", h.Auth.ChangePassword)

	accountRoutes := NewDomainGroup("account", "/account")
	accountRoutes.GET("", can(identity.ModuleAccount, identity.ActionView), h.Account.Get).
		PUT("", can(identity.ModuleAccount, identity.ActionUpdate), h.Account.Update).
		POST("/suspend", middleware.RequireSuperAdmin(), h.Account.Suspend).
		POST("/activate", middleware.RequireSuperAdmin(), h.Account.Activate)
	brandingRoutes := accountRoutes.Group("branding", "/branding")
	brandingRoutes.GET("", can(identity.ModuleBranding, identity.ActionView), h.Account.GetBranding).
		PUT("", can(identity.ModuleBranding, identity.ActionUpdate), h.Account.UpdateBranding).
		GET("/logo", can(identity.ModuleBranding, identity.ActionView), h.Account.GetLogoURL).
		POST("/logo", can(identity.ModuleBranding, identity.ActionUpdate), h.Account.UploadLogo).
		DELETE("/logo", can(identity.ModuleBranding, identity.ActionUpdate), h.Account.DeleteLogo)

	permissionRoutes := NewDomainGroup("permissions", "/permissions")
	permissionRoutes.GET("", can(identity.ModuleRole, identity.ActionView), h.Role.Permissions)

	roleRoutes := NewDomainGroup("roles", "/roles")
	roleRoutes.GET("", can(identity.ModuleRole, identity.ActionView), h.Role.List).
		POST("", can(identity.ModuleRole, identity.ActionCreate), h.Role.Create).
		GET("/:id", can(identity.ModuleRole, identity.ActionView), h.Role.Get).
		PUT("/:id", can(identity.ModuleRole, identity.ActionUpdate), h.Role.Update).
		DELETE("/:id", can(identity.ModuleRole, identity.ActionDelete), h.Role.Delete).
		PUT("/:id/permissions", can(identity.ModuleRole, identity.ActionUpdate), h.Role.SetPermissions).
		POST("/:id/enable", can(identity.ModuleRole, identity.ActionUpdate), h.Role.Enable).
		POST("/:id/disable", can(identity.ModuleRole, identity.ActionUpdate), h.Role.Disable)

	userRoutes := NewDomainGroup("users", "/users")
	userRoutes.GET("", can(identity.ModuleUser, identity.ActionView), h.User.List).
		POST("", can(identity.ModuleUser, identity.ActionCreate), h.User.Create).
		GET("/:id", can(identity.ModuleUser, identity.ActionView), h.User.Get).
		PUT("/:id", can(identity.ModuleUser, identity.ActionUpdate), h.User.Update).
		DELETE("/:id", can(identity.ModuleUser, identity.ActionDelete), h.User.Delete).
		PUT("/:id/roles", can(identity.ModuleUser, identity.ActionUpdate), h.User.AssignRoles).
		PUT("/:id/super-admin", middleware.RequireSuperAdmin(), h.User.SetSuperAdmin).
		PUT("/:id/password", can(identity.ModuleUser, identity.ActionUpdate), h.User.ResetPassword).
		POST("/:id/enable", can(identity.ModuleUser, identity.ActionUpdate), h.User.Enable).
		POST("/:id/disable", can(identity.ModuleUser, identity.ActionUpdate), h.User.Disable).
		POST("/:id/unlock", can(identity.ModuleUser, identity.ActionUpdate), h.User.Unlock)

	productRoutes := NewDomainGroup("products", "/products")
	productRoutes.GET("", can(identity.ModuleProduct, identity.ActionView), h.Product.List).
		POST("", can(identity.ModuleProduct, identity.ActionCreate), h.Product.Create).
		GET("/:id", can(identity.ModuleProduct, identity.ActionView), h.Product.GetByID).
		PUT("/:id", can(identity.ModuleProduct, identity.ActionUpdate), h.Product.Update).
		DELETE("/:id", can(identity.ModuleProduct, identity.ActionDelete), h.Product.Delete).
		POST("/:id/stock-adjustments", can(identity.ModuleProduct, identity.ActionAdjustStock), h.Product.AdjustStock)

	customerRoutes := NewDomainGroup("customers", "/customers")
	customerRoutes.GET("", can(identity.ModuleCustomer, identity.ActionView), h.Customer.List).
		POST("", can(identity.ModuleCustomer, identity.ActionCreate), h.Customer.Create).
		GET("/:id", can(identity.ModuleCustomer, identity.ActionView), h.Customer.GetByID).
		PUT("/:id", can(identity.ModuleCustomer, identity.ActionUpdate), h.Customer.Update).
		DELETE("/:id", can(identity.ModuleCustomer, identity.ActionDelete), h.Customer.Delete).
		GET("/:id/statement", can(identity.ModuleCustomer, identity.ActionView), h.Customer.Statement)

	invoiceRoutes := NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.GET("", can(identity.ModuleInvoice, identity.ActionView), h.Invoice.List).
		POST("", can(identity.ModuleInvoice, identity.ActionCreate), h.Invoice.Create).
		GET("/summary", can(identity.ModuleInvoice, identity.ActionView), h.Invoice.Summary).
		GET("/:id", can(identity.ModuleInvoice, identity.ActionView), h.Invoice.Get).
		PUT("/:id", can(identity.ModuleInvoice, identity.ActionUpdate), h.Invoice.Update).
		DELETE("/:id", can(identity.ModuleInvoice, identity.ActionDelete), h.Invoice.Delete).
		POST("/:id/confirm", can(identity.ModuleInvoice, identity.ActionConfirm), h.Invoice.Confirm).
		POST("/:id/unconfirm", can(identity.ModuleInvoice, identity.ActionUnconfirm), h.Invoice.Unconfirm).
		POST("/:id/cancel", can(identity.ModuleInvoice, identity.ActionCancel), h.Invoice.Cancel).
		POST("/:id/reopen", can(identity.ModuleInvoice, identity.ActionCancel), h.Invoice.Reopen).
		GET("/:id/pdf", can(identity.ModuleInvoice, identity.ActionPrint), h.Invoice.PDF).
		GET("/:id/print", can(identity.ModuleInvoice, identity.ActionPrint), h.Invoice.Print).
		GET("/:id/payments", can(identity.ModulePayment, identity.ActionView), h.Invoice.ListPayments).
		POST("/:id/payments", can(identity.ModulePayment, identity.ActionCreate), h.Invoice.RecordPayment).
		DELETE("/:id/payments/:paymentId", can(identity.ModulePayment, identity.ActionDelete), h.Invoice.DeletePayment)

	paymentRoutes := NewDomainGroup("payments", "/payments")
	paymentRoutes.GET("", can(identity.ModulePayment, identity.ActionView), h.Payment.List)

	expenseRoutes := NewDomainGroup("expenses", "/expenses")
	expenseRoutes.GET("", can(identity.ModuleExpense, identity.ActionView), h.Expense.List).
		POST("", can(identity.ModuleExpense, identity.ActionCreate), h.Expense.Create).
		GET("/summary", can(identity.ModuleExpense, identity.ActionView), h.Expense.Summary).
		GET("/:id", can(identity.ModuleExpense, identity.ActionView), h.Expense.GetByID).
		PUT("/:id", can(identity.ModuleExpense, identity.ActionUpdate), h.Expense.Update).
		DELETE("/:id", can(identity.ModuleExpense, identity.ActionDelete), h.Expense.Delete)

	revenueRoutes := NewDomainGroup("revenues", "/revenues")
	revenueRoutes.GET("", can(identity.ModuleRevenue, identity.ActionView), h.Revenue.List).
		POST("", can(identity.ModuleRevenue, identity.ActionCreate), h.Revenue.Create).
		GET("/summary", can(identity.ModuleRevenue, identity.ActionView), h.Revenue.Summary).
		GET("/:id", can(identity.ModuleRevenue, identity.ActionView), h.Revenue.GetByID).
		PUT("/:id", can(identity.ModuleRevenue, identity.ActionUpdate), h.Revenue.Update).
		DELETE("/:id", can(identity.ModuleRevenue, identity.ActionDelete), h.Revenue.Delete)

	// mailboxes belong to the caller; no module permission applies
	messageRoutes := NewDomainGroup("messages", "/messages")
	messageRoutes.GET("/inbox", h.Message.Inbox).
		GET("/sent", h.Message.Sent).
		GET("/unread-count", h.Message.UnreadCount).
		POST("", h.Message.Send).
		GET("/:id", h.Message.Get).
		POST("/:id/read", h.Message.MarkRead).
		DELETE("/:id", h.Message.Delete)

	notificationRoutes := NewDomainGroup("notifications", "/notifications")
	notificationRoutes.GET("", h.Notification.List).
		GET("/unread-count", h.Notification.UnreadCount).
		POST("/read-all", h.Notification.MarkAllRead).
		POST("/:id/read", h.Notification.MarkRead).
		DELETE("/:id", h.Notification.Delete)

	activityRoutes := NewDomainGroup("activity", "/activity-logs")
	activityRoutes.Use(can(identity.ModuleActivity, identity.ActionView)).
		GET("", h.Activity.List).
		GET("/:id", h.Activity.Get)

	healthRoutes := NewDomainGroup("health", "/health")
	healthRoutes.GET("", h.System.Health)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	r.Register(
		authRoutes,
		accountRoutes,
		permissionRoutes,
		roleRoutes,
		userRoutes,
		productRoutes,
		customerRoutes,
		invoiceRoutes,
		paymentRoutes,
		expenseRoutes,
		revenueRoutes,
		messageRoutes,
		notificationRoutes,
		activityRoutes,
		healthRoutes,
		systemRoutes,
	)
}

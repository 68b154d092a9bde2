package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-pos-backend/internal/handler"
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/database"
	"go-pos-backend/pkg/logging"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found")
	}
	log := logging.New()

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Product{}, &model.Customer{}, &model.Shift{},
		&model.SalesTransaction{}, &model.TransactionLineItem{}, &model.TransactionModifier{}, &model.TransactionServiceCharge{},
		&model.RefundTransaction{}, &model.RefundLineItem{},
		&model.ExchangeTransaction{}, &model.ExchangeLineItem{},
		&model.StockLedgerEntry{}, &model.StockAlert{},
	)

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	txRepo := repository.NewSalesTransactionRepo(db)
	refundRepo := repository.NewRefundRepo(db)
	exchangeRepo := repository.NewExchangeRepo(db)
	ledgerRepo := repository.NewStockLedgerRepo(db)
	alertRepo := repository.NewStockAlertRepo(db)

	alertService := service.NewAlertService(alertRepo, log)
	stockService := service.NewStockService(productRepo, ledgerRepo, alertService, wsHub, log)
	productService := service.NewProductService(productRepo, stockService)
	customerService := service.NewCustomerService(customerRepo)
	shiftService := service.NewShiftService(shiftRepo, wsHub)
	txService := service.NewTransactionService(txRepo, productRepo, shiftRepo, customerRepo, stockService, log)
	refundService := service.NewRefundService(txRepo, refundRepo, shiftRepo, productRepo, stockService, log)
	exchangeService := service.NewExchangeService(txRepo, exchangeRepo, shiftRepo, productRepo, stockService, log)
	dashService := service.NewDashboardService(txRepo, ledgerRepo, alertService)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	productHandler := handler.NewProductHandler(productService)
	customerHandler := handler.NewCustomerHandler(customerService)
	shiftHandler := handler.NewShiftHandler(shiftService)
	txHandler := handler.NewTransactionHandler(txService)
	refundHandler := handler.NewRefundHandler(refundService)
	exchangeHandler := handler.NewExchangeHandler(exchangeService)
	stockHandler := handler.NewStockHandler(stockService, alertService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Backend v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Auth Routes (No authentication required)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat) // Heartbeat uses Auth but available to all authenticated

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard Routes
	protected.Get("/dashboard/sales-per-day", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesPerDay)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)
	protected.Get("/dashboard/alerts", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetActiveAlerts)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeleteProduct)

	// Customer Routes
	protected.Get("/customers", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege("customer:create"), customerHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege("customer:update"), customerHandler.UpdateCustomer)

	// Shift Routes
	protected.Get("/shifts", middleware.RequirePrivilege("shift:view"), shiftHandler.GetShifts)
	protected.Get("/shifts/current", middleware.RequirePrivilege("shift:view"), shiftHandler.GetCurrentShift)
	protected.Get("/shifts/:id", middleware.RequirePrivilege("shift:view"), shiftHandler.GetShift)
	protected.Post("/shifts/open", middleware.RequirePrivilege("shift:open"), shiftHandler.OpenShift)
	protected.Post("/shifts/:id/close", middleware.RequirePrivilege("shift:close"), shiftHandler.CloseShift)

	// Sales Transaction Routes
	protected.Get("/transactions", middleware.RequirePrivilege("transaction:view"), txHandler.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege("transaction:view"), txHandler.GetTransaction)
	protected.Post("/transactions", middleware.RequirePrivilege("transaction:create"), txHandler.CreateTransaction)
	protected.Patch("/transactions/:id/status", middleware.RequirePrivilege("transaction:update"), txHandler.ChangeStatus)
	protected.Delete("/transactions/:id", middleware.RequirePrivilege("transaction:delete"), txHandler.DeleteTransaction)

	// Refund Routes
	protected.Get("/refunds", middleware.RequirePrivilege("refund:view"), refundHandler.GetRefunds)
	protected.Get("/refunds/:id", middleware.RequirePrivilege("refund:view"), refundHandler.GetRefund)
	protected.Post("/refunds", middleware.RequirePrivilege("refund:create"), refundHandler.CreateRefund)
	protected.Delete("/refunds/:id", middleware.RequirePrivilege("refund:delete"), refundHandler.DeleteRefund)

	// Exchange Routes
	protected.Get("/exchanges", middleware.RequirePrivilege("exchange:view"), exchangeHandler.GetExchanges)
	protected.Get("/exchanges/:id", middleware.RequirePrivilege("exchange:view"), exchangeHandler.GetExchange)
	protected.Post("/exchanges", middleware.RequirePrivilege("exchange:create"), exchangeHandler.CreateExchange)

	// Stock Routes
	protected.Get("/stock/:id/history", middleware.RequirePrivilege("stock:view"), stockHandler.GetHistory)
	protected.Get("/stock/:id/balance", middleware.RequirePrivilege("stock:view"), stockHandler.GetBalance)
	protected.Get("/stock/alerts", middleware.RequirePrivilege("stock:view"), stockHandler.GetAlerts)
	protected.Post("/stock/movements", middleware.RequirePrivilege("stock:move"), stockHandler.RecordMovement)

	// User Management Routes
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Access-control catalog
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, log *logrus.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warnf("Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warnf("Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Info("MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything except user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Info("ADMIN role assigned limited privileges")
	}

	// CASHIER gets the front-of-house set only
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierCodes := map[string]bool{
			"customer:view": true, "customer:create": true,
			"transaction:view": true, "transaction:create": true, "transaction:update": true, "transaction:delete": true,
			"refund:view": true, "refund:create": true,
			"exchange:view": true, "exchange:create": true,
			"stock:view": true,
			"shift:view": true, "shift:open": true, "shift:close": true,
			"product:view": true,
		}
		cashierPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if cashierCodes[p.Code] {
				cashierPrivileges = append(cashierPrivileges, p)
			}
		}
		db.Model(&cashierRole).Association("Privileges").Replace(cashierPrivileges)
		log.Info("CASHIER role assigned front-of-house privileges")
	}

	// 4. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Master Administrator",
			PhoneNumber: "",
			RoleID:      &masterRole.ID,
			IsActive:    true,
			Privileges:  masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Warnf("Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Warnf("Failed to create admin user: %v", err)
		} else {
			log.Info("Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}

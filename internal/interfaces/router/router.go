package router

import (
	"errors"
	"net/http"

	authsvc "buffr-host/internal/application/auth"
	bookingsvc "buffr-host/internal/application/booking"
	emailsvc "buffr-host/internal/application/emails"
	healthsvc "buffr-host/internal/application/health"
	invsvc "buffr-host/internal/application/invitations"
	menusvc "buffr-host/internal/application/menu"
	ordersvc "buffr-host/internal/application/order"
	propertysvc "buffr-host/internal/application/property"
	roomsvc "buffr-host/internal/application/room"
	tenantsvc "buffr-host/internal/application/tenant"
	uploadsvc "buffr-host/internal/application/uploads"
	usersvc "buffr-host/internal/application/user"
	"buffr-host/internal/config"
	"buffr-host/internal/infrastructure/database"
	"buffr-host/internal/infrastructure/events"
	"buffr-host/internal/infrastructure/metrics"
	authhandler "buffr-host/internal/interfaces/handlers/auth"
	bookinghandler "buffr-host/internal/interfaces/handlers/booking"
	healthhandler "buffr-host/internal/interfaces/handlers/health"
	invhandler "buffr-host/internal/interfaces/handlers/invitations"
	menuhandler "buffr-host/internal/interfaces/handlers/menu"
	orderhandler "buffr-host/internal/interfaces/handlers/order"
	payhandler "buffr-host/internal/interfaces/handlers/payments"
	propertyhandler "buffr-host/internal/interfaces/handlers/property"
	roomhandler "buffr-host/internal/interfaces/handlers/room"
	tenanthandler "buffr-host/internal/interfaces/handlers/tenant"
	uploadhandler "buffr-host/internal/interfaces/handlers/uploads"
	userhandler "buffr-host/internal/interfaces/handlers/user"
	"buffr-host/internal/middleware"
	"buffr-host/internal/pkg/constants"
	"buffr-host/internal/pkg/response"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrRedisRequired    = errors.New("REDIS_URL is required")
	ErrDatabaseRequired = errors.New("database url is required")
)

// App is the assembled server and the resources it owns.
type App struct {
	Fiber    *fiber.App
	DB       *gorm.DB
	Rdb      *redis.Client
	Bookings *bookingsvc.Service
	Registry *prometheus.Registry
	closers  []func() error
}

// Close releases the connections opened by CreateApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// CreateApp connects Redis, the database and NATS, then builds the Fiber app
// with global middleware and every route group.
func CreateApp(cfg *config.Config) (*App, error) {
	if cfg.RedisURL == "" {
		return nil, ErrRedisRequired
	}
	if cfg.DatabaseURL == "" {
		return nil, ErrDatabaseRequired
	}
	a := &App{}

	rdb, err := middleware.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.Rdb = rdb
	a.closers = append(a.closers, rdb.Close)

	db, err := database.Open(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		database.Close(db)
		return nil
	})
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			a.Close()
			return nil, err
		}
	}

	publisher, closeEvents, err := events.New(cfg.NatsURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeEvents)

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.Registry)

	var emails emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		emails = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}

	a.Bookings = &bookingsvc.Service{
		DB:      db,
		Events:  publisher,
		Metrics: m,
		Emails:  emails,
		Hold:    cfg.BookingHold,
	}
	if cfg.StripeSecretKey != "" {
		a.Bookings.Payments = &bookingsvc.StripeCreator{SecretKey: cfg.StripeSecretKey}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})
	a.Fiber = app

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())

	// The webhook needs the untouched body and no session.
	webhook := &payhandler.WebhookHandler{Bookings: a.Bookings, WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", webhook.HandleWebhook)

	app.Use(middleware.Session(rdb))
	app.Use(middleware.RouteLogger())

	prom := fiberprometheus.NewWithRegistry(a.Registry, "buffr-host", "http", "", nil)
	app.Use(prom.Middleware)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	endpoints := []healthsvc.Endpoint{}
	if cfg.FrontendURL != "" {
		endpoints = append(endpoints, healthsvc.Endpoint{Name: "frontend", URL: cfg.FrontendURL})
	}
	if cfg.StripeSecretKey != "" {
		endpoints = append(endpoints, healthsvc.Endpoint{Name: "stripe", URL: "https://api.stripe.com/healthcheck"})
	}
	hh := &healthhandler.Handlers{
		Collector:      &healthsvc.Collector{Rdb: rdb, DB: &database.Pinger{DB: db}, Endpoints: endpoints},
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	ah := &authhandler.Handlers{UserFinder: &authsvc.GormUserFinder{DB: db}, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	app.Post("/api/auth/login", ah.Login)

	uh := &userhandler.Handlers{Service: &usersvc.Service{DB: db, Rdb: rdb, Emails: emails}, Config: sessionCfg}
	app.Post("/api/v1/users/register", uh.Register)
	ug := app.Group("/api/v1/users", middleware.RequireAuth())
	ug.Get("/me", uh.ViewMe)
	ug.Put("/me", uh.UpdateMe)
	ug.Patch("/role", middleware.RequireTenant(), middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)
	ug.Delete("/member", middleware.RequireTenant(), middleware.AuthorizePermission(constants.RemoveUser), uh.RemoveMember)

	th := &tenanthandler.Handlers{Service: &tenantsvc.Service{DB: db}, Rdb: rdb, Config: sessionCfg}
	app.Post("/api/v1/tenants", middleware.RequireAuth(), th.CreateTenant)
	tg := app.Group("/api/v1/tenants", middleware.RequireTenant())
	tg.Get("/current", middleware.AuthorizePermission(constants.ViewData), th.ViewTenant)
	tg.Patch("/current", middleware.AuthorizePermission(constants.UpdateTenant), th.UpdateTenant)

	ih := &invhandler.Handlers{
		Service: &invsvc.Service{DB: db, Emails: emails, InviteBaseURL: cfg.InviteBaseURL},
		Rdb:     rdb,
		Config:  sessionCfg,
	}
	app.Post("/api/v1/invitations/public/check-token", ih.CheckToken)
	app.Post("/api/v1/invitations/accept", middleware.RequireAuth(), ih.AcceptInvite)

	// Tenant data. RequireTenant is scoped per resource so unknown /api paths stay 404.
	api := app.Group("/api")
	requireTenant := middleware.RequireTenant()
	view := middleware.AuthorizePermission(constants.ViewData)

	ph := &propertyhandler.Handlers{Service: &propertysvc.Service{DB: db}}
	rh := &roomhandler.Handlers{Service: &roomsvc.Service{DB: db}}
	mh := &menuhandler.Handlers{Service: &menusvc.Service{DB: db}}
	pg := api.Group("/v1/properties", requireTenant)
	pg.Post("/", middleware.AuthorizePermission(constants.ManageProperties), ph.Create)
	pg.Get("/", view, ph.List)
	pg.Get("/:id", view, ph.Get)
	pg.Put("/:id", middleware.AuthorizePermission(constants.ManageProperties), ph.Update)
	pg.Delete("/:id", middleware.AuthorizePermission(constants.ManageProperties), ph.Delete)
	pg.Post("/:id/rooms", middleware.AuthorizePermission(constants.ManageRooms), rh.Create)
	pg.Get("/:id/rooms", view, rh.List)
	pg.Get("/:id/availability", view, rh.Availability)
	pg.Post("/:id/menu", middleware.AuthorizePermission(constants.ManageMenu), mh.Create)
	pg.Get("/:id/menu", view, mh.List)
	hg := api.Group("/hotels", requireTenant)
	hg.Get("/:id", view, ph.Get)
	hg.Post("/:id", middleware.AuthorizePermission(constants.ManageProperties), ph.Update)

	api.Patch("/v1/rooms/:id", requireTenant, middleware.AuthorizePermission(constants.ManageRooms), rh.Update)
	mg := api.Group("/v1/menu", requireTenant)
	mg.Patch("/:id", middleware.AuthorizePermission(constants.ManageMenu), mh.Update)
	mg.Delete("/:id", middleware.AuthorizePermission(constants.ManageMenu), mh.Delete)

	bh := &bookinghandler.Handlers{Service: a.Bookings}
	bg := api.Group("/v1/bookings", requireTenant)
	bg.Post("/", middleware.AuthorizePermission(constants.ManageBookings), bh.Create)
	bg.Get("/", view, bh.List)
	bg.Get("/:id", view, bh.Get)
	for _, action := range []string{bookingsvc.ActionConfirm, bookingsvc.ActionCheckIn, bookingsvc.ActionCheckOut, bookingsvc.ActionCancel} {
		bg.Post("/:id/"+action, middleware.AuthorizePermission(constants.ManageBookings), bh.Transition(action))
	}
	bg.Post("/:id/payment-intent", middleware.AuthorizePermission(constants.TakePayment), bh.PaymentIntent)
	legacy := api.Group("/bookings", requireTenant)
	legacy.Post("/", middleware.AuthorizePermission(constants.ManageBookings), bh.Create)
	legacy.Get("/", view, bh.List)

	oh := &orderhandler.Handlers{Service: &ordersvc.Service{DB: db, Events: publisher, Metrics: m}}
	og := api.Group("/v1/orders", requireTenant)
	og.Post("/", middleware.AuthorizePermission(constants.ManageOrders), oh.Create)
	og.Get("/", view, oh.List)
	og.Get("/:id", view, oh.Get)
	og.Patch("/:id/status", middleware.AuthorizePermission(constants.ManageOrders), oh.UpdateStatus)

	ig := api.Group("/v1/invitations", requireTenant)
	ig.Post("/", middleware.AuthorizePermission(constants.InviteUser), ih.SendInvite)
	ig.Post("/resend", middleware.AuthorizePermission(constants.InviteUser), ih.ResendInvite)
	ig.Patch("/revoke", middleware.AuthorizePermission(constants.InviteUser), ih.RevokeInvite)
	ig.Get("/", view, ih.List)

	uploads := &uploadsvc.Service{
		Client:      &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey},
		SupabaseURL: cfg.SupabaseURL,
	}
	uph := &uploadhandler.Handlers{Service: uploads}
	upg := api.Group("/v1/uploads", requireTenant)
	upg.Post("/property-image", middleware.AuthorizePermission(constants.ManageProperties), uph.UploadPropertyImage)
	upg.Post("/tenant-logo", middleware.AuthorizePermission(constants.UpdateTenant), uph.UploadTenantLogo)

	app.Use(func(c *fiber.Ctx) error {
		return response.Error(c, "Route not found", fiber.StatusNotFound, nil)
	})

	log.Info().Bool("nats", cfg.NatsURL != "").Bool("stripe", cfg.StripeSecretKey != "").Bool("email", emails != nil).Msg("app created")
	return a, nil
}

// Handler adapts the app for net/http hosts.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

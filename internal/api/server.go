package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/eventhub/eventhub/docs"
	v1 "github.com/eventhub/eventhub/internal/api/handler/v1"
	"github.com/eventhub/eventhub/internal/api/middleware"
	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/repository"
	"github.com/eventhub/eventhub/internal/repository/dao"
	"github.com/eventhub/eventhub/internal/service"
	"github.com/eventhub/eventhub/internal/session"
	"github.com/eventhub/eventhub/internal/web"
)

type Server struct {
	Config      *config.AppConfig
	Router      *gin.Engine
	RateLimiter *middleware.RateLimiter

	auth      *middleware.Authenticator
	publisher service.BookingPublisher
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client, publisher service.BookingPublisher) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()
	if err := middleware.TrustProxies(engine, conf.API.TrustedProxies); err != nil {
		return nil, fmt.Errorf("middleware.TrustProxies -> %w", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("web.Templates -> %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		Config:      conf,
		Router:      engine,
		RateLimiter: middleware.NewRateLimiter(rdb, conf.RateLimit),
		publisher:   publisher,
	}
	s.auth = s.initAuthenticator(db, rdb)

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	eventHandler := s.initEventHandler(db)
	bookingHandler := s.initBookingHandler(db)
	s.MountHandlers(authHandler, eventHandler, bookingHandler)

	return s, nil
}

func (s *Server) initAuthenticator(db *gorm.DB, rdb *redis.Client) *middleware.Authenticator {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	userSvc := service.NewUserService(userRepo)
	sessions := session.NewStore(rdb, s.Config.API.SessionTTL)

	return middleware.NewAuthenticator(s.Config.API.SessionSigningKey, sessions, userSvc, s.Config.API.CookieSecure)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo, s.Config.API.BcryptCost)

	return v1.NewAuthHandler(svc, s.auth)
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	svc := service.NewEventService(repo)

	return v1.NewEventHandler(svc, s.auth)
}

func (s *Server) initBookingHandler(db *gorm.DB) *v1.BookingHandler {
	bookingRepo := repository.NewBookingRepository(dao.NewBookingDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	svc := service.NewBookingService(bookingRepo, s.publisher)
	eventSvc := service.NewEventService(eventRepo)

	return v1.NewBookingHandler(svc, eventSvc, s.auth)
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(middleware.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(s.auth.LoadSession())
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, eventHandler *v1.EventHandler, bookingHandler *v1.BookingHandler) {
	const basePath = "/api/v1"

	s.Router.NoRoute(v1.HandleNotFound)
	s.Router.GET("/healthz", v1.HandleHealthcheck)

	public := s.Router.Group("")
	{
		public.GET("/", eventHandler.HandleIndex)
		public.GET("/event/:eventID", eventHandler.HandleEventDetails)
		public.GET("/login", authHandler.HandleLoginPage)
		public.POST("/login", s.RateLimiter.Limit("login"), authHandler.HandleLogin)
		public.GET("/register", authHandler.HandleRegisterPage)
		public.POST("/register", s.RateLimiter.Limit("register"), authHandler.HandleRegister)
	}

	members := s.Router.Group("", s.auth.RequireLogin(), s.auth.VerifyCSRF())
	{
		members.GET("/logout", authHandler.HandleLogout)
		members.GET("/create-event", eventHandler.HandleCreateEventPage)
		members.POST("/create-event", eventHandler.HandleCreateEvent)
		members.POST("/event/:eventID/comment", eventHandler.HandleComment)
		members.POST("/event/:eventID/like", eventHandler.HandleLike)
		members.GET("/book/:eventID", bookingHandler.HandleBookPage)
		members.POST("/book/:eventID", bookingHandler.HandleBook)
		members.GET("/bookings", bookingHandler.HandleMyBookings)
		members.GET("/event/:eventID/bookings", bookingHandler.HandleEventBookings)
	}

	events := s.Router.Group(basePath)
	{
		events.GET("/events", eventHandler.HandleListEvents)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "EventHub API"
	docs.SwaggerInfo.Description = "Read-only JSON API for EventHub events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/reunite/internal/api/handlers"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/storage"
)

type RouterConfig struct {
	DB       storage.Store
	Images   storage.ImageStore
	Hub      *ws.Hub
	Sessions *auth.SessionManager
	Verifier handlers.FaceVerifier
	Notifier handlers.SearchNotifier
	Events   handlers.EventPublisher
	// Readiness probes; nil entries are skipped.
	DBPing    handlers.Pinger
	MinIOPing handlers.Pinger
	NATSPing  handlers.ConnPinger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DBPing, cfg.MinIOPing, cfg.NATSPing)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	personH := handlers.NewPersonHandler(cfg.DB, cfg.Images, cfg.Verifier)
	matchH := handlers.NewMatchHandler(cfg.DB, cfg.Hub, cfg.Notifier, cfg.Events)
	notificationH := handlers.NewNotificationHandler(cfg.DB)
	staffH := handlers.NewStaffHandler(cfg.DB)
	authH := handlers.NewAuthHandler(cfg.DB, cfg.Sessions)

	// Public surface: the recognition service boundary, the mobile app, the
	// report form, and logins.
	pub := r.Group("/api")
	pub.POST("/report_match", matchH.ReportMatch)
	pub.POST("/persons", personH.Create)
	pub.GET("/persons/found", personH.ListFound)
	pub.GET("/app/person/:id", personH.GetForApp)
	pub.POST("/staff/login", staffH.Login)
	pub.POST("/auth/login", authH.Login)

	// Staff dashboard surface, session-guarded.
	dash := r.Group("/api")
	dash.Use(auth.SessionMiddleware(cfg.Sessions))
	dash.GET("/ws", cfg.Hub.HandleWS)
	dash.GET("/persons", personH.List)
	dash.GET("/person/:id", personH.Get)
	dash.POST("/person/:id/action", matchH.Resolve)
	dash.GET("/notifications", notificationH.List)
	dash.POST("/staff", staffH.Add)
	dash.POST("/auth/logout", authH.Logout)

	return r
}

// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "shelfkeeper/docs"
	"shelfkeeper/internal/batches"
	"shelfkeeper/internal/books"
	"shelfkeeper/internal/borrows"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/notifications"
	"shelfkeeper/internal/reservationlogs"
	"shelfkeeper/internal/reservations"
	"shelfkeeper/internal/seats"
	"shelfkeeper/internal/shared/config"
	"shelfkeeper/internal/shared/database"
	"shelfkeeper/pkg/cache"
	"shelfkeeper/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	queue    notifications.Enqueuer
	log      *logger.Logger
	cache    cache.Service
	sweepJob *seats.SweepJob

	bookRepo    books.Repository
	memberRepo  members.Repository
	borrowRepo  borrows.Repository
	reservation reservations.Service
}

// NewRouter creates a new router instance. queue receives confirmation mails.
func NewRouter(cfg *config.Config, db *database.DB, queue notifications.Enqueuer, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Router{
		config: cfg,
		db:     db,
		queue:  queue,
		log:    log,
		cache:  cache.NewService(db.Redis, log),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	pg := r.db.PostgreSQL
	r.bookRepo = books.NewRepository(pg)
	r.memberRepo = members.NewRepository(pg)
	r.borrowRepo = borrows.NewRepository(pg)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Order matters: batches and confirm-from-log reuse the reservation service.
		r.setupBookRoutes(api)
		r.setupReservationRoutes(api)
		r.setupBatchRoutes(api)
		r.setupReservationLogRoutes(api)
		r.setupSeatRoutes(api)
	}
}

// SweepJob returns the seat expiry job built by SetupRoutes.
func (r *Router) SweepJob() *seats.SweepJob {
	return r.sweepJob
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			r.log.WarnWithContext(c.Request.Context(), "Health check failed", err, nil)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now(),
				"service":   "shelfkeeper",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "shelfkeeper",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupBookRoutes(rg *gin.RouterGroup) {
	bookService := books.NewService(r.bookRepo, r.cache)
	books.SetupBookRoutes(rg, books.NewController(bookService))
}

func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	location := r.config.Library.Location()

	var notifier reservations.Notifier
	if r.queue != nil {
		notifier = notifications.NewService(r.queue, r.bookRepo, location, r.log)
	}

	r.reservation = reservations.NewService(
		reservations.NewRepository(r.db.PostgreSQL),
		reservations.NewUnitOfWork(r.db.PostgreSQL),
		r.bookRepo,
		r.memberRepo,
		r.borrowRepo,
		notifier,
		reservations.Options{
			DefaultPickupLocation: r.config.Library.DefaultPickupLocation,
			DefaultPickupMethod:   r.config.Library.DefaultPickupMethod,
			Logger:                r.log,
		},
	)
	reservations.SetupReservationRoutes(rg, reservations.NewController(r.reservation, location))
}

func (r *Router) setupBatchRoutes(rg *gin.RouterGroup) {
	coordinator := batches.NewCoordinator(r.reservation, r.config.Library.Location(), r.log)
	batches.SetupBatchRoutes(rg, batches.NewController(coordinator))
}

func (r *Router) setupReservationLogRoutes(rg *gin.RouterGroup) {
	logService := reservationlogs.NewService(reservationlogs.NewRepository(r.db.PostgreSQL), r.bookRepo)
	reservationlogs.SetupReservationLogRoutes(rg, reservationlogs.NewController(logService, r.config.Library.Location()))
}

func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	library := r.config.Library

	seatService := seats.NewService(
		seats.NewRepository(r.db.PostgreSQL),
		seats.NewRedisLocker(r.db.Redis),
		r.cache,
		seats.Options{
			Location:       library.Location(),
			LockTTL:        library.SeatLockTTL,
			SweepBatchSize: library.SeatSweepBatchSize,
			Logger:         r.log,
		},
	)
	r.sweepJob = seats.NewSweepJob(seatService, library.SeatSweepInterval, r.log)
	seats.SetupSeatRoutes(rg, seats.NewController(seatService, r.sweepJob))
}

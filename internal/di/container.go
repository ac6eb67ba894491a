package di

import (
	"github.com/piyawat-k/ticket-ledger/internal/handler"
	"github.com/piyawat-k/ticket-ledger/internal/repository"
	"github.com/piyawat-k/ticket-ledger/internal/service"
	"github.com/piyawat-k/ticket-ledger/pkg/database"
	"github.com/piyawat-k/ticket-ledger/pkg/redis"
)

// Container holds all dependencies for the ticket ledger service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo        repository.EventRepository
	TicketRepo       repository.TicketRepository
	OrderRepo        repository.OrderRepository
	AnalyticsRepo    repository.AnalyticsRepository
	AvailabilityRepo repository.AvailabilityRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	InventoryService service.InventoryService
	BookingService   service.BookingService
	AnalyticsService service.AnalyticsService

	// Handlers
	HealthHandler    *handler.HealthHandler
	EventHandler     *handler.EventHandler
	OrderHandler     *handler.OrderHandler
	AnalyticsHandler *handler.AnalyticsHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.OrderRepo = repository.NewPostgresOrderRepository(pool)
	c.AnalyticsRepo = repository.NewPostgresAnalyticsRepository(pool)
	if c.Redis != nil {
		c.AvailabilityRepo = repository.NewRedisAvailabilityRepository(c.Redis)
	}

	// Initialize services
	c.InventoryService = service.NewInventoryService(c.EventRepo, c.TicketRepo, c.AvailabilityRepo)
	c.BookingService = service.NewBookingService(c.OrderRepo, c.TicketRepo, c.EventPublisher)
	c.AnalyticsService = service.NewAnalyticsService(c.EventRepo, c.AnalyticsRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.InventoryService)
	c.OrderHandler = handler.NewOrderHandler(c.BookingService)
	c.AnalyticsHandler = handler.NewAnalyticsHandler(c.AnalyticsService)

	return c
}

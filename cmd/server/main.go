package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files during development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/taskstack/todo-service/internal/auth"       // Token issuance and validation
	"github.com/taskstack/todo-service/internal/cache"      // Redis login-row cache
	"github.com/taskstack/todo-service/internal/config"     // Internal config loader
	"github.com/taskstack/todo-service/internal/database"   // MySQL connection pool
	"github.com/taskstack/todo-service/internal/handler"    // HTTP handlers
	"github.com/taskstack/todo-service/internal/queue"      // Background event consumer
	"github.com/taskstack/todo-service/internal/repository" // MySQL repositories
	"github.com/taskstack/todo-service/internal/router"     // Route registration
	queue_publisher "github.com/taskstack/todo-service/internal/service"
)

func main() {
	_ = godotenv.Load() // pick up a local .env if present
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	todos := repository.NewTodoRepo(db)

	// Token lookups run on every authenticated request; put the Redis
	// cache in front of the login store when a client is available.
	var logins auth.LoginStore = repository.NewLoginRepo(db)
	if rc := config.NewRedisClient(); rc != nil {
		logins = cache.NewLoginCache(logins, rc)
		log.Printf("login cache enabled")
	} else {
		log.Printf("redis unavailable, login cache disabled")
	}

	issuer := auth.NewIssuer(users, logins, cfg.TokenTTL)
	validator := auth.NewValidator(users, logins)

	e := echo.New()
	router.Register(e,
		validator,
		handler.NewAuthHandler(issuer, logins, users),
		handler.NewUserHandler(users, cfg.BcryptCost),
		handler.NewTodoHandler(todos, queue_publisher.PublishTodoCompleted),
	)

	// Consume todo.completed events in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartTodoConsumer(); err != nil {
			log.Printf("todo-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

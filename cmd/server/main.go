package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/bookish/account-service/internal/config"
	"github.com/bookish/account-service/internal/database"
	"github.com/bookish/account-service/internal/email"
	"github.com/bookish/account-service/internal/handler"
	"github.com/bookish/account-service/internal/middleware"
	"github.com/bookish/account-service/internal/queue"
	"github.com/bookish/account-service/internal/repository"
	"github.com/bookish/account-service/internal/router"
	queue_publisher "github.com/bookish/account-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		log.Fatalf("mongo indexes: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	authors := repository.NewAuthorRepo(db)
	verifications := repository.NewTokenRepo(db, repository.VerificationTokensCollection)
	resets := repository.NewTokenRepo(db, repository.ResetTokensCollection)

	mail := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	events := queue_publisher.New()

	// Background audit-log consumer; reconnects on broker failures.
	go func() {
		if err := queue.StartAccountConsumer(); err != nil {
			log.Printf("account consumer stopped: %v", err)
		}
	}()

	authHandler := handler.NewAuthHandler(cfg, users, authors, verifications, resets, mail, events)
	profileHandler := handler.NewProfileHandler(users, authors)

	authMW := middleware.Authenticate(cfg.JWTSecret, users)
	cacheMW := middleware.CacheResponse(config.NewRedisClient(), config.LoadCacheConfig())

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, authMW)
	router.RegisterProfile(e, profileHandler, authMW, cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

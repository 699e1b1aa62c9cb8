package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	contacts "github.com/goliatone/go-contacts"
)

func main() {
	godotenv.Load()

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := contacts.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg))
	fmt.Println("============")

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := contacts.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := contacts.NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetSigningMethod(), lgr.GetLogger("tokens"))

	backend := contacts.SelectCache(ctx, cfg.RedisURL, lgr.GetLogger("cache"))
	cache := contacts.NewUserCache(backend, cfg.GetAccessTokenTTL()).
		WithLogger(lgr.GetLogger("cache"))

	var mailer contacts.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = contacts.NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail)
	} else {
		mailer = contacts.NewLogMailer(lgr.GetLogger("mailer"))
	}

	notifier := contacts.NewNotifier(mailer, cfg.GetBaseURL()).
		WithLogger(lgr.GetLogger("notifier"))

	avatars, err := contacts.NewS3AvatarStore(ctx, cfg.S3)
	if err != nil {
		log.Fatal(err)
	}

	auther := contacts.NewAuthenticator(tokens, repo, cache, cfg).
		WithLogger(lgr.GetLogger("auth"))

	resolver := contacts.NewSessionResolver(tokens, cache, repo).
		WithLogger(lgr.GetLogger("session"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		app := router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))

		app.Use(cors.New())
		app.Use(limiter.New(limiter.Config{
			Max: 100,
		}))

		return app
	})

	authController := contacts.NewAuthController(func(c *contacts.AuthController) *contacts.AuthController {
		c.Logger = lgr.GetLogger("auth.http")
		c.Repo = repo
		c.Tokens = tokens
		c.Auther = auther
		c.Cache = cache
		c.Notifier = notifier
		c.Config = cfg
		return c
	})

	userController := contacts.NewUserController(repo, cache, avatars).
		WithLogger(lgr.GetLogger("users.http"))

	contactController := contacts.NewContactController(repo).
		WithLogger(lgr.GetLogger("contacts.http"))

	contacts.RegisterAuthRoutes(srv.Router(), authController)
	contacts.RegisterUserRoutes(srv.Router(), userController, resolver)
	contacts.RegisterContactRoutes(srv.Router(), contactController, resolver)

	srv.Serve(":" + cfg.Port)

	WaitExitSignal()
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	models := []any{
		(*contacts.User)(nil),
		(*contacts.Contact)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

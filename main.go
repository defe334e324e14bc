package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/hum-fm/crate/auth"
	"github.com/hum-fm/crate/config"
	"github.com/hum-fm/crate/db"
	"github.com/hum-fm/crate/service/lastfm"
	"github.com/hum-fm/crate/session"
)

type application struct {
	logger        *slog.Logger
	db            *db.DB
	hasher        *auth.Hasher
	tokens        *session.TokenService
	authenticator *session.Authenticator
	lastfm        *lastfm.Service
}

func main() {
	config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.MkdirAll("./data", 0o755)

	database, err := db.New(viper.GetString("db.path"))
	if err != nil {
		logger.Error("error connecting to database", "error", err)
		os.Exit(1)
	}

	if err := database.Initialize(); err != nil {
		logger.Error("error initializing database", "error", err)
		os.Exit(1)
	}

	tokens := session.NewTokenService(
		[]byte(viper.GetString("session.signing_key")),
		time.Duration(viper.GetInt("session.ttl_hours"))*time.Hour,
	)

	lastfmService := lastfm.NewService(
		viper.GetString("lastfm.api_key"),
		viper.GetString("lastfm.api_url"),
		time.Duration(viper.GetInt("lastfm.timeout_seconds"))*time.Second,
		logger,
	)

	app := &application{
		logger:        logger,
		db:            database,
		hasher:        auth.NewHasher(viper.GetInt("bcrypt.cost")),
		tokens:        tokens,
		authenticator: session.NewAuthenticator(tokens, database),
		lastfm:        lastfmService,
	}

	serverAddr := fmt.Sprintf("%s:%s", viper.GetString("server.host"), viper.GetString("server.port"))

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      app.routes(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("starting server", "addr", serverAddr)

	err = srv.ListenAndServe()
	logger.Error(err.Error())
	os.Exit(1)
}

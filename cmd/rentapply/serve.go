package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rentapply/internal/contracts"
	"rentapply/internal/db"
	"rentapply/internal/documents"
	"rentapply/internal/metrics"
	"rentapply/internal/payments"
	"rentapply/internal/server"
	"rentapply/internal/session"
	"rentapply/internal/storage"
	"rentapply/internal/store"
	"rentapply/internal/workflow"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateServeConfig(config); err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := session.OpenRedis(config.RedisAddr, config.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	propertyRepo := store.NewPropertyRepository(pool)
	applicationRepo := store.NewApplicationRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)
	contractRepo := store.NewContractRepository(pool)

	objects := storage.NewObjectStore(s3.NewFromConfig(awsConfig), config.S3BucketName)
	stripe := payments.NewStripe(config.StripeSecretKey, config.PaymentCurrency, logger)

	documentService := documents.NewService(objects, documentRepo, logger)

	m := metrics.New()

	deps := workflow.Deps{
		Properties:   propertyRepo,
		Applications: applicationRepo,
		Documents:    documentService,
		Contracts:    contracts.NewService(contractRepo, logger),
		Authority:    stripe,
		Processor:    stripe,
		Recorder:     m,
		Logger:       logger,
	}

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", strings.TrimSuffix(config.AuthIssuerURL, "/"))

	err = jwkCache.Register(ctx, jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register issuer jwks with cache: %w", err)
	}

	sessions := session.NewStore(rdb, time.Duration(config.SessionTTLSec)*time.Second)

	srv, err := server.New(
		config,
		logger,
		deps,
		documentService,
		sessions,
		session.NewID,
		server.NewJWTAuthenticator(jwkCache, jwksURL),
		m,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

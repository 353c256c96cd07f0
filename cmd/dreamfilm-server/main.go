// Command dreamfilm-server runs the dream journal HTTP API.
//
// Routes:
//
//	GET  /health                  — liveness check
//	POST /dreams                  — create a journal entry
//	GET  /dreams                  — list entries, newest first
//	GET  /dreams/{dreamID}        — fetch one entry
//	POST /dreams/{dreamID}/render — run the inference pipeline
//
// Configuration is environment-driven (see internal/config); a .env file in
// the working directory is honored for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smehra/dreamfilm/internal/api"
	"github.com/smehra/dreamfilm/internal/config"
	"github.com/smehra/dreamfilm/internal/enrich"
	"github.com/smehra/dreamfilm/internal/lake"
	"github.com/smehra/dreamfilm/internal/logging"
	"github.com/smehra/dreamfilm/internal/render"
	"github.com/smehra/dreamfilm/internal/store"
	"github.com/smehra/dreamfilm/internal/video"
)

var portFlag int

var rootCmd = &cobra.Command{
	Use:   "dreamfilm-server",
	Short: "Dream journal API with film-treatment rendering",
	Long: `dreamfilm-server hosts the dream journal API: create and browse
journal entries, and render any entry into a stylized film treatment,
a psychoanalytic reading, and (optionally) a short generated video.

Examples:
  dreamfilm-server
  dreamfilm-server --port 9000
  USE_BEDROCK=true USE_LUMA=true dreamfilm-server`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	// Best-effort .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	logging.Init()
	cfg := config.Load()
	if portFlag != 0 {
		cfg.Port = portFlag
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	s3Client := s3.NewFromConfig(awsCfg)
	bedrockClient := bedrockruntime.NewFromConfig(awsCfg)

	var textBackend enrich.Backend = enrich.NewStubBackend()
	if cfg.UseBedrock {
		textBackend = enrich.NewBedrockBackend(bedrockClient, cfg.TextModelID)
	}

	generator := video.NewGenerator(
		bedrockClient,
		s3Client,
		s3.NewPresignClient(s3Client),
		video.Options{
			Enabled:      cfg.UseLuma,
			ModelID:      cfg.VideoModelID,
			Bucket:       cfg.VideoBucket,
			PollInterval: cfg.PollInterval,
			MaxPollWait:  cfg.MaxPollWait,
			PresignTTL:   cfg.PresignTTL,
		},
	)

	var dreamStore store.DreamStore = store.NewMemoryStore()
	if cfg.DynamoTable != "" {
		dreamStore = store.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable)
	}

	server := api.NewServer(
		dreamStore,
		lake.NewWriter(s3Client, cfg.DataBucket),
		render.NewRenderer(textBackend, generator),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // render calls block on video polling
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	startup := logging.NewStartupLogger("dreamfilm-server").
		S3Bucket("videos", cfg.VideoBucket).
		S3Bucket("lake", cfg.DataBucket).
		Model("text", cfg.TextModelID).
		Model("video", cfg.VideoModelID).
		Feature("bedrock", cfg.UseBedrock).
		Feature("luma", cfg.UseLuma).
		Config("port", fmt.Sprintf("%d", cfg.Port))
	if cfg.DynamoTable != "" {
		startup.DynamoTable("dreams", cfg.DynamoTable)
	}
	startup.Log()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

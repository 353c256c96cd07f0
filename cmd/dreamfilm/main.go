// Command dreamfilm is the operator CLI: render a dream offline through the
// deterministic stub, or materialize the raw data lake into flat analytic
// partitions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smehra/dreamfilm/internal/config"
	"github.com/smehra/dreamfilm/internal/enrich"
	"github.com/smehra/dreamfilm/internal/lake"
	"github.com/smehra/dreamfilm/internal/logging"
	"github.com/smehra/dreamfilm/internal/model"
	"github.com/smehra/dreamfilm/internal/render"
)

var rootCmd = &cobra.Command{
	Use:   "dreamfilm",
	Short: "Dream journal operator tools",
}

var renderCmd = &cobra.Command{
	Use:   "render <dream.json>",
	Short: "Render a dream file through the local stub",
	Long: `Reads a dream entry from a JSON file and renders it offline with the
deterministic stub backend. Video generation is skipped. The full render
response is printed to stdout as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Flatten raw journal events into analytic partitions",
	Long: `Lists every raw journal event in the data-lake bucket, flattens each
into one tabular row, and writes date-partitioned gzip'd CSV files under the
structured prefix.`,
	RunE: runFlatten,
}

func init() {
	rootCmd.AddCommand(renderCmd, flattenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// noVideo satisfies render.VideoStage for offline renders.
type noVideo struct{}

func (noVideo) Render(context.Context, string, string) string { return "" }

func runRender(cmd *cobra.Command, args []string) error {
	logging.Init()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read dream file: %w", err)
	}

	var payload model.DreamCreate
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode dream file: %w", err)
	}

	dream := &model.Dream{
		DreamCreate: payload,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}

	renderer := render.NewRenderer(enrich.NewStubBackend(), noVideo{})
	resp, err := renderer.Render(cmd.Context(), dream)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runFlatten(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	logging.Init()
	cfg := config.Load()

	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	flattener := lake.NewFlattener(s3.NewFromConfig(awsCfg), cfg.DataBucket)
	rows, err := flattener.Run(cmd.Context())
	if err != nil {
		return err
	}

	log.Info().Int("rows", rows).Str("bucket", cfg.DataBucket).Msg("Flatten complete")
	return nil
}

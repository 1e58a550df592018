// Package main is the CLI entry point for the deep-research engine,
// wiring internal/config, the gateway provider dispatch, the metasearch
// client, and the fetcher into an Engine and printing the resulting
// report to stdout. Generalizes smhanov-laconic/examples/research's
// flag-based backend wiring into a cobra command.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	deepresearch "github.com/dresearch/deepresearch-core"
	"github.com/dresearch/deepresearch-core/fetch"
	"github.com/dresearch/deepresearch-core/gateway"
	"github.com/dresearch/deepresearch-core/internal/config"
	"github.com/dresearch/deepresearch-core/search"
)

var (
	breadth     int
	depth       int
	model       string
	tokenBudget int
	preferences string
)

func main() {
	root := &cobra.Command{
		Use:   "deepresearch [topic]",
		Short: "Run a recursive deep-research pipeline over a topic",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&breadth, "breadth", 3, "search queries per node (1-5)")
	root.Flags().IntVar(&depth, "depth", 2, "recursion depth (1-5)")
	root.Flags().StringVar(&model, "model", "", "provider:modelId, overrides DEFAULT_MODEL")
	root.Flags().IntVar(&tokenBudget, "token-budget", 0, "soft cap on research-phase tokens, 0 means unlimited")
	root.Flags().StringVar(&preferences, "source-preferences", "", "natural-language source preferences")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	if topic == "" {
		return fmt.Errorf("topic must not be empty")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("invocationID", uuid.NewString()))

	cfg := config.Load()

	modelID := model
	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	provider, err := gateway.Resolve(modelID, gateway.Credentials{
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		GoogleAPIKey:    cfg.GoogleAPIKey,
		XAIAPIKey:       cfg.XAIAPIKey,
	})
	if err != nil {
		logger.Error("failed to resolve model provider", zap.Error(err))
		return err
	}
	gw := gateway.New(provider)

	engine := &deepresearch.Engine{
		Gateway:  gw,
		Search:   search.New(cfg.MetasearchBaseURL, cfg.MetasearchEngines, cfg.MetasearchCategories),
		Fetch:    fetch.New(),
		Governor: deepresearch.NewGovernor(cfg.Concurrency),
		Logger:   logger,
	}

	req := deepresearch.TopicRequest{
		Topic:             topic,
		Breadth:           clampRange(breadth, 1, 5),
		Depth:             clampRange(depth, 1, 5),
		Model:             modelID,
		TokenBudget:       tokenBudget,
		SourcePreferences: preferences,
	}

	ctx := context.Background()
	result, budget := engine.Run(ctx, req)

	report, err := deepresearch.WriteReport(ctx, gw, budget, topic, result)
	if err != nil {
		logger.Error("report writer failed", zap.Error(err))
		return err
	}

	fmt.Println(report)
	return nil
}

func clampRange(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

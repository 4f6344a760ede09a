package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/X10NLUN1X/xionimus/pkg/adapter"
	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
	"github.com/X10NLUN1X/xionimus/pkg/history"
	"github.com/X10NLUN1X/xionimus/pkg/orchestrator"
	"github.com/X10NLUN1X/xionimus/pkg/router"
)

var (
	configFile   string
	debugFlag    bool
	modeFlag     string
	categoryFlag string
	providerFlag string
	modelFlag    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xionimus",
		Short: "Intelligent task router and multi-agent orchestrator for LLM providers",
		Long: `Xionimus classifies natural-language requests into task categories,
	selects the provider, model, and generation parameters appropriate to
	the category and developer mode, falls back across providers on
	failure, and can decompose engineering tasks into a sequence of
	specialized sub-agents.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if debugFlag {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", config.ModeSenior, "developer mode (junior|senior)")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(crewCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Route a message to the appropriate LLM and print the response",
		Long: `Classifies the message, picks a provider and model for the current
	developer mode, and sends it. Use --category to skip classification,
	or --provider and --model to pin the target directly. Unavailable or
	failing providers fall back along the configured chain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			r := router.NewRouter(cfg.RoutingConfig, catalog.Default())
			decision, err := r.Decide(router.Request{
				Message:          args[0],
				DeveloperMode:    modeFlag,
				CategoryOverride: categoryFlag,
				ProviderOverride: providerFlag,
				ModelOverride:    modelFlag,
			})
			if err != nil {
				return err
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}

			resolver := router.NewResolver(cfg.RoutingConfig, r.Catalog(), cfg.Registry())
			resp, reports, err := callWithFallback(cmd.Context(), adapters, resolver, decision, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Routed to %s/%s (category=%s confidence=%.2f)\n",
				resp.Provider, resp.Model, decision.Category, decision.Confidence)

			if jsonFlag {
				out := map[string]any{
					"decision": decision,
					"response": resp,
					"calls":    reports,
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Println(resp.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "category override (skips classification)")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "provider override (requires --model)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "model override (requires --provider)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print decision, response, and call reports as JSON")

	return cmd
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route [message]",
		Short: "Print the routing decision for a message without calling a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			r := router.NewRouter(cfg.RoutingConfig, catalog.Default())
			decision, err := r.Decide(router.Request{
				Message:       args[0],
				DeveloperMode: modeFlag,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(decision)
		},
	}
}

func crewCmd() *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "crew [message]",
		Short: "Decompose a request into specialized sub-agents and run them in order",
		Long: `Selects the relevant agent roles for the request (architect, engineer,
	ui/ux, tester, debugger, documenter), runs them sequentially by
	priority, and prints each role's output. Later roles see earlier
	roles' output as context. If a role exhausts its fallback chain the
	remaining roles are skipped and completed results are still printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}

			o := orchestrator.New(cfg.RoutingConfig, catalog.Default(), cfg.Registry(), adapters)
			result := o.Execute(cmd.Context(), args[0])

			if store, err := history.NewStore(""); err == nil {
				if _, err := store.Save(result); err != nil {
					log.Warn().Err(err).Msg("failed to archive run result")
				}
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			for _, role := range result.Results {
				fmt.Printf("=== %s (%s/%s) [%s]\n", role.Role, role.Provider, role.Model, role.Status)
				if role.Error != "" {
					fmt.Printf("error: %s\n", role.Error)
				}
				if role.Output != "" {
					fmt.Println(role.Output)
				}
				fmt.Println()
			}
			fmt.Fprintf(os.Stderr, "run %s %s, estimated cost $%.4f (%d tokens)\n",
				result.RunID, result.Status, result.Cost.TotalUSD, result.Cost.TotalUsage.TotalTokens)
			if result.Status == orchestrator.RunAborted {
				fmt.Fprintf(os.Stderr, "aborted: %s\n", result.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the full run result as JSON")
	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the category routing table for the current mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			mode, err := cfg.RoutingConfig.Mode(modeFlag)
			if err != nil {
				return err
			}

			r := router.NewRouter(cfg.RoutingConfig, catalog.Default())
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tPROVIDER\tMODEL\tTEMP\tTHINKING")
			for _, category := range router.AllCategories {
				decision := r.Route(category, 1.0, mode, nil)
				thinking := "-"
				if decision.ThinkingBudgetTokens != nil {
					thinking = fmt.Sprintf("%d", *decision.ThinkingBudgetTokens)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
					category, decision.Provider, decision.Model, decision.Temperature, thinking)
			}
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tROLE\tIN $/M\tOUT $/M\tTHINKING\tSTREAMING")
			for _, entry := range catalog.Default().All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%v\t%v\n",
					entry.Provider, entry.Model, entry.Role,
					entry.InputPerMillion, entry.OutputPerMillion,
					entry.SupportsExtendedThinking, entry.SupportsStreaming)
			}
			return w.Flush()
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show provider availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tAVAILABLE")
			for _, name := range []string{"anthropic", "openai", "perplexity", "google"} {
				fmt.Fprintf(w, "%s\t%v\n", name, cfg.HasProvider(name))
			}
			return w.Flush()
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [run-id]",
		Short: "List archived crew runs, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.NewStore("")
			if err != nil {
				return err
			}

			if len(args) == 1 {
				result, err := store.Load(args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tRUN ID")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\n", entry.Timestamp, entry.RunID)
			}
			return w.Flush()
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithRoutingFile(configFile)
	}
	return config.Load()
}

// createAdapters builds an adapter per configured provider. Missing
// keys are not an error here; the availability registry keeps the
// fallback chains away from providers that were never configured.
func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		adapters["anthropic"] = a
	}
	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		adapters["openai"] = a
	}
	if cfg.PerplexityAPIKey != "" {
		a, err := adapter.NewPerplexityAdapter(cfg.PerplexityAPIKey)
		if err != nil {
			return nil, err
		}
		adapters["perplexity"] = a
	}
	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		adapters["google"] = a
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no providers configured; set at least one API key")
	}
	return adapters, nil
}

// callWithFallback walks the decision's provider chain for a single
// chat request, honoring the decision's temperature and thinking budget
// on the primary hop.
func callWithFallback(ctx context.Context, adapters map[string]adapter.Adapter, resolver *router.Resolver, decision router.Decision, message string) (*adapter.Response, []adapter.CallReport, error) {
	targets := resolver.Chain(decision)
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("category %s: %w", decision.Category, router.ErrProvidersExhausted)
	}

	var reports []adapter.CallReport
	var lastErr error

	for idx, target := range targets {
		adapterImpl, ok := adapters[target.Provider]
		if !ok {
			lastErr = fmt.Errorf("provider %s: %w", target.Provider, router.ErrProviderUnavailable)
			continue
		}

		req := adapter.Request{
			Model:       target.Model,
			Prompt:      message,
			Temperature: decision.Temperature,
		}
		if idx == 0 {
			req.ThinkingBudgetTokens = decision.ThinkingBudgetTokens
		}

		resp, err := adapterImpl.Generate(ctx, req)
		if err != nil {
			log.Warn().
				Str("provider", target.Provider).
				Str("model", target.Model).
				Err(err).
				Msg("provider call failed, trying next in chain")
			lastErr = err
			reports = append(reports, adapter.CallReport{
				Provider: target.Provider, Model: target.Model,
				FallbackUsed: idx > 0, Error: err.Error(),
			})
			continue
		}

		usage := adapter.Usage{}
		if resp.Usage != nil {
			usage = resp.Usage.Normalize()
		}
		reports = append(reports, adapter.CallReport{
			Provider: target.Provider, Model: target.Model,
			Usage: usage, FallbackUsed: idx > 0,
		})
		return resp, reports, nil
	}

	if lastErr == nil {
		lastErr = router.ErrProvidersExhausted
	}
	return nil, reports, fmt.Errorf("%w (last: %v)", router.ErrProvidersExhausted, lastErr)
}

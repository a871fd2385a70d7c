package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"finadvisor/internal/app"
	"finadvisor/internal/config"
	"finadvisor/internal/logging"
	"finadvisor/pkg/advisor"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// session holds what the persistent flags resolve to. The advisor is opened
// lazily so that version and config commands never touch the database.
type session struct {
	dataDir string
	envFile string
	debug   bool

	settings config.Settings
	logger   *slog.Logger
	app      *app.App
}

func (s *session) load(cmd *cobra.Command) error {
	if s.dataDir != "" {
		config.SetRuntimeDataDir(s.dataDir)
	}
	var envFiles []string
	if s.envFile != "" {
		envFiles = append(envFiles, s.envFile)
	}
	settings, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	s.settings = settings

	level := slog.LevelWarn
	if s.debug {
		level = slog.LevelDebug
	}
	s.logger = logging.NewConsoleLogger(cmd.ErrOrStderr(), level)
	return nil
}

func (s *session) advisor(ctx context.Context) (*advisor.Advisor, error) {
	if s.app == nil {
		a, err := app.New(ctx, s.settings, app.Options{Logger: s.logger})
		if err != nil {
			return nil, err
		}
		s.app = a
	}
	return s.app.Advisor, nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "advisorctl",
		Short: "advisorctl - personalised financial advice from the command line",
		Long: `advisorctl answers financial questions and prints structured investment guidance
for a financial profile, using the same engine and chat history as the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	rootCmd.AddCommand(newAdviseCmd(s))
	rootCmd.AddCommand(newGuidanceCmd(s))
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newHistoryCmd(s))
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newConfigCmd(s))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&s.dataDir, "data-dir", "", "Directory for the chat database")
	rootCmd.PersistentFlags().StringVar(&s.envFile, "env-file", "", "Env file to load instead of ./.env")
	rootCmd.PersistentFlags().BoolVar(&s.debug, "debug", false, "Enable debug logging on stderr")

	return rootCmd
}

func newAdviseCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise [QUESTION]",
		Short: "Ask the advisor a question",
		Long: `Ask a question and print the personalised answer. Pass --session to continue a
conversation. Example: advisorctl advise "Should I prepay my home loan?" --profile me.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			mode, _ := cmd.Flags().GetString("mode")
			model, _ := cmd.Flags().GetString("model")
			profileArg, _ := cmd.Flags().GetString("profile")
			asJSON, _ := cmd.Flags().GetBool("json")

			profile, err := readProfile(profileArg)
			if err != nil {
				return err
			}
			a, err := s.advisor(cmd.Context())
			if err != nil {
				return err
			}
			resp := a.GenerateAdvice(cmd.Context(), advisor.AdviceRequest{
				Message:          strings.Join(args, " "),
				SessionID:        sessionID,
				ModelName:        model,
				AdvisoryMode:     mode,
				FinancialProfile: profile,
			})
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Message)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "session: %s  model: %s  mode: %s\n", resp.SessionID, resp.ModelName, resp.AdvisoryMode)
			return nil
		},
	}

	cmd.Flags().String("session", "", "Session id to continue (a new one is generated when empty)")
	cmd.Flags().String("mode", "", "Advisory mode, see 'advisorctl modes'")
	cmd.Flags().String("model", "", "Model name passed to the LLM backend")
	cmd.Flags().String("profile", "", "Financial profile as a JSON file path or inline JSON")
	cmd.Flags().Bool("json", false, "Print the full response as JSON")

	return cmd
}

var guidanceSections = map[string]func(*advisor.FinancialProfile) any{
	"stocks":          func(p *advisor.FinancialProfile) any { return advisor.GenerateStockRecommendations(p) },
	"sip":             func(p *advisor.FinancialProfile) any { return advisor.GenerateSIPRecommendations(p) },
	"mutual-funds":    func(p *advisor.FinancialProfile) any { return advisor.GenerateMutualFundRecommendations(p) },
	"etf":             func(p *advisor.FinancialProfile) any { return advisor.GenerateETFRecommendations(p) },
	"bonds":           func(p *advisor.FinancialProfile) any { return advisor.GenerateBondRecommendations(p) },
	"alternatives":    func(p *advisor.FinancialProfile) any { return advisor.GenerateAlternativeInvestments(p) },
	"monthly-plan":    func(p *advisor.FinancialProfile) any { return advisor.CreateMonthlyInvestmentPlan(p) },
	"allocation":      func(p *advisor.FinancialProfile) any { return advisor.CalculateAssetAllocation(p) },
	"recommendations": func(p *advisor.FinancialProfile) any { return advisor.InvestmentRecommendationsText(p) },
	"budgeting":       func(p *advisor.FinancialProfile) any { return advisor.BudgetingAdvice(p) },
	"retirement":      func(p *advisor.FinancialProfile) any { return advisor.RetirementPlan(p) },
}

func newGuidanceCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guidance [SECTION]",
		Short: "Print investment guidance for a profile",
		Long: `Print comprehensive investment guidance, or one section of it: stocks, sip,
mutual-funds, etf, bonds, alternatives, monthly-plan, allocation, recommendations,
budgeting or retirement.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileArg, _ := cmd.Flags().GetString("profile")
			profile, err := readProfile(profileArg)
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "comprehensive" {
				a, err := s.advisor(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a.GenerateComprehensiveGuidance(profile))
			}
			build, ok := guidanceSections[args[0]]
			if !ok {
				return fmt.Errorf("unknown guidance section %q", args[0])
			}
			result := build(profile)
			if text, ok := result.(string); ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().String("profile", "", "Financial profile as a JSON file path or inline JSON")

	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [QUESTION]",
		Short: "Show which topic a question is routed to",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), advisor.ClassifyQuestion(strings.Join(args, " ")))
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Chat history management",
	}

	historyCmd.AddCommand(&cobra.Command{
		Use:   "list [SESSION]",
		Short: "Print the messages of a session, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.advisor(cmd.Context())
			if err != nil {
				return err
			}
			messages, err := a.GetChatHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintf(out, "No messages for session %s\n", args[0])
				return nil
			}
			for _, m := range messages {
				fmt.Fprintf(out, "[%s] %s:\n%s\n\n", m.CreatedAt.Format("2006-01-02 15:04:05"), m.Role, m.Content)
			}
			return nil
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear [SESSION]",
		Short: "Delete every message of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.advisor(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.ClearChatHistory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", args[0])
			return nil
		},
	})

	return historyCmd
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List advisory modes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, m := range advisor.AdvisoryModes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", m, m.Description())
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "advisorctl %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), s.settings)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Open the chat store and build the LLM backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.advisor(cmd.Context()); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration OK")
			return nil
		},
	})

	return configCmd
}

func showConfig(w io.Writer, s config.Settings) {
	fmt.Fprintf(w, "Data Directory:   %s\n", s.DataDir)
	fmt.Fprintf(w, "Store:            %s\n", s.Store)
	switch s.Store {
	case config.StoreSQLite:
		fmt.Fprintf(w, "Database:         %s\n", s.DBPath)
	case config.StorePostgres:
		fmt.Fprintf(w, "Postgres DSN:     %s\n", redactDSN(s.PostgresDSN))
	}
	fmt.Fprintf(w, "Responder:        %s\n", s.Responder)
	fmt.Fprintf(w, "LLM Provider:     %s\n", s.LLM.Provider)
	fmt.Fprintf(w, "LLM Model:        %s\n", s.LLM.Model)
	if s.LLM.BaseURL != "" {
		fmt.Fprintf(w, "LLM Base URL:     %s\n", s.LLM.BaseURL)
	}
	if s.LLM.APIKey != "" {
		fmt.Fprintln(w, "LLM API Key:      configured")
	} else {
		fmt.Fprintln(w, "LLM API Key:      not configured (mock answers)")
	}
	fmt.Fprintf(w, "Server Port:      %d\n", s.Port)
}

// redactDSN hides the password of a URL-style DSN.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":***"
	}
	return dsn[:scheme+3] + userinfo + dsn[at:]
}

// readProfile accepts a file path or inline JSON. Empty means no profile.
func readProfile(arg string) (*advisor.FinancialProfile, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	data := []byte(arg)
	if !strings.HasPrefix(arg, "{") {
		var err error
		if data, err = os.ReadFile(arg); err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
	}
	var profile advisor.FinancialProfile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

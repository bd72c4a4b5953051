package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/teacherhub-gateway/internal/gateway"
	"github.com/noah-isme/teacherhub-gateway/internal/repository"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/config"
	"github.com/noah-isme/teacherhub-gateway/pkg/notify"
	"github.com/noah-isme/teacherhub-gateway/pkg/postal"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errMissingToken = errors.New("admin token is required")
)

// app holds the services shared by subcommands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	locations *service.LocationService
	catalog   *service.CatalogService
	teachers  *service.TeacherSearchService
	exports   *service.ExportService
	wizard    *service.WizardService
}

var (
	appCtx *app

	backendURL string
	postalURL  string
	adminTok   string
	timeout    time.Duration
	verbose    bool
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "teacherhubctl",
		Short:        "Operator CLI for the TeacherHub gateway",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if backendURL != "" {
				cfg.Backend.BaseURL = strings.TrimRight(backendURL, "/")
			}
			if postalURL != "" {
				cfg.Postal.BaseURL = strings.TrimRight(postalURL, "/")
			}
			if timeout > 0 {
				cfg.Backend.Timeout = timeout
				cfg.Postal.Timeout = timeout
			}
			appCtx = buildApp(cfg, verbose)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (default from BACKEND_BASE_URL)")
	root.PersistentFlags().StringVar(&postalURL, "postal", "", "postal directory base URL (default from POSTAL_BASE_URL)")
	root.PersistentFlags().StringVar(&adminTok, "token", "", "admin token; prompted when an admin command needs it")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "upstream timeout override")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream calls")

	root.AddCommand(lookupCmd(), categoriesCmd(), searchCmd(), exportCmd(), wizardCmd())
	return root
}

func buildApp(cfg *config.Config, verbose bool) *app {
	logr := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logr = l
		}
	}

	backend := gateway.New(gateway.Config{
		BaseURL:      cfg.Backend.BaseURL,
		ServiceToken: cfg.Backend.ServiceToken,
		Timeout:      cfg.Backend.Timeout,
		EnquiryPath:  cfg.Backend.EnquiryPath,
		Logger:       logr,
	})
	directory := postal.NewClient(postal.Config{
		BaseURL:  cfg.Postal.BaseURL,
		StateURL: cfg.Postal.StateURL,
		Timeout:  cfg.Postal.Timeout,
	})
	validator := validation.New()

	catalog := service.NewCatalogService(backend, nil, 0, logr)
	locations := service.NewLocationService(directory, nil, logr)
	teachers := service.NewTeacherSearchService(backend, logr)
	enquiries := service.NewEnquiryService(backend, validator, notify.NewLogSender(logr), nil, logr, cfg.Notify.AppName)
	wizard := service.NewWizardService(service.WizardDeps{
		Sessions:  repository.NewMemorySessionRepository(),
		Tokens:    service.NewSessionTokenService(cfg.Wizard.TokenSecret, cfg.Wizard.TokenIssuer, cfg.Wizard.SessionTTL),
		Catalog:   catalog,
		Locations: locations,
		Teachers:  teachers,
		Enquiries: enquiries,
		Logger:    logr,
	})

	return &app{
		cfg:       cfg,
		logger:    logr,
		locations: locations,
		catalog:   catalog,
		teachers:  teachers,
		exports:   service.NewExportService(backend, logr, nil, nil),
		wizard:    wizard,
	}
}

// requireToken returns the --token value or prompts for it without echo.
func requireToken(out io.Writer) (string, error) {
	if tok := strings.TrimSpace(adminTok); tok != "" {
		return tok, nil
	}
	fmt.Fprint(out, "Admin token: ")
	raw, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", errMissingToken
	}
	return tok, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/hydromon/internal/config"
	"github.com/jgoulah/hydromon/internal/londonhydro"
	hlog "github.com/jgoulah/hydromon/internal/log"
	"github.com/jgoulah/hydromon/internal/notify"
	"github.com/jgoulah/hydromon/internal/pipeline"
	"github.com/jgoulah/hydromon/internal/publisher"
	"github.com/jgoulah/hydromon/internal/usage"
)

var (
	cfgFile    string
	debug      bool
	electrical string
	username   string
	password   string
	gmail      string
	gmailToken string

	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "hydromon",
	Short: "Report yesterday's London Hydro electricity usage",
	Long: `hydromon logs in to London Hydro, downloads yesterday's green button usage export,
and reports average, peak and total consumption. The report is emailed when
a GMail address and app token are given.`,
	PersistentPreRunE: setupLogging,
	RunE:              runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging")

	rootCmd.Flags().StringVarP(&electrical, "electrical", "e", "", "London Hydro electrical account number")
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "London Hydro username")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "London Hydro password")
	rootCmd.Flags().StringVarP(&gmail, "gmail", "g", "", "GMail address to send mail from")
	rootCmd.Flags().StringVarP(&gmailToken, "token", "t", "", "GMail SMTP token")

	for _, name := range []string{"electrical", "username", "password"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

func setupLogging(cmd *cobra.Command, args []string) error {
	l, err := hlog.New(debug)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	// Flags parsed fine; anything from here on is a runtime failure, which
	// main reports through the logger.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := londonhydro.NewClient(cfg.GetLoginURL(), cfg.GetUsageURL(), cfg.GetTimeout(), logger)

	var notifiers []pipeline.Notifier
	if mailer := emailNotifier(cfg, gmail, gmailToken, logger); mailer != nil {
		notifiers = append(notifiers, mailer)
	}

	if cfg.MQTT.Enabled {
		pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), cfg.GetRate(), logger)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}

	p := &pipeline.Pipeline{
		Auth:        client,
		Fetch:       client,
		Notifiers:   notifiers,
		ScratchPath: cfg.GetScratchFile(),
		Location:    time.Local,
		Log:         logger,
	}

	report, err := p.Run(context.Background(), pipeline.Credentials{
		Account:  electrical,
		Username: username,
		Password: password,
	})
	// A notifier failure still hands back the report; print it so the
	// numbers are not lost with the email.
	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.Body)
	}
	return err
}

// emailNotifier returns the email notifier, or nil when either the gmail
// address or the app token is missing
func emailNotifier(cfg *config.Config, gmail, token string, log *zap.SugaredLogger) *notify.Email {
	if gmail == "" || token == "" {
		log.Info("not emailing, no gmail address or token given")
		return nil
	}
	return notify.NewEmail(notify.EmailConfig{
		Server:    cfg.GetSMTPServer(),
		Port:      cfg.GetSMTPPort(),
		Username:  gmail,
		Token:     token,
		Recipient: cfg.SMTP.Recipient,
	}, log)
}

// logFailure records why the run failed with whatever context the error carries
func logFailure(err error) {
	if logger == nil {
		return
	}
	defer logger.Sync()

	fields := []interface{}{"error", err}

	var authErr *londonhydro.AuthError
	var fetchErr *londonhydro.FetchError
	var parseErr *usage.ParseError
	var notifyErr *notify.Error
	switch {
	case errors.As(err, &authErr):
		fields = append(fields, "stage", "auth", "status", authErr.StatusCode)
	case errors.As(err, &fetchErr):
		fields = append(fields, "stage", "fetch", "status", fetchErr.StatusCode, "body", fetchErr.Body)
	case errors.As(err, &parseErr):
		fields = append(fields, "stage", "parse", "row", parseErr.Row)
	case errors.Is(err, usage.ErrEmptySeries):
		fields = append(fields, "stage", "aggregate")
	case errors.As(err, &notifyErr):
		fields = append(fields, "stage", "notify", "notifier", notifyErr.Notifier)
	}

	logger.Errorw("run failed", fields...)
}

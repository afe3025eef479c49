package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jgoulah/hydromon/internal/londonhydro"
	"github.com/jgoulah/hydromon/internal/scratch"
	"github.com/jgoulah/hydromon/internal/usage"
	"github.com/jgoulah/hydromon/pkg/models"
)

// Authenticator obtains a bearer token for the account API
type Authenticator interface {
	Login(ctx context.Context, username, password string) (londonhydro.Token, error)
}

// Fetcher downloads the raw usage export for a window
type Fetcher interface {
	FetchUsage(ctx context.Context, account string, token londonhydro.Token, window models.Window) ([]byte, error)
}

// Notifier delivers a finished report somewhere
type Notifier interface {
	Name() string
	Notify(ctx context.Context, report models.Report) error
}

// Credentials identify the account being reported on
type Credentials struct {
	Account  string
	Username string
	Password string
}

// Pipeline runs one fetch, reduce and notify pass
type Pipeline struct {
	Auth        Authenticator
	Fetch       Fetcher
	Notifiers   []Notifier
	ScratchPath string
	Location    *time.Location
	Log         *zap.SugaredLogger
	Now         func() time.Time
}

// Run executes the pipeline once. Any failure stops the run and is returned
// to the caller, which decides how to exit.
func (p *Pipeline) Run(ctx context.Context, creds Credentials) (*models.Report, error) {
	log := p.Log.With("run", uuid.NewString())
	loc := p.location()

	token, err := p.Auth.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	log.Infow("logged in", "username", creds.Username)

	window := usage.DailyWindow(p.now().In(loc))
	log.Debugw("requested window", "start", window.Start, "end", window.End)

	raw, err := p.Fetch.FetchUsage(ctx, creds.Account, token, window)
	if err != nil {
		return nil, fmt.Errorf("fetching usage: %w", err)
	}

	if err := scratch.Write(p.ScratchPath, raw); err != nil {
		return nil, err
	}
	log.Debugw("export saved", "path", p.ScratchPath, "bytes", len(raw))

	series, err := p.load(loc)
	if err != nil {
		return nil, err
	}

	trimmed := usage.Trim(series, window)
	log.Infow("usage parsed", "intervals", len(series), "in_window", len(trimmed))

	stats, err := usage.Aggregate(trimmed)
	if err != nil {
		return nil, fmt.Errorf("aggregating usage: %w", err)
	}

	report := &models.Report{
		Window: window,
		Stats:  stats,
		Body:   usage.FormatReport(stats),
	}
	log.Infow("usage stats", "total_kwh", stats.Total, "average_kwh", stats.Average, "peak_kwh", stats.Peak.Value)

	if len(p.Notifiers) == 0 {
		log.Info("no notifiers configured, not sending report")
		return report, nil
	}

	for _, n := range p.Notifiers {
		log.Infow("sending report", "notifier", n.Name())
		if err := n.Notify(ctx, *report); err != nil {
			return report, fmt.Errorf("notifying: %w", err)
		}
	}

	return report, nil
}

func (p *Pipeline) load(loc *time.Location) (models.Series, error) {
	f, err := scratch.Open(p.ScratchPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := usage.ParseExport(f, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	return series, nil
}

func (p *Pipeline) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

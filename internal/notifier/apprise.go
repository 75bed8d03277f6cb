package notifier

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/metrics"
	"github.com/automabit/silowatch/internal/types"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Channel represents an outbound Apprise channel
type Channel struct {
	Name       string
	URL        string
	Categories map[types.Category]struct{} // empty means every category
}

// accepts reports whether the channel wants notifications of a category
func (c Channel) accepts(category types.Category) bool {
	if len(c.Categories) == 0 {
		return true
	}
	_, ok := c.Categories[category]
	return ok
}

// Apprise forwards notifications to an Apprise API server
type Apprise struct {
	logger   zerolog.Logger
	client   *resty.Client
	apiURL   string
	channels []Channel
}

type appriseRequest struct {
	URLs  string `json:"urls"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
}

// NewApprise creates a forwarder for the configured channels. Service URLs
// are read from the environment variables named by each channel's url_env;
// channels whose variable is unset are skipped. An empty apiURL turns the
// forwarder into a logger of what would be sent.
func NewApprise(cfg config.NotifierConfig, apiURL string, logger zerolog.Logger) *Apprise {
	a := &Apprise{
		logger: logger.With().Str("component", "apprise").Logger(),
		apiURL: apiURL,
		client: resty.New().
			SetBaseURL(apiURL).
			SetTimeout(10*time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500*time.Millisecond).
			SetRetryMaxWaitTime(2*time.Second).
			SetHeader("Content-Type", "application/json"),
	}

	names := make([]string, 0, len(cfg.Channels))
	for name := range cfg.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		chCfg := cfg.Channels[name]
		url := os.Getenv(chCfg.URLEnv)
		if url == "" {
			a.logger.Warn().
				Str("channel", name).
				Str("url_env", chCfg.URLEnv).
				Msg("Channel URL not found, skipping")
			continue
		}
		ch := Channel{Name: name, URL: url, Categories: map[types.Category]struct{}{}}
		for _, sev := range chCfg.SeverityFilter {
			ch.Categories[types.Category(sev)] = struct{}{}
		}
		a.channels = append(a.channels, ch)
	}

	return a
}

// Channels returns the channels with a resolved URL
func (a *Apprise) Channels() []Channel {
	return a.channels
}

// Notify sends a notification to every channel accepting its category.
// Delivery failures are logged and counted, never returned.
func (a *Apprise) Notify(category types.Category, title, message string) {
	for _, ch := range a.channels {
		if !ch.accepts(category) {
			continue
		}

		if a.apiURL == "" {
			metrics.ChannelSendTotal.WithLabelValues(ch.Name, "skipped").Inc()
			a.logger.Info().
				Str("channel", ch.Name).
				Str("title", title).
				Str("message", message).
				Msg("Would send notification (Apprise not configured)")
			continue
		}

		if err := a.send(ch, category, title, message); err != nil {
			metrics.ChannelSendTotal.WithLabelValues(ch.Name, "failed").Inc()
			a.logger.Error().
				Err(err).
				Str("channel", ch.Name).
				Msg("Failed to send notification")
			continue
		}

		metrics.ChannelSendTotal.WithLabelValues(ch.Name, "success").Inc()
		a.logger.Info().
			Str("channel", ch.Name).
			Str("title", title).
			Msg("Notification sent")
	}
}

// send posts one notification to the Apprise stateless endpoint
func (a *Apprise) send(ch Channel, category types.Category, title, message string) error {
	resp, err := a.client.R().
		SetBody(appriseRequest{
			URLs:  ch.URL,
			Title: title,
			Body:  message,
			Type:  appriseType(category),
		}).
		Post("/notify")
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("apprise API error: %d - %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// appriseType maps a category onto Apprise's notification types
func appriseType(category types.Category) string {
	switch category {
	case types.CategoryCritical, types.CategoryError:
		return "failure"
	case types.CategoryWarning:
		return "warning"
	case types.CategorySuccess:
		return "success"
	default:
		return "info"
	}
}

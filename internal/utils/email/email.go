package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Janescience/deliback-sub000/internal/config"
	"github.com/Janescience/deliback-sub000/internal/forecast"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendForecastDigest sends the morning demand-forecast summary to the
// operator.
func (s *Sender) SendForecastDigest(to string, result *forecast.Result) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Delivery forecast for %s (%s)",
		result.TargetDate.Format("2006-01-02"), result.Weekday.Label)
	e.Text = []byte(FormatDigest(result))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send forecast digest to %s: %v", to, err)
		return fmt.Errorf("failed to send forecast digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// FormatDigest renders the forecast result as the plain-text email body.
func FormatDigest(result *forecast.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Next delivery day: %s (%s)\n",
		result.TargetDate.Format("2006-01-02"), result.Weekday.Label)
	if result.DaysSkipped > 0 {
		fmt.Fprintf(&b, "Skipped %d holiday day(s).\n", result.DaysSkipped)
	}

	b.WriteString("\nLikely customers:\n")
	if len(result.CustomerPredictions) == 0 {
		b.WriteString("  (none qualified)\n")
	}
	for _, c := range result.CustomerPredictions {
		fmt.Fprintf(&b, "  %s - %d%% likely, ~%.1f kg across %d products\n",
			c.CustomerName, c.ScorePercent, c.TotalPredictedQuantity, len(c.Predictions))
	}

	b.WriteString("\nProduct demand:\n")
	if len(result.OverallProductDemand) == 0 {
		b.WriteString("  (no demand predicted)\n")
	}
	for _, d := range result.OverallProductDemand {
		marker := ""
		if d.IsHistoricalEstimate {
			marker = " (historical estimate)"
		}
		fmt.Fprintf(&b, "  %s: %.1f kg%s\n", d.ProductName, d.PredictedQuantity, marker)
	}

	b.WriteString("\n- deliback\n")
	return b.String()
}

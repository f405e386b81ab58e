package brief

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/model"
)

// EmailSender is the SES operation the email sink uses.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewSESSender builds an SES client from the default AWS credential chain.
func NewSESSender(ctx context.Context, region string) (EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "brief: load aws config")
	}
	return ses.NewFromConfig(cfg), nil
}

// EmailSink sends the monthly report listing every brief.
type EmailSink struct {
	Sender     EmailSender
	From       string
	Recipients []string
	// BriefDir is prefixed to brief paths in the report body.
	BriefDir string
	Now      func() time.Time
}

// Name implements Sink.
func (EmailSink) Name() string { return "email" }

// Configured reports whether the sink has everything it needs to send.
func (e EmailSink) Configured() bool {
	return e.Sender != nil && e.From != "" && len(e.Recipients) > 0
}

// Deliver implements Sink. An incomplete configuration skips the email with
// a warning and is not an error.
func (e EmailSink) Deliver(ctx context.Context, _ *model.Run, briefs []model.Brief) error {
	if !e.Configured() {
		zap.L().Warn("brief: email configuration incomplete, skipping email")
		return nil
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	body := ReportBody(briefs, e.BriefDir, now)
	_, err := e.Sender.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: e.Recipients},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(ReportSubject(now))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(e.From),
	})
	if err != nil {
		return eris.Wrap(err, "brief: send report email")
	}
	return nil
}

// ReportSubject is the monthly report subject line.
func ReportSubject(now time.Time) string {
	return "Patent Scout Monthly Report - " + now.Format("January 2006")
}

// ReportBody renders the plain-text monthly report with briefs sorted by
// priority.
func ReportBody(briefs []model.Brief, dir string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PATENT SCOUT MONTHLY REPORT - %s\n\n", now.Format("January 2006"))
	fmt.Fprintf(&b, "COMMERCIAL OPPORTUNITIES DETECTED: %d\n\n", len(briefs))

	for i, br := range ByPriority(briefs) {
		path := br.Path
		if dir != "" && path != "" {
			path = filepath.Join(dir, path)
		}
		fmt.Fprintf(&b, "OPPORTUNITY %d: %s\n", i+1, br.Title)
		fmt.Fprintf(&b, "Priority: %s (%.2f)\n", br.PriorityLabel, br.Priority)
		fmt.Fprintf(&b, "Target Companies: %d\n", br.CompanyCount)
		fmt.Fprintf(&b, "Brief file: %s\n\n---\n\n", path)
	}
	if dir != "" {
		fmt.Fprintf(&b, "Full briefs saved to: %s/\n", dir)
	}
	return b.String()
}

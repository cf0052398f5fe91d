package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"jobfinder/internal/classify"
	"jobfinder/internal/filtering"
)

//go:embed email.html.tmpl
var emailHTMLTmpl string

var emailTmpl = template.Must(template.New("email").Parse(emailHTMLTmpl))

const smtpTimeout = 30 * time.Second

// MailerConfig carries the SMTP settings for the notification email.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username when empty.
	From string
	To   []string
}

// Mailer sends the run report as a multipart plain+HTML email. Missing
// recipients or credentials downgrade the notification to a warning so a
// half-configured setup still completes its run.
type Mailer struct {
	cfg  MailerConfig
	now  func() time.Time
	send func(ctx context.Context, msg *mail.Msg) error
	log  *zap.Logger
}

func NewMailer(cfg MailerConfig, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, now: time.Now, log: log}
	m.send = m.dialAndSend
	return m
}

// Notify emails the qualified postings and reports whether an email
// actually went out.
func (m *Mailer) Notify(ctx context.Context, results classify.Results, summary *RunSummary) (bool, error) {
	if results.Len() == 0 {
		m.log.Info("no qualifying postings, skipping email notification")
		return false, nil
	}

	recipients := cleanRecipients(m.cfg.To)
	if len(recipients) == 0 {
		m.log.Warn("no notification recipients configured, email skipped")
		return false, nil
	}
	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.log.Warn("smtp credentials are not configured, email skipped")
		return false, nil
	}

	if summary == nil {
		summary = &RunSummary{
			RunTime:      m.now(),
			Sources:      []string{"Various"},
			TotalScraped: results.Len(),
			Threshold:    filtering.DefaultMinScore,
		}
	}

	msg := mail.NewMsg()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	if err := msg.From(from); err != nil {
		return false, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(recipients...); err != nil {
		return false, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(subject(results.Len(), m.now()))

	msg.SetBodyString(mail.TypeTextPlain, plainBody(results, summary))
	html, err := htmlBody(results, summary)
	if err != nil {
		m.log.Warn("rendering html body failed, sending plain text only", zap.Error(err))
	} else {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}

	if err := m.send(ctx, msg); err != nil {
		return false, fmt.Errorf("sending notification email: %w", err)
	}

	m.log.Info("notification email sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("postings", results.Len()),
	)
	return true, nil
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(smtpTimeout),
	}
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func cleanRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, r := range to {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func subject(matches int, now time.Time) string {
	return fmt.Sprintf("[Job Finder] %d match(es) found – %s", matches, now.Format("Jan 02 2006 15:04"))
}

func plainBody(results classify.Results, s *RunSummary) string {
	var b strings.Builder
	b.WriteString("JOB FINDER RUN REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Run time : %s\n", s.RunTime.Format(timestampFormat))
	fmt.Fprintf(&b, "Sources  : %s\n", strings.Join(s.Sources, ", "))
	fmt.Fprintf(&b, "Scraped  : %d\n", s.TotalScraped)
	fmt.Fprintf(&b, "Matched  : %d (>= %s%%)\n", results.Len(), formatThreshold(s.Threshold))
	b.WriteString("\nTOP MATCHES\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, r := range results {
		fmt.Fprintf(&b, "  %.1f%%  |  %s  @  %s\n", r.Score, r.Posting.Title, r.Posting.Company)
		fmt.Fprintf(&b, "         Location: %s\n", r.Posting.Location)
		fmt.Fprintf(&b, "         H1B: %s  |  MAANG: %t  |  F500: %t\n",
			sponsorshipLabel(r.Sponsorship), r.NotableEmployer, r.LargeCompany)
		fmt.Fprintf(&b, "         URL: %s\n\n", r.Posting.URL)
	}
	if len(s.Advice) > 0 {
		b.WriteString("APPLICATION TIPS\n")
		b.WriteString(strings.Repeat("-", 50) + "\n")
		for _, a := range s.Advice {
			fmt.Fprintf(&b, "  %s @ %s\n  %s\n\n", a.Title, a.Company, a.Tip)
		}
	}
	return b.String()
}

type emailData struct {
	RunTime   string
	Sources   string
	Scraped   int
	Matched   int
	Threshold string
	Rows      []emailRow
	Tips      []emailTip
	Advice    []Advice
}

type emailRow struct {
	Title           string
	URL             string
	Company         string
	Score           string
	Sponsorship     string
	NotableEmployer bool
	LargeCompany    bool
	Portal          string
	Location        string
}

type emailTip struct {
	Title    string
	Company  string
	Keywords string
}

func htmlBody(results classify.Results, s *RunSummary) (string, error) {
	data := emailData{
		RunTime:   s.RunTime.Format(timestampFormat),
		Sources:   strings.Join(s.Sources, ", "),
		Scraped:   s.TotalScraped,
		Matched:   results.Len(),
		Threshold: formatThreshold(s.Threshold),
		Advice:    s.Advice,
	}
	for _, r := range results {
		data.Rows = append(data.Rows, emailRow{
			Title:           r.Posting.Title,
			URL:             r.Posting.URL,
			Company:         r.Posting.Company,
			Score:           fmt.Sprintf("%.1f", r.Score),
			Sponsorship:     sponsorshipLabel(r.Sponsorship),
			NotableEmployer: r.NotableEmployer,
			LargeCompany:    r.LargeCompany,
			Portal:          r.Portal,
			Location:        r.Posting.Location,
		})
	}
	// Top 5 postings get a keyword breakdown.
	for _, r := range results.Top(5) {
		data.Tips = append(data.Tips, emailTip{
			Title:    r.Posting.Title,
			Company:  r.Posting.Company,
			Keywords: strings.Join(firstN(r.Suggestions, 8), ", "),
		})
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sponsorshipLabel(s classify.Sponsorship) string {
	switch s {
	case classify.SponsorshipYes:
		return "YES"
	case classify.SponsorshipNo:
		return "NO"
	default:
		return "Unknown"
	}
}

// Package mailbox delivers raw emails to the extractor: from an IMAP inbox,
// from .eml files or from JSON dumps.
package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

// Source yields a batch of emails.
type Source interface {
	Fetch(ctx context.Context) ([]types.Email, error)
}

// IMAPOptions configures an IMAPSource.
type IMAPOptions struct {
	Addr     string // host:port
	UseTLS   bool
	Email    string
	Password string

	// OAuth2 refresh-token login via OAUTHBEARER, used instead of Password
	// when RefreshToken is set.
	OAuthClientID     string
	OAuthClientSecret string
	RefreshToken      string

	Folders   []string
	MaxEmails int
	// Since/Before restrict the fetch to a date window. Zero means the
	// latest MaxEmails messages of each folder.
	Since  time.Time
	Before time.Time
}

// IMAPSource fetches the newest messages from one or more IMAP folders.
type IMAPSource struct {
	opts   IMAPOptions
	logger *zap.Logger
	tokens oauth2.TokenSource
}

func NewIMAPSource(opts IMAPOptions, logger *zap.Logger) *IMAPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Folders) == 0 {
		opts.Folders = []string{"INBOX"}
	}
	if opts.MaxEmails <= 0 {
		opts.MaxEmails = 10
	}
	s := &IMAPSource{opts: opts, logger: logger}
	if opts.RefreshToken != "" {
		s.tokens = refreshTokenSource(opts)
	}
	return s
}

// refreshTokenSource trades the stored refresh token for access tokens,
// refreshing them as they expire.
func refreshTokenSource(opts IMAPOptions) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     opts.OAuthClientID,
		ClientSecret: opts.OAuthClientSecret,
		Endpoint:     endpoints.Google,
		Scopes:       []string{"https://mail.google.com/"},
	}
	return cfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: opts.RefreshToken})
}

// Fetch connects, authenticates and returns up to MaxEmails messages per
// folder, newest first. A folder that fails is logged and skipped.
func (s *IMAPSource) Fetch(ctx context.Context) ([]types.Email, error) {
	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	// ctx 取消时断开连接, 让阻塞的命令返回
	stop := context.AfterFunc(ctx, func() { _ = c.Terminate() })
	defer stop()

	if err := s.authenticate(c); err != nil {
		return nil, err
	}

	var emails []types.Email
	for _, folder := range s.opts.Folders {
		if err := ctx.Err(); err != nil {
			return emails, err
		}
		folderEmails, err := s.fetchFolder(c, folder)
		if err != nil {
			s.logger.Warn("fetch folder failed", zap.String("folder", folder), zap.Error(err))
			continue
		}
		s.logger.Debug("fetched folder", zap.String("folder", folder), zap.Int("count", len(folderEmails)))
		emails = append(emails, folderEmails...)
	}

	sort.SliceStable(emails, func(i, j int) bool { return emails[i].Date.After(emails[j].Date) })
	return emails, nil
}

func (s *IMAPSource) connect() (*client.Client, error) {
	addr := s.opts.Addr
	if addr == "" {
		return nil, fmt.Errorf("imap: no server address configured")
	}
	var (
		c   *client.Client
		err error
	)
	if s.opts.UseTLS {
		host, _, _ := net.SplitHostPort(addr)
		c, err = client.DialTLS(addr, &tls.Config{ServerName: host})
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect imap %s: %w", addr, err)
	}
	return c, nil
}

func (s *IMAPSource) authenticate(c *client.Client) error {
	if s.tokens == nil {
		if err := c.Login(s.opts.Email, s.opts.Password); err != nil {
			return fmt.Errorf("imap login: %w", err)
		}
		return nil
	}

	tok, err := s.tokens.Token()
	if err != nil {
		return fmt.Errorf("refresh oauth token: %w", err)
	}
	auth := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: s.opts.Email,
		Token:    tok.AccessToken,
	})
	if err := c.Authenticate(auth); err != nil {
		return fmt.Errorf("imap oauthbearer: %w", err)
	}
	return nil
}

func (s *IMAPSource) fetchFolder(c *client.Client, folder string) ([]types.Email, error) {
	mbox, err := c.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, imap.FetchInternalDate, section.FetchItem()}
	messages := make(chan *imap.Message, s.opts.MaxEmails)
	done := make(chan error, 1)

	if s.opts.Since.IsZero() && s.opts.Before.IsZero() {
		from, to := lastN(mbox.Messages, s.opts.MaxEmails)
		seqset := new(imap.SeqSet)
		seqset.AddRange(from, to)
		go func() { done <- c.Fetch(seqset, items, messages) }()
	} else {
		criteria := imap.NewSearchCriteria()
		criteria.Since = s.opts.Since
		criteria.Before = s.opts.Before
		uids, err := c.UidSearch(criteria)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		uids = newestUIDs(uids, s.opts.MaxEmails)
		if len(uids) == 0 {
			return nil, nil
		}
		seqset := new(imap.SeqSet)
		seqset.AddNum(uids...)
		go func() { done <- c.UidFetch(seqset, items, messages) }()
	}

	var emails []types.Email
	for msg := range messages {
		email, err := convertMessage(msg, folder)
		if err != nil {
			s.logger.Debug("skip unparsable message", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return emails, nil
}

// lastN returns the sequence range of the newest n of total messages.
func lastN(total uint32, n int) (from, to uint32) {
	if n <= 0 || uint32(n) >= total {
		return 1, total
	}
	return total - uint32(n) + 1, total
}

// newestUIDs keeps the n highest UIDs.
func newestUIDs(uids []uint32, n int) []uint32 {
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if n > 0 && len(uids) > n {
		uids = uids[len(uids)-n:]
	}
	return uids
}

// convertMessage builds an Email from the envelope and the raw body literal.
func convertMessage(msg *imap.Message, folder string) (types.Email, error) {
	var email types.Email
	for _, lit := range msg.Body {
		if lit == nil {
			continue
		}
		parsed, err := ParseMessage(lit)
		if err != nil {
			return types.Email{}, err
		}
		email = parsed
		break
	}

	email.ID = strconv.FormatUint(uint64(msg.Uid), 10)
	email.Folder = folder
	if env := msg.Envelope; env != nil {
		if len(env.From) > 0 {
			email.From = env.From[0].Address()
		}
		if env.Subject != "" {
			email.Subject = env.Subject
		}
		if !env.Date.IsZero() {
			email.Date = env.Date
		}
		if env.MessageId != "" {
			email.MessageID = env.MessageId
		}
	}
	if email.Date.IsZero() {
		email.Date = msg.InternalDate
	}
	return email, nil
}

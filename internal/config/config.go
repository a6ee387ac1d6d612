package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	IMAP struct {
		Host              string   `yaml:"host"`
		Email             string   `yaml:"email"`
		Password          string   `yaml:"password"`
		UseTLS            bool     `yaml:"use_tls"`
		Provider          string   `yaml:"provider"`
		OAuthClientID     string   `yaml:"oauth_client_id"`
		OAuthClientSecret string   `yaml:"oauth_client_secret"`
		RefreshToken      string   `yaml:"refresh_token"`
		Folders           []string `yaml:"folders"`
	} `yaml:"imap"`
	Fetch struct {
		Start     string `yaml:"start"` // YYYY-MM-DD or RFC3339
		End       string `yaml:"end"`   // YYYY-MM-DD or RFC3339
		MaxEmails int    `yaml:"max_emails"`
		Dir       string `yaml:"dir"` // 本地邮件目录, 设置后不连接 IMAP
	} `yaml:"fetch"`
	Extract struct {
		MaxInputBytes int `yaml:"max_input_bytes"`
		Workers       int `yaml:"workers"`
	} `yaml:"extract"`
	Export struct {
		File string `yaml:"file"`
	} `yaml:"export"`
	Server struct {
		Listen string `yaml:"listen"`
		Poll   string `yaml:"poll"` // cron spec
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
	} `yaml:"log"`
}

// Load 加载 .env (如果存在) 和配置文件, 替换环境变量并填充默认值
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML document after ${VAR} expansion and applies defaults.
func Parse(b []byte) (*Config, error) {
	content := expandEnvVars(string(b))

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	_ = cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.IMAP.Email != "" {
		if cfg.IMAP.Provider == "" {
			cfg.IMAP.Provider = inferEmailProvider(cfg.IMAP.Email)
		}
		// 自动推断 IMAP 主机
		if cfg.IMAP.Host == "" {
			cfg.IMAP.Host = inferIMAPHost(cfg.IMAP.Email)
			if cfg.IMAP.Host != "" {
				cfg.IMAP.UseTLS = true
			}
		}
	}
	if len(cfg.IMAP.Folders) == 0 {
		cfg.IMAP.Folders = getDefaultFolders(cfg.IMAP.Provider)
	}

	if cfg.Fetch.MaxEmails <= 0 {
		cfg.Fetch.MaxEmails = 10
	}
	if _, err := cfg.Window(); err != nil {
		return err
	}

	if cfg.Extract.MaxInputBytes <= 0 {
		cfg.Extract.MaxInputBytes = 64 << 10
	}
	if cfg.Extract.Workers <= 0 {
		cfg.Extract.Workers = 4
	}
	if cfg.Export.File == "" {
		cfg.Export.File = "placements.csv"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Poll == "" {
		cfg.Server.Poll = "@every 30m"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	return nil
}

// FetchWindow is the optional date range of an IMAP fetch.
type FetchWindow struct {
	Since  time.Time
	Before time.Time
}

// Window parses fetch.start and fetch.end. Empty values stay zero.
func (cfg *Config) Window() (FetchWindow, error) {
	var w FetchWindow
	var err error
	if w.Since, err = parseDate(cfg.Fetch.Start); err != nil {
		return w, fmt.Errorf("fetch.start: %w", err)
	}
	if w.Before, err = parseDate(cfg.Fetch.End); err != nil {
		return w, fmt.Errorf("fetch.end: %w", err)
	}
	if !w.Since.IsZero() && !w.Before.IsZero() && w.Before.Before(w.Since) {
		return w, fmt.Errorf("fetch.end %s is before fetch.start %s", cfg.Fetch.End, cfg.Fetch.Start)
	}
	return w, nil
}

// UseIMAP reports whether the mailbox should be polled over IMAP rather
// than read from fetch.dir.
func (cfg *Config) UseIMAP() bool {
	return cfg.Fetch.Dir == "" && cfg.IMAP.Host != ""
}

// expandEnvVars 替换 ${VAR_NAME} 格式的环境变量
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // 去掉 ${ 和 }
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // 如果环境变量不存在，保持原样
	})
}

// inferEmailProvider 根据邮箱地址推断提供商
func inferEmailProvider(email string) string {
	email = strings.ToLower(email)

	switch {
	case hasSuffixInsensitive(email, "@gmail.com"), hasSuffixInsensitive(email, "@googlemail.com"):
		return "gmail"
	case hasSuffixInsensitive(email, "@outlook.com"), hasSuffixInsensitive(email, "@hotmail.com"), hasSuffixInsensitive(email, "@live.com"):
		return "outlook"
	case hasSuffixInsensitive(email, "@yahoo.com"), strings.Contains(email, "@yahoo.co."):
		return "yahoo"
	}
	return "custom"
}

// inferIMAPHost 根据邮箱地址推断 IMAP 主机
func inferIMAPHost(email string) string {
	switch inferEmailProvider(email) {
	case "gmail":
		return "imap.gmail.com:993"
	case "outlook":
		return "outlook.office365.com:993"
	case "yahoo":
		return "imap.mail.yahoo.com:993"
	default:
		return "" // 需要手动配置
	}
}

// getDefaultFolders 只读收件箱; 招聘通知不会出现在已发送里
func getDefaultFolders(provider string) []string {
	switch provider {
	case "gmail":
		return []string{"INBOX", "[Gmail]/Spam"}
	case "outlook":
		return []string{"INBOX", "Junk Email"}
	default:
		return []string{"INBOX"}
	}
}

func hasSuffixInsensitive(s, suf string) bool {
	return strings.HasSuffix(strings.ToLower(s), strings.ToLower(suf))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
}

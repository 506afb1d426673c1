package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	OData       ODataConfig       `yaml:"odata"`
	AAD         AADConfig         `yaml:"aad"`
	LLM         LLMConfig         `yaml:"llm"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// ODataConfig D365 F&O OData 相关配置
type ODataConfig struct {
	BaseURL string `yaml:"base_url"` // 例如 https://usnconeboxax1aos.cloud.onebox.dynamics.com/data
	Company string `yaml:"company"`  // dataAreaId，例如 usmf
	Timeout int    `yaml:"timeout"`  // 单次请求超时（秒）
	// InsecureSkipVerify 仅用于本地 VHD 开发环境的自签名证书
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// AADConfig Azure AD client credentials 配置
type AADConfig struct {
	LoginURL     string `yaml:"login_url"` // 例如 https://login.microsoftonline.com/
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Resource     string `yaml:"resource"`
}

// TokenURL 返回 token endpoint 地址
func (c AADConfig) TokenURL() string {
	return c.LoginURL + c.TenantID + "/oauth2/token"
}

// LLMConfig LLM 相关配置（Ollama 的 OpenAI 兼容接口）
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout int    `yaml:"timeout"` // 秒
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// DashboardConfig 仪表盘配置
type DashboardConfig struct {
	// ChartJS Chart.js 脚本地址，为空时使用 CDN
	ChartJS string `yaml:"chart_js"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置
//
// 同目录或工作目录下的 .env 会先被加载，YAML 中的 ${VAR} 引用从环境变量展开，
// 这样密钥不需要写进配置文件。
func LoadConfig(path string) (*Config, error) {
	// .env 不存在不算错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse 解析 YAML 配置内容并补全默认值
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OData.Timeout == 0 {
		c.OData.Timeout = 120
	}
	if c.AAD.LoginURL == "" {
		c.AAD.LoginURL = "https://login.microsoftonline.com/"
	}
	if !strings.HasSuffix(c.AAD.LoginURL, "/") {
		c.AAD.LoginURL += "/"
	}
	c.OData.BaseURL = strings.TrimRight(c.OData.BaseURL, "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen3:8b"
	}
	if c.LLM.APIKey == "" {
		// Ollama 不校验 key，但 OpenAI 客户端要求非空
		c.LLM.APIKey = "ollama"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 300
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0:8000"
	}
	if c.Server.Timeout == "" {
		// 需要覆盖 LLM 生成时间
		c.Server.Timeout = "360s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 5
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 600
	}
}

// Validate 检查必填项
func (c *Config) Validate() error {
	var missing []string
	if c.OData.BaseURL == "" {
		missing = append(missing, "odata.base_url")
	}
	if c.OData.Company == "" {
		missing = append(missing, "odata.company")
	}
	if c.AAD.TenantID == "" {
		missing = append(missing, "aad.tenant_id")
	}
	if c.AAD.ClientID == "" {
		missing = append(missing, "aad.client_id")
	}
	if c.AAD.ClientSecret == "" {
		missing = append(missing, "aad.client_secret")
	}
	if c.AAD.Resource == "" {
		missing = append(missing, "aad.resource")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ODataTimeout 返回 OData 单次请求超时
func (c *Config) ODataTimeout() time.Duration {
	return time.Duration(c.OData.Timeout) * time.Second
}

// ServerTimeout 返回 HTTP 请求超时，配置无法解析时使用默认值
func (c *Config) ServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 360 * time.Second
	}
	return d
}

// LLMTimeout 返回 LLM 单次请求超时
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}

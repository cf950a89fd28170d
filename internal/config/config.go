package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Security   SecurityConfig
	Engagement EngagementConfig
	Callback   CallbackConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	security, err := loadSecurityConfig()
	if err != nil {
		return nil, err
	}

	engagement, err := loadEngagementConfig()
	if err != nil {
		return nil, err
	}

	callback, err := loadCallbackConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		AI:         ai,
		Security:   security,
		Engagement: engagement,
		Callback:   callback,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// SecurityConfig 描述入站请求认证配置。
type SecurityConfig struct {
	APISecretKey string
}

func loadSecurityConfig() (SecurityConfig, error) {
	key := strings.TrimSpace(os.Getenv("API_SECRET_KEY"))
	if key == "" {
		return SecurityConfig{}, fmt.Errorf("API_SECRET_KEY must be set")
	}
	return SecurityConfig{APISecretKey: key}, nil
}

// EngagementConfig 描述会话终止策略参数。
type EngagementConfig struct {
	MaxTurns      int
	MinCategories int
	StaleTurns    int
}

func loadEngagementConfig() (EngagementConfig, error) {
	maxTurns, err := parsePositiveIntEnv("MAX_CONVERSATION_TURNS", 20)
	if err != nil {
		return EngagementConfig{}, err
	}

	minCategories, err := parsePositiveIntEnv("MIN_INTELLIGENCE_CATEGORIES", 2)
	if err != nil {
		return EngagementConfig{}, err
	}

	staleTurns, err := parsePositiveIntEnv("STALE_TURN_THRESHOLD", 5)
	if err != nil {
		return EngagementConfig{}, err
	}

	return EngagementConfig{
		MaxTurns:      maxTurns,
		MinCategories: minCategories,
		StaleTurns:    staleTurns,
	}, nil
}

// CallbackConfig 描述最终结果回传配置。URL 为空时禁用回传。
type CallbackConfig struct {
	URL     string
	Timeout time.Duration
}

func loadCallbackConfig() (CallbackConfig, error) {
	timeoutSeconds, err := parseOptionalIntEnv("CALLBACK_TIMEOUT")
	if err != nil {
		return CallbackConfig{}, err
	}

	timeout := 10 * time.Second
	if timeoutSeconds != nil {
		if *timeoutSeconds < 1 {
			return CallbackConfig{}, fmt.Errorf("CALLBACK_TIMEOUT must be positive, got %d", *timeoutSeconds)
		}
		timeout = time.Duration(*timeoutSeconds) * time.Second
	}

	return CallbackConfig{
		URL:     strings.TrimSpace(os.Getenv("CALLBACK_URL")),
		Timeout: timeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parsePositiveIntEnv(key string, defaultValue int) (int, error) {
	raw, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return defaultValue, nil
	}
	if *raw < 1 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, *raw)
	}
	return *raw, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

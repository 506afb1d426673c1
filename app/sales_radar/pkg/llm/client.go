package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
)

// Generator 聊天模型的生成接口，model.ChatModel 满足该接口
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Options 单次生成的参数和兜底文案
type Options struct {
	Temperature float32
	MaxTokens   int
	// Empty 模型返回空内容时的文案
	Empty string
	// Unavailable 重试后仍失败时的文案
	Unavailable string
}

// AssistantOptions 销售助手问答
var AssistantOptions = Options{
	Temperature: 0.2,
	MaxTokens:   600,
	Empty:       "No response.",
	Unavailable: "Ollama did not respond after retry. Please check that Ollama is running.",
}

// NarrativeOptions 销售仪表盘摘要
var NarrativeOptions = Options{
	Temperature: 0.3,
	MaxTokens:   400,
	Empty:       "AI narrative unavailable — empty response.",
	Unavailable: "Ollama did not respond. Check that Ollama is running.",
}

const (
	// noThink 关闭 qwen3 的思考模式
	noThink       = "/no_think"
	warmUpTokens  = 5
	retryAttempts = 2
	retryDelay    = 3 * time.Second
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Client 本地 LLM 客户端，调用失败时返回兜底文案而不是错误
type Client struct {
	model   Generator
	name    string
	limiter *rate.Limiter
	retry   RetryPolicy
}

// NewChatModel 创建指向 Ollama OpenAI 兼容接口的聊天模型
func NewChatModel(ctx context.Context, cfg *config.Config) (*openai.ChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}

// NewClient 创建 LLM 客户端
func NewClient(cfg *config.Config, gen Generator, limiter *rate.Limiter) *Client {
	c := &Client{
		model:   gen,
		name:    cfg.LLM.Model,
		limiter: limiter,
	}
	c.retry = RetryPolicy{
		MaxAttempts: retryAttempts,
		Delay:       retryDelay,
		Recover:     c.Warm,
	}
	return c
}

// Model 返回模型名称
func (c *Client) Model() string {
	return c.name
}

// Complete 发送提示词并返回清理后的回答
//
// 不返回错误，失败时返回 opts 中的兜底文案。
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) string {
	msgs := []*schema.Message{schema.UserMessage(prompt + "\n" + noThink)}

	var answer string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := c.generate(ctx, msgs, model.WithTemperature(opts.Temperature), model.WithMaxTokens(opts.MaxTokens))
		if err != nil {
			return err
		}
		answer = StripThinking(resp.Content)
		return nil
	})
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return fmt.Sprintf("Cannot reach Ollama after retry: %v", err)
		}
		return opts.Unavailable
	}

	logger.Log.Infof("LLM 返回 %d 个字符", len(answer))
	if answer == "" {
		return opts.Empty
	}
	return answer
}

// Warm 发送一个很短的请求让模型加载到内存，失败只记录日志
func (c *Client) Warm(ctx context.Context) {
	logger.Log.Infof("预热 LLM 模型: %s", c.name)
	msgs := []*schema.Message{schema.UserMessage("hello")}
	if _, err := c.generate(ctx, msgs, model.WithMaxTokens(warmUpTokens)); err != nil {
		logger.Log.Warnf("LLM 预热失败（不影响启动）: %v", err)
		return
	}
	logger.Log.Info("LLM 预热完成")
}

func (c *Client) generate(ctx context.Context, msgs []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	resp, err := c.model.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("empty message from model")
	}
	return resp, nil
}

// StripThinking 去掉 <think> 块和首尾空白
func StripThinking(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

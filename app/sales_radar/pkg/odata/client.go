package odata

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
)

// ErrAuth token 获取失败，阻断本次查询
var ErrAuth = errors.New("could not acquire Azure AD token")

// StatusError OData 返回非 2xx
type StatusError struct {
	Entity     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odata %s failed (status %d): %s", e.Entity, e.StatusCode, e.Body)
}

// Querier 分页查询 OData 实体
type Querier interface {
	Query(ctx context.Context, entity string, q Query) ([]json.RawMessage, error)
	Company() string
}

// Query OData 查询参数
type Query struct {
	Filter  string
	Select  string
	OrderBy string
	Expand  string
	// Top 最多返回的行数，0 表示不限制
	Top int
}

// Values 转换为 URL 查询参数
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("$filter", q.Filter)
	}
	if q.Select != "" {
		v.Set("$select", q.Select)
	}
	if q.OrderBy != "" {
		v.Set("$orderby", q.OrderBy)
	}
	if q.Expand != "" {
		v.Set("$expand", q.Expand)
	}
	if q.Top > 0 {
		v.Set("$top", strconv.Itoa(q.Top))
	}
	return v
}

// Client D365 F&O OData 客户端
type Client struct {
	baseURL string
	company string
	tokens  oauth2.TokenSource
	client  *http.Client
	limiter *rate.Limiter
}

// Ensure Client implements Querier
var _ Querier = (*Client)(nil)

// NewClient 创建一个新的 OData 客户端
func NewClient(cfg *config.Config, limiter *rate.Limiter) *Client {
	httpClient := &http.Client{Timeout: cfg.ODataTimeout()}
	if cfg.OData.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.OData.BaseURL, "/"),
		company: cfg.OData.Company,
		tokens:  NewTokenSource(cfg.AAD, httpClient),
		client:  httpClient,
		limiter: limiter,
	}
}

// Company 返回配置的 dataAreaId
func (c *Client) Company() string {
	return c.company
}

// CompanyFilter 使用客户端配置的公司构造过滤条件
func (c *Client) CompanyFilter(extra string) string {
	return CompanyFilter(c.company, extra)
}

// page OData 单页响应
type page struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// Query 执行查询并跟随 @odata.nextLink 直到没有下一页
//
// 任意一页失败都返回错误，不返回部分数据。
func (c *Client) Query(ctx context.Context, entity string, q Query) ([]json.RawMessage, error) {
	next := c.baseURL + "/" + entity
	if params := q.Values(); len(params) > 0 {
		next += "?" + params.Encode()
	}

	logger.Log.Infof("OData -> %s | filter: %s | top: %d", entity, q.Filter, q.Top)

	var rows []json.RawMessage
	for next != "" {
		p, err := c.getPage(ctx, entity, next)
		if err != nil {
			return nil, err
		}
		rows = append(rows, p.Value...)
		logger.Log.Debugf("OData %s 已获取 %d 条记录", entity, len(rows))

		if q.Top > 0 && len(rows) >= q.Top {
			rows = rows[:q.Top]
			break
		}
		next = p.NextLink
	}

	logger.Log.Infof("OData 从 %s 返回 %d 条记录", entity, len(rows))
	return rows, nil
}

func (c *Client) getPage(ctx context.Context, entity, endpoint string) (*page, error) {
	// 每页都取一次 token，缓存的 token 临近过期时会自动刷新
	token, err := c.tokens.Token()
	if err != nil {
		logger.Log.Errorf("Token 获取失败，终止 OData 查询: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-Version", "4.0")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odata %s request failed: %w", entity, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{Entity: entity, StatusCode: res.StatusCode, Body: truncate(string(body), 300)}
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("unmarshal %s page failed: %w", entity, err)
	}
	return &p, nil
}

// Fetch 查询并解码为指定类型
func Fetch[T any](ctx context.Context, q Querier, entity string, query Query) ([]T, error) {
	rows, err := q.Query(ctx, entity, query)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i, raw := range rows {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s row %d failed: %w", entity, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// CompanyFilter 在公司过滤条件之后追加额外条件
func CompanyFilter(company, extra string) string {
	base := fmt.Sprintf("dataAreaId eq '%s'", Quote(company))
	if extra == "" {
		return base
	}
	return base + " and " + extra
}

// Quote 转义 OData 字符串字面量中的单引号
func Quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	// 不截断多字节字符
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

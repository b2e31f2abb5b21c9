package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/pkg/errorx"
)

// restClient 基于 HTTP 的厨房供应商客户端
// 目前接入的供应商（Silpo、KFC）共享同一套下单 API 形状，
// 差异只在集成方式（poll/push）与状态词汇表
type restClient struct {
	id         string
	mode       Mode
	baseURL    string
	httpClient *http.Client
	statusMap  map[string]etorder.OrderStatus
}

// orderRequestBody 供应商下单请求体
type orderRequestBody struct {
	Order []RemoteItem `json:"order"`
}

// orderResponseBody 供应商订单响应体
type orderResponseBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// newRESTClient 创建供应商 REST 客户端
func newRESTClient(id string, mode Mode, baseURL string, statusMap map[string]etorder.OrderStatus) *restClient {
	return &restClient{
		id:      id,
		mode:    mode,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		statusMap: statusMap,
	}
}

// ID 稳定的供应商标识
func (c *restClient) ID() string {
	return c.id
}

// Mode 集成方式
func (c *restClient) Mode() Mode {
	return c.mode
}

// CreateOrder 在供应商系统创建子订单
func (c *restClient) CreateOrder(ctx context.Context, items []RemoteItem) (*RemoteOrder, error) {
	payload, err := json.Marshal(orderRequestBody{Order: items})
	if err != nil {
		return nil, errorx.NonRetriableWrap(err, "marshal provider order failed")
	}

	endpoint := fmt.Sprintf("%s/api/orders", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.NonRetriableWrap(err, "build provider request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if body.ID == "" {
		return nil, errorx.NonRetriable(fmt.Sprintf("provider %s returned empty order id", c.id))
	}
	status, err := c.TranslateStatus(body.Status)
	if err != nil {
		return nil, err
	}

	return &RemoteOrder{ExternalID: body.ID, Status: status}, nil
}

// GetOrder 查询供应商侧订单当前状态
func (c *restClient) GetOrder(ctx context.Context, externalID string) (*RemoteOrder, error) {
	endpoint := fmt.Sprintf("%s/api/orders/%s", c.baseURL, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errorx.NonRetriableWrap(err, "build provider request failed")
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	status, err := c.TranslateStatus(body.Status)
	if err != nil {
		return nil, err
	}

	return &RemoteOrder{ExternalID: externalID, Status: status}, nil
}

// TranslateStatus 按本供应商的状态表翻译
// 表里没有的状态视为协议变更，不可重试
func (c *restClient) TranslateStatus(remote string) (etorder.OrderStatus, error) {
	status, ok := c.statusMap[remote]
	if !ok {
		return "", errorx.NonRetriable(fmt.Sprintf("provider %s: unknown remote status %q", c.id, remote))
	}
	return status, nil
}

// do 发送请求并解析响应
// 网络错误与 5xx 可重试，4xx 视为协议问题不可重试
func (c *restClient) do(req *http.Request) (*orderResponseBody, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorx.RetriableWrap(err, fmt.Sprintf("provider %s request failed", c.id))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errorx.Retriable(fmt.Sprintf("provider %s returned status %d", c.id, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errorx.NonRetriable(fmt.Sprintf("provider %s returned status %d", c.id, resp.StatusCode))
	}

	var body orderResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errorx.RetriableWrap(err, fmt.Sprintf("provider %s: decode response failed", c.id))
	}
	return &body, nil
}

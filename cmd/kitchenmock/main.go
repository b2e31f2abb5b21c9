package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 模拟厨房：实现供应商侧的下单/查单 API，状态随时间自动推进。
// 配置 -webhook 后每次状态变化会回调主服务（推送式供应商的联调用）。

var statusFlow = []string{"not started", "cooking", "cooked", "finished"}

type mockOrder struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Items  json.RawMessage `json:"order"`
}

type kitchen struct {
	mu       sync.RWMutex
	orders   map[string]*mockOrder
	advance  time.Duration
	webhook  string // 状态回调地址，空则不回调
	provider string
}

func main() {
	port := flag.Int("port", 9001, "listen port")
	advance := flag.Duration("advance", 5*time.Second, "interval between status transitions")
	webhook := flag.String("webhook", "", "callback URL, e.g. http://localhost:8080/webhooks/kfc")
	providerName := flag.String("provider", "silpo", "provider name for logging")
	flag.Parse()

	k := &kitchen{
		orders:   make(map[string]*mockOrder),
		advance:  *advance,
		webhook:  *webhook,
		provider: *providerName,
	}

	r := gin.Default()
	r.POST("/api/orders", k.createOrder)
	r.GET("/api/orders/:id", k.getOrder)

	log.Printf("Mock kitchen %q listening on :%d (advance=%s, webhook=%q)",
		*providerName, *port, *advance, *webhook)
	if err := r.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("Mock kitchen error: %v", err)
	}
}

// createOrder 接单，之后状态按固定节奏自动推进
func (k *kitchen) createOrder(c *gin.Context) {
	var body struct {
		Order json.RawMessage `json:"order"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &mockOrder{
		ID:     uuid.NewString(),
		Status: statusFlow[0],
		Items:  body.Order,
	}

	k.mu.Lock()
	k.orders[order.ID] = order
	k.mu.Unlock()

	go k.progress(order.ID)

	log.Printf("[%s] Order accepted: %s", k.provider, order.ID)
	c.JSON(http.StatusCreated, gin.H{"id": order.ID, "status": order.Status})
}

// getOrder 查单
func (k *kitchen) getOrder(c *gin.Context) {
	k.mu.RLock()
	order, ok := k.orders[c.Param("id")]
	k.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": order.ID, "status": order.Status})
}

// progress 按节奏推进状态，配置了 webhook 时每次变化都回调
func (k *kitchen) progress(orderID string) {
	for i := 1; i < len(statusFlow); i++ {
		time.Sleep(k.advance)

		k.mu.Lock()
		order, ok := k.orders[orderID]
		if !ok {
			k.mu.Unlock()
			return
		}
		order.Status = statusFlow[i]
		status := order.Status
		k.mu.Unlock()

		log.Printf("[%s] Order %s -> %s", k.provider, orderID, status)

		if k.webhook != "" {
			k.notify(orderID, status)
		}
	}
}

// notify 回调主服务
func (k *kitchen) notify(orderID, status string) {
	payload, _ := json.Marshal(gin.H{"id": orderID, "status": status})
	resp, err := http.Post(k.webhook, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("[%s] Webhook call failed: %v", k.provider, err)
		return
	}
	defer resp.Body.Close()
	log.Printf("[%s] Webhook delivered: order=%s, status=%s, code=%d", k.provider, orderID, status, resp.StatusCode)
}

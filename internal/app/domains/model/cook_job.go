package model

// ActionTypeSuborderCook 子订单任务的动作类型
const ActionTypeSuborderCook = "suborder_cook"

// CookJob 子订单任务消息（标准化信封）
// 用于 apiserver → worker 的消息传递
type CookJob struct {
	Payload CookJobPayload `json:"payload"`
}

// CookJobPayload Job 负载
type CookJobPayload struct {
	Data CookJobData `json:"data"`
}

// CookJobData Job 数据层
type CookJobData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	ActionType string `json:"action_type"` // 动作类型，固定值 "suborder_cook"
	ID         string `json:"id"`          // 订单 ID 的字符串形式

	// 业务数据
	Data CookJobBusinessData `json:"data"`
}

// CookJobBusinessData 子订单业务数据
// 携带 worker 下单所需的全部信息，避免 worker 回查订单表
type CookJobBusinessData struct {
	OrderID      int64      `json:"order_id"`
	RestaurantID int64      `json:"restaurant_id"`
	ProviderID   string     `json:"provider_id"`
	Items        []CookItem `json:"items"`
}

// CookItem 子订单菜品
type CookItem struct {
	DishID   int64  `json:"dish_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

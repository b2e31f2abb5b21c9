package response

import "catering/internal/app/domains/repo/rpcatalog"

// RestaurantResponse 餐厅响应（含菜品）
type RestaurantResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Address string         `json:"address,omitempty"`
	Dishes  []DishResponse `json:"dishes"`
}

// DishResponse 菜品响应
type DishResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// FromMenus 目录查询结果转响应
func FromMenus(menus []*rpcatalog.RestaurantMenu) []RestaurantResponse {
	out := make([]RestaurantResponse, 0, len(menus))
	for _, m := range menus {
		dishes := make([]DishResponse, 0, len(m.Dishes))
		for _, d := range m.Dishes {
			dishes = append(dishes, DishResponse{
				ID:    d.ID,
				Name:  d.Name,
				Price: d.Price,
			})
		}
		out = append(out, RestaurantResponse{
			ID:      m.Restaurant.ID,
			Name:    m.Restaurant.Name,
			Address: m.Restaurant.Address,
			Dishes:  dishes,
		})
	}
	return out
}

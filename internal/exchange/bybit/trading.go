package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// OrderSide represents the side of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// OrderType represents the type of an order
type OrderType string

const (
	OrderTypeLimit OrderType = "Limit"
)

// TimeInForce represents how long an order remains active
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC" // Good Till Cancelled
)

// OrderStatus represents the status of an order
type OrderStatus string

// Order represents a trading order
type Order struct {
	OrderID     string      `json:"orderId"`
	OrderLinkID string      `json:"orderLinkId"`
	Symbol      string      `json:"symbol"`
	Side        OrderSide   `json:"side"`
	OrderType   OrderType   `json:"orderType"`
	Qty         string      `json:"qty"`
	Price       string      `json:"price"`
	TimeInForce TimeInForce `json:"timeInForce"`
	OrderStatus OrderStatus `json:"orderStatus"`
	CreatedTime time.Time   `json:"createdTime"`
	UpdatedTime time.Time   `json:"updatedTime"`
}

// PlaceOrderParams holds parameters for placing an order
type PlaceOrderParams struct {
	Category    string      `json:"category"`               // "spot", "linear", "inverse", "option"
	Symbol      string      `json:"symbol"`                 // Trading pair symbol
	Side        OrderSide   `json:"side"`                    // Buy or Sell
	OrderType   OrderType   `json:"orderType"`                // Market or Limit
	Qty         string      `json:"qty"`                      // Order quantity
	Price       string      `json:"price,omitempty"`          // Price for limit orders
	TimeInForce TimeInForce `json:"timeInForce,omitempty"`    // GTC, IOC, FOK
	OrderLinkID string      `json:"orderLinkId,omitempty"`    // Unique order ID set by user
}

// PlaceOrder places a new order
func (c *Client) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	// Validate required parameters
	if params.Category == "" {
		params.Category = "spot"
	}
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if params.Side == "" {
		return nil, fmt.Errorf("side is required")
	}
	if params.OrderType == "" {
		return nil, fmt.Errorf("orderType is required")
	}
	if params.Qty == "" {
		return nil, fmt.Errorf("qty is required")
	}

	// For limit orders, price is required
	if params.OrderType == OrderTypeLimit && params.Price == "" {
		return nil, fmt.Errorf("price is required for limit orders")
	}

	// Set default time in force for limit orders
	if params.OrderType == OrderTypeLimit && params.TimeInForce == "" {
		params.TimeInForce = TimeInForceGTC
	}

	// Validate and adjust quantity using instrument info
	if c.instrumentManager != nil {
		adjustedQty, err := c.instrumentManager.ValidateAndAdjustQuantity(ctx, params.Category, params.Symbol, params.Qty)
		if err != nil {
			return nil, fmt.Errorf("quantity validation failed: %w", err)
		}

		// Update the quantity if it was adjusted
		if adjustedQty != params.Qty {
			params.Qty = adjustedQty
		}
	}

	// Convert params to map for API call
	apiParams := map[string]interface{}{
		"category":  params.Category,
		"symbol":    params.Symbol,
		"side":      string(params.Side),
		"orderType": string(params.OrderType),
		"qty":       params.Qty,
	}

	// Add optional parameters
	if params.Price != "" {
		apiParams["price"] = params.Price
	}
	if params.TimeInForce != "" {
		apiParams["timeInForce"] = string(params.TimeInForce)
	}
	if params.OrderLinkID != "" {
		apiParams["orderLinkId"] = params.OrderLinkID
	}

	// Make API call
	result, err := c.httpClient.NewUtaBybitServiceWithParams(apiParams).PlaceOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Parse response
	order, err := c.parseOrderResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return order, nil
}

// PlaceLimitOrder places a limit order (simplified method)
func (c *Client) PlaceLimitOrder(ctx context.Context, category, symbol string, side OrderSide, qty, price string) (*Order, error) {
	params := PlaceOrderParams{
		Category:    category,
		Symbol:      symbol,
		Side:        side,
		OrderType:   OrderTypeLimit,
		Qty:         qty,
		Price:       price,
		TimeInForce: TimeInForceGTC,
	}

	return c.PlaceOrder(ctx, params)
}

// CancelOrder cancels an existing order
func (c *Client) CancelOrder(ctx context.Context, category, symbol, orderID string) error {
	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
		"orderId":  orderID,
	}

	_, err := c.httpClient.NewUtaBybitServiceWithParams(params).CancelOrder(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	return nil
}

// parseOrderResponse parses the order placement API response
func (c *Client) parseOrderResponse(response interface{}) (*Order, error) {
	// Convert response to ServerResponse first
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	// Parse the result as OrderResponse
	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
		Symbol      string `json:"symbol"`
		CreatedTime string `json:"createdTime"`
		UpdatedTime string `json:"updatedTime"`
		Side        string `json:"side"`
		OrderType   string `json:"orderType"`
		Qty         string `json:"qty"`
		Price       string `json:"price"`
		TimeInForce string `json:"timeInForce"`
		OrderStatus string `json:"orderStatus"`
	}

	if err := json.Unmarshal(resultBytes, &orderResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order result: %w", err)
	}

	order := &Order{
		OrderID:     orderResult.OrderID,
		OrderLinkID: orderResult.OrderLinkID,
		Symbol:      orderResult.Symbol,
		Side:        OrderSide(orderResult.Side),
		OrderType:   OrderType(orderResult.OrderType),
		Qty:         orderResult.Qty,
		Price:       orderResult.Price,
		TimeInForce: TimeInForce(orderResult.TimeInForce),
		OrderStatus: OrderStatus(orderResult.OrderStatus),
		CreatedTime: parseTimestamp(orderResult.CreatedTime),
		UpdatedTime: parseTimestamp(orderResult.UpdatedTime),
	}

	return order, nil
}

// parseTimestamp converts a millisecond-epoch string to time.Time.
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	msec, _ := strconv.ParseInt(ts, 10, 64)
	return time.UnixMilli(msec)
}

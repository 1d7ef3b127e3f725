package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// InstrumentInfo carries the lot-size constraints PlaceOrder needs to
// round an order's quantity to the symbol's step size before submission.
type InstrumentInfo struct {
	Symbol        string `json:"symbol"`
	LotSizeFilter struct {
		MinOrderQty string `json:"minOrderQty"`
		MaxOrderQty string `json:"maxOrderQty"`
		QtyStep     string `json:"qtyStep"`
	} `json:"lotSizeFilter"`
}

// InstrumentManager caches instrument info and provides quantity
// validation/rounding ahead of order placement.
type InstrumentManager struct {
	client         *Client
	instruments    map[string]*InstrumentInfo
	mutex          sync.RWMutex
	lastUpdate     time.Time
	updateInterval time.Duration
}

// NewInstrumentManager creates a new instrument manager
func NewInstrumentManager(client *Client) *InstrumentManager {
	return &InstrumentManager{
		client:         client,
		instruments:    make(map[string]*InstrumentInfo),
		updateInterval: 1 * time.Hour, // Update every hour
	}
}

// GetInstrumentInfo retrieves and caches instrument information
func (im *InstrumentManager) GetInstrumentInfo(ctx context.Context, category, symbol string) (*InstrumentInfo, error) {
	// Check cache first
	im.mutex.RLock()
	if instrument, exists := im.instruments[symbol]; exists && time.Since(im.lastUpdate) < im.updateInterval {
		im.mutex.RUnlock()
		return instrument, nil
	}
	im.mutex.RUnlock()

	// Fetch from API
	instrument, err := im.fetchInstrumentInfo(ctx, category, symbol)
	if err != nil {
		return nil, err
	}

	// Cache the result
	im.mutex.Lock()
	im.instruments[symbol] = instrument
	im.lastUpdate = time.Now()
	im.mutex.Unlock()

	return instrument, nil
}

// fetchInstrumentInfo fetches instrument information from Bybit API
func (im *InstrumentManager) fetchInstrumentInfo(ctx context.Context, category, symbol string) (*InstrumentInfo, error) {
	params := map[string]interface{}{
		"category": category,
	}

	if symbol != "" {
		params["symbol"] = symbol
	}

	result, err := im.client.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instrument info: %w", err)
	}

	// Parse the response
	instrument, err := im.parseInstrumentInfoResponse(result, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instrument info: %w", err)
	}

	return instrument, nil
}

// parseInstrumentInfoResponse parses the instrument info API response
func (im *InstrumentManager) parseInstrumentInfoResponse(response interface{}, targetSymbol string) (*InstrumentInfo, error) {
	// Convert response to ServerResponse first
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	// Parse the result
	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var instrumentResult struct {
		List []struct {
			Symbol        string `json:"symbol"`
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				MaxOrderQty string `json:"maxOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
		} `json:"list"`
	}

	if err := json.Unmarshal(resultBytes, &instrumentResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instrument result: %w", err)
	}

	// Find the target symbol
	var targetInstrument *InstrumentInfo
	for _, item := range instrumentResult.List {
		if item.Symbol == targetSymbol {
			targetInstrument = &InstrumentInfo{
				Symbol:        item.Symbol,
				LotSizeFilter: item.LotSizeFilter,
			}
			break
		}
	}

	if targetInstrument == nil {
		return nil, fmt.Errorf("instrument %s not found", targetSymbol)
	}

	return targetInstrument, nil
}

// ValidateAndAdjustQuantity validates and adjusts a quantity based on real instrument constraints
func (im *InstrumentManager) ValidateAndAdjustQuantity(ctx context.Context, category, symbol, qty string) (string, error) {
	// Get instrument info
	instrument, err := im.GetInstrumentInfo(ctx, category, symbol)
	if err != nil {
		return "", fmt.Errorf("failed to get instrument info: %w", err)
	}

	// Parse the original quantity
	originalQty, err := strconv.ParseFloat(qty, 64)
	if err != nil {
		return "", fmt.Errorf("invalid quantity format: %w", err)
	}

	// Get constraints from instrument info
	minQty := parseFloat64(instrument.LotSizeFilter.MinOrderQty)
	maxQty := parseFloat64(instrument.LotSizeFilter.MaxOrderQty)
	qtyStep := parseFloat64(instrument.LotSizeFilter.QtyStep)

	// Apply constraints
	adjustedQty := im.applyQuantityConstraints(originalQty, minQty, maxQty, qtyStep)

	return strconv.FormatFloat(adjustedQty, 'f', -1, 64), nil
}

// applyQuantityConstraints applies instrument-specific quantity constraints
func (im *InstrumentManager) applyQuantityConstraints(qty, minQty, maxQty, qtyStep float64) float64 {
	// Apply minimum quantity constraint
	if qty < minQty {
		qty = minQty
	}

	// Apply maximum quantity constraint
	if maxQty > 0 && qty > maxQty {
		qty = maxQty
	}

	// Apply quantity step constraint
	if qtyStep > 0 {
		steps := math.Round(qty / qtyStep)
		qty = steps * qtyStep

		precision := int(math.Abs(math.Log10(qtyStep)))
		multiplier := math.Pow(10, float64(precision))
		qty = math.Round(qty*multiplier) / multiplier
	}

	return qty
}

// parseFloat64 parses a numeric string field, defaulting to 0 on error.
func parseFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

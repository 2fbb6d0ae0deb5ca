package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayGateway opens orders against the Razorpay Orders API.
type RazorpayGateway struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Client    *http.Client
}

func NewRazorpayGateway(baseURL, keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) OpenOrder(ctx context.Context, req OpenOrderRequest) (OpenOrderResponse, error) {
	payload := map[string]any{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.ReceiptRef,
	}
	if len(req.Notes) > 0 {
		payload["notes"] = req.Notes
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return OpenOrderResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return OpenOrderResponse{}, err
	}
	httpReq.SetBasicAuth(g.KeyID, g.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return OpenOrderResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// body is discarded on purpose: gateway error payloads can echo
		// request details we do not want in logs
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return OpenOrderResponse{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return OpenOrderResponse{}, err
	}
	if out.ID == "" {
		return OpenOrderResponse{}, fmt.Errorf("gateway response missing order id")
	}
	return OpenOrderResponse{OrderID: out.ID}, nil
}

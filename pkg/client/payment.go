package client

import (
	"fmt"
	"net/http"
)

// PaymentClient talks to the external payment processor. Intents are created
// when a booking is submitted; the processor confirms asynchronously via a
// signed webhook.
type PaymentClient struct {
	httpClient *HttpClient
	apiKey     string
}

func NewPaymentClient(baseUrl, apiKey string) *PaymentClient {
	return &PaymentClient{
		httpClient: NewHttpClient(baseUrl),
		apiKey:     apiKey,
	}
}

type PaymentIntentRequest struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

func (c *PaymentClient) CreateIntent(req PaymentIntentRequest) (*PaymentIntent, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	resp, err := c.httpClient.POSTWithHeaders("/v1/payment_intents", req, headers)
	if err != nil {
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment processor returned %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var intent PaymentIntent
	if err := resp.DecodeJSON(&intent); err != nil {
		return nil, fmt.Errorf("could not decode payment intent: %w", err)
	}

	return &intent, nil
}

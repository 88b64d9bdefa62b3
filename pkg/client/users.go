package client

import (
	"encoding/json"
	"fmt"

	"silvalley/pkg/model"
)

type UserClient struct {
	httpClient *HttpClient
}

func NewUserClient(baseUrl string) *UserClient {
	return &UserClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *UserClient) Register(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/users/register", body)
}

func (c *UserClient) Login(email, password string) (*Response, error) {
	body := map[string]string{"email": email, "password": password}
	return c.httpClient.POST("/api/v1/users/login", body)
}

func (c *UserClient) Me(token string) (*Response, error) {
	return c.httpClient.request("GET", "/api/v1/users/me", nil, bearerHeader(token))
}

func (c *UserClient) UpdateProfile(body any, token string) (*Response, error) {
	return c.httpClient.request("PATCH", "/api/v1/users/me", body, bearerHeader(token))
}

func (c *UserClient) DecodeAuth(resp *Response) (*model.AuthResponse, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode auth wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var auth model.AuthResponse
	if err := json.Unmarshal(wrapper.Data, &auth); err != nil {
		return nil, fmt.Errorf("could not decode auth json:\n%+v\n%s", resp.ToString(), err)
	}

	return &auth, nil
}

func (c *UserClient) DecodeUser(resp *Response) (*model.User, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode user wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var user model.User
	if err := json.Unmarshal(wrapper.Data, &user); err != nil {
		return nil, fmt.Errorf("could not decode user json:\n%+v\n%s", resp.ToString(), err)
	}

	return &user, nil
}

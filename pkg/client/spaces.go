package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"silvalley/pkg/model"
)

type SpaceClient struct {
	httpClient *HttpClient
}

func NewSpaceClient(baseUrl string) *SpaceClient {
	return &SpaceClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *SpaceClient) Create(body any, token string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/spaces", body, bearerHeader(token))
}

func (c *SpaceClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/spaces?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *SpaceClient) Search(search, location string, minPrice, maxPrice string, amenities []string, limit int, offset int64) (*Response, error) {
	q := url.Values{}

	if search != "" {
		q.Set("search", search)
	}
	if location != "" {
		q.Set("location", location)
	}
	if minPrice != "" {
		q.Set("min_price", minPrice)
	}
	if maxPrice != "" {
		q.Set("max_price", maxPrice)
	}
	for _, amenity := range amenities {
		q.Add("amenity", amenity)
	}

	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/spaces?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *SpaceClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/spaces/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *SpaceClient) Update(id string, body any, token string) (*Response, error) {
	path := "/api/v1/spaces/id/" + url.PathEscape(id)
	return c.httpClient.request("PATCH", path, body, bearerHeader(token))
}

func (c *SpaceClient) Delete(id string, token string) (*Response, error) {
	path := "/api/v1/spaces/id/" + url.PathEscape(id)
	return c.httpClient.request("DELETE", path, nil, bearerHeader(token))
}

func (c *SpaceClient) DecodeSpace(resp *Response) (*model.Space, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode space wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var space model.Space
	if err := json.Unmarshal(wrapper.Data, &space); err != nil {
		return nil, fmt.Errorf("could not decode space json:\n%+v\n%s", resp.ToString(), err)
	}

	return &space, nil
}

func (c *SpaceClient) DecodeSpaces(resp *Response) ([]*model.Space, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var spaces []*model.Space
	if err := json.Unmarshal(wrapper.Data, &spaces); err != nil {
		return nil, nil, fmt.Errorf("could not decode space list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return spaces, metadata, nil
}

func bearerHeader(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

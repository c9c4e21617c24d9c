package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	resourceserrors "clubhouse/internal/resources/errors"
	httpclient "clubhouse/pkg/client"
	"clubhouse/pkg/model"
)

const resourcesPath = "/api/v1/resources/"

// ResourceClient reads resources through the resources service API.
type ResourceClient struct {
	http *httpclient.HttpClient
}

func NewResourceClient(baseURL string, timeout time.Duration) *ResourceClient {
	return &ResourceClient{http: httpclient.NewHttpClient(baseURL, timeout)}
}

func (c *ResourceClient) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	resp, err := c.http.GET(ctx, resourcesPath+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resource %s: %w", id, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var resource model.Resource
		if err := resp.DecodeJSON(&resource); err != nil {
			return nil, fmt.Errorf("failed to decode resource %s: %w", id, err)
		}
		return &resource, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	default:
		return nil, fmt.Errorf("resources service returned %d: %s", resp.StatusCode, httpclient.ErrorMessage(resp))
	}
}

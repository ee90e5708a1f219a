package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/goccy/go-json"
)

const (
	deliveryAPIPath = "/content/published/api/v1.1"
	userAgent       = "imagegallery/1.0"
)

type DeliveryClientConfig struct {
	BaseURL        string
	ChannelToken   string
	RequestTimeout time.Duration
	HTTPClient     httphelpers.HttpClient
}

/*
DeliveryClient talks to the published content delivery REST API. Every
request carries the channel token and runs under RequestTimeout on top
of whatever deadline the caller's context already has.
*/
type DeliveryClient struct {
	baseURL        string
	channelToken   string
	requestTimeout time.Duration
	httpClient     httphelpers.HttpClient
}

type listResponse[T any] struct {
	Items        []T  `json:"items"`
	TotalResults int  `json:"totalResults"`
	HasMore      bool `json:"hasMore"`
}

type namedResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type renditionFormat struct {
	Format string `json:"format"`
	Links  []link `json:"links"`
}

type rendition struct {
	Name    string            `json:"name"`
	Formats []renditionFormat `json:"formats"`
}

type assetResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Fields struct {
		Renditions []rendition `json:"renditions"`
		Native     *struct {
			Links []link `json:"links"`
		} `json:"native"`
	} `json:"fields"`
}

func NewDeliveryClient(config DeliveryClientConfig) *DeliveryClient {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}

	return &DeliveryClient{
		baseURL:        strings.TrimSuffix(config.BaseURL, "/") + deliveryAPIPath,
		channelToken:   config.ChannelToken,
		requestTimeout: config.RequestTimeout,
		httpClient:     config.HTTPClient,
	}
}

func (c *DeliveryClient) ListTaxonomies(ctx context.Context) ([]models.Taxonomy, error) {
	var (
		err      error
		response listResponse[namedResource]
	)

	if err = c.get(ctx, "list taxonomies", "/taxonomies", nil, &response); err != nil {
		return nil, err
	}

	result := make([]models.Taxonomy, 0, len(response.Items))

	for _, t := range response.Items {
		result = append(result, models.Taxonomy{ID: t.ID, Name: t.Name})
	}

	return result, nil
}

func (c *DeliveryClient) ListCategories(ctx context.Context, taxonomyID string) ([]models.Category, error) {
	var (
		err      error
		response listResponse[namedResource]
	)

	path := fmt.Sprintf("/taxonomies/%s/categories", url.PathEscape(taxonomyID))

	if err = c.get(ctx, "list categories", path, nil, &response); err != nil {
		return nil, err
	}

	result := make([]models.Category, 0, len(response.Items))

	for _, category := range response.Items {
		result = append(result, models.Category{
			ID:    category.ID,
			Name:  category.Name,
			Items: []models.Item{},
		})
	}

	return result, nil
}

/*
ListItems queries the items assigned to a category. The limit is sent to
the server; nothing is truncated here. A category ID that cannot appear
in a query expression is reported as not found without calling the
server.
*/
func (c *DeliveryClient) ListItems(ctx context.Context, categoryID string, limit int) (ItemList, error) {
	var (
		err      error
		response listResponse[namedResource]
	)

	if !isQuerySafe(categoryID) {
		return ItemList{}, &RequestError{
			Op:   "list items",
			URL:  c.baseURL + "/items",
			Kind: ErrNotFound,
			Err:  fmt.Errorf("invalid category ID %q", categoryID),
		}
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf(`(taxonomies.categories.nodes.id eq "%s")`, categoryID))
	query.Set("fields", "all")
	query.Set("limit", fmt.Sprint(limit))
	query.Set("totalResults", "true")

	if err = c.get(ctx, "list items", "/items", query, &response); err != nil {
		return ItemList{}, err
	}

	result := ItemList{
		Items:        make([]models.Item, 0, len(response.Items)),
		TotalResults: response.TotalResults,
	}

	for _, item := range response.Items {
		result.Items = append(result.Items, models.Item{ID: item.ID, Name: item.Name})
	}

	return result, nil
}

func (c *DeliveryClient) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	var (
		err   error
		asset assetResponse
	)

	if asset, err = c.getAsset(ctx, itemID); err != nil {
		return models.Item{}, err
	}

	return models.Item{
		ID:            asset.ID,
		Name:          asset.Name,
		RenditionURLs: renditionURLs(asset),
	}, nil
}

func (c *DeliveryClient) GetRenditionURLs(ctx context.Context, itemID string) (map[string]string, error) {
	var (
		err   error
		asset assetResponse
	)

	if asset, err = c.getAsset(ctx, itemID); err != nil {
		return nil, err
	}

	return renditionURLs(asset), nil
}

func (c *DeliveryClient) getAsset(ctx context.Context, itemID string) (assetResponse, error) {
	result := assetResponse{}

	query := url.Values{}
	query.Set("fields", "all")
	query.Set("expand", "all")

	err := c.get(ctx, "get item", "/items/"+url.PathEscape(itemID), query, &result)
	return result, err
}

/*
renditionURLs maps each rendition name to the self link of its jpg
format. Renditions without a jpg self link are left out. The native
asset is added as "Native".
*/
func renditionURLs(asset assetResponse) map[string]string {
	result := map[string]string{}

	for _, r := range asset.Fields.Renditions {
		for _, format := range r.Formats {
			if format.Format != "jpg" {
				continue
			}

			for _, l := range format.Links {
				if l.Rel == "self" && l.Href != "" {
					result[r.Name] = l.Href
					break
				}
			}

			break
		}
	}

	if asset.Fields.Native != nil && len(asset.Fields.Native.Links) > 0 && asset.Fields.Native.Links[0].Href != "" {
		result[models.RenditionNative] = asset.Fields.Native.Links[0].Href
	}

	return result
}

// isQuerySafe reports whether id can be quoted inside a q expression.
func isQuerySafe(id string) bool {
	return id != "" && !strings.ContainsAny(id, "\"\\")
}

func (c *DeliveryClient) get(ctx context.Context, op, path string, query url.Values, dest any) error {
	var (
		err      error
		req      *http.Request
		response *http.Response
	)

	if query == nil {
		query = url.Values{}
	}

	if c.channelToken != "" {
		query.Set("channelToken", c.channelToken)
	}

	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil); err != nil {
		return &RequestError{Op: op, URL: u, Kind: ErrTransport, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	if response, err = c.httpClient.Do(req); err != nil {
		return &RequestError{Op: op, URL: u, Kind: ErrTransport, Err: err}
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, response.Body)
		return &RequestError{Op: op, URL: u, StatusCode: response.StatusCode, Kind: ErrNotFound}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return &RequestError{
			Op:         op,
			URL:        u,
			StatusCode: response.StatusCode,
			Kind:       ErrTransport,
			Err:        fmt.Errorf("response: %s", strings.TrimSpace(string(body))),
		}
	}

	if err = json.NewDecoder(response.Body).Decode(dest); err != nil {
		return &RequestError{Op: op, URL: u, Kind: ErrTransport, Err: fmt.Errorf("error decoding response: %w", err)}
	}

	return nil
}

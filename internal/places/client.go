package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Place is a ranked lookup candidate or a resolved place detail.
type Place struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Client is a thin wrapper over a Places-style REST API, used for tag entry.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type detailsResponse struct {
	Result struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

// Search returns ranked candidates for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if query == "" {
		return nil, errors.New("query required")
	}

	u := fmt.Sprintf("%s/textsearch/json?query=%s&key=%s", c.endpoint, url.QueryEscape(query), c.apiKey)
	var parsed searchResponse
	if err := c.get(ctx, u, &parsed); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		places = append(places, Place{
			ID:      r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
		})
	}
	return places, nil
}

// Details resolves one place id to its structured detail.
func (c *Client) Details(ctx context.Context, placeID string) (Place, error) {
	if placeID == "" {
		return Place{}, errors.New("place id required")
	}

	u := fmt.Sprintf("%s/details/json?place_id=%s&key=%s", c.endpoint, url.QueryEscape(placeID), c.apiKey)
	var parsed detailsResponse
	if err := c.get(ctx, u, &parsed); err != nil {
		return Place{}, err
	}
	if parsed.Result.PlaceID == "" {
		return Place{}, errors.New("place not found")
	}

	return Place{
		ID:      parsed.Result.PlaceID,
		Name:    parsed.Result.Name,
		Address: parsed.Result.FormattedAddress,
		Lat:     parsed.Result.Geometry.Location.Lat,
		Lng:     parsed.Result.Geometry.Location.Lng,
	}, nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("places endpoint returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package moderation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Gate classifies an image before the upload pipeline may persist it.
type Gate interface {
	Inspect(ctx context.Context, image []byte) (Verdict, error)
}

// VisionGate talks to a Vision-style images:annotate endpoint. The call is
// issued once per upload: no retry, no cancellation beyond the context.
type VisionGate struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewVisionGate(endpoint, apiKey string) *VisionGate {
	return &VisionGate{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		SafeSearchAnnotation *struct {
			Adult    string `json:"adult"`
			Violence string `json:"violence"`
			Racy     string `json:"racy"`
		} `json:"safeSearchAnnotation"`
	} `json:"responses"`
}

func (g *VisionGate) Inspect(ctx context.Context, image []byte) (Verdict, error) {
	if len(image) == 0 {
		return Verdict{}, errors.New("empty image")
	}

	body, err := json.Marshal(annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	})
	if err != nil {
		return Verdict{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+g.apiKey, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, fmt.Errorf("safe search endpoint returned %d", resp.StatusCode)
	}

	var parsed annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Verdict{}, err
	}
	if len(parsed.Responses) == 0 || parsed.Responses[0].SafeSearchAnnotation == nil {
		return Verdict{}, errors.New("no safe search annotation returned")
	}

	ann := parsed.Responses[0].SafeSearchAnnotation
	return Verdict{
		Adult:    ParseLikelihood(ann.Adult),
		Violence: ParseLikelihood(ann.Violence),
		Racy:     ParseLikelihood(ann.Racy),
	}, nil
}

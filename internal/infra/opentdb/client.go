package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the public OpenTriviaDB endpoint.
const DefaultBaseURL = "https://opentdb.com"

// Client talks to the OpenTriviaDB HTTP API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client for baseURL. A nil httpClient uses
// http.DefaultClient; an empty baseURL uses DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type categoriesResponse struct {
	Categories []domain.Category `json:"trivia_categories"`
}

type questionsResponse struct {
	ResponseCode int                  `json:"response_code"`
	Results      []domain.RawQuestion `json:"results"`
}

// FetchCategories lists every category.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var payload categoriesResponse
	if err := c.get(ctx, "/api_category.php", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Categories, nil
}

// FetchQuestions requests params.Amount questions. Only the optional filters
// that are set are sent. A non-zero response_code is an error.
func (c *Client) FetchQuestions(ctx context.Context, params domain.QuestionParams) ([]domain.RawQuestion, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(params.Amount))
	if params.Category != nil {
		query.Set("category", strconv.Itoa(*params.Category))
	}
	if params.Difficulty != nil {
		query.Set("difficulty", string(*params.Difficulty))
	}
	if params.Type != nil {
		query.Set("type", string(*params.Type))
	}

	var payload questionsResponse
	if err := c.get(ctx, "/api.php", query, &payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d (%s)", payload.ResponseCode, responseCodeText(payload.ResponseCode))
	}
	return payload.Results, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode opentdb response: %w", err)
	}
	return nil
}

func responseCodeText(code int) string {
	switch code {
	case 1:
		return "not enough questions for the query"
	case 2:
		return "invalid parameter"
	case 3:
		return "token not found"
	case 4:
		return "token exhausted"
	case 5:
		return "rate limited"
	}
	return "unknown"
}

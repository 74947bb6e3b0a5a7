package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"table-games-backend/internal/config"
	"table-games-backend/internal/models"
)

// defaultWinProbability applies when the upstream response omits a usable
// win probability, so a sparse payload never locks customers out of winning.
const defaultWinProbability = 0.3

// UpstreamClient talks to the promotions API that owns registration and
// receives play/feedback notifications. Registration is synchronous; the two
// notifications are fire-and-forget and never block a committed state
// transition.
type UpstreamClient struct {
	baseURL        string
	restaurantName string
	client         *http.Client

	// Observer, when set, receives the result of each async notification.
	// It exists for tests and metrics; errors are otherwise only logged.
	Observer func(event string, err error)
}

func NewUpstreamClient(cfg *config.Config) *UpstreamClient {
	return &UpstreamClient{
		baseURL:        cfg.UpstreamURL,
		restaurantName: cfg.RestaurantName,
		client:         &http.Client{Timeout: 10 * time.Second},
	}
}

type upstreamError struct {
	Message string `json:"message"`
}

// Register forwards a validated registration upstream and tolerantly parses
// the response. Upstream errors surface as a single message for the UI.
func (u *UpstreamClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	endpoint := fmt.Sprintf("%s/api/register?restaurantName=%s", u.baseURL, url.QueryEscape(u.restaurantName))

	body, err := json.Marshal(map[string]string{
		"name":  req.Name,
		"phone": req.Phone,
		"email": req.Email,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("registration request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registration response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ue upstreamError
		if json.Unmarshal(data, &ue) == nil && ue.Message != "" {
			return nil, fmt.Errorf("%s", ue.Message)
		}
		return nil, fmt.Errorf("registration failed with status %d", resp.StatusCode)
	}

	return parseRegisterResponse(data)
}

// parseRegisterResponse decodes the upstream payload without trusting its
// shape: offers may be missing and winProbability arrives as a number or a
// string depending on upstream version.
func parseRegisterResponse(data []byte) (*models.RegisterResponse, error) {
	var raw struct {
		Token                 string          `json:"token"`
		LatestPlayedTimestamp string          `json:"latestPlayedTimestamp"`
		Offers                json.RawMessage `json:"offers"`
		TableName             string          `json:"tableName"`
		WinProbability        json.RawMessage `json:"winProbability"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed registration response: %v", err)
	}
	if raw.Token == "" {
		return nil, fmt.Errorf("registration response missing token")
	}

	out := &models.RegisterResponse{
		Token:                 raw.Token,
		LatestPlayedTimestamp: raw.LatestPlayedTimestamp,
		TableName:             raw.TableName,
		Offers:                map[string][]string{},
	}

	if len(raw.Offers) > 0 {
		if err := json.Unmarshal(raw.Offers, &out.Offers); err != nil {
			log.Printf("Ignoring malformed offers in registration response: %v", err)
			out.Offers = map[string][]string{}
		}
	}

	// Missing or unparseable probabilities fall back to the historical 0.3
	// default; an explicit 0 is honored.
	out.WinProbability = defaultWinProbability
	if len(raw.WinProbability) > 0 && string(raw.WinProbability) != "null" {
		var p float64
		if err := json.Unmarshal(raw.WinProbability, &p); err == nil {
			out.WinProbability = p
		} else {
			var s string
			if json.Unmarshal(raw.WinProbability, &s) == nil {
				if _, err := fmt.Sscanf(s, "%f", &p); err == nil {
					out.WinProbability = p
				}
			}
		}
	}

	return out, nil
}

// ReportPlayed notifies the upstream that a game was played. Best effort:
// runs on its own goroutine, no retry, errors only logged and observed.
func (u *UpstreamClient) ReportPlayed(token, tableName string) {
	go u.post("game-played", map[string]any{
		"token":     token,
		"tableName": tableName,
	})
}

// ReportFeedback forwards a submitted rating upstream, same semantics as
// ReportPlayed.
func (u *UpstreamClient) ReportFeedback(token string, rating int) {
	go u.post("feedback", map[string]any{
		"token":  token,
		"rating": rating,
	})
}

func (u *UpstreamClient) post(event string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := u.doPost(ctx, event, payload)
	if err != nil {
		log.Printf("Upstream %s notification failed: %v", event, err)
	}
	if u.Observer != nil {
		u.Observer(event, err)
	}
}

func (u *UpstreamClient) doPost(ctx context.Context, event string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/%s", u.baseURL, event)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

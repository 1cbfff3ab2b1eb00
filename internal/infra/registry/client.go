package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"appointment_notifier/internal/domain/appointment"

	"github.com/sirupsen/logrus"
)

// clinicIDHeader carries the clinic identifier expected by the registry API.
const clinicIDHeader = "clinicaNasNuvens-cid"

// Client fetches paginated appointment listings from the clinic registry
// over HTTP with basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	user       string
	pass       string
	clinicID   string
	log        *logrus.Entry
}

func NewClient(baseURL, user, pass, clinicID string, log *logrus.Entry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    baseURL,
		user:       user,
		pass:       pass,
		clinicID:   clinicID,
		log:        log,
	}
}

// pageDTO mirrors one page object of the listing response. The registry
// sometimes wraps pages in an array and sometimes returns a bare object;
// both shapes are accepted.
type pageDTO struct {
	Lista        []appointment.Record `json:"lista"`
	TotalPaginas *int                 `json:"totalPaginas"`
}

// FetchPage requests one page of the listing for the date window.
// Pagination starts at page 0.
func (c *Client) FetchPage(ctx context.Context, from, to time.Time, page int) (*appointment.Page, error) {
	endpoint := fmt.Sprintf("%s/lista", c.baseURL)
	params := url.Values{}
	params.Set("dataInicial", from.Format("2006-01-02"))
	params.Set("dataFinal", to.Format("2006-01-02"))
	params.Set("pagina", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building listing request: %w", err)
	}
	req.SetBasicAuth(c.user, c.pass)
	req.Header.Set(clinicIDHeader, c.clinicID)
	req.Header.Set("Accept", "application/json")

	c.log.WithFields(logrus.Fields{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
		"page": page,
	}).Debug("fetching appointment page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching appointment page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry returned status %d for page %d: %s", resp.StatusCode, page, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading listing response: %w", err)
	}

	pages, err := decodePages(body)
	if err != nil {
		return nil, fmt.Errorf("decoding listing response for page %d: %w", page, err)
	}

	result := &appointment.Page{}
	var totalPages *int
	for _, p := range pages {
		result.Records = append(result.Records, p.Lista...)
		if p.TotalPaginas != nil && totalPages == nil {
			totalPages = p.TotalPaginas
		}
	}
	if totalPages != nil {
		result.HasMore = page < *totalPages
	} else {
		result.HasMore = len(result.Records) > 0
	}
	return result, nil
}

func decodePages(body []byte) ([]pageDTO, error) {
	var many []pageDTO
	if err := json.Unmarshal(body, &many); err == nil {
		return many, nil
	}
	var one pageDTO
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []pageDTO{one}, nil
}

// Package countries supplies the dial-code options for the phone entry
// form: live data from restcountries.com with a built-in fallback table,
// so the auth flow works offline too.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const defaultEndpoint = "https://restcountries.com/v3.1/all?fields=name,idd,flags,cca2"

// Option is a dial-code choice presented on the phone entry form.
type Option struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dialCode"`
	Flag     string `json:"flag"`
}

type Service struct {
	client   *http.Client
	log      *zerolog.Logger
	endpoint string
}

func NewService(log *zerolog.Logger) *Service {
	return &Service{
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
		endpoint: defaultEndpoint,
	}
}

// Options returns the live country list, or the fallback table when the
// API is unreachable or returns nothing usable.
func (s *Service) Options(ctx context.Context) []Option {
	opts, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("country fetch failed, using fallback data")
		return Fallback()
	}
	if len(opts) == 0 {
		return Fallback()
	}
	return opts
}

func (s *Service) fetch(ctx context.Context) ([]Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("restcountries http %d", resp.StatusCode)
	}

	var payload []struct {
		Name struct {
			Common string `json:"common"`
		} `json:"name"`
		IDD struct {
			Root     string   `json:"root"`
			Suffixes []string `json:"suffixes"`
		} `json:"idd"`
		Flags struct {
			SVG string `json:"svg"`
		} `json:"flags"`
		CCA2 string `json:"cca2"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	out := make([]Option, 0, len(payload))
	for _, c := range payload {
		if c.IDD.Root == "" || len(c.IDD.Suffixes) == 0 {
			continue
		}
		out = append(out, Option{
			Name:     c.Name.Common,
			Code:     c.CCA2,
			DialCode: c.IDD.Root + c.IDD.Suffixes[0],
			Flag:     c.Flags.SVG,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Fallback returns a static table of major countries.
func Fallback() []Option {
	return []Option{
		{Name: "Australia", Code: "AU", DialCode: "+61", Flag: "🇦🇺"},
		{Name: "Brazil", Code: "BR", DialCode: "+55", Flag: "🇧🇷"},
		{Name: "Canada", Code: "CA", DialCode: "+1", Flag: "🇨🇦"},
		{Name: "China", Code: "CN", DialCode: "+86", Flag: "🇨🇳"},
		{Name: "France", Code: "FR", DialCode: "+33", Flag: "🇫🇷"},
		{Name: "Germany", Code: "DE", DialCode: "+49", Flag: "🇩🇪"},
		{Name: "India", Code: "IN", DialCode: "+91", Flag: "🇮🇳"},
		{Name: "Indonesia", Code: "ID", DialCode: "+62", Flag: "🇮🇩"},
		{Name: "Italy", Code: "IT", DialCode: "+39", Flag: "🇮🇹"},
		{Name: "Japan", Code: "JP", DialCode: "+81", Flag: "🇯🇵"},
		{Name: "Mexico", Code: "MX", DialCode: "+52", Flag: "🇲🇽"},
		{Name: "Netherlands", Code: "NL", DialCode: "+31", Flag: "🇳🇱"},
		{Name: "Nigeria", Code: "NG", DialCode: "+234", Flag: "🇳🇬"},
		{Name: "Pakistan", Code: "PK", DialCode: "+92", Flag: "🇵🇰"},
		{Name: "Singapore", Code: "SG", DialCode: "+65", Flag: "🇸🇬"},
		{Name: "South Korea", Code: "KR", DialCode: "+82", Flag: "🇰🇷"},
		{Name: "Spain", Code: "ES", DialCode: "+34", Flag: "🇪🇸"},
		{Name: "Turkey", Code: "TR", DialCode: "+90", Flag: "🇹🇷"},
		{Name: "United Kingdom", Code: "GB", DialCode: "+44", Flag: "🇬🇧"},
		{Name: "United States", Code: "US", DialCode: "+1", Flag: "🇺🇸"},
	}
}

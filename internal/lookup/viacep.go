package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/validation"
)

// Address is a ViaCEP record.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	IBGE         string `json:"ibge,omitempty"`
	DDD          string `json:"ddd,omitempty"`
}

// flexBool accepts true, "true" and friends. ViaCEP has sent both.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*b = flexBool(x)
	case string:
		*b = flexBool(strings.EqualFold(strings.TrimSpace(x), "true"))
	default:
		*b = false
	}
	return nil
}

type viaCEPResponse struct {
	Address
	Erro flexBool `json:"erro"`
}

type ViaCEPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

func NewViaCEPClient(baseURL string, httpClient *http.Client, logger logging.Logger) *ViaCEPClient {
	return &ViaCEPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With("component", "viacep"),
	}
}

// AddressByCEP resolves a postal code. cep may carry a mask ("01310-100").
func (c *ViaCEPClient) AddressByCEP(ctx context.Context, cep string) (*Address, error) {
	digits := validation.Digits(cep)
	if len(digits) != 8 {
		return nil, fmt.Errorf("%w: invalid CEP, it must have 8 digits", common.ErrValidation)
	}

	var resp viaCEPResponse
	if err := getJSON(ctx, c.http, "viacep", fmt.Sprintf("%s/%s/json/", c.baseURL, digits), &resp); err != nil {
		c.logger.Warn(ctx, "cep lookup failed", "cep", digits, "error", err)
		return nil, err
	}
	if resp.Erro {
		return nil, fmt.Errorf("%w: CEP %s", common.ErrAddressNotFound, digits)
	}
	c.logger.Debug(ctx, "cep resolved", "cep", digits, "city", resp.City)
	return &resp.Address, nil
}

// SearchCEP lists the postal codes matching a street in a city. uf is the
// two-letter state code; city and street need at least 3 characters.
func (c *ViaCEPClient) SearchCEP(ctx context.Context, uf, city, street string) ([]Address, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	city = strings.TrimSpace(city)
	street = strings.TrimSpace(street)

	if len(uf) != 2 || !isLetters(uf) {
		return nil, fmt.Errorf("%w: state must be a 2-letter code", common.ErrValidation)
	}
	if utf8.RuneCountInString(city) < 3 {
		return nil, fmt.Errorf("%w: city must have at least 3 characters", common.ErrValidation)
	}
	if utf8.RuneCountInString(street) < 3 {
		return nil, fmt.Errorf("%w: street must have at least 3 characters", common.ErrValidation)
	}

	u := fmt.Sprintf("%s/%s/%s/%s/json/", c.baseURL, uf, url.PathEscape(city), url.PathEscape(street))
	var raw json.RawMessage
	if err := getJSON(ctx, c.http, "viacep", u, &raw); err != nil {
		c.logger.Warn(ctx, "cep search failed", "uf", uf, "city", city, "error", err)
		return nil, err
	}

	var list []Address
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil, fmt.Errorf("%w: no results for %s/%s/%s", common.ErrAddressNotFound, uf, city, street)
	}
	return list, nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

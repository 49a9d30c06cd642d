// Package geo lists Brazilian states and cities from the IBGE localities API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Place is a state or a city.
type Place struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Lookup lists states and the cities of one state, sorted by name.
type Lookup interface {
	States(ctx context.Context) ([]Place, error)
	Cities(ctx context.Context, uf string) ([]Place, error)
}

type ibgeState struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type ibgeCity struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// IBGEClient calls the public IBGE API.
type IBGEClient struct {
	baseURL string
	http    *http.Client
}

func NewIBGEClient(baseURL string, timeout time.Duration) *IBGEClient {
	return &IBGEClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *IBGEClient) States(ctx context.Context) ([]Place, error) {
	var raw []ibgeState
	if err := c.get(ctx, c.baseURL+"/estados", &raw); err != nil {
		return nil, err
	}
	places := make([]Place, 0, len(raw))
	for _, s := range raw {
		places = append(places, Place{ID: s.ID, Code: s.Sigla, Name: s.Nome})
	}
	SortByName(places)
	return places, nil
}

func (c *IBGEClient) Cities(ctx context.Context, uf string) ([]Place, error) {
	uf, err := NormalizeUF(uf)
	if err != nil {
		return nil, err
	}
	var raw []ibgeCity
	if err := c.get(ctx, c.baseURL+"/estados/"+uf+"/municipios", &raw); err != nil {
		return nil, err
	}
	places := make([]Place, 0, len(raw))
	for _, m := range raw {
		places = append(places, Place{ID: m.ID, Code: strconv.Itoa(m.ID), Name: m.Nome})
	}
	SortByName(places)
	return places, nil
}

func (c *IBGEClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ibge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ibge returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ibge response: %w", err)
	}
	return nil
}

// NormalizeUF upper-cases a two letter state code.
func NormalizeUF(uf string) (string, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if len(uf) != 2 || uf[0] < 'A' || uf[0] > 'Z' || uf[1] < 'A' || uf[1] > 'Z' {
		return "", fmt.Errorf("invalid state code %q", uf)
	}
	return uf, nil
}

// SortByName orders places the way a Portuguese speaker expects (accents ignored at first level).
func SortByName(places []Place) {
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(places, func(i, j int) bool {
		return col.CompareString(places[i].Name, places[j].Name) < 0
	})
}

// seed_demo.go is a standalone script that seeds a demo universe with a deal and a
// handful of buyers via the fitscore API.
//
// Usage:
//
//	go run scripts/seed_demo.go -api http://localhost:8700 -token $FITSCORE_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
)

func fp(v float64) *float64 { return &v }

type universePayload struct {
	Name             string                   `json:"name"`
	SizeWeight       float64                  `json:"size_weight"`
	GeographyWeight  float64                  `json:"geography_weight"`
	ServiceWeight    float64                  `json:"service_weight"`
	OwnerGoalsWeight float64                  `json:"owner_goals_weight"`
	Behavior         map[string]interface{}   `json:"behavior"`
	Instructions     []map[string]interface{} `json:"instructions,omitempty"`
}

type dealPayload struct {
	Name             string   `json:"name"`
	Revenue          *float64 `json:"revenue,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	LocationCount    int      `json:"location_count"`
	GeographicStates []string `json:"geographic_states"`
	Services         []string `json:"services"`
	OwnerGoalsText   string   `json:"owner_goals_text"`
}

type buyerPayload struct {
	Name              string                   `json:"name"`
	BuyerType         string                   `json:"buyer_type,omitempty"`
	TargetRevenueMin  *float64                 `json:"target_revenue_min,omitempty"`
	TargetRevenueMax  *float64                 `json:"target_revenue_max,omitempty"`
	TargetGeographies []string                 `json:"target_geographies,omitempty"`
	TargetServices    []string                 `json:"target_services,omitempty"`
	ThesisSummary     string                   `json:"thesis_summary,omitempty"`
	HQLocation        string                   `json:"hq_location,omitempty"`
	ExtractionSources []map[string]interface{} `json:"extraction_sources,omitempty"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "fitscore API base URL")
	token := flag.String("token", "", "admin bearer token")
	flag.Parse()

	universe := universePayload{
		Name:             "Texas HVAC roll-up",
		SizeWeight:       30,
		GeographyWeight:  25,
		ServiceWeight:    25,
		OwnerGoalsWeight: 20,
		Behavior: map[string]interface{}{
			"size_strictness":          "moderate",
			"below_minimum_handling":   "penalize",
			"penalize_single_location": true,
			"geography_mode":           "flexible",
		},
		Instructions: []map[string]interface{}{
			{
				"adjustment_type":  "boost",
				"adjustment_value": 5,
				"reason":           "sponsor relationship",
				"condition":        `buyer_type == "pe_firm"`,
			},
		},
	}

	var u struct {
		ID string `json:"id"`
	}
	post(*apiURL+"/api/v1/universes", *token, universe, &u)
	log.Printf("universe created: %s", u.ID)

	deal := dealPayload{
		Name:             "Lone Star Mechanical",
		Revenue:          fp(10_500_000),
		EBITDA:           fp(1_800_000),
		LocationCount:    3,
		GeographicStates: []string{"TX", "OK"},
		Services:         []string{"HVAC", "Plumbing"},
		OwnerGoalsText:   "Owner wants to retire within eighteen months after a full sale.",
	}
	var d struct {
		ID string `json:"id"`
	}
	post(*apiURL+"/api/v1/universes/"+u.ID+"/deals", "", deal, &d)
	log.Printf("deal created: %s", d.ID)

	buyers := []buyerPayload{
		{
			Name:              "Apex Home Services Capital",
			BuyerType:         "pe_firm",
			TargetRevenueMin:  fp(5_000_000),
			TargetRevenueMax:  fp(15_000_000),
			TargetGeographies: []string{"TX", "OK", "LA"},
			TargetServices:    []string{"HVAC", "Plumbing", "Electrical"},
			ThesisSummary:     "Consolidating residential HVAC and plumbing operators across Texas; sellers ready to retire preferred.",
			HQLocation:        "Dallas, TX",
			ExtractionSources: []map[string]interface{}{{"type": "transcript"}},
		},
		{
			Name:              "Gulf Coast Strategic Holdings",
			BuyerType:         "strategic",
			TargetRevenueMin:  fp(20_000_000),
			TargetRevenueMax:  fp(60_000_000),
			TargetGeographies: []string{"TX", "FL"},
			TargetServices:    []string{"HVAC"},
			ThesisSummary:     "Bolt-on acquisitions where ownership stays on through integration.",
			ExtractionSources: []map[string]interface{}{{"type": "guide"}},
		},
		{
			Name:      "Meridian Search Partners",
			BuyerType: "search_fund",
		},
	}
	for _, b := range buyers {
		var out struct {
			ID string `json:"id"`
		}
		post(*apiURL+"/api/v1/universes/"+u.ID+"/buyers", "", b, &out)
		log.Printf("buyer created: %s (%s)", out.ID, b.Name)
	}

	var scored struct {
		Count int `json:"count"`
	}
	post(*apiURL+"/api/v1/universes/"+u.ID+"/deals/"+d.ID+"/score", "", nil, &scored)
	log.Printf("scored %d buyers against %s", scored.Count, deal.Name)
}

func post(url, token string, payload, out interface{}) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			log.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("POST %s: %s", url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode response: %v", err)
		}
	}
}

// fetchprobe POSTs a filter request to a running offers-bff instance and
// renders the resulting facets and offers as tables. Handy for checking what
// the client app would see for a given type selection.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/offers-bff/internal/engine"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8081", "base URL of the offers-bff instance")
	typeFilter := flag.String("type", "", "offer type id to filter by (empty = all types)")
	limit := flag.Int("limit", 20, "maximum number of offers to show")
	flag.Parse()

	criteria := engine.Criteria{
		QuestionFilter: map[string][]string{},
		ShowAllFilters: true,
		ShowLimit:      *limit,
	}
	if *typeFilter != "" {
		criteria.TypeFilter = typeFilter
	}

	body, err := json.Marshal(criteria)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(*baseURL+"/fetch", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Response Status: %s\n", resp.Status)
		os.Exit(1)
	}

	var result engine.Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Printf("Error decoding response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total offers: %d, shown: %d of %d matching\n\n",
		result.TotalOfferCount, len(result.OffersToShow), result.OffersToShowTotalCount)

	if len(result.Filters) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Question", "Option", "Count"})
		for _, filter := range result.Filters {
			for _, option := range filter.Options {
				t.AppendRow(table.Row{filter.Question, option.Label, option.Count})
			}
		}
		t.Render()
		fmt.Println()
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Code", "Type", "Reaction", "Parameters"})
	for _, offer := range result.OffersToShow {
		t.AppendRow(table.Row{offer.Code, offer.Type.ID, offer.AllowReaction, len(offer.Parameters)})
	}
	t.Render()
}

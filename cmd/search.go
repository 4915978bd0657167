package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/quota"
	"github.com/sells-group/leadscout/internal/search"
)

var (
	searchTenant   string
	searchLat      float64
	searchLng      float64
	searchRadius   float64
	searchIndustry string
	searchKeywords string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search an area for scored leads",
	Long: `Fans out to the listing, census, weather, geocoding, and permit providers,
scores every candidate for the given trade or niche, and groups residential
leads into door-knocking clusters. Repeated searches of the same area and
industry are served from cache without consuming quota.

Examples:
  # Roofing leads within 10 miles of downtown Austin
  search --tenant acme --lat 30.2672 --lng -97.7431 --radius 10 --industry roofing

  # Photographer spots with custom listing keywords
  search --tenant acme --lat 30.2672 --lng -97.7431 --industry photographer --keywords "wedding venue,botanical garden"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSearchEnv(ctx, "search")
		if err != nil {
			return err
		}
		defer env.Close()

		radius := searchRadius
		if radius <= 0 {
			radius = cfg.Search.DefaultRadiusMiles
		}

		q := search.Query{
			Tenant:      searchTenant,
			Center:      geo.Point{Lat: searchLat, Lng: searchLng},
			RadiusMiles: radius,
			Industry:    searchIndustry,
		}
		if searchKeywords != "" {
			for _, kw := range strings.Split(searchKeywords, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					q.Keywords = append(q.Keywords, kw)
				}
			}
		}

		resp, err := env.Service.Search(ctx, q)
		if err != nil {
			var exceeded *quota.ExceededError
			if errors.As(err, &exceeded) {
				fmt.Fprintf(os.Stderr, "daily search limit reached; resets at %s\n",
					exceeded.ResetAt.Format("15:04 MST"))
				return err
			}
			return eris.Wrap(err, "search")
		}

		zap.L().Info("search complete",
			zap.String("tenant", q.Tenant),
			zap.String("industry", q.Industry),
			zap.Int("leads", resp.Meta.Count),
			zap.Int("clusters", len(resp.Payload.Clusters)),
			zap.Bool("from_cache", resp.Meta.FromCache),
			zap.Int("remaining", resp.Meta.Remaining),
		)

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		printSearchSummary(resp)
		return nil
	},
}

// printSearchSummary renders a terminal digest: clusters first, then the
// top-scored individual leads.
func printSearchSummary(resp *search.Response) {
	if len(resp.Payload.Clusters) > 0 {
		fmt.Printf("Clusters (%d):\n", len(resp.Payload.Clusters))
		for _, cl := range resp.Payload.Clusters {
			reason := ""
			if len(cl.TopReasons) > 0 {
				reason = cl.TopReasons[0]
			}
			fmt.Printf("  %-14s %2d leads  avg %.1f  %s\n", cl.ID, cl.PropertyCount, cl.AvgScore, reason)
		}
		fmt.Println()
	}

	limit := 15
	if len(resp.Payload.Leads) < limit {
		limit = len(resp.Payload.Leads)
	}
	fmt.Printf("Top leads (%d of %d):\n", limit, resp.Meta.Count)
	for _, lead := range resp.Payload.Leads[:limit] {
		fmt.Printf("  %4.1f  %-40s %s\n", lead.Score, truncate(lead.Name, 40), lead.Trigger)
	}
	if resp.Meta.FromCache {
		fmt.Println("\n(served from cache)")
	}
	fmt.Printf("\nSearches remaining today: %d\n", resp.Meta.Remaining)
}

// truncate shortens s to at most n runes, ending in an ellipsis. Rune-wise
// so multi-byte business names are never split mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchTenant, "tenant", "", "tenant identifier (required)")
	f.Float64Var(&searchLat, "lat", 0, "search center latitude (required)")
	f.Float64Var(&searchLng, "lng", 0, "search center longitude (required)")
	f.Float64Var(&searchRadius, "radius", 0, "search radius in miles (default from config)")
	f.StringVar(&searchIndustry, "industry", "", "trade or niche profile id, e.g. roofing (required)")
	f.StringVar(&searchKeywords, "keywords", "", "comma-separated listing keywords overriding the industry defaults")
	f.BoolVar(&searchJSON, "json", false, "print the full response as JSON")
	_ = searchCmd.MarkFlagRequired("tenant")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lng")
	_ = searchCmd.MarkFlagRequired("industry")
	rootCmd.AddCommand(searchCmd)
}

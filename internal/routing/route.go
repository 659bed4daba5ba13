// Package routing implements the path-search engine: single- and multi-hop
// search, the parallel dispatcher, the split optimiser, and the router facade.
package routing

import (
	"encoding/json"
	"fmt"
	"strings"

	"routing-engine/internal/graph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RouteHop is one swap through one pool.
type RouteHop struct {
	Pool      *graph.PoolEdge `json:"pool"`
	TokenIn   common.Address  `json:"tokenIn"`
	TokenOut  common.Address  `json:"tokenOut"`
	AmountIn  *uint256.Int    `json:"amountIn"`
	AmountOut *uint256.Int    `json:"amountOut"`
}

// MarshalJSON renders the hop amounts as decimal strings.
func (h *RouteHop) MarshalJSON() ([]byte, error) {
	type Alias RouteHop
	return json.Marshal(&struct {
		AmountIn  string `json:"amountIn"`
		AmountOut string `json:"amountOut"`
		*Alias
	}{
		AmountIn:  h.AmountIn.Dec(),
		AmountOut: h.AmountOut.Dec(),
		Alias:     (*Alias)(h),
	})
}

// UnmarshalJSON parses the hop amounts from decimal strings.
func (h *RouteHop) UnmarshalJSON(data []byte) error {
	type Alias RouteHop
	aux := &struct {
		AmountIn  string `json:"amountIn"`
		AmountOut string `json:"amountOut"`
		*Alias
	}{
		Alias: (*Alias)(h),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.AmountIn != "" {
		amountIn, err := uint256.FromDecimal(aux.AmountIn)
		if err != nil {
			return fmt.Errorf("invalid amountIn format: %s", aux.AmountIn)
		}
		h.AmountIn = amountIn
	}
	if aux.AmountOut != "" {
		amountOut, err := uint256.FromDecimal(aux.AmountOut)
		if err != nil {
			return fmt.Errorf("invalid amountOut format: %s", aux.AmountOut)
		}
		h.AmountOut = amountOut
	}
	return nil
}

// Route is an ordered sequence of hops; hops[i].TokenOut == hops[i+1].TokenIn.
type Route struct {
	Hops           []RouteHop   `json:"hops"`
	TotalAmountIn  *uint256.Int `json:"totalAmountIn"`
	TotalAmountOut *uint256.Int `json:"totalAmountOut"`
	PriceImpact    float64      `json:"priceImpact"`
	GasEstimate    uint64       `json:"gasEstimate"`
}

// HopCount returns the number of hops in the route.
func (r *Route) HopCount() int {
	return len(r.Hops)
}

// RouteString renders the route as a token chain for display.
func (r *Route) RouteString() string {
	if len(r.Hops) == 0 {
		return ""
	}
	parts := []string{r.Hops[0].TokenIn.Hex()}
	for i := range r.Hops {
		parts = append(parts, r.Hops[i].TokenOut.Hex())
	}
	return strings.Join(parts, " -> ")
}

// Clone returns a deep copy of the route. Pool edges are shared; they are
// replaced, never mutated, by graph upserts.
func (r *Route) Clone() *Route {
	hops := make([]RouteHop, len(r.Hops))
	for i, h := range r.Hops {
		hops[i] = RouteHop{
			Pool:      h.Pool,
			TokenIn:   h.TokenIn,
			TokenOut:  h.TokenOut,
			AmountIn:  new(uint256.Int).Set(h.AmountIn),
			AmountOut: new(uint256.Int).Set(h.AmountOut),
		}
	}
	return &Route{
		Hops:           hops,
		TotalAmountIn:  new(uint256.Int).Set(r.TotalAmountIn),
		TotalAmountOut: new(uint256.Int).Set(r.TotalAmountOut),
		PriceImpact:    r.PriceImpact,
		GasEstimate:    r.GasEstimate,
	}
}

// MarshalJSON renders the route totals as decimal strings.
func (r *Route) MarshalJSON() ([]byte, error) {
	type Alias Route
	return json.Marshal(&struct {
		TotalAmountIn  string `json:"totalAmountIn"`
		TotalAmountOut string `json:"totalAmountOut"`
		*Alias
	}{
		TotalAmountIn:  r.TotalAmountIn.Dec(),
		TotalAmountOut: r.TotalAmountOut.Dec(),
		Alias:          (*Alias)(r),
	})
}

// UnmarshalJSON parses the route totals from decimal strings.
func (r *Route) UnmarshalJSON(data []byte) error {
	type Alias Route
	aux := &struct {
		TotalAmountIn  string `json:"totalAmountIn"`
		TotalAmountOut string `json:"totalAmountOut"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TotalAmountIn != "" {
		totalIn, err := uint256.FromDecimal(aux.TotalAmountIn)
		if err != nil {
			return fmt.Errorf("invalid totalAmountIn format: %s", aux.TotalAmountIn)
		}
		r.TotalAmountIn = totalIn
	}
	if aux.TotalAmountOut != "" {
		totalOut, err := uint256.FromDecimal(aux.TotalAmountOut)
		if err != nil {
			return fmt.Errorf("invalid totalAmountOut format: %s", aux.TotalAmountOut)
		}
		r.TotalAmountOut = totalOut
	}
	return nil
}

// WeightedRoute pairs a route with its share of the total input.
type WeightedRoute struct {
	Route      *Route `json:"route"`
	Percentage uint8  `json:"percentage"`
}

// SplitRoute divides one logical swap across parallel sub-routes. Percentages
// always sum to exactly 100.
type SplitRoute struct {
	Routes              []WeightedRoute `json:"routes"`
	TotalAmountIn       *uint256.Int    `json:"totalAmountIn"`
	TotalAmountOut      *uint256.Int    `json:"totalAmountOut"`
	CombinedPriceImpact float64         `json:"combinedPriceImpact"`
	TotalGasEstimate    uint64          `json:"totalGasEstimate"`
}

// SingleSplitRoute wraps one route as a 100% split.
func SingleSplitRoute(route *Route) *SplitRoute {
	return &SplitRoute{
		Routes:              []WeightedRoute{{Route: route, Percentage: 100}},
		TotalAmountIn:       new(uint256.Int).Set(route.TotalAmountIn),
		TotalAmountOut:      new(uint256.Int).Set(route.TotalAmountOut),
		CombinedPriceImpact: route.PriceImpact,
		TotalGasEstimate:    route.GasEstimate,
	}
}

// SplitCount returns the number of sub-routes.
func (s *SplitRoute) SplitCount() int {
	return len(s.Routes)
}

// Clone returns a deep copy of the split route.
func (s *SplitRoute) Clone() *SplitRoute {
	routes := make([]WeightedRoute, len(s.Routes))
	for i, wr := range s.Routes {
		routes[i] = WeightedRoute{Route: wr.Route.Clone(), Percentage: wr.Percentage}
	}
	return &SplitRoute{
		Routes:              routes,
		TotalAmountIn:       new(uint256.Int).Set(s.TotalAmountIn),
		TotalAmountOut:      new(uint256.Int).Set(s.TotalAmountOut),
		CombinedPriceImpact: s.CombinedPriceImpact,
		TotalGasEstimate:    s.TotalGasEstimate,
	}
}

// MarshalJSON renders the split totals as decimal strings.
func (s *SplitRoute) MarshalJSON() ([]byte, error) {
	type Alias SplitRoute
	return json.Marshal(&struct {
		TotalAmountIn  string `json:"totalAmountIn"`
		TotalAmountOut string `json:"totalAmountOut"`
		*Alias
	}{
		TotalAmountIn:  s.TotalAmountIn.Dec(),
		TotalAmountOut: s.TotalAmountOut.Dec(),
		Alias:          (*Alias)(s),
	})
}

// UnmarshalJSON parses the split totals from decimal strings.
func (s *SplitRoute) UnmarshalJSON(data []byte) error {
	type Alias SplitRoute
	aux := &struct {
		TotalAmountIn  string `json:"totalAmountIn"`
		TotalAmountOut string `json:"totalAmountOut"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TotalAmountIn != "" {
		totalIn, err := uint256.FromDecimal(aux.TotalAmountIn)
		if err != nil {
			return fmt.Errorf("invalid totalAmountIn format: %s", aux.TotalAmountIn)
		}
		s.TotalAmountIn = totalIn
	}
	if aux.TotalAmountOut != "" {
		totalOut, err := uint256.FromDecimal(aux.TotalAmountOut)
		if err != nil {
			return fmt.Errorf("invalid totalAmountOut format: %s", aux.TotalAmountOut)
		}
		s.TotalAmountOut = totalOut
	}
	return nil
}

package fetcher

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// DefaultEndpoint is the Portland heritage trees layer on portlandmaps.com.
const DefaultEndpoint = "https://www.portlandmaps.com/arcgis/rest/services/Public/Parks_Misc/MapServer/21/query"

// Client fetches the tree inventory from an ArcGIS feature service endpoint.
type Client struct {
	http     *HTTPFetcher
	endpoint string
}

// NewClient creates a Client against the given query endpoint.
func NewClient(endpoint string, opts HTTPOptions) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		http:     NewHTTPFetcher(opts),
		endpoint: endpoint,
	}
}

// FetchFeatures issues one GET selecting all features in GeoJSON form and
// decodes the FeatureCollection. Network and parse failures both surface as
// errors; the caller owns the degraded state.
func (c *Client) FetchFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "arcgis: parse endpoint %s", c.endpoint)
	}
	q := u.Query()
	q.Set("where", "1=1")
	q.Set("outFields", "*")
	q.Set("f", "geojson")
	u.RawQuery = q.Encode()

	body, err := c.http.Download(ctx, u.String())
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: fetch features")
	}
	defer body.Close() //nolint:errcheck

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(body).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "arcgis: decode feature collection")
	}

	zap.L().Info("fetched feature collection",
		zap.String("endpoint", c.endpoint),
		zap.Int("features", len(fc.Features)),
	)
	return &fc, nil
}

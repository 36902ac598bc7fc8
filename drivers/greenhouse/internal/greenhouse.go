package driver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/drivers/abstract"
	"github.com/datazip-inc/greenhouse-tap/pkg/restapi"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

var loadManifest = sync.OnceValues(func() (*Manifest, error) {
	return LoadManifest(manifestYAML)
})

// Greenhouse extracts Harvest resources through one shared, authenticated client
type Greenhouse struct {
	config *Config
	state  *types.State
	client *restapi.Client

	// overrides for tests
	retryDelay time.Duration
}

func (g *Greenhouse) GetConfigRef() abstract.Config {
	g.config = &Config{}
	return g.config
}

func (g *Greenhouse) Spec() any {
	return Config{}
}

func (g *Greenhouse) Type() string {
	return string(constants.Greenhouse)
}

func (g *Greenhouse) SetupState(state *types.State) {
	g.state = state
}

func (g *Greenhouse) MaxRetries() int {
	return g.config.MaxRetries
}

func (g *Greenhouse) StartDate() *time.Time {
	return g.config.GetStartDate()
}

// Setup resolves the credential mode and builds the client; nothing is
// requested until a stream is read
func (g *Greenhouse) Setup(_ context.Context) error {
	if g.config == nil {
		g.config = &Config{}
	}
	if err := g.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	if _, err := loadManifest(); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: g.config.Timeout()}
	var auth restapi.Authenticator
	switch g.config.Mode() {
	case OAuth:
		auth = restapi.NewOAuthAuthenticator(g.config.GetClientID(), g.config.ClientSecret, g.config.AuthURL, httpClient)
	default:
		auth = restapi.NewBasicAuthenticator(g.config.APIKey)
	}

	opts := []restapi.Option{
		restapi.WithHTTPClient(httpClient),
		restapi.WithMaxRetries(g.config.MaxRetries),
	}
	if g.retryDelay > 0 {
		opts = append(opts, restapi.WithRetryDelay(g.retryDelay))
	}
	client, err := restapi.NewClient(g.config.APIURL, auth, opts...)
	if err != nil {
		return fmt.Errorf("failed to create harvest client: %s", err)
	}

	g.client = client
	return nil
}

// Check sets up the client and reads a single user so bad credentials fail
// before any stream runs
func (g *Greenhouse) Check(ctx context.Context) error {
	if err := g.Setup(ctx); err != nil {
		return err
	}

	if _, err := g.client.Get(ctx, "/users", url.Values{constants.PageSizeParam: []string{"1"}}); err != nil {
		return fmt.Errorf("failed to connect to harvest %s: %s", g.config.Mode().APIVersion(), err)
	}

	logger.Infof("Connected to Harvest %s using %s credentials", g.config.Mode().APIVersion(), g.config.Mode())
	return nil
}

func (g *Greenhouse) GetStreamNames(_ context.Context) ([]string, error) {
	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}

	return manifest.Names(), nil
}

func (g *Greenhouse) ProduceSchema(_ context.Context, stream string) (*types.Stream, error) {
	spec, err := g.spec(stream)
	if err != nil {
		return nil, err
	}

	return spec.ToStream(), nil
}

// ChildContext maps a parent record to the context of the named child stream
func (g *Greenhouse) ChildContext(child string, parent map[string]any) (types.StreamContext, error) {
	spec, err := g.spec(child)
	if err != nil {
		return nil, err
	}

	return spec.ChildContext(parent)
}

// Backfill reads every record of the stream; child streams are read for the
// given parent context
func (g *Greenhouse) Backfill(ctx context.Context, stream types.StreamInterface, streamCtx types.StreamContext, cb abstract.BackfillMsgFn) error {
	return g.read(ctx, stream, streamCtx, nil, cb)
}

// StreamIncrementalChanges reads records changed since the bookmark
func (g *Greenhouse) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark *time.Time, cb abstract.BackfillMsgFn) error {
	return g.read(ctx, stream, nil, bookmark, cb)
}

func (g *Greenhouse) read(ctx context.Context, stream types.StreamInterface, streamCtx types.StreamContext, bookmark *time.Time, cb abstract.BackfillMsgFn) error {
	if g.client == nil {
		return fmt.Errorf("harvest client not initialized, run setup first")
	}

	spec, err := g.spec(stream.Name())
	if err != nil {
		return err
	}

	path, err := spec.ResolvePath(streamCtx)
	if err != nil {
		return err
	}

	version := g.config.Mode().APIVersion()
	params := func(next *url.URL) url.Values {
		return GetURLParams(version, spec, bookmark, next)
	}

	return g.client.Paginate(ctx, path, params, func(records []map[string]any) error {
		for _, record := range records {
			if err := cb(ctx, PostProcess(record, streamCtx)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *Greenhouse) spec(stream string) (*StreamSpec, error) {
	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}

	spec, found := manifest.Get(stream)
	if !found {
		return nil, fmt.Errorf("stream[%s] not found in manifest", stream)
	}

	return spec, nil
}

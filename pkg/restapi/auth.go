package restapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authenticator authorizes a single outbound request
type Authenticator interface {
	Authenticate(ctx context.Context, req *http.Request) error
}

// BasicAuthenticator sends the API key as username with an empty password
type BasicAuthenticator struct {
	apiKey string
}

func NewBasicAuthenticator(apiKey string) *BasicAuthenticator {
	return &BasicAuthenticator{apiKey: apiKey}
}

func (b *BasicAuthenticator) Authenticate(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(b.apiKey, "")
	return nil
}

// OAuthAuthenticator exchanges client credentials for a bearer token on first
// use and shares it with every request of the run. A token is fetched again
// only once its reported lifetime has passed; a 401 never triggers a refresh.
type OAuthAuthenticator struct {
	config     clientcredentials.Config
	httpClient *http.Client

	mu     sync.Mutex
	source oauth2.TokenSource
}

func NewOAuthAuthenticator(clientID, clientSecret, tokenURL string, httpClient *http.Client) *OAuthAuthenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OAuthAuthenticator{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
	}
}

// Token returns the cached token, exchanging the credentials when none is held
func (o *OAuthAuthenticator) Token() (*oauth2.Token, error) {
	o.mu.Lock()
	if o.source == nil {
		// token fetches must outlive the request that triggered the first one
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient)
		o.source = o.config.TokenSource(ctx)
	}
	source := o.source
	o.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange at %s: %s", ErrAuthentication, o.config.TokenURL, err)
	}

	return token, nil
}

func (o *OAuthAuthenticator) Authenticate(_ context.Context, req *http.Request) error {
	token, err := o.Token()
	if err != nil {
		return err
	}

	token.SetAuthHeader(req)
	return nil
}

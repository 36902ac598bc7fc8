package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/datazip-inc/greenhouse-tap/utils/typeutils"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// AuthMode is fixed by the credential fields present in the config
type AuthMode string

const (
	BasicAuth AuthMode = "basic"
	OAuth     AuthMode = "oauth2"
)

// APIVersion returns the Harvest API generation served to the mode
func (m AuthMode) APIVersion() string {
	if m == OAuth {
		return "v3"
	}

	return "v1"
}

type Config struct {
	APIKey         string `json:"api_key,omitempty" jsonschema:"title=API Key,description=Harvest API key for Basic Auth (v1). Use this OR client_id/client_secret"`
	ClientID       string `json:"client_id,omitempty" jsonschema:"title=Client ID,description=OAuth2 client id for the Harvest API (v3)"`
	ClientKey      string `json:"client_key,omitempty" jsonschema:"title=Client Key,description=Alias of client_id"`
	ClientSecret   string `json:"client_secret,omitempty" jsonschema:"title=Client Secret,description=OAuth2 client secret for the Harvest API (v3)"`
	StartDate      string `json:"start_date,omitempty" jsonschema:"title=Start Date,description=The earliest record date to sync,format=date-time"`
	APIURL         string `json:"api_url,omitempty" validate:"omitempty,url" jsonschema:"title=API URL,description=Base URL of the Harvest API; derived from the credential mode when empty"`
	AuthURL        string `json:"auth_url,omitempty" validate:"omitempty,url" jsonschema:"title=Auth URL,description=OAuth2 token endpoint,default=https://auth.greenhouse.io/token"`
	MaxRetries     int    `json:"max_retries,omitempty" validate:"gte=0" jsonschema:"title=Max Retries,description=Attempts per page answering 429 or 5xx,default=3"`
	RequestTimeout int    `json:"request_timeout,omitempty" validate:"gte=0" jsonschema:"title=Request Timeout,description=HTTP timeout in seconds; 0 keeps the client default"`

	mode      AuthMode
	startDate *time.Time
}

// Validate fills unset fields from TAP_GREENHOUSE_* variables, resolves the
// credential mode and reports every problem at once
func (c *Config) Validate() error {
	c.loadEnv()

	if err := utils.Validate(c); err != nil {
		return err
	}

	var result *multierror.Error
	clientID := c.GetClientID()
	switch {
	case c.APIKey != "":
		c.mode = BasicAuth
		if clientID != "" || c.ClientSecret != "" {
			logger.Warn("both api_key and client credentials configured; using api_key (Harvest v1)")
		}
	case clientID != "" && c.ClientSecret != "":
		c.mode = OAuth
	default:
		result = multierror.Append(result, fmt.Errorf("api_key is unset"))
		if clientID == "" {
			result = multierror.Append(result, fmt.Errorf("client_id (or client_key) is unset"))
		}
		if c.ClientSecret == "" {
			result = multierror.Append(result, fmt.Errorf("client_secret is unset"))
		}
	}

	if c.ClientID != "" && c.ClientKey != "" && c.ClientID != c.ClientKey {
		result = multierror.Append(result, fmt.Errorf("client_id and client_key differ; set only one"))
	}

	c.startDate = nil
	if c.StartDate != "" {
		startDate, err := typeutils.ParseTimestamp(c.StartDate)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid start_date: %s", err))
		} else {
			c.startDate = &startDate
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid greenhouse config: %s", err)
	}

	if c.APIURL == "" {
		c.APIURL = utils.Ternary(c.mode == OAuth, constants.HarvestV3, constants.HarvestV1).(string)
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")
	if c.AuthURL == "" {
		c.AuthURL = constants.TokenURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = constants.DefaultMaxRetries
	}

	return nil
}

func (c *Config) loadEnv() {
	env := viper.New()
	env.SetEnvPrefix(constants.EnvPrefix)
	env.AutomaticEnv()

	fill := func(field *string, key string) {
		if *field == "" {
			*field = strings.TrimSpace(env.GetString(key))
		}
	}
	fill(&c.APIKey, "api_key")
	fill(&c.ClientID, "client_id")
	fill(&c.ClientKey, "client_key")
	fill(&c.ClientSecret, "client_secret")
	fill(&c.StartDate, "start_date")
	fill(&c.APIURL, "api_url")
	fill(&c.AuthURL, "auth_url")
}

// GetClientID returns client_id, falling back to its client_key alias
func (c *Config) GetClientID() string {
	return utils.Ternary(c.ClientID != "", c.ClientID, c.ClientKey).(string)
}

// Mode is resolved by Validate
func (c *Config) Mode() AuthMode {
	return c.mode
}

// GetStartDate is nil when no start_date is configured
func (c *Config) GetStartDate() *time.Time {
	return c.startDate
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

package parquet

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/greenhouse-tap/utils"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

type Config struct {
	Path      string `json:"local_path" validate:"required" jsonschema:"title=Local Path,description=Directory the parquet files are written to"`
	Bucket    string `json:"s3_bucket,omitempty" jsonschema:"title=S3 Bucket,description=Upload closed files to this bucket"`
	Region    string `json:"s3_region,omitempty" validate:"required_with=Bucket" jsonschema:"title=S3 Region"`
	AccessKey string `json:"s3_access_key,omitempty" validate:"required_with=SecretKey" jsonschema:"title=S3 Access Key"`
	SecretKey string `json:"s3_secret_key,omitempty" validate:"required_with=AccessKey" jsonschema:"title=S3 Secret Key"`
	Prefix    string `json:"s3_path,omitempty" jsonschema:"title=S3 Path,description=Key prefix of uploaded files"`
	// S3 endpoint for custom S3-compatible services (like MinIO)
	S3Endpoint string `json:"s3_endpoint,omitempty" validate:"omitempty,url" jsonschema:"title=S3 Endpoint"`

	Compression string `json:"compression,omitempty" jsonschema:"title=Compression,enum=snappy,enum=gzip,enum=zstd,enum=none,default=snappy"`
}

func (c *Config) Validate() error {
	if _, err := c.Codec(); err != nil {
		return err
	}

	return utils.Validate(c)
}

// Codec resolves the configured compression, snappy when unset
func (c *Config) Codec() (compress.Codec, error) {
	switch strings.ToLower(c.Compression) {
	case "", "snappy":
		return &pqgo.Snappy, nil
	case "gzip":
		return &pqgo.Gzip, nil
	case "zstd":
		return &pqgo.Zstd, nil
	case "none", "uncompressed":
		return &pqgo.Uncompressed, nil
	default:
		return nil, fmt.Errorf("invalid compression codec: %s. Valid options are: snappy, gzip, zstd, none", c.Compression)
	}
}

// UploadEnabled reports whether closed files go to S3
func (c *Config) UploadEnabled() bool {
	return c.Bucket != ""
}

package parquet

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/goccy/go-json"
	pqgo "github.com/parquet-go/parquet-go"
)

// Row is the on-disk layout; records keep their untyped shape as JSON
type Row struct {
	OlakeID        string    `parquet:"_olake_id"`
	OlakeTimestamp time.Time `parquet:"_olake_timestamp,timestamp(microsecond)"`
	OperationType  string    `parquet:"_op_type"`
	Data           string    `parquet:"data,json"`
}

type Parquet struct {
	options  *destination.Options
	config   *Config
	stream   types.StreamInterface
	file     *os.File
	filePath string
	writer   *pqgo.GenericWriter[Row]
	rows     int64
	s3Client *s3.Client
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Spec() any {
	return Config{}
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

// s3Clients holds one client per bucket config, shared by the writer threads
var s3Clients = struct {
	sync.Mutex
	clients map[s3ClientKey]*s3.Client
}{clients: make(map[s3ClientKey]*s3.Client)}

type s3ClientKey struct {
	region    string
	endpoint  string
	accessKey string
	secretKey string
}

// setup s3 client if a bucket is configured
func (p *Parquet) initS3Client(ctx context.Context) error {
	if !p.config.UploadEnabled() || p.s3Client != nil {
		return nil
	}

	key := s3ClientKey{
		region:    p.config.Region,
		endpoint:  p.config.S3Endpoint,
		accessKey: p.config.AccessKey,
		secretKey: p.config.SecretKey,
	}
	s3Clients.Lock()
	defer s3Clients.Unlock()
	if client, ok := s3Clients.clients[key]; ok {
		p.s3Client = client
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(p.config.Region)}
	if p.config.AccessKey != "" && p.config.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(p.config.AccessKey, p.config.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load aws config: %s", err)
	}

	p.s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if p.config.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(p.config.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	s3Clients.clients[key] = p.s3Client
	return nil
}

// Check validates the local path and the bucket if applicable
func (p *Parquet) Check(ctx context.Context) error {
	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	if err := p.initS3Client(ctx); err != nil {
		return err
	}
	if p.s3Client != nil {
		if _, err := p.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.Bucket)}); err != nil {
			return fmt.Errorf("failed to access s3 bucket %s: %s", p.config.Bucket, err)
		}
	}

	return nil
}

// Setup opens one file for the stream under <local_path>/<namespace>/<stream>
func (p *Parquet) Setup(ctx context.Context, stream types.StreamInterface, options *destination.Options) error {
	p.options = options
	p.stream = stream

	codec, err := p.config.Codec()
	if err != nil {
		return err
	}
	if err := p.initS3Client(ctx); err != nil {
		return fmt.Errorf("failed to setup S3 client: %s", err)
	}

	directoryPath := filepath.Join(p.config.Path, stream.Namespace(), stream.Name())
	if err := os.MkdirAll(directoryPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories[%s]: %s", directoryPath, err)
	}

	p.filePath = filepath.Join(directoryPath, utils.TimestampedFileName(constants.ParquetFileExt))
	file, err := os.Create(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %s", err)
	}

	p.file = file
	p.writer = pqgo.NewGenericWriter[Row](file, pqgo.Compression(codec))
	logger.Infof("Thread[%d]: writing stream %s to %s", options.Number, stream.ID(), p.filePath)
	return nil
}

func (p *Parquet) Write(_ context.Context, records []types.RawRecord) error {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		data, err := json.Marshal(record.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %s", record.OlakeID, err)
		}
		rows = append(rows, Row{
			OlakeID:        record.OlakeID,
			OlakeTimestamp: record.OlakeTimestamp,
			OperationType:  record.OperationType,
			Data:           string(data),
		})
	}

	if _, err := p.writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write rows: %s", err)
	}
	p.rows += int64(len(rows))

	return nil
}

// Close finalizes the file, drops it when empty and uploads it otherwise
func (p *Parquet) Close(ctx context.Context) error {
	if p.writer == nil {
		return nil
	}

	err := p.writer.Close()
	p.writer = nil
	if err != nil {
		_ = p.file.Close()
		return fmt.Errorf("failed to close writer: %s", err)
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %s", err)
	}

	if p.rows == 0 {
		logger.Debugf("removing empty file %s", p.filePath)
		return os.Remove(p.filePath)
	}
	logger.Infof("Thread[%d]: wrote %d records of stream %s", p.options.Number, p.rows, p.stream.ID())

	if p.s3Client == nil {
		return nil
	}

	return p.upload(ctx)
}

func (p *Parquet) upload(ctx context.Context) error {
	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s for upload: %s", p.filePath, err)
	}
	defer file.Close()

	key := path.Join(p.config.Prefix, p.stream.Namespace(), p.stream.Name(), filepath.Base(p.filePath))
	uploader := manager.NewUploader(p.s3Client)
	if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload %s to s3: %s", key, err)
	}

	logger.Infof("uploaded %s to s3://%s/%s", filepath.Base(p.filePath), p.config.Bucket, key)
	return nil
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return &Parquet{config: &Config{}}
	}
}

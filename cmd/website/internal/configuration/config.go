package configuration

import "github.com/adampresley/configinator"

type Config struct {
	AwsEndpointUrl        string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion             string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId        string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey    string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket             string `flag:"awsbucket" env:"AWS_BUCKET" default:"imagegallery" description:"S3 bucket for mirrored thumbnails"`
	ContentBaseURL        string `flag:"contenturl" env:"CONTENT_BASE_URL" default:"http://localhost:8080" description:"Base URL of the content delivery server"`
	ContentChannelToken   string `flag:"channeltoken" env:"CONTENT_CHANNEL_TOKEN" default:"" description:"Channel token for the published content"`
	ContentRequestTimeout int    `flag:"contenttimeout" env:"CONTENT_REQUEST_TIMEOUT" default:"10" description:"Timeout, in seconds, for each request to the content server"`
	CookieSecret          string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                   string `flag:"dsn" env:"DSN" default:"file:./data/imagegallery.db" description:"Data source name"`
	Host                  string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LogLevel              string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxFetchWorkers       int    `flag:"mfw" env:"MAX_FETCH_WORKERS" default:"16" description:"Maximum number of concurrent requests to the content server per page"`
	MirrorEnabled         bool   `flag:"mirror" env:"MIRROR_ENABLED" default:"true" description:"Generate thumbnails for items that have none"`
	MirrorFolder          string `flag:"mirrorfolder" env:"MIRROR_FOLDER" default:"thumbnails" description:"S3 folder for generated thumbnails"`
	MaxMirrorWorkers      int    `flag:"mmw" env:"MAX_MIRROR_WORKERS" default:"4" description:"Maximum number of concurrent thumbnail workers"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}

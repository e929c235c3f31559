package remote

// Config holds configuration for the remote JSON API.
type Config struct {
	// BaseURL is the API root, such as https://postcards.example.org/api.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8000/api"`
	// Token is sent as a bearer token when set.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds each HTTP attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries is the number of retries after the first attempt for transient failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// BackoffMillis is the initial retry interval.
	BackoffMillis int `mapstructure:"backoff_millis" default:"250"`
}

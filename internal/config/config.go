package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	BackgroundTasks struct {
		MaxConcurrentTasks int           `yaml:"max_concurrent_tasks"`
		QueueSize          int           `yaml:"queue_size"`
		TaskTimeout        time.Duration `yaml:"task_timeout"`
		CleanupInterval    time.Duration `yaml:"cleanup_interval"`
		MaxTaskAge         time.Duration `yaml:"max_task_age"`
	} `yaml:"background_tasks"`

	Store struct {
		Backend string `yaml:"backend"` // "memory" or "redis"
	} `yaml:"store"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	HRFlow struct {
		APIURL         string        `yaml:"api_url"`
		APIKey         string        `yaml:"api_key"`
		UserEmail      string        `yaml:"user_email"`
		BoardKey       string        `yaml:"board_key"`
		SourceKey      string        `yaml:"source_key"`
		AlgorithmKey   string        `yaml:"algorithm_key"`
		Timeout        time.Duration `yaml:"timeout"`
		RateLimit      int           `yaml:"rate_limit"` // requests per minute
		TopK           int           `yaml:"top_k"`
		ScoreThreshold float64       `yaml:"score_threshold"`
	} `yaml:"hrflow"`

	Recall struct {
		Region  string        `yaml:"region"`
		APIKey  string        `yaml:"api_key"`
		BotName string        `yaml:"bot_name"`
		Timeout time.Duration `yaml:"timeout"`

		Watch struct {
			MaxAttempts int           `yaml:"max_attempts"`
			Interval    time.Duration `yaml:"interval"`
		} `yaml:"watch"`
	} `yaml:"recall"`

	LLM struct {
		Provider    string        `yaml:"provider"` // "claude" or "openai"
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Email struct {
		APIURL        string        `yaml:"api_url"`
		APIKey        string        `yaml:"api_key"`
		From          string        `yaml:"from"`
		RecruiterName string        `yaml:"recruiter_name"`
		CompanyName   string        `yaml:"company_name"`
		Timeout       time.Duration `yaml:"timeout"`
		Enabled       bool          `yaml:"enabled"`
	} `yaml:"email"`

	Rematch struct {
		MaxSuggestions int `yaml:"max_suggestions"`
	} `yaml:"rematch"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.BackgroundTasks.MaxConcurrentTasks = 10
	config.BackgroundTasks.QueueSize = 100
	config.BackgroundTasks.TaskTimeout = 300 * time.Second
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	config.Store.Backend = "memory"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.HRFlow.APIURL = "https://api.hrflow.ai/v1"
	config.HRFlow.Timeout = 30 * time.Second
	config.HRFlow.RateLimit = 60
	config.HRFlow.TopK = 10
	config.HRFlow.ScoreThreshold = 0

	config.Recall.Region = "eu-central-1"
	config.Recall.BotName = "Talentloop Bot"
	config.Recall.Timeout = 30 * time.Second
	config.Recall.Watch.MaxAttempts = 20
	config.Recall.Watch.Interval = 15 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.3
	config.LLM.Timeout = 120 * time.Second

	config.Email.APIURL = "https://api.resend.com"
	config.Email.From = "Talentloop <noreply@talentloop.dev>"
	config.Email.RecruiterName = "The Hiring Team"
	config.Email.CompanyName = "Talentloop"
	config.Email.Timeout = 15 * time.Second
	config.Email.Enabled = true

	config.Rematch.MaxSuggestions = 3

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if apiKey := os.Getenv("HRFLOW_API_KEY"); apiKey != "" {
		c.HRFlow.APIKey = apiKey
	}

	if userEmail := os.Getenv("HRFLOW_USER_EMAIL"); userEmail != "" {
		c.HRFlow.UserEmail = userEmail
	}

	if boardKey := os.Getenv("HRFLOW_BOARD_KEY"); boardKey != "" {
		c.HRFlow.BoardKey = boardKey
	}

	if sourceKey := os.Getenv("HRFLOW_SOURCE_KEY"); sourceKey != "" {
		c.HRFlow.SourceKey = sourceKey
	}

	if algorithmKey := os.Getenv("HRFLOW_ALGORITHM_KEY"); algorithmKey != "" {
		c.HRFlow.AlgorithmKey = algorithmKey
	}

	if region := os.Getenv("RECALL_REGION"); region != "" {
		c.Recall.Region = region
	}

	if apiKey := os.Getenv("RECALL_API_KEY"); apiKey != "" {
		c.Recall.APIKey = apiKey
	}

	if attempts := os.Getenv("RECALL_WATCH_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil {
			c.Recall.Watch.MaxAttempts = n
		}
	}

	if interval := os.Getenv("RECALL_WATCH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Recall.Watch.Interval = d
		}
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		c.Email.APIKey = apiKey
	}

	if from := os.Getenv("EMAIL_FROM"); from != "" {
		c.Email.From = from
	}

	if enabled := os.Getenv("EMAIL_ENABLED"); enabled != "" {
		c.Email.Enabled = enabled == "true" || enabled == "1"
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}

package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host       string `json:"host"`       // The domain name of the server.
	ServerAddr string `json:"serverAddr"` // The address the server endpoint binds to.

	Auth struct {
		AccessTokenSecret      string `json:"accessTokenSecret"`
		AccessTokenExpiryHour  int    `json:"accessTokenExpiryHour"`
		RefreshTokenSecret     string `json:"refreshTokenSecret"`
		RefreshTokenExpiryHour int    `json:"refreshTokenExpiryHour"`
	} `json:"auth"`

	// DB Settings
	Postgres struct {
		Host        string `json:"host"`
		Port        string `json:"port"`
		DBName      string `json:"dbname"`
		User        string `json:"user"`
		Password    string `json:"password"`
		SSLMode     string `json:"sslmode"`
		TimeZone    string `json:"TimeZone"`
		ReplicaHost string `json:"replicaHost"` // optional read replica, empty to disable
	} `json:"postgres"`

	Notify struct {
		WebhookURL string `json:"webhookURL"` // invite fan-out endpoint, empty to disable
		SMTP       struct {
			Host     string `json:"host"`
			Port     string `json:"port"`
			User     string `json:"user"`
			Password string `json:"password"`
			From     string `json:"from"`
			Notify   string `json:"notify"` // ops mailbox for claim notifications
		} `json:"smtp"`
	} `json:"notify"`

	Rotation Rotation `json:"rotation"`
}

// Rotation collects the tunables of the matching core. The thresholds are
// hand-tuned operational values, not derived constants, so they live in
// configuration rather than code.
type Rotation struct {
	QuotaFresher int `json:"quotaFresher"`
	QuotaMid     int `json:"quotaMid"`
	QuotaExpert  int `json:"quotaExpert"`

	AcceptDeadlineMinutes  int `json:"acceptDeadlineMinutes"`
	MaxPendingInvites      int `json:"maxPendingInvites"`      // per developer, auto-rotation only
	ExcludeAfterBatches    int `json:"excludeAfterBatches"`    // start excluding the previous batch
	ExcludeTwoAfterBatches int `json:"excludeTwoAfterBatches"` // start excluding the previous two batches
	ResponseHistoryWindow  int `json:"responseHistoryWindow"`  // responses used for the estimate
	DefaultEstimateHours   int `json:"defaultEstimateHours"`   // estimate when no history exists
	SelectorHeadroom       int `json:"selectorHeadroom"`       // limit multiplier over the tier quota
	CacheTTLSeconds        int `json:"cacheTTLSeconds"`
	TxTimeoutSeconds       int `json:"txTimeoutSeconds"`
	RetryAttempts          int `json:"retryAttempts"`
	RetryBackoffMillis     int `json:"retryBackoffMillis"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode it reads the local
// debug config (path overridable via DEVMATCH_DEBUG_CONFIG_PATH), otherwise
// the config.yaml mounted from the ConfigMap.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("DEVMATCH_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("DEVMATCH_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	err := readConfig(configPath, config)
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	config.Rotation.ApplyDefaults()
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

// ApplyDefaults fills in the zero-valued tunables.
func (r *Rotation) ApplyDefaults() {
	if r.QuotaFresher == 0 && r.QuotaMid == 0 && r.QuotaExpert == 0 {
		r.QuotaFresher = 5
		r.QuotaMid = 5
		r.QuotaExpert = 3
	}
	if r.AcceptDeadlineMinutes == 0 {
		r.AcceptDeadlineMinutes = 15
	}
	if r.MaxPendingInvites == 0 {
		r.MaxPendingInvites = 3
	}
	if r.ExcludeAfterBatches == 0 {
		r.ExcludeAfterBatches = 3
	}
	if r.ExcludeTwoAfterBatches == 0 {
		r.ExcludeTwoAfterBatches = 5
	}
	if r.ResponseHistoryWindow == 0 {
		r.ResponseHistoryWindow = 5
	}
	if r.DefaultEstimateHours == 0 {
		r.DefaultEstimateHours = 6
	}
	if r.SelectorHeadroom == 0 {
		r.SelectorHeadroom = 2
	}
	if r.CacheTTLSeconds == 0 {
		r.CacheTTLSeconds = 30
	}
	if r.TxTimeoutSeconds == 0 {
		r.TxTimeoutSeconds = 30
	}
	if r.RetryAttempts == 0 {
		r.RetryAttempts = 3
	}
	if r.RetryBackoffMillis == 0 {
		r.RetryBackoffMillis = 100
	}
}

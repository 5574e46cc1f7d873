// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Proxy holds optional per-run proxy credentials. When Enabled is true a
// missing username is a configuration error for that profile run.
type Proxy struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username" env:"PROXY_USERNAME"`
	Password string `yaml:"password" env:"PROXY_PASSWORD"`
}

// Day is one day-of-week entry of the weekly posting schedule.
type Day struct {
	Active      bool     `yaml:"active"`
	PostingTime string   `yaml:"posting_time"` // "15:04" wall-clock time
	PostsCount  int      `yaml:"posts_count"`
	ProfileIDs  []string `yaml:"profile_ids"`
}

// ListingForm carries the fixed field values typed into every listing.
type ListingForm struct {
	Price             string   `yaml:"price"`
	Category          string   `yaml:"category"`
	SubCategories     []string `yaml:"sub_categories"`
	Condition         string   `yaml:"condition"`
	BedSize           string   `yaml:"bed_size"`
	BedType           string   `yaml:"bed_type"`
	Color             string   `yaml:"color"`
	Brand             string   `yaml:"brand"`
	ListAsSingleItem  string   `yaml:"list_as_single_item"`
	SKU               string   `yaml:"sku"`
	ProductTags       []string `yaml:"product_tags"`
	PublicMeetup      bool     `yaml:"public_meetup"`
	DoorPickup        bool     `yaml:"door_pickup"`
	DoorDropoff       bool     `yaml:"door_dropoff"`
	BoostAfterPublish bool     `yaml:"boost_after_publish"`
	HideFromFriends   bool     `yaml:"hide_from_friends"`
}

type Config struct {
	GoLoginToken     string `yaml:"gologin_token" env:"GOLOGIN_API_TOKEN"`
	FacebookEmail    string `yaml:"facebook_email" env:"FACEBOOK_EMAIL"`
	FacebookPassword string `yaml:"facebook_password" env:"FACEBOOK_PASSWORD"`
	TelegramToken    string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	Proxy Proxy `yaml:"proxy"`

	//Humanization delay range between UI actions
	DelayFromMs int `yaml:"delay_from_ms"`
	DelayToMs   int `yaml:"delay_to_ms"`

	//Content paths, all indexed by listing number
	TitlesPath       string `yaml:"titles_path"`
	DescriptionsPath string `yaml:"descriptions_path"`
	LocationsPath    string `yaml:"locations_path"`
	PhotosDir        string `yaml:"photos_dir"`

	//State and assets
	PostedDir      string `yaml:"posted_dir"`
	SelectorsPath  string `yaml:"selectors_path"`
	ScreenshotsDir string `yaml:"screenshots_dir"`

	ListingForm ListingForm    `yaml:"listing_form"`
	Schedule    map[string]Day `yaml:"schedule"`
}

// Load reads the YAML config at path, applies .env/environment overrides
// for secrets and fills defaults. The weekly schedule itself is validated
// by the schedule package when the model is built.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	//Override with env vars
	if token := os.Getenv("GOLOGIN_API_TOKEN"); token != "" {
		cfg.GoLoginToken = token
	}
	if email := os.Getenv("FACEBOOK_EMAIL"); email != "" {
		cfg.FacebookEmail = email
	}
	if password := os.Getenv("FACEBOOK_PASSWORD"); password != "" {
		cfg.FacebookPassword = password
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if user := os.Getenv("PROXY_USERNAME"); user != "" {
		cfg.Proxy.Username = user
	}
	if password := os.Getenv("PROXY_PASSWORD"); password != "" {
		cfg.Proxy.Password = password
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DelayFromMs == 0 {
		c.DelayFromMs = 800
	}
	if c.DelayToMs == 0 {
		c.DelayToMs = 2600
	}
	if c.TitlesPath == "" {
		c.TitlesPath = "content/titles/_titles.txt"
	}
	if c.DescriptionsPath == "" {
		c.DescriptionsPath = "content/descriptions/_descriptions.txt"
	}
	if c.LocationsPath == "" {
		c.LocationsPath = "content/locations/_locations.txt"
	}
	if c.PhotosDir == "" {
		c.PhotosDir = "content/photos"
	}
	if c.PostedDir == "" {
		c.PostedDir = "posted_listings"
	}
	if c.SelectorsPath == "" {
		c.SelectorsPath = "configs/selectors.json"
	}
	if c.ScreenshotsDir == "" {
		c.ScreenshotsDir = "logs/screenshots"
	}
}

func (c *Config) validate() error {
	if c.GoLoginToken == "" {
		return fmt.Errorf("GOLOGIN_API_TOKEN is required")
	}
	if c.FacebookEmail == "" || c.FacebookPassword == "" {
		return fmt.Errorf("FACEBOOK_EMAIL and FACEBOOK_PASSWORD are required")
	}
	if c.DelayFromMs > c.DelayToMs {
		return fmt.Errorf("delay_from_ms (%d) must not exceed delay_to_ms (%d)", c.DelayFromMs, c.DelayToMs)
	}
	if len(c.Schedule) == 0 {
		return fmt.Errorf("schedule section is required")
	}
	//Telegram is optional: with no token the notifier stays disabled.
	return nil
}

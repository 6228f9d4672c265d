package conf

const WebhookTypeExecution = "execution"

type Webhook struct {
	DelayMs int64          `mapstructure:"delay_ms" json:"delay_ms"`
	Items   []*WebhookItem `mapstructure:"items" json:"items"`
}

// WebhookItem posts execution results to URL. Shortcut matches an id or a
// name and Status is "success" or "error"; empty fields match everything.
type WebhookItem struct {
	Type     string `mapstructure:"type" json:"type"`
	URL      string `mapstructure:"url" json:"url"`
	Shortcut string `mapstructure:"shortcut" json:"shortcut"`
	Status   string `mapstructure:"status" json:"status"`
	Disabled bool   `mapstructure:"disabled" json:"disabled"`
}

package config

// ServerConfig configures the web form UI.
type ServerConfig struct {
	Address string `json:"address"`
}

// SetDefaults listens on :8080.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

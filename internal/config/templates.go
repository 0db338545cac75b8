// Package config holds starter itchctl.toml files for feeds and subscribers.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Kinds lists the template names accepted by Template.
var Kinds = []string{"feed", "subscriber"}

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "feed":
		return feedTemplate, nil
	case "subscriber":
		return subscriberTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

// WriteTemplate writes the kind template to path, refusing to replace an
// existing file unless overwrite is set.
func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const feedTemplate = `addr = "127.0.0.1:9100"
admin_listen_addr = "127.0.0.1:9101"
admin_cors_origins = ["http://localhost:3000"]
login_name = "desk"
password = "change-me"
heartbeat_interval = "1s"
heartbeat_timeout = "15s"
session_security_mode = "development"
session_tls_enabled = false

[[orders]]
currency_pair = "EUR/USD"
side = "buy"
price = "1.0850"
amount = 1000000
min_qty = 0
lot_size = 1
order_id = "eur-bid-1"

[[orders]]
currency_pair = "EUR/USD"
side = "sell"
price = "1.0852"
amount = 500000
min_qty = 0
lot_size = 1
order_id = "eur-ask-1"
`

const subscriberTemplate = `addr = "127.0.0.1:9100"
login_name = "desk"
password = "change-me"
currency_pairs = ["EUR/USD"]
heartbeat_interval = "1s"
heartbeat_timeout = "15s"
max_connect_attempts = 5
session_security_mode = "development"
session_tls_enabled = false
`

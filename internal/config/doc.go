// Package config loads and validates the pulse YAML configuration: the
// serving side (HTTP port, API auth, snapshot TTL, alert rules, webhooks)
// and the collection side (poll interval, business targets, sources).
//
// Missing fields are filled with defaults before validation. Secrets are
// never stored in the file itself — *_env fields name environment variables
// resolved at use time. Watch provides fsnotify-based hot reload.
package config

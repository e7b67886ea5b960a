// Package alerts implements the rule evaluation engine and webhook delivery
// for pulse alerting. Rules are threshold expressions over dashboard
// snapshot fields (ltv_cac, net_margin, health, ...); webhooks are
// delivered to Slack, Teams, or generic HTTP targets.
package alerts

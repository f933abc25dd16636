package plans

import (
	"strings"
	"time"
)

// readyStatus is the workflow status that triggers plan creation.
const readyStatus = "Ready for QA"

// webhookPayload is the subset of a Jira webhook delivery the engine reads.
type webhookPayload struct {
	WebhookEvent string `json:"webhookEvent"`
	Issue        struct {
		Key    string `json:"key"`
		Fields struct {
			Status struct {
				Name string `json:"name"`
			} `json:"status"`
		} `json:"fields"`
	} `json:"issue"`
	Changelog struct {
		Items []struct {
			Field    string `json:"field"`
			ToString string `json:"toString"`
		} `json:"items"`
	} `json:"changelog"`
}

// shouldTrigger reports whether the delivery represents a transition into the
// ready status. The changelog is authoritative when present; otherwise the
// issue's current status is used, which also covers trackers that omit
// changelogs from their deliveries.
func (p webhookPayload) shouldTrigger() bool {
	if p.WebhookEvent != "jira:issue_updated" {
		return false
	}
	for _, item := range p.Changelog.Items {
		if item.Field == "status" {
			return strings.EqualFold(item.ToString, readyStatus)
		}
	}
	return strings.EqualFold(p.Issue.Fields.Status.Name, readyStatus)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

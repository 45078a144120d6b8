package jobs

import (
	"encoding/json"
	"time"
)

// ShareNotificationPayload tells a worker to notify a viewer that a report
// was shared with them. Keep payloads minimal and ID-based where possible;
// the denormalized title/email spare the worker extra lookups.
type ShareNotificationPayload struct {
	GrantID     string    `json:"grantId"`
	ReportID    string    `json:"reportId"`
	ReportTitle string    `json:"reportTitle"`
	OwnerName   string    `json:"ownerName"`
	ViewerID    string    `json:"viewerId"`
	ViewerEmail string    `json:"viewerEmail"`
	GrantedAt   time.Time `json:"grantedAt"`
}

func (p ShareNotificationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

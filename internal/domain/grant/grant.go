package grant

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("grant not found")

// AccessGrant authorizes one viewer to read one report. Grants are append-only:
// there is no revocation in the current model.
type AccessGrant struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	OwnerID   string    `json:"ownerId"`
	ViewerID  string    `json:"viewerId"`
	GrantedAt time.Time `json:"grantedAt"`
}

func New(reportID, ownerID, viewerID string) AccessGrant {
	return AccessGrant{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		OwnerID:   ownerID,
		ViewerID:  viewerID,
		GrantedAt: time.Now().UTC(),
	}
}

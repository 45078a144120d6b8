package notifications

import "context"

type SendShareNotificationInput struct {
	Email       string
	OwnerName   string
	ReportID    string
	ReportTitle string
	GrantID     string
}

type Notifier interface {
	SendShareNotification(ctx context.Context, input SendShareNotificationInput) error
}
